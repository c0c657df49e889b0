package addon

import (
	"regexp"
	"strings"

	"github.com/BrettMayson/hemtt/internal/workspace"
	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"
)

// DuplicateAddonError is a structural error: the same
// addon name appeared under more than one of addons/, optionals/,
// compats/.
type DuplicateAddonError struct {
	Name       string
	FirstLoc   Location
	SecondLoc  Location
}

func (e *DuplicateAddonError) Error() string {
	return "addon: duplicate addon name " + e.Name + " found in both " +
		e.FirstLoc.String() + " and " + e.SecondLoc.String()
}

var nameRE = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// CompatNameError is raised when a name starting with "compat" lives
// outside compats/.
type CompatNameError struct {
	Name     string
	Location Location
}

func (e *CompatNameError) Error() string {
	return "addon: " + e.Name + " is named like a compat but found under " + e.Location.String()
}

// Scan walks /addons, /optionals, /compats under root and constructs one
// Addon per immediate child directory.
func Scan(root *workspace.Path) ([]*Addon, error) {
	var addons []*Addon
	seen := make(map[string]Location)

	for _, loc := range []Location{Addons, Optionals, Compats} {
		dir := root.Join(loc.folderName())
		if !dir.Exists() || !dir.IsDir() {
			continue
		}
		names, err := immediateChildren(dir)
		if err != nil {
			return nil, xerrors.Errorf("addon: listing %s: %w", loc, err)
		}
		for _, name := range names {
			if prevLoc, dup := seen[name]; dup {
				return nil, &DuplicateAddonError{Name: name, FirstLoc: prevLoc, SecondLoc: loc}
			}
			if strings.HasPrefix(strings.ToLower(name), "compat") && loc != Compats {
				return nil, &CompatNameError{Name: name, Location: loc}
			}
			seen[name] = loc

			folder := dir.Join(name)
			cfg, err := loadConfig(folder)
			if err != nil {
				return nil, xerrors.Errorf("addon: %s: %w", name, err)
			}
			addons = append(addons, &Addon{
				Name:     name,
				Location: loc,
				Folder:   folder,
				Config:   cfg,
			})
		}
	}
	return addons, nil
}

func immediateChildren(dir *workspace.Path) ([]string, error) {
	children := make(map[string]bool)
	if err := dir.WalkDir(func(p *workspace.Path) error {
		rel := strings.TrimPrefix(p.String(), dir.String()+"/")
		if rel == "" || rel == p.String() {
			return nil
		}
		first := rel
		if idx := strings.Index(rel, "/"); idx >= 0 {
			first = rel[:idx]
		}
		children[first] = true
		return nil
	}); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(children))
	for name := range children {
		if nameRE.MatchString(name) {
			out = append(out, name)
		}
	}
	return out, nil
}

// loadConfig reads addon.toml from folder, applying the documented
// defaults when absent.
func loadConfig(folder *workspace.Path) (Config, error) {
	cfg := DefaultConfig()
	cfgPath := folder.Join("addon.toml")
	if !cfgPath.Exists() {
		return cfg, nil
	}
	text, err := cfgPath.ReadToString()
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal([]byte(text), &cfg); err != nil {
		return cfg, xerrors.Errorf("addon.toml: %w", err)
	}
	return cfg, nil
}
