package config

import (
	"strings"

	"github.com/BrettMayson/hemtt/internal/diag"
)

// Lint runs the table of config lints over cfg's AST and
// returns every diagnostic found. Lints run exhaustively: a failure in one
// class scope does not stop later scopes from being checked.
//
// projectPrefix narrows CW2 to magazines whose name starts with the given
// prefix; pass the empty string to check every magazine regardless of name.
func Lint(cfg *Config, projectPrefix string) []diag.Code {
	l := &linter{projectPrefix: projectPrefix}
	l.lintScope(cfg.Properties, nil)
	l.lintMagazineWells(cfg)
	return l.diags
}

type linter struct {
	diags         []diag.Code
	projectPrefix string
}

// scope tracks the names (case-folded) declared at one class nesting
// level plus every enclosing level, for CE7/CW1's "reachable scope" walk.
type scope struct {
	parent *scope
	names  map[string]string // lower(name) -> declared-case name
}

func (s *scope) declare(name string) {
	s.names[strings.ToLower(name)] = name
}

// lookup walks outward through enclosing scopes, External declarations
// counting as reachable without being "defined" any differently.
func (s *scope) lookup(name string) (string, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if declared, ok := cur.names[strings.ToLower(name)]; ok {
			return declared, true
		}
	}
	return "", false
}

func (l *linter) lintScope(props []Property, parent *scope) {
	sc := &scope{parent: parent, names: make(map[string]string)}

	seenProps := make(map[string]bool)
	seenClasses := make(map[string]bool)

	for _, prop := range props {
		switch prop.Kind {
		case PropEntry:
			key := strings.ToLower(prop.Name)
			if seenProps[key] {
				l.diags = append(l.diags, errDuplicateProperty(prop.Path, prop.Span, prop.Name))
			} else {
				seenProps[key] = true
			}
			l.lintValue(prop.Name, prop.Value)

		case PropClass:
			key := strings.ToLower(prop.Name)
			if seenClasses[key] {
				l.diags = append(l.diags, errDuplicateClass(prop.Path, prop.Span, prop.Name))
			} else {
				seenClasses[key] = true
			}
			if prop.Class != nil {
				sc.declare(prop.Name)
			}

		case PropMissingSemicolon:
			// Already reported CE4 at parse time.
		}
	}

	// Second pass: parent resolution needs every sibling class declared
	// first (forward references within a scope are legal).
	for _, prop := range props {
		if prop.Kind != PropClass || prop.Class == nil {
			continue
		}
		l.lintClassParent(prop.Class, sc)
		if prop.Class.Kind == ClassLocal {
			l.lintScope(prop.Class.Properties, sc)
		}
	}
}

func (l *linter) lintClassParent(c *Class, sc *scope) {
	if c.Parent == "" {
		return
	}
	declared, ok := sc.lookup(c.Parent)
	if !ok {
		l.diags = append(l.diags, errUndeclaredParent(c.Path, c.ParentSpan, c.Parent))
		return
	}
	if declared != c.Parent {
		l.diags = append(l.diags, warnParentCase(c.Path, c.ParentSpan, c.Parent, declared))
	}
}

func (l *linter) lintValue(name string, v Value) {
	switch v.Kind {
	case ValInvalid:
		if v.FromMacro {
			l.diags = append(l.diags, errInvalidMacroValue(v.Path, v.Span))
		} else {
			l.diags = append(l.diags, errInvalidValue(v.Path, v.Span))
		}
	case ValUnexpectedArray:
		l.diags = append(l.diags, errUnexpectedArray(v.Path, v.Span, name))
	}
}

// lintMagazineWells implements CW2: every magazine named in a
// CfgMagazineWells well's array property must also appear as a child
// class of CfgMagazines. Only top-level CfgMagazines /
// CfgMagazineWells classes are consulted, matching how the game itself
// merges them at the top of a config.
func (l *linter) lintMagazineWells(cfg *Config) {
	magazines := make(map[string]bool)
	var wells *Class

	for _, prop := range cfg.Properties {
		if prop.Kind != PropClass || prop.Class == nil {
			continue
		}
		switch prop.Class.Name {
		case "CfgMagazines":
			for _, child := range prop.Class.Properties {
				if child.Kind == PropClass && child.Class != nil {
					magazines[strings.ToLower(child.Class.Name)] = true
				}
			}
		case "CfgMagazineWells":
			wells = prop.Class
		}
	}
	if wells == nil {
		return
	}

	for _, well := range wells.Properties {
		if well.Kind != PropClass || well.Class == nil {
			continue
		}
		for _, entry := range well.Class.Properties {
			if entry.Kind != PropEntry || entry.Value.Kind != ValArray {
				continue
			}
			for _, item := range entry.Value.Items {
				if item.Kind != ItemStr {
					continue
				}
				if l.projectPrefix != "" && !strings.HasPrefix(strings.ToLower(item.Str), strings.ToLower(l.projectPrefix)) {
					continue
				}
				if !magazines[strings.ToLower(item.Str)] {
					l.diags = append(l.diags, warnMissingMagazine(well.Class.Path, item.Span, item.Str))
				}
			}
		}
	}
}
