package executor

import (
	"strings"

	"github.com/BrettMayson/hemtt/internal/addon"
	"github.com/BrettMayson/hemtt/internal/config"
	"github.com/BrettMayson/hemtt/internal/diag"
	"github.com/BrettMayson/hemtt/internal/preprocessor"
)

// RequiredVersionModule preprocesses and parses each addon's config.cpp
// during check, extracts CfgPatches::requiredVersion and
// CfgPatches::requiredAddons, and records them on the addon's BuildData
// for internal/addon.BuildOrder and the SQF analyzer's version lint to
// consume later.
type RequiredVersionModule struct{}

func (RequiredVersionModule) Name() string { return "requiredversion" }

func (RequiredVersionModule) Check(ctx *Context) Report {
	resolver := newPathResolver(ctx.Workspace)
	return ParallelAddons(ctx.Addons, func(a *addon.Addon) Report {
		return checkRequiredVersion(resolver, a)
	})
}

func checkRequiredVersion(resolver *pathResolver, a *addon.Addon) Report {
	var r Report
	configPath := a.Folder.Join("config.cpp")
	if !configPath.Exists() {
		return r
	}

	processed, err := preprocessor.Process(resolver, configPath.String(), nil)
	if err != nil {
		r.AddError(wrapErr(a.Name, "preprocessing", err))
		return r
	}
	r.Warnings = append(r.Warnings, processed.Diagnostics...)

	cfg, codes := config.Parse(processed.Tokens)
	for _, c := range codes {
		if c.Severity() == diag.Error {
			r.Errors = append(r.Errors, c)
		} else {
			r.Warnings = append(r.Warnings, c)
		}
	}
	if cfg == nil {
		return r
	}

	patches := findClass(cfg.Properties, "CfgPatches")
	if patches == nil {
		return r
	}
	for _, prop := range patches.Properties {
		if prop.Kind != config.PropClass || prop.Class == nil {
			continue
		}
		var version float64
		var deps []string
		for _, inner := range prop.Class.Properties {
			if inner.Kind != config.PropEntry {
				continue
			}
			switch strings.ToLower(inner.Name) {
			case "requiredversion":
				if inner.Value.Kind == config.ValNumber {
					version = numberAsFloat(inner.Value)
				}
			case "requiredaddons":
				if inner.Value.Kind == config.ValArray {
					for _, item := range inner.Value.Items {
						if item.Kind == config.ItemStr {
							deps = append(deps, item.Str)
						}
					}
				}
			}
		}
		a.BuildData.SetRequiredVersion(version)
		a.BuildData.SetDependencies(deps)
	}
	return r
}

func findClass(props []config.Property, name string) *config.Class {
	for _, p := range props {
		if p.Kind == config.PropClass && p.Class != nil && strings.EqualFold(p.Class.Name, name) {
			return p.Class
		}
	}
	return nil
}

func numberAsFloat(v config.Value) float64 {
	switch v.NumKind {
	case config.NumFloat32:
		return float64(v.Float)
	default:
		return float64(v.Int)
	}
}
