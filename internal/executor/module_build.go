package executor

import (
	"bytes"
	"path"
	"strings"

	"github.com/BrettMayson/hemtt/internal/addon"
	"github.com/BrettMayson/hemtt/internal/config"
	"github.com/BrettMayson/hemtt/internal/diag"
	"github.com/BrettMayson/hemtt/internal/pbo"
	"github.com/BrettMayson/hemtt/internal/preprocessor"
	"github.com/BrettMayson/hemtt/internal/rapify"
	"github.com/BrettMayson/hemtt/internal/sqf"
	"github.com/BrettMayson/hemtt/internal/workspace"
)

// BuildModule runs the per-addon packaging chain: preprocess and parse
// config.cpp, lint it, rapify it to config.bin, optionally compile
// every .sqf file to bytecode (skipping any glob listed in the addon's
// no_bin), and write the resulting file set as one PBO under
// .hemttout/build/addons: preprocessor, config parser, lints, rapifier,
// optional SQF compile, PBO codec, in that order.
type BuildModule struct {
	ProjectPrefix string
}

func (BuildModule) Name() string { return "build" }

func (m BuildModule) DoBuild(ctx *Context) Report {
	resolver := newPathResolver(ctx.Workspace)
	return ParallelAddons(ctx.Addons, func(a *addon.Addon) Report {
		if a.BuildData.SkipBuild() {
			return Report{}
		}
		return buildAddon(resolver, m.ProjectPrefix, a, ctx.BuildFolder)
	})
}

func buildAddon(resolver *pathResolver, projectPrefix string, a *addon.Addon, buildFolder *workspace.Path) Report {
	var r Report
	p := pbo.New()
	if prefix, ok := a.Prefix(); ok {
		p.SetProperty("prefix", prefix)
	}

	configPath := a.Folder.Join("config.cpp")
	if configPath.Exists() {
		cfgBin, report := buildConfig(resolver, projectPrefix, a, configPath)
		r.Merge(report)
		if cfgBin != nil {
			p.AddFile("config.bin", cfgBin, 0)
		}
	}

	_ = a.Folder.WalkDir(func(fp *workspace.Path) error {
		rel := strings.TrimPrefix(fp.String(), a.Folder.String()+"/")
		if rel == "" || rel == "config.cpp" || rel == "addon.toml" || isSentinel(rel) {
			return nil
		}
		text, err := fp.ReadToString()
		if err != nil {
			r.AddError(wrapErr(a.Name, "reading "+rel, err))
			return nil
		}
		data := []byte(text)
		if strings.HasSuffix(strings.ToLower(rel), ".sqf") && !matchesAny(a.Config.NoBin, rel) {
			data, report := compileSQF(a.Name, rel, text, a.BuildData.RequiredVersion())
			r.Merge(report)
			p.AddFile(rel, data, 0)
			return nil
		}
		p.AddFile(rel, data, 0)
		return nil
	})

	out, err := pboBytes(p)
	if err != nil {
		r.AddError(wrapErr(a.Name, "packaging PBO", err))
		return r
	}
	if err := buildFolder.Join("addons").Join(a.PBOName()).CreateFile(out); err != nil {
		r.AddError(wrapErr(a.Name, "writing PBO", err))
	}
	return r
}

func buildConfig(resolver *pathResolver, projectPrefix string, a *addon.Addon, configPath *workspace.Path) ([]byte, Report) {
	var r Report
	processed, err := preprocessor.Process(resolver, configPath.String(), nil)
	if err != nil {
		r.AddError(wrapErr(a.Name, "preprocessing", err))
		return nil, r
	}
	r.Warnings = append(r.Warnings, processed.Diagnostics...)

	cfg, codes := config.Parse(processed.Tokens)
	segregate(&r, codes)
	if cfg == nil {
		return nil, r
	}
	segregate(&r, config.Lint(cfg, projectPrefix))

	bin, err := rapify.Rapify(cfg)
	if err != nil {
		r.AddError(wrapErr(a.Name, "rapifying", err))
		return nil, r
	}
	return bin, r
}

func compileSQF(addonName, rel, text string, requiredVersion float64) ([]byte, Report) {
	var r Report
	root, codes := sqf.Parse(rel, text)
	segregate(&r, codes)
	segregate(&r, sqf.Analyze(rel, root, requiredVersion))
	if len(r.Errors) > 0 {
		return []byte(text), r
	}
	out, err := sqf.Compile(root)
	if err != nil {
		r.AddError(wrapErr(addonName, "compiling "+rel, err))
		return []byte(text), r
	}
	return out, r
}

func segregate(r *Report, codes []diag.Code) {
	for _, c := range codes {
		if c.Severity() == diag.Error {
			r.Errors = append(r.Errors, c)
			r.Fatal = true
		} else {
			r.Warnings = append(r.Warnings, c)
		}
	}
}

func matchesAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, _ := path.Match(g, rel); ok {
			return true
		}
	}
	return false
}

func pboBytes(p *pbo.PBO) ([]byte, error) {
	var buf bytes.Buffer
	if err := pbo.Write(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var pboPrefixSentinels = []string{"$PBOPREFIX$", "$PBOPREFIX", "pboprefix.txt"}

func isSentinel(rel string) bool {
	for _, s := range pboPrefixSentinels {
		if rel == s {
			return true
		}
	}
	return false
}
