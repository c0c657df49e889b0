package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BrettMayson/hemtt/internal/addon"
	"github.com/BrettMayson/hemtt/internal/diag"
	"github.com/BrettMayson/hemtt/internal/executor"
	"github.com/BrettMayson/hemtt/internal/project"
	"github.com/BrettMayson/hemtt/internal/sign"
	"github.com/BrettMayson/hemtt/internal/workspace"
	"golang.org/x/xerrors"
)

// openProject builds the on-disk workspace rooted at the current
// directory, loads .hemtt/project.toml, and scans addons/optionals/
// compats into build-order.
func openProject() (*workspace.Workspace, *project.Config, []*addon.Addon, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, nil, err
	}
	ws, err := workspace.NewBuilder().Physical(cwd, workspace.Physical).Finish()
	if err != nil {
		return nil, nil, nil, xerrors.Errorf("opening workspace: %w", err)
	}

	// project.Load reads straight off disk rather than through the
	// workspace VFS, so it needs the real path, not ws.Root()'s virtual one.
	cfg, err := project.Load(filepath.Join(cwd, ".hemtt", "project.toml"))
	if err != nil {
		return nil, nil, nil, xerrors.Errorf("loading project: %w", err)
	}

	scanned, err := addon.Scan(ws.Root())
	if err != nil {
		return nil, nil, nil, xerrors.Errorf("scanning addons: %w", err)
	}
	ordered, err := addon.BuildOrder(scanned)
	if err != nil {
		return nil, nil, nil, xerrors.Errorf("ordering addons: %w", err)
	}
	return ws, cfg, ordered, nil
}

func signVersion(cfg *project.Config) sign.Version {
	if cfg.Signing.Version == "2" {
		return sign.V2
	}
	return sign.V3
}

// buildModules is the fixed module registration order: naming and
// required-version checks, modtime gating, the build chain, signing,
// and the stray-output check.
func buildModules(cfg *project.Config) []executor.Module {
	return []executor.Module{
		executor.NamesModule{},
		executor.RequiredVersionModule{},
		executor.ModtimeModule{},
		executor.BuildModule{ProjectPrefix: cfg.Prefix},
		executor.SignModule{KeyPath: cfg.Signing.PrivateKey, Version: signVersion(cfg)},
		executor.ClearModule{},
	}
}

func runExecutor(ctx context.Context, modules []executor.Module, ectx *executor.Context) error {
	ex := &executor.Executor{Modules: modules}
	report, err := ex.Run(ctx, ectx)
	if err != nil {
		return err
	}
	r := diag.Renderer{}
	for _, c := range report.Warnings {
		r.Render(os.Stderr, c)
	}
	for _, c := range report.Errors {
		r.Render(os.Stderr, c)
	}
	if report.Fatal {
		return xerrors.New("build failed, see diagnostics above")
	}
	return nil
}

func cmdbuild(ctx context.Context, args []string) error {
	ws, cfg, addons, err := openProject()
	if err != nil {
		return err
	}
	ectx := &executor.Context{
		Workspace:   ws,
		Project:     cfg,
		Addons:      addons,
		BuildFolder: ws.Root().Join(".hemttout").Join("build"),
		ReleaseRoot: ws.Root().Join(".hemttout").Join("release"),
		Pedantic:    cfg.Pedantic,
	}
	if err := runExecutor(ctx, buildModules(cfg), ectx); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "built %d addon(s)\n", len(addons))
	return nil
}

func cmdcheck(ctx context.Context, args []string) error {
	ws, cfg, addons, err := openProject()
	if err != nil {
		return err
	}
	ectx := &executor.Context{
		Workspace:   ws,
		Project:     cfg,
		Addons:      addons,
		BuildFolder: ws.Root().Join(".hemttout").Join("build"),
		ReleaseRoot: ws.Root().Join(".hemttout").Join("release"),
		Pedantic:    cfg.Pedantic,
	}
	modules := []executor.Module{
		executor.NamesModule{},
		executor.RequiredVersionModule{},
		executor.ClearModule{},
	}
	return runExecutor(ctx, modules, ectx)
}

func cmdclean(ctx context.Context, args []string) error {
	ws, _, _, err := openProject()
	if err != nil {
		return err
	}
	return executor.Clean(ws)
}
