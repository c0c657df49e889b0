package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/BrettMayson/hemtt/internal/executor"
	"github.com/BrettMayson/hemtt/internal/release"
	"golang.org/x/xerrors"
)

// cmdrelease runs the full build, stages every addon's output into the
// versioned release tree, and archives it into a zip under
// .hemttout/release/<folder>.zip.
func cmdrelease(ctx context.Context, args []string) error {
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

	modules := append(buildModules(cfg), executor.ReleaseModule{Version: cfg.Version})
	if err := runExecutor(ctx, modules, ectx); err != nil {
		return err
	}

	folder := release.Folder(cfg.Version)
	var buf bytes.Buffer
	if err := release.Archive(&buf, ectx.ReleaseRoot, folder); err != nil {
		return xerrors.Errorf("archiving release: %w", err)
	}
	zipPath := ectx.ReleaseRoot.Join(folder + ".zip")
	if err := zipPath.CreateFile(buf.Bytes()); err != nil {
		return xerrors.Errorf("writing %s: %w", zipPath, err)
	}

	fmt.Fprintf(os.Stdout, "released %d addon(s) to %s\n", len(addons), zipPath)
	return nil
}
