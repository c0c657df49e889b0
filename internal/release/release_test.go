package release

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/BrettMayson/hemtt/internal/addon"
	"github.com/BrettMayson/hemtt/internal/workspace"
)

func newMemWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.NewBuilder().Memory().Finish()
	if err != nil {
		t.Fatalf("building workspace: %v", err)
	}
	return ws
}

func TestStageAddonWithoutPrefix(t *testing.T) {
	ws := newMemWorkspace(t)
	build := ws.Root().Join(".hemttout").Join("build")
	if err := build.Join("addons").Join("test.pbo").CreateFile([]byte("pbo-bytes")); err != nil {
		t.Fatalf("seeding build output: %v", err)
	}

	a := &addon.Addon{Name: "test", Folder: ws.Root().Join("addons").Join("test")}
	releaseRoot := ws.Root().Join("releases")
	if err := StageAddon(build, releaseRoot, "1.0.0", a); err != nil {
		t.Fatalf("StageAddon: %v", err)
	}

	staged := releaseRoot.Join("1.0.0").Join("addons").Join("test.pbo")
	if !staged.Exists() {
		t.Fatalf("expected %s to exist", staged)
	}
	text, err := staged.ReadToString()
	if err != nil || text != "pbo-bytes" {
		t.Fatalf("staged content = %q, %v", text, err)
	}
}

func TestArchiveProducesReadableZip(t *testing.T) {
	ws := newMemWorkspace(t)
	releaseRoot := ws.Root().Join("releases")
	if err := releaseRoot.Join("1.0.0").Join("addons").Join("test.pbo").CreateFile([]byte("hello")); err != nil {
		t.Fatalf("seeding release tree: %v", err)
	}

	var buf bytes.Buffer
	if err := Archive(&buf, releaseRoot, "1.0.0"); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reading produced zip: %v", err)
	}
	if len(zr.File) != 1 {
		t.Fatalf("got %d entries, want 1", len(zr.File))
	}
	if zr.File[0].Name != "addons/test.pbo" {
		t.Fatalf("entry name = %q", zr.File[0].Name)
	}
}
