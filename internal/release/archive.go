package release

import (
	"archive/zip"
	"io"

	"github.com/BrettMayson/hemtt/internal/workspace"
	"github.com/klauspost/compress/flate"
	"golang.org/x/xerrors"
)

// deflateLevel matches the ratio/speed tradeoff HEMTT's release archive
// targets: fast enough to run on every release without a noticeable
// pause, better than flate's own default.
const deflateLevel = 6

// Archive walks releaseRoot/folder and writes every file it contains
// into a single deflate-compressed zip at dst, using
// klauspost/compress's flate implementation (archive/zip's registered
// compressor hook) rather than the standard library's slower one.
func Archive(dst io.Writer, releaseRoot *workspace.Path, folder string) error {
	zw := zip.NewWriter(dst)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, deflateLevel)
	})

	root := releaseRoot.Join(folder)
	err := root.WalkDir(func(p *workspace.Path) error {
		rel := trimRoot(p.String(), root.String())
		if rel == "" {
			return nil
		}
		text, err := p.ReadToString()
		if err != nil {
			return xerrors.Errorf("release: reading %s: %w", p, err)
		}
		w, err := zw.Create(rel)
		if err != nil {
			return xerrors.Errorf("release: adding %s to archive: %w", rel, err)
		}
		_, err = w.Write([]byte(text))
		return err
	})
	if err != nil {
		return err
	}
	return zw.Close()
}

func trimRoot(path, root string) string {
	if len(path) <= len(root) {
		return ""
	}
	if path[:len(root)] != root {
		return path
	}
	rest := path[len(root):]
	for len(rest) > 0 && rest[0] == '/' {
		rest = rest[1:]
	}
	return rest
}
