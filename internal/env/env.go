// Package env captures details about the HEMTT project environment,
// adapted from distr1/distri's internal/env (which locates $DISTRIROOT)
// into HEMTT's equivalent: walking up from the working directory to find
// the directory containing .hemtt/project.toml.
package env

import (
	"os"
	"path/filepath"
)

// ProjectMarker is the file whose presence identifies a HEMTT project
// root.
const ProjectMarker = ".hemtt/project.toml"

// FindProjectRoot walks up from start (or the working directory, if start
// is empty) looking for ProjectMarker, the same dominating-directory
// search distri's findDistriRoot sketches as a TODO ("find the dominating
// distri directory, if any") and HEMTT actually needs, since a build may
// be invoked from any addon subdirectory.
func FindProjectRoot(start string) (string, bool) {
	dir := start
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", false
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		marker := filepath.Join(dir, filepath.FromSlash(ProjectMarker))
		if st, err := os.Stat(marker); err == nil && !st.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
