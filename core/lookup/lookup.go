// Package lookup maps bare command names to runnable files on the search path.
package lookup

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

// Resolver resolves a bare command name to the path of a runnable file.
type Resolver interface {
	Resolve(name string) (string, error)
}

// PathResolver resolves names against the directories of a PATH-style search
// list, first match wins. Lookups are recomputed on every call; nothing is
// cached across input lines.
type PathResolver struct {
	Fs afero.Fs

	// Path returns the current search path, usually os.Getenv("PATH").
	Path func() string
}

var _ Resolver = (*PathResolver)(nil)

// NewPathResolver returns a resolver over the host filesystem and the PATH
// environment variable.
func NewPathResolver() *PathResolver {
	return &PathResolver{
		Fs:   afero.NewOsFs(),
		Path: func() string { return os.Getenv("PATH") },
	}
}

func (r *PathResolver) findExecutable(file string) error {
	d, err := r.Fs.Stat(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// Resolve searches for an executable named name in the directories of the
// search path. If name contains a slash, it is tried directly and the path is
// not consulted. The result may be an absolute path or a path relative to the
// current directory.
func (r *PathResolver) Resolve(name string) (string, error) {
	if strings.Contains(name, "/") {
		if err := r.findExecutable(name); err != nil {
			return "", err
		}
		return name, nil
	}
	for _, dir := range filepath.SplitList(r.Path()) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, name)
		if err := r.findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}
