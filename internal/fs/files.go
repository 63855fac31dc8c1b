// Package fs contains filesystem helpers for scanning recipe search paths.
package fs

import (
	"errors"
	"io/fs"
	"os"

	"github.com/gobwas/glob"
)

// Filter holds compiled include/exclude glob patterns for path filtering.
// Empty include means "everything"; exclude wins over include.
type Filter struct {
	included []glob.Glob
	excluded []glob.Glob
}

func NewFilter(included, excluded []string) (*Filter, error) {
	inc, err := compileAll(included)
	if err != nil {
		return nil, err
	}
	exc, err := compileAll(excluded)
	if err != nil {
		return nil, err
	}
	return &Filter{included: inc, excluded: exc}, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (f *Filter) Include(path string) bool {
	for _, g := range f.excluded {
		if g.Match(path) {
			return false
		}
	}
	if len(f.included) == 0 {
		return true
	}
	for _, g := range f.included {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// FSContainsFiles returns true if the given fs.FS contains any files, and false otherwise.
func FSContainsFiles(fsys fs.FS) (bool, error) {
	// errFound is a sentinel error used to stop the walk when a file is found.
	errFound := os.ErrExist

	err := fs.WalkDir(fsys, ".", func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return errFound
		}
		return nil
	})
	if err == errFound {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, err
}
