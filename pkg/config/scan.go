package config

import (
	"io"
	"io/fs"
	"path"
	"sort"

	internalfs "github.com/recast-dev/recast/internal/fs"
	"github.com/recast-dev/recast/internal/logging"
)

// ScanPath walks a filesystem rooted at dir and builds one YAMLLoader per
// declarative document file found. Glob patterns in included and excluded
// restrict the walk; an empty include list admits everything. Loaders come
// back sorted by path so callers see a stable source order.
func ScanPath(fsys fs.FS, dir string, included, excluded []string) ([]*YAMLLoader, error) {
	filter, err := internalfs.NewFilter(included, excluded)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := path.Ext(p); ext != ".yml" && ext != ".yaml" {
			return nil
		}
		if !filter.Include(p) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)

	loaders := make([]*YAMLLoader, 0, len(paths))
	for _, p := range paths {
		loaders = append(loaders, newFileLoader(fsys, p))
	}
	return loaders, nil
}

func newFileLoader(fsys fs.FS, p string) *YAMLLoader {
	return &YAMLLoader{
		source: p,
		open:   func() (io.ReadCloser, error) { return fsys.Open(p) },
		log:    logging.Discard(),
	}
}
