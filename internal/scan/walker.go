// Package scan provides the directory walker and ignore-pattern filter
// used by module discovery.
package scan

import (
	"context"
	"io/fs"
	"path/filepath"
)

// Walker produces the sequence of file entries under a root path, already
// filtered through an include predicate. Discovery consumes the sequence
// exactly once per pass; implementations are injectable so tests can count
// or fake scans.
type Walker interface {
	Walk(ctx context.Context, root string, include func(rel string) bool, fn func(path string) error) error
}

// FSWalker walks the real filesystem.
type FSWalker struct{}

// NewWalker returns a filesystem-backed walker.
func NewWalker() *FSWalker {
	return &FSWalker{}
}

// Walk traverses root depth-first, invoking fn for every file whose
// root-relative path passes the include predicate. Directories failing the
// predicate are skipped entirely, as is any .git directory. Errors from fn
// abort the walk.
func (w *FSWalker) Walk(ctx context.Context, root string, include func(rel string) bool, fn func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if d.Name() == ".git" || !include(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !include(rel) {
			return nil
		}
		return fn(path)
	})
}
