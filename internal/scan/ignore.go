package scan

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/config"
)

// NewIgnoreFilter reads the project's ignore file and returns an include
// predicate over root-relative paths. When the ignore file is absent every
// path is included.
func NewIgnoreFilter(root string) (func(rel string) bool, error) {
	path := filepath.Join(root, config.IgnoreFileName)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return func(string) bool { return true }, nil
		}
		return nil, err
	}

	matcher, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindConfiguration,
			"failed to read ignore file", map[string]any{"path": path})
	}
	return func(rel string) bool {
		return !matcher.MatchesPath(rel)
	}, nil
}
