package trace

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileFlagStore persists the trace flag as a single line ("on" / "off") in a
// file. The zero state is an absent file.
type FileFlagStore struct {
	path string
}

var _ FlagStore = &FileFlagStore{}

func NewFileFlagStore(path string) (*FileFlagStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("file flag store: empty path")
	}
	return &FileFlagStore{path: path}, nil
}

func (s *FileFlagStore) Load(_ context.Context) (bool, bool, error) {
	if s == nil {
		return false, false, errors.New("file flag store: nil store")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, false, nil
		}
		return false, false, errors.Wrapf(err, "file flag store: read %s", s.path)
	}
	return strings.TrimSpace(string(data)) == "on", true, nil
}

func (s *FileFlagStore) Save(_ context.Context, enabled bool) error {
	if s == nil {
		return errors.New("file flag store: nil store")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrapf(err, "file flag store: mkdir for %s", s.path)
	}
	value := "off\n"
	if enabled {
		value = "on\n"
	}
	if err := os.WriteFile(s.path, []byte(value), 0o644); err != nil {
		return errors.Wrapf(err, "file flag store: write %s", s.path)
	}
	return nil
}
