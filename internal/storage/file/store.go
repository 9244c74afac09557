// Package file keeps each tape in its own JSON file inside a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"ArtistBoard/internal/storage"
)

const ext = ".json"

type Store struct {
	dir string
}

var (
	_ storage.Store   = (*Store)(nil)
	_ storage.Statter = (*Store)(nil)
)

// Open creates dir if needed.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storage.Unavailable("create storage dir", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+ext)
}

// Save writes to a temporary file and renames it over the old one so a
// crash never leaves a truncated tape.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := storage.CheckKey(key)
	if err != nil {
		return err
	}
	dst := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".tape-*")
	if err != nil {
		return storage.Unavailable("save", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return storage.Unavailable("save", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return storage.Unavailable("save", err)
	}
	if err := tmp.Close(); err != nil {
		return storage.Unavailable("save", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return storage.Unavailable("save", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	key, err := storage.CheckKey(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storage.Unavailable("load", err)
	}
	return data, true, nil
}

func (s *Store) Clear(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := storage.CheckKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return storage.Unavailable("clear", err)
	}
	return nil
}

// Stat reports the file's size and modification time.
func (s *Store) Stat(ctx context.Context, key string) (storage.Info, bool, error) {
	if err := ctx.Err(); err != nil {
		return storage.Info{}, false, err
	}
	key, err := storage.CheckKey(key)
	if err != nil {
		return storage.Info{}, false, err
	}
	fi, err := os.Stat(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return storage.Info{}, false, nil
	}
	if err != nil {
		return storage.Info{}, false, storage.Unavailable("stat", err)
	}
	return storage.Info{SavedAt: fi.ModTime().UTC(), Size: int(fi.Size())}, true, nil
}

func (s *Store) Close() error { return nil }
