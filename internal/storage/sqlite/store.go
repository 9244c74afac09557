// Package sqlite provides a SQLite-backed tape store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ArtistBoard/internal/storage"
	"ArtistBoard/internal/storage/sqlite/migrations"
)

// Store persists tapes in a single SQLite table.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var (
	_ storage.Store   = (*Store)(nil)
	_ storage.Statter = (*Store)(nil)
)

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storage.Unavailable("open sqlite db", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, storage.Unavailable("ping sqlite db", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts the payload under key with a fresh revision id.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := storage.CheckKey(key)
	if err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO tapes (key, payload, revision, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   payload = excluded.payload,
		   revision = excluded.revision,
		   saved_at = excluded.saved_at`,
		key, data, uuid.NewString(), s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return storage.Unavailable("save tape", err)
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
	var payload []byte
	err = s.sqlDB.QueryRowContext(ctx, `SELECT payload FROM tapes WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storage.Unavailable("load tape", err)
	}
	return payload, true, nil
}

func (s *Store) Clear(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := storage.CheckKey(key)
	if err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM tapes WHERE key = ?`, key); err != nil {
		return storage.Unavailable("clear tape", err)
	}
	return nil
}

// Stat reports the revision and save time of key.
func (s *Store) Stat(ctx context.Context, key string) (storage.Info, bool, error) {
	key, err := storage.CheckKey(key)
	if err != nil {
		return storage.Info{}, false, err
	}
	var (
		info    storage.Info
		savedAt int64
	)
	err = s.sqlDB.QueryRowContext(ctx,
		`SELECT revision, saved_at, length(payload) FROM tapes WHERE key = ?`, key,
	).Scan(&info.Revision, &savedAt, &info.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Info{}, false, nil
	}
	if err != nil {
		return storage.Info{}, false, storage.Unavailable("stat tape", err)
	}
	info.SavedAt = time.UnixMilli(savedAt).UTC()
	return info, true, nil
}
