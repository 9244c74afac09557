// Package storage defines the key/value persistence used for saved tapes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnavailable marks failures of the backing store. Callers treat it as
// recoverable: nothing in memory is changed by a failed save or load.
var ErrUnavailable = errors.New("storage unavailable")

// ErrInvalidKey is returned for empty keys.
var ErrInvalidKey = errors.New("invalid storage key")

// Store saves opaque serialized logs under string keys.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	// Load returns found=false when nothing is stored under key.
	Load(ctx context.Context, key string) (data []byte, found bool, err error)
	// Clear removes key. Clearing a missing key is not an error.
	Clear(ctx context.Context, key string) error
	Close() error
}

// Info describes the last save of a key. Revision is empty for stores that
// do not track revisions.
type Info struct {
	Revision string
	SavedAt  time.Time
	Size     int
}

// Statter is implemented by stores that can describe a saved key.
type Statter interface {
	Stat(ctx context.Context, key string) (info Info, found bool, err error)
}

// Unavailable wraps err so that errors.Is(err, ErrUnavailable) holds.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// CheckKey normalizes key and rejects empty ones.
func CheckKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrInvalidKey
	}
	return key, nil
}
