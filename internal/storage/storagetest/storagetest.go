// Package storagetest holds behaviour checks shared by every Store.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ArtistBoard/internal/state"
	"ArtistBoard/internal/storage"
)

// Run exercises open, which must return an empty store on every call.
func Run(t *testing.T, open func(t *testing.T) storage.Store) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := open(t)
		data, found, err := s.Load(ctx, "data")
		if err != nil || found || data != nil {
			t.Errorf("Load(missing) = %q, %v, %v, want nil, false, nil", data, found, err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		s := open(t)
		want := state.Log{
			state.SampleAt(10, 0, 100),
			state.SampleAt(10.5, 10, 250),
			state.SampleAt(20, 10, 300),
			state.Boundary,
			state.Boundary,
		}
		payload, err := state.Encode(want)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Save(ctx, "data", payload); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, found, err := s.Load(ctx, "data")
		if err != nil || !found {
			t.Fatalf("Load() = %v, %v", found, err)
		}
		decoded, err := state.Decode(got)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if d := cmp.Diff(want, decoded); d != "" {
			t.Errorf("stored log (-want +got):\n%s", d)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		s := open(t)
		_ = s.Save(ctx, "k", []byte(`["break"]`))
		if err := s.Save(ctx, "k", []byte(`[]`)); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, _, _ := s.Load(ctx, "k")
		if string(got) != "[]" {
			t.Errorf("Load() after overwrite = %q, want []", got)
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := open(t)
		_ = s.Save(ctx, "a", []byte(`"a"`))
		_ = s.Save(ctx, "b/c", []byte(`"b"`))
		if err := s.Clear(ctx, "a"); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if _, found, _ := s.Load(ctx, "a"); found {
			t.Error("Load(a) found after Clear")
		}
		if got, found, _ := s.Load(ctx, "b/c"); !found || string(got) != `"b"` {
			t.Errorf("Load(b/c) = %q, %v", got, found)
		}
	})

	t.Run("clear missing", func(t *testing.T) {
		s := open(t)
		if err := s.Clear(ctx, "nothing"); err != nil {
			t.Errorf("Clear(missing) = %v, want nil", err)
		}
	})

	t.Run("empty key", func(t *testing.T) {
		s := open(t)
		if err := s.Save(ctx, " ", nil); !errors.Is(err, storage.ErrInvalidKey) {
			t.Errorf("Save(empty key) = %v, want ErrInvalidKey", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		s := open(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := s.Save(cctx, "data", []byte("[]")); !errors.Is(err, context.Canceled) {
			t.Errorf("Save(canceled) = %v, want context.Canceled", err)
		}
	})
}
