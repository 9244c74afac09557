// Package board is the control surface tying capture, rendering, replay and
// persistence together. The UI and the headless commands talk only to Board.
package board

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"time"

	"ArtistBoard/internal/export"
	"ArtistBoard/internal/input"
	"ArtistBoard/internal/render"
	"ArtistBoard/internal/replay"
	"ArtistBoard/internal/state"
	"ArtistBoard/internal/storage"
)

// DefaultKey is the storage key used when Options.Key is empty.
const DefaultKey = "data"

type Options struct {
	Key         string
	Background  color.Color // page colour for PDF export
	Pacing      replay.Pacing
	MinInterval time.Duration
	ReplayClock replay.Clock
	Clock       state.Clock // capture clock
	Logger      *slog.Logger
}

// Board owns the recorder and the replay scheduler for one renderer.
// Pointer input is dropped while a replay is running, so capture and replay
// never draw on the surface at the same time.
type Board struct {
	normalizer *input.Normalizer
	recorder   *state.Recorder
	renderer   *render.Renderer
	scheduler  *replay.Scheduler
	store      storage.Store
	key        string
	background color.Color
	logger     *slog.Logger

	mu       sync.Mutex
	shown    []export.Mark // entries drawn since the last clear, with their style
	onChange func()
}

// New returns a Board drawing through r and saving to store.
func New(r *render.Renderer, store storage.Store, opts Options) (*Board, error) {
	if r == nil {
		return nil, errors.New("board: renderer is required")
	}
	if store == nil {
		return nil, errors.New("board: store is required")
	}
	key, err := storage.CheckKey(opts.Key)
	if errors.Is(err, storage.ErrInvalidKey) {
		key = DefaultKey
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	w, h := r.Size()
	b := &Board{
		normalizer: input.NewNormalizer(w, h),
		recorder:   state.NewRecorder(state.WithClock(opts.Clock), state.WithLogger(logger)),
		renderer:   r,
		store:      store,
		key:        key,
		background: opts.Background,
		logger:     logger.With("component", "board"),
	}
	b.scheduler = replay.NewScheduler(replayTarget{b}, replay.Options{
		Pacing:      opts.Pacing,
		MinInterval: opts.MinInterval,
		Clock:       opts.ReplayClock,
		Logger:      logger,
	})
	return b, nil
}

// OnChange registers fn to be called after every change to the surface.
// fn may run on the replay goroutine.
func (b *Board) OnChange(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

func (b *Board) changed() {
	b.mu.Lock()
	fn := b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// draw applies e to the renderer and remembers it, in the style it was drawn
// with, for PDF export.
func (b *Board) draw(e state.Entry) error {
	st := b.renderer.Style()
	if err := b.renderer.ApplyEntry(e); err != nil {
		return err
	}
	b.mu.Lock()
	b.shown = append(b.shown, export.Mark{Entry: e, Style: st})
	b.mu.Unlock()
	return nil
}

type replayTarget struct{ b *Board }

func (t replayTarget) ApplyEntry(e state.Entry) error {
	if err := t.b.draw(e); err != nil {
		return err
	}
	t.b.changed()
	return nil
}

// SetOrigin forwards the surface's page position to the normalizer.
func (b *Board) SetOrigin(p state.Point) {
	b.normalizer.SetOrigin(p)
}

// HandlePointer records and draws one raw input event. Input is ignored
// while a replay is running.
func (b *Board) HandlePointer(raw input.Raw) error {
	if b.scheduler.Active() {
		return nil
	}
	ev, ok := b.normalizer.Normalize(raw)
	if !ok {
		return nil
	}
	entries := b.recorder.Handle(ev)
	for _, e := range entries {
		if err := b.draw(e); err != nil {
			return fmt.Errorf("draw %s: %w", e.Kind, err)
		}
	}
	if len(entries) > 0 {
		b.changed()
	}
	return nil
}

// ClearAll stops any replay and clears the stored log, the surface and the
// recorder. When the store fails nothing else is touched.
func (b *Board) ClearAll(ctx context.Context) error {
	b.scheduler.Stop()
	if err := b.store.Clear(ctx, b.key); err != nil {
		b.logger.Warn("clear failed", "key", b.key, "err", err)
		return fmt.Errorf("clear %q: %w", b.key, err)
	}
	if err := b.reset(); err != nil {
		return err
	}
	b.logger.Info("cleared", "key", b.key)
	return nil
}

// SaveCurrent stores the recorded log and then starts a fresh drawing. The
// stored log is kept. A failed save leaves the log and the surface as they
// were.
func (b *Board) SaveCurrent(ctx context.Context) error {
	b.scheduler.Stop()
	l := b.recorder.Log()
	data, err := state.Encode(l)
	if err != nil {
		return fmt.Errorf("encode log: %w", err)
	}
	if err := b.store.Save(ctx, b.key, data); err != nil {
		b.logger.Warn("save failed", "key", b.key, "err", err)
		return fmt.Errorf("save %q: %w", b.key, err)
	}
	b.logger.Info("saved", "key", b.key, "entries", len(l), "strokes", l.Strokes(), "session", b.recorder.Session())
	return b.reset()
}

func (b *Board) reset() error {
	b.recorder.Reset()
	err := b.renderer.Clear()
	b.mu.Lock()
	b.shown = nil
	b.mu.Unlock()
	b.changed()
	if err != nil {
		return fmt.Errorf("clear surface: %w", err)
	}
	return nil
}

// loadSaved returns the stored log; an absent key is an empty log.
func (b *Board) loadSaved(ctx context.Context) (state.Log, error) {
	data, found, err := b.store.Load(ctx, b.key)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", b.key, err)
	}
	if !found {
		return nil, nil
	}
	l, err := state.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", b.key, err)
	}
	return l, nil
}

// PlaySaved replays the stored log onto the surface. A missing or empty log
// yields a task that is already complete. Starting a replay cancels the
// previous one.
func (b *Board) PlaySaved(ctx context.Context) (*replay.Task, error) {
	l, err := b.loadSaved(ctx)
	if err != nil {
		b.logger.Warn("play failed", "key", b.key, "err", err)
		return nil, err
	}
	b.scheduler.Stop()
	// A canceled replay may leave the pen down mid stroke.
	if err := b.draw(state.Boundary); err != nil {
		return nil, err
	}
	b.logger.Info("playing", "key", b.key, "entries", len(l))
	return b.scheduler.Play(ctx, l), nil
}

// RenderSaved draws the stored log immediately, without pacing.
func (b *Board) RenderSaved(ctx context.Context) (state.Log, error) {
	l, err := b.loadSaved(ctx)
	if err != nil {
		return nil, err
	}
	b.scheduler.Stop()
	if err := b.draw(state.Boundary); err != nil {
		return nil, err
	}
	for i, e := range l {
		if err := b.draw(e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	b.changed()
	return l, nil
}

// StopReplay cancels the running replay, if any.
func (b *Board) StopReplay() {
	b.scheduler.Stop()
}

func (b *Board) Replaying() bool {
	return b.scheduler.Active()
}

// SetStyle changes the line weight and colour of subsequent draws. The
// recorded log is not affected.
func (b *Board) SetStyle(weight float64, colour string) error {
	c, err := render.ParseColor(colour)
	if err != nil {
		return err
	}
	return b.SetStyleColor(weight, c)
}

// SetStyleColor is SetStyle for an already parsed colour.
func (b *Board) SetStyleColor(weight float64, c color.Color) error {
	return b.renderer.SetStyle(render.Style{Weight: weight, Color: c})
}

func (b *Board) Style() render.Style {
	return b.renderer.Style()
}

// Log returns a copy of the log recorded since the last clear or save.
func (b *Board) Log() state.Log {
	return b.recorder.Log()
}

func (b *Board) Snapshot() (*image.NRGBA, bool) {
	return b.renderer.Snapshot()
}

func (b *Board) Size() (width, height int) {
	return b.renderer.Size()
}

// Resize changes the surface size and redraws what was shown, each entry in
// the style it was drawn with. Running replays are stopped.
func (b *Board) Resize(width, height int) error {
	if w, h := b.renderer.Size(); w == width && h == height {
		return nil
	}
	b.scheduler.Stop()
	if err := b.renderer.Resize(width, height); err != nil {
		return err
	}
	b.normalizer.SetBounds(width, height)

	b.mu.Lock()
	marks := append([]export.Mark(nil), b.shown...)
	b.mu.Unlock()
	current := b.renderer.Style()
	defer func() { _ = b.renderer.SetStyle(current) }()
	for i, m := range marks {
		if !m.Entry.IsBoundary() && m.Style != b.renderer.Style() {
			if err := b.renderer.SetStyle(m.Style); err != nil {
				return fmt.Errorf("redraw entry %d: %w", i, err)
			}
		}
		if err := b.renderer.ApplyEntry(m.Entry); err != nil {
			return fmt.Errorf("redraw entry %d: %w", i, err)
		}
	}
	b.logger.Debug("resized", "width", width, "height", height, "redrawn", len(marks))
	b.changed()
	return nil
}

// SavedInfo describes the stored tape when the store can report it.
// found is false when nothing is stored or the store cannot say.
func (b *Board) SavedInfo(ctx context.Context) (info storage.Info, found bool, err error) {
	st, ok := b.store.(storage.Statter)
	if !ok {
		return storage.Info{}, false, nil
	}
	return st.Stat(ctx, b.key)
}

type encoder interface {
	Encode(w io.Writer, f render.Format) error
}

// ExportImage encodes the current surface pixels.
func (b *Board) ExportImage(w io.Writer, f render.Format) error {
	return b.renderer.WithSurface(func(s render.Surface) error {
		enc, ok := s.(encoder)
		if !ok {
			return fmt.Errorf("%w: surface cannot be encoded", render.ErrUnsupportedFormat)
		}
		return enc.Encode(w, f)
	})
}

// ExportPDF writes what is currently on the surface as a vector PDF. Every
// entry keeps the weight and colour it was drawn with.
func (b *Board) ExportPDF(w io.Writer) error {
	b.mu.Lock()
	marks := append([]export.Mark(nil), b.shown...)
	b.mu.Unlock()
	width, height := b.renderer.Size()
	page := export.Page{Width: width, Height: height, Background: b.background, Compress: true}
	return export.Draw(w, marks, page)
}
