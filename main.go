package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"

	"ArtistBoard/internal/board"
	"ArtistBoard/internal/config"
	"ArtistBoard/internal/render"
	"ArtistBoard/internal/storage"
	"ArtistBoard/internal/storage/file"
	"ArtistBoard/internal/storage/memory"
	"ArtistBoard/internal/storage/sqlite"
	"ArtistBoard/internal/ui"
)

const usage = `usage:
  artistboard                 open the drawing window
  artistboard render <out>    draw the saved tape into <out> (.png, .jpg or .pdf)`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	gg.SetLogger(logger)

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage, err)
	}
	defer store.Close()

	raster, err := render.NewRaster(cfg.Width, cfg.Height, cfg.BackgroundColor())
	if err != nil {
		log.Fatalf("Failed to create surface: %v", err)
	}
	defer raster.Close()

	renderer, err := render.NewRenderer(raster, cfg.Style(), logger)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	b, err := board.New(renderer, store, board.Options{
		Key:         cfg.StorageKey,
		Background:  cfg.BackgroundColor(),
		Pacing:      cfg.PacingMode(),
		MinInterval: cfg.MinInterval,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("Failed to create board: %v", err)
	}

	args := os.Args[1:]
	switch {
	case len(args) == 0:
		log.Printf("Starting board %dx%d with %s storage at %q", cfg.Width, cfg.Height, cfg.Storage, cfg.StoragePath)
		ui.RunApp(b, logger)
	case args[0] == "render" && len(args) == 2:
		if err := renderSaved(context.Background(), b, args[1]); err != nil {
			log.Fatalf("Render failed: %v", err)
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func openStore(cfg config.Config) (storage.Store, error) {
	switch cfg.Storage {
	case config.StorageFile:
		return file.Open(cfg.StoragePath)
	case config.StorageMemory:
		return memory.New(), nil
	default:
		return sqlite.Open(cfg.StoragePath)
	}
}

// renderSaved draws the stored tape without pacing and writes it to path.
func renderSaved(ctx context.Context, b *board.Board, path string) error {
	l, err := b.RenderSaved(ctx)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		err = b.ExportPDF(out)
	case ".jpg", ".jpeg":
		err = b.ExportImage(out, render.FormatJPEG)
	default:
		err = b.ExportImage(out, render.FormatPNG)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	log.Printf("Rendered %d entries (%d strokes) to %s", len(l), l.Strokes(), path)
	return nil
}
