package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"

	"ArtistBoard/internal/board"
)

// RunApp opens the board window and blocks until it is closed.
func RunApp(b *board.Board, logger *slog.Logger) {
	myApp := app.NewWithID("io.artistboard")
	myWindow := myApp.NewWindow("Artist Board")

	// Create the interactive board widget
	bw := NewBoardWidget(b, logger)

	// Create the toolbar and pass it a reference to the board
	toolbar := NewToolbar(bw, myWindow)

	content := container.NewBorder(toolbar, bw.StatusBar(), nil, nil, bw)

	w, h := b.Size()
	myWindow.Resize(fyne.NewSize(float32(w)+40, float32(h)+120))
	myWindow.SetContent(content)
	myWindow.SetOnClosed(b.StopReplay)
	myWindow.ShowAndRun()
}
