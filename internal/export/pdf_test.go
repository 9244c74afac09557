package export

import (
	"bytes"
	"errors"
	"image/color"
	"strings"
	"testing"

	"ArtistBoard/internal/render"
	"ArtistBoard/internal/state"
)

var stroke = state.Log{
	state.SampleAt(10, 0, 100),
	state.SampleAt(10, 10, 250),
	state.SampleAt(20, 10, 300),
	state.Boundary,
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	page := Page{Width: 200, Height: 100, Background: color.White}
	if err := PDF(&buf, stroke, page, render.Style{Weight: 5, Color: color.Black}); err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-") {
		t.Errorf("output does not start with a PDF header: %q", out[:min(len(out), 16)])
	}
	// PDF space grows upwards, so y is flipped against the page height.
	if !strings.Contains(out, "10.00 100.00 m 10.00 90.00 l S") {
		t.Error("first segment missing from content stream")
	}
}

func TestPDF_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(&buf, nil, Page{Width: 10, Height: 10, Compress: true}, render.DefaultStyle); err != nil {
		t.Fatalf("PDF(empty) error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("empty log did not produce a PDF")
	}
}

func TestPDF_Translucent(t *testing.T) {
	var buf bytes.Buffer
	st := render.Style{Weight: 2, Color: color.NRGBA{R: 255, A: 128}}
	if err := PDF(&buf, stroke, Page{Width: 50, Height: 50}, st); err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
}

func TestDraw_KeepsStylePerMark(t *testing.T) {
	thin := render.Style{Weight: 2, Color: color.Black}
	thick := render.Style{Weight: 4, Color: color.NRGBA{R: 255, A: 255}}
	marks := append(Marks(stroke, thin), Marks(state.Log{state.SampleAt(30, 30, 400), state.SampleAt(40, 30, 500), state.Boundary}, thick)...)

	var buf bytes.Buffer
	if err := Draw(&buf, marks, Page{Width: 100, Height: 100}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	out := buf.String()
	for _, op := range []string{"2.00 w", "4.00 w", "0.000 0.000 0.000 RG", "1.000 0.000 0.000 RG"} {
		if !strings.Contains(out, op) {
			t.Errorf("content stream is missing %q", op)
		}
	}
}

func TestPDF_Invalid(t *testing.T) {
	if err := PDF(&bytes.Buffer{}, stroke, Page{Width: 0, Height: 10}, render.DefaultStyle); err == nil {
		t.Error("PDF(zero width) error = nil")
	}
	err := PDF(&bytes.Buffer{}, stroke, Page{Width: 10, Height: 10}, render.Style{Weight: -1, Color: color.Black})
	if !errors.Is(err, render.ErrInvalidStyle) {
		t.Errorf("PDF(bad style) = %v, want ErrInvalidStyle", err)
	}
}
