package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/gogpu/gg"

	"ArtistBoard/internal/state"
)

// Raster is a software Surface backed by a gg context. Clear fills it with
// the background colour so exported images match what the user saw.
type Raster struct {
	dc         *gg.Context
	background gg.RGBA
}

var (
	_ Surface = (*Raster)(nil)
	_ Imager  = (*Raster)(nil)
	_ Resizer = (*Raster)(nil)
)

// NewRaster allocates a width×height surface cleared to background.
func NewRaster(width, height int, background color.Color) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if background == nil {
		background = color.Transparent
	}
	r := &Raster{
		dc:         gg.NewContext(width, height),
		background: gg.FromColor(background),
	}
	r.dc.SetLineCap(gg.LineCapButt)
	r.dc.ClearWithColor(r.background)
	return r, nil
}

func (r *Raster) Line(from, to state.Point, st Style) error {
	r.dc.SetColor(st.Color)
	r.dc.SetLineWidth(st.Weight)
	r.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	return r.dc.Stroke()
}

func (r *Raster) Disk(center state.Point, diameter float64, c color.Color) error {
	if diameter <= 0 {
		return nil
	}
	r.dc.SetColor(c)
	r.dc.DrawCircle(center.X, center.Y, diameter/2)
	return r.dc.Fill()
}

func (r *Raster) Clear() error {
	r.dc.ClearPath()
	r.dc.ClearWithColor(r.background)
	return nil
}

func (r *Raster) Size() (width, height int) {
	return r.dc.Width(), r.dc.Height()
}

func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

// Resize changes the surface size. Pixels are cleared to the background.
func (r *Raster) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if err := r.dc.Resize(width, height); err != nil {
		return err
	}
	return r.Clear()
}

// Format names an image encoding supported by Encode.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ErrUnsupportedFormat is returned by Encode for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Encode writes the surface in the given format.
func (r *Raster) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatPNG:
		return r.dc.EncodePNG(w)
	case FormatJPEG, "jpg":
		return r.dc.EncodeJPEG(w, 92)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Close releases the gg context.
func (r *Raster) Close() error {
	return r.dc.Close()
}
