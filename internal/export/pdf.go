// Package export writes a recorded log as a vector PDF page.
package export

import (
	"fmt"
	"image/color"
	"io"

	"github.com/jung-kurt/gofpdf"

	"ArtistBoard/internal/render"
	"ArtistBoard/internal/state"
)

// Page describes the PDF page. One PDF point per surface pixel.
type Page struct {
	Width, Height int
	Background    color.Color // nil leaves the page white
	Compress      bool
}

// Mark is one drawn entry with the style it was drawn in.
type Mark struct {
	Entry state.Entry
	Style render.Style
}

// Marks pairs every entry of l with st.
func Marks(l state.Log, st render.Style) []Mark {
	out := make([]Mark, len(l))
	for i, e := range l {
		out[i] = Mark{Entry: e, Style: st}
	}
	return out
}

// PDF draws l in a single style. See Draw.
func PDF(w io.Writer, l state.Log, page Page, st render.Style) error {
	return Draw(w, Marks(l, st), page)
}

// Draw writes marks onto a single page the same way the Renderer draws them
// on screen: each stroke's segments joined by round joints of the line
// weight, every mark in its own style.
func Draw(w io.Writer, marks []Mark, page Page) error {
	if page.Width <= 0 || page.Height <= 0 {
		return fmt.Errorf("invalid page size %dx%d", page.Width, page.Height)
	}
	for i, m := range marks {
		if m.Entry.IsBoundary() {
			continue
		}
		if err := m.Style.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}

	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(page.Width), Ht: float64(page.Height)},
	})
	p.SetCompression(page.Compress)
	p.SetCreator("ArtistBoard", true)
	p.SetAutoPageBreak(false, 0)
	p.SetMargins(0, 0, 0)
	p.AddPage()

	if page.Background != nil {
		r, g, b, _ := rgb(page.Background)
		p.SetFillColor(r, g, b)
		p.Rect(0, 0, float64(page.Width), float64(page.Height), "F")
	}
	p.SetLineCapStyle("butt")

	var (
		last    state.Point
		hasLast bool
		current render.Style
	)
	for _, m := range marks {
		if m.Entry.IsBoundary() {
			hasLast = false
			continue
		}
		st := m.Style
		if st != current {
			setStyle(p, st)
			current = st
		}
		pt := m.Entry.Sample.Point
		if hasLast {
			p.Line(last.X, last.Y, pt.X, pt.Y)
		}
		if st.Weight > 1 {
			p.Circle(pt.X, pt.Y, st.Weight/2, "F")
		}
		last, hasLast = pt, true
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setStyle(p *gofpdf.Fpdf, st render.Style) {
	r, g, b, a := rgb(st.Color)
	p.SetDrawColor(r, g, b)
	p.SetFillColor(r, g, b)
	p.SetAlpha(a, "Normal")
	p.SetLineWidth(st.Weight)
}

func rgb(c color.Color) (r, g, b int, alpha float64) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return int(n.R), int(n.G), int(n.B), float64(n.A) / 255
}
