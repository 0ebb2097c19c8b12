// Package export writes committed strokes out of the overlay.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/gg"
	"github.com/jung-kurt/gofpdf"

	"ScreenNote/internal/state"
)

// ErrEmptyPage is returned for a page without positive dimensions.
var ErrEmptyPage = errors.New("export: page size must be positive")

// PDF draws the committed pen strokes in entries on a single page sized to
// the logical surface, one point per logical pixel. Eraser strokes are left
// out; PDF has no way to cut earlier vector paths.
func PDF(w io.Writer, entries []state.Entry, width, height float64) error {
	if !(width > 0 && height > 0) {
		return ErrEmptyPage
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")

	for _, st := range drawable(entries) {
		c := gg.Hex(st.Color)
		r, g, b := channel(c.R), channel(c.G), channel(c.B)
		pdf.SetAlpha(c.A, "Normal")
		if len(st.Points) == 1 {
			pdf.SetFillColor(r, g, b)
			pdf.Circle(st.Points[0].X, st.Points[0].Y, st.Width/2, "F")
			continue
		}
		pdf.SetDrawColor(r, g, b)
		pdf.SetLineWidth(st.Width)
		pdf.MoveTo(st.Points[0].X, st.Points[0].Y)
		for _, p := range st.Points[1:] {
			pdf.LineTo(p.X, p.Y)
		}
		pdf.DrawPath("D")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}

func drawable(entries []state.Entry) []state.Stroke {
	var out []state.Stroke
	for _, e := range entries {
		if e.Type != state.EntryStroke || e.Stroke.Composite == state.CompositeErase || len(e.Stroke.Points) == 0 {
			continue
		}
		out = append(out, e.Stroke)
	}
	return out
}

func channel(v float64) int {
	return int(max(0, min(255, v*255+0.5)))
}
