package export

import (
	"fmt"
	"io"
)

// Encoder is the raster side of a surface. *surface.Surface satisfies it.
type Encoder interface {
	EncodePNG(w io.Writer) error
}

// PNG writes the surface raster, eraser cuts included.
func PNG(w io.Writer, src Encoder) error {
	if err := src.EncodePNG(w); err != nil {
		return fmt.Errorf("export: write png: %w", err)
	}
	return nil
}
