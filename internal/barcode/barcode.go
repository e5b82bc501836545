// internal/barcode/barcode.go

// Package barcode renders Code 128 barcodes for accession numbers.
// One barcode per call; laying barcodes out on a printable sheet is
// the caller's concern.
package barcode

import (
	"fmt"
	"image/png"
	"io"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

// Default pixel dimensions for a single label.
const (
	DefaultWidth  = 300
	DefaultHeight = 80
)

// PNG encodes accessionNumber as a Code 128 barcode scaled to
// width x height pixels and writes it to w.
func PNG(accessionNumber string, width, height int, w io.Writer) error {
	if accessionNumber == "" {
		return fmt.Errorf("accession number must not be empty")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	code, err := code128.Encode(accessionNumber)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", accessionNumber, err)
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return fmt.Errorf("failed to scale barcode: %w", err)
	}
	return png.Encode(w, scaled)
}
