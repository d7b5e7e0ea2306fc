package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// OksvgBackend rasterizes documents with srwiley/oksvg over a rasterx
// scanner. Unsupported SVG features are skipped rather than failing the
// load, which matches how the rest of the player treats imperfect input.
type OksvgBackend struct{}

// NewOksvgBackend returns the default CPU rasterizing backend.
func NewOksvgBackend() *OksvgBackend { return &OksvgBackend{} }

// Load parses markup into a document. Empty markup is an error; malformed
// but parseable markup loads with its broken parts ignored.
func (b *OksvgBackend) Load(markup string) (Document, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, fmt.Errorf("load document: empty markup")
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(markup), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return &oksvgDocument{icon: icon}, nil
}

// oksvgDocument is a single loaded icon. Not safe for concurrent Render
// calls; the player serializes access.
type oksvgDocument struct {
	icon *oksvg.SvgIcon
}

func (d *oksvgDocument) IntrinsicSize() (float64, float64) {
	return d.icon.ViewBox.W, d.icon.ViewBox.H
}

func (d *oksvgDocument) Render(dst *image.RGBA, scale float64) error {
	if dst == nil {
		return fmt.Errorf("render: nil destination")
	}
	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("render: empty destination %dx%d", w, h)
	}
	if scale <= 0 {
		scale = 1.0
	}

	d.icon.SetTarget(0, 0, d.icon.ViewBox.W*scale, d.icon.ViewBox.H*scale)
	scanner := rasterx.NewScannerGV(w, h, dst, bounds)
	raster := rasterx.NewDasher(w, h, scanner)
	d.icon.Draw(raster, 1.0)
	return nil
}
