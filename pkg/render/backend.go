// Package render defines the boundary between the player core and whatever
// rasterizes SVG markup into pixels. The core treats a loaded document as an
// opaque handle: it can ask for the intrinsic size and draw into a caller
// buffer, nothing else. Structural changes (a retargeted href pointer) are
// handled by loading the patched markup again, not by mutating the handle.
package render

import "image"

// Backend loads serialized SVG markup into a renderable document.
type Backend interface {
	Load(markup string) (Document, error)
}

// Document is one loaded SVG ready to draw.
type Document interface {
	// IntrinsicSize returns the document's natural width and height in user
	// units, taken from the viewBox or the width/height attributes.
	IntrinsicSize() (w, h float64)

	// Render rasterizes the document into dst at the given scale. The
	// destination is not cleared first; callers own the background fill.
	Render(dst *image.RGBA, scale float64) error
}
