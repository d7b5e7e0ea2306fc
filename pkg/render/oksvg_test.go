package render

import (
	"image"
	"testing"
)

const testDoc = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50">
  <rect x="0" y="0" width="100" height="50" fill="red"/>
</svg>`

func TestOksvgBackend_Load(t *testing.T) {
	b := NewOksvgBackend()

	doc, err := b.Load(testDoc)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	w, h := doc.IntrinsicSize()
	if w != 100 || h != 50 {
		t.Errorf("Expected intrinsic size 100x50, got %fx%f", w, h)
	}
}

func TestOksvgBackend_LoadErrors(t *testing.T) {
	b := NewOksvgBackend()

	if _, err := b.Load(""); err == nil {
		t.Errorf("Expected error for empty markup")
	}
	if _, err := b.Load("   \n  "); err == nil {
		t.Errorf("Expected error for blank markup")
	}
	if _, err := b.Load("<svg><unclosed"); err == nil {
		t.Errorf("Expected error for truncated markup")
	}
}

func TestOksvgDocument_Render(t *testing.T) {
	b := NewOksvgBackend()
	doc, err := b.Load(testDoc)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, 100, 50))
	if err := doc.Render(dst, 1.0); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// The document is a full-coverage opaque rect; the buffer center must
	// have been written.
	c := dst.RGBAAt(50, 25)
	if c.A == 0 {
		t.Errorf("Expected opaque pixel at center, got %+v", c)
	}
	if c.R <= c.G || c.R <= c.B {
		t.Errorf("Expected red-dominant pixel at center, got %+v", c)
	}
}

func TestOksvgDocument_RenderErrors(t *testing.T) {
	b := NewOksvgBackend()
	doc, err := b.Load(testDoc)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := doc.Render(nil, 1.0); err == nil {
		t.Errorf("Expected error for nil destination")
	}
	if err := doc.Render(image.NewRGBA(image.Rect(0, 0, 0, 0)), 1.0); err == nil {
		t.Errorf("Expected error for empty destination")
	}
}
