package compositor

import (
	"strings"
	"testing"
)

const cellDoc = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
  <circle id="dot" fill="url(#grad)" begin="dot.click"/>
</svg>`

func gridConfig() Config {
	return Config{
		Columns:             2,
		ContainerWidth:      430,
		ContainerHeight:     220,
		CellMargin:          10,
		BGColor:             "#000000",
		PreserveAspectRatio: true,
	}
}

func TestCompose_TwoCells(t *testing.T) {
	cells := []Cell{
		{Markup: cellDoc, Width: 100, Height: 100},
		{Markup: cellDoc, Width: 100, Height: 100},
	}

	res := Compose(cells, gridConfig())
	if res.CellCount != 2 {
		t.Fatalf("Expected 2 cells, got %d", res.CellCount)
	}
	if res.Width != 430 || res.Height != 220 {
		t.Errorf("Expected 430x220 composite, got %fx%f", res.Width, res.Height)
	}

	for _, want := range []string{
		`viewBox="0 0 430 220"`,
		`<rect width="100%" height="100%" fill="#000000"/>`,
		`translate(10,10) scale(2)`,
		`translate(220,10) scale(2)`,
		`<svg width="100" height="100" viewBox="0 0 100 100">`,
		`id="c0_dot"`,
		`id="c1_dot"`,
		`url(#c0_grad)`,
		`url(#c1_grad)`,
	} {
		if !strings.Contains(res.Markup, want) {
			t.Errorf("Composite missing %s", want)
		}
	}
}

// TestCompose_NoCollisions tests that merging identical documents yields
// disjoint identifier sets, event triggers included.
func TestCompose_NoCollisions(t *testing.T) {
	cells := []Cell{
		{Markup: cellDoc, Width: 100, Height: 100},
		{Markup: cellDoc, Width: 100, Height: 100},
	}

	res := Compose(cells, gridConfig())
	if strings.Contains(res.Markup, `id="dot"`) {
		t.Errorf("Unprefixed identifier survived composition")
	}
	if !strings.Contains(res.Markup, `begin="c0_dot.click"`) ||
		!strings.Contains(res.Markup, `begin="c1_dot.click"`) {
		t.Errorf("Event triggers not retargeted per cell")
	}
}

func TestCompose_Labels(t *testing.T) {
	cfg := Config{
		Columns:             1,
		ContainerWidth:      220,
		ContainerHeight:     240,
		CellMargin:          10,
		LabelHeight:         20,
		LabelFontSize:       12,
		BGColor:             "#000000",
		PreserveAspectRatio: true,
	}

	res := Compose([]Cell{{Markup: cellDoc, Label: "A & B", Width: 100, Height: 100}}, cfg)
	if !strings.Contains(res.Markup, `<text x="110" y="224"`) {
		t.Errorf("Label misplaced in %s", res.Markup)
	}
	if !strings.Contains(res.Markup, `>A &amp; B</text>`) {
		t.Errorf("Label text not escaped")
	}
}

func TestCompose_EmptyGrid(t *testing.T) {
	res := Compose(nil, gridConfig())
	if res.CellCount != 0 {
		t.Errorf("Expected 0 cells, got %d", res.CellCount)
	}
	if !strings.Contains(res.Markup, `fill="#000000"`) {
		t.Errorf("Expected a background-only document, got %s", res.Markup)
	}
}

func TestCompose_SkipsEmptyCells(t *testing.T) {
	cells := []Cell{
		{Markup: ""},
		{Markup: cellDoc, Width: 100, Height: 100},
	}
	res := Compose(cells, gridConfig())
	if strings.Contains(res.Markup, `id="c0_`) {
		t.Errorf("Empty cell produced content")
	}
	if !strings.Contains(res.Markup, `id="c1_dot"`) {
		t.Errorf("Non-empty cell lost its slot index")
	}
}

func TestComposeWithBackground(t *testing.T) {
	bg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800 600"><rect id="sky" width="800" height="600" fill="navy"/></svg>`
	cells := []Cell{{Markup: cellDoc, Width: 100, Height: 100}}

	res := ComposeWithBackground(cells, gridConfig(), bg)
	if res.Width != 800 || res.Height != 600 {
		t.Errorf("Expected the background's 800x600, got %fx%f", res.Width, res.Height)
	}
	if !strings.Contains(res.Markup, `id="bg_sky"`) {
		t.Errorf("Background identifiers not prefixed")
	}
	if !strings.Contains(res.Markup, `id="c0_dot"`) {
		t.Errorf("Cell content missing over the background")
	}

	// The background scene must come before the cells in paint order.
	if strings.Index(res.Markup, `id="bg_sky"`) > strings.Index(res.Markup, `id="c0_dot"`) {
		t.Errorf("Background painted over the cells")
	}
}

// TestCompose_Recursive tests that a composed grid works as a cell of a
// larger grid: prefixes stack instead of colliding.
func TestCompose_Recursive(t *testing.T) {
	inner := Compose([]Cell{
		{Markup: cellDoc, Width: 100, Height: 100},
		{Markup: cellDoc, Width: 100, Height: 100},
	}, gridConfig())

	outer := Compose([]Cell{
		{Markup: inner.Markup, Width: inner.Width, Height: inner.Height},
	}, gridConfig())

	for _, want := range []string{`id="c0_c0_dot"`, `id="c0_c1_dot"`, `begin="c0_c1_dot.click"`} {
		if !strings.Contains(outer.Markup, want) {
			t.Errorf("Recursive composite missing %s", want)
		}
	}
}

func TestNode_Flatten(t *testing.T) {
	root := &Node{
		Markup: `<svg viewBox="0 0 200 200"><rect id="frame"/></svg>`,
		Prefix: "s_",
		Children: []*Node{
			{
				Markup:    cellDoc,
				Prefix:    "c0_",
				Transform: "translate(50,50)",
			},
		},
	}

	got := root.Flatten()
	for _, want := range []string{
		`viewBox="0 0 200 200"`,
		`id="s_frame"`,
		`id="s_c0_dot"`,
		`<g transform="translate(50,50)">`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Flattened tree missing %s in %s", want, got)
		}
	}
}

func TestExtractViewBox(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		w, h   float64
		ok     bool
	}{
		{"viewBox", `<svg viewBox="0 0 800 600">`, 800, 600, true},
		{"viewBox with offset", `<svg viewBox="10 20 300 150">`, 300, 150, true},
		{"width height fallback", `<svg width="640px" height="480px">`, 640, 480, true},
		{"stroke-width is not width", `<svg stroke-width="2" height="10">`, 0, 0, false},
		{"nothing", `<svg>`, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, ok := ExtractViewBox(tt.markup)
			if ok != tt.ok || w != tt.w || h != tt.h {
				t.Errorf("ExtractViewBox = %f, %f, %v, want %f, %f, %v", w, h, ok, tt.w, tt.h, tt.ok)
			}
		})
	}
}
