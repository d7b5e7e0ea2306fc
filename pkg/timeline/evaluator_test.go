package timeline

import (
	"testing"

	"github.com/decker502/svgplay/internal/smil"
)

// TestEvaluate_DiscreteKeyTimes tests step-function lookup with explicit
// keyTimes: values red;blue;green, keyTimes 0;0.5;1, dur 3s.
func TestEvaluate_DiscreteKeyTimes(t *testing.T) {
	model := &smil.Model{
		Animations: []smil.Animation{{
			TargetID:      "r",
			AttributeName: "fill",
			Values:        []string{"red", "blue", "green"},
			KeyTimes:      []float64{0, 0.5, 1},
			Duration:      3.0,
			Repeat:        smil.RepeatPolicy{Indefinite: true},
		}},
		Duration: 3.0,
	}

	tests := []struct {
		time float64
		want string
	}{
		{0, "red"},
		{1.4, "red"},
		{1.6, "blue"},
		{2.9, "blue"},
		{3.1, "red"}, // wrapped into the next cycle
		{4.6, "blue"},
		{-0.5, "blue"}, // negative time wraps backwards: 2.5s into the cycle
		{300.1, "red"},
	}

	for _, tt := range tests {
		muts := Evaluate(model, tt.time)
		if len(muts) != 1 {
			t.Fatalf("t=%f: expected 1 mutation, got %d", tt.time, len(muts))
		}
		m := muts[0]
		if m.TargetID != "r" || m.Attribute != "fill" {
			t.Errorf("t=%f: unexpected mutation %+v", tt.time, m)
		}
		if m.Value != tt.want {
			t.Errorf("t=%f: expected %s, got %s", tt.time, tt.want, m.Value)
		}
	}
}

// TestEvaluate_UniformSpacing tests equal time slices when keyTimes are
// absent: each of n values owns duration/n seconds.
func TestEvaluate_UniformSpacing(t *testing.T) {
	anim := smil.Animation{
		TargetID:      "x",
		AttributeName: "href",
		Values:        []string{"#f0", "#f1", "#f2", "#f3"},
		Duration:      2.0,
	}

	tests := []struct {
		time float64
		want int
	}{
		{0, 0},
		{0.49, 0},
		{0.5, 1},
		{1.49, 2},
		{1.99, 3},
		{2.0, 3}, // bounded directive holds its last keyframe at the end
		{2.6, 3},
		{-0.5, 0},
	}

	for _, tt := range tests {
		if got := FrameIndexAt(&anim, tt.time); got != tt.want {
			t.Errorf("FrameIndexAt(%f) = %d, want %d", tt.time, got, tt.want)
		}
	}
}

// TestEvaluate_EndpointHold tests the boundary split between repeat kinds:
// bounded directives hold their first and last keyframes outside the cycle,
// indefinite ones keep wrapping.
func TestEvaluate_EndpointHold(t *testing.T) {
	bounded := smil.Animation{
		TargetID:      "x",
		AttributeName: "fill",
		Values:        []string{"red", "blue"},
		Duration:      2.0,
		Repeat:        smil.RepeatPolicy{Count: 2},
	}

	// Inside the second cycle the lookup still wraps per cycle.
	if got := FrameIndexAt(&bounded, 2.5); got != 0 {
		t.Errorf("FrameIndexAt(2.5) in second cycle = %d, want 0", got)
	}
	// At and past the effective duration the last keyframe holds.
	for _, tm := range []float64{4.0, 4.5, 100} {
		if got := FrameIndexAt(&bounded, tm); got != 1 {
			t.Errorf("FrameIndexAt(%f) = %d, want last keyframe", tm, got)
		}
	}
	if got := FrameIndexAt(&bounded, -0.3); got != 0 {
		t.Errorf("FrameIndexAt(-0.3) = %d, want first keyframe", got)
	}

	indefinite := bounded
	indefinite.Repeat = smil.RepeatPolicy{Indefinite: true}
	if got := FrameIndexAt(&indefinite, 2.0); got != 0 {
		t.Errorf("Indefinite FrameIndexAt(2.0) = %d, want wrap to 0", got)
	}
	if got := FrameIndexAt(&indefinite, -0.3); got != 1 {
		t.Errorf("Indefinite FrameIndexAt(-0.3) = %d, want backward wrap to 1", got)
	}
}

// TestEvaluate_LinearFallsBackToDiscrete tests that Linear mode is accepted
// but evaluated as a step function.
func TestEvaluate_LinearFallsBackToDiscrete(t *testing.T) {
	anim := smil.Animation{
		TargetID:      "x",
		AttributeName: "opacity",
		Values:        []string{"0", "1"},
		Duration:      1.0,
		CalcMode:      smil.Linear,
	}

	if got := ValueAt(&anim, 0.3); got != "0" {
		t.Errorf("Expected step value '0' at t=0.3, got %s", got)
	}
	if got := ValueAt(&anim, 0.7); got != "1" {
		t.Errorf("Expected step value '1' at t=0.7, got %s", got)
	}
}

// TestEvaluate_EmptyModel tests totality on empty and nil models.
func TestEvaluate_EmptyModel(t *testing.T) {
	if muts := Evaluate(nil, 1.0); muts != nil {
		t.Errorf("Expected nil mutations for nil model, got %v", muts)
	}
	if muts := Evaluate(&smil.Model{}, 1.0); muts != nil {
		t.Errorf("Expected nil mutations for empty model, got %v", muts)
	}
}

// TestEvaluate_MultipleDirectives tests that every directive contributes one
// mutation per query.
func TestEvaluate_MultipleDirectives(t *testing.T) {
	model := &smil.Model{
		Animations: []smil.Animation{
			{TargetID: "a", AttributeName: "fill", Values: []string{"red", "blue"}, Duration: 2.0},
			{TargetID: "b", AttributeName: "opacity", Values: []string{"0", "0.5", "1"}, Duration: 3.0},
		},
		Duration: 3.0,
	}

	muts := Evaluate(model, 1.1)
	if len(muts) != 2 {
		t.Fatalf("Expected 2 mutations, got %d", len(muts))
	}
	if muts[0].Value != "blue" {
		t.Errorf("Directive a at t=1.1: expected blue, got %s", muts[0].Value)
	}
	if muts[1].Value != "0.5" {
		t.Errorf("Directive b at t=1.1: expected 0.5, got %s", muts[1].Value)
	}
}

// TestApply_AttributeReplacement tests patching an existing attribute.
func TestApply_AttributeReplacement(t *testing.T) {
	markup := `<svg><rect id="r" fill="red" width="10"/></svg>`
	got := Apply(markup, []Mutation{{TargetID: "r", Attribute: "fill", Value: "blue"}})
	want := `<svg><rect id="r" fill="blue" width="10"/></svg>`
	if got != want {
		t.Errorf("Apply() = %s, want %s", got, want)
	}
}

// TestApply_AttributeInsertion tests patching an attribute the element does
// not carry yet.
func TestApply_AttributeInsertion(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "self-closing",
			markup: `<rect id="r"/>`,
			want:   `<rect id="r" opacity="0.5"/>`,
		},
		{
			name:   "open tag",
			markup: `<g id="r"><rect/></g>`,
			want:   `<g id="r" opacity="0.5"><rect/></g>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.markup, []Mutation{{TargetID: "r", Attribute: "opacity", Value: "0.5"}})
			if got != tt.want {
				t.Errorf("Apply() = %s, want %s", got, tt.want)
			}
		})
	}
}

// TestApply_RedirectPointer tests redirect-pointer resolution: retargeting a
// <use> element's href switches which fragment it displays.
func TestApply_RedirectPointer(t *testing.T) {
	markup := `<svg><g id="f1"/><g id="f2"/><use id="viewer" xlink:href="#f1"/></svg>`
	got := Apply(markup, []Mutation{{TargetID: "viewer", Attribute: "xlink:href", Value: "#f2"}})
	want := `<svg><g id="f1"/><g id="f2"/><use id="viewer" xlink:href="#f2"/></svg>`
	if got != want {
		t.Errorf("Apply() = %s, want %s", got, want)
	}
}

// TestApply_MissingTarget tests that unapplicable mutations are skipped
// without corrupting the document.
func TestApply_MissingTarget(t *testing.T) {
	markup := `<svg><rect id="r" fill="red"/></svg>`
	got := Apply(markup, []Mutation{
		{TargetID: "ghost", Attribute: "fill", Value: "blue"},
		{TargetID: "r", Attribute: "fill", Value: "green"},
	})
	want := `<svg><rect id="r" fill="green"/></svg>`
	if got != want {
		t.Errorf("Apply() = %s, want %s", got, want)
	}
}

// TestApply_IDSuffixAttributes tests that attributes merely ending in "id"
// never match as id declarations.
func TestApply_IDSuffixAttributes(t *testing.T) {
	markup := `<svg><rect data-id="r" fill="red"/><rect id="r" fill="red"/><path grid="r"/></svg>`
	got := Apply(markup, []Mutation{{TargetID: "r", Attribute: "fill", Value: "blue"}})
	want := `<svg><rect data-id="r" fill="red"/><rect id="r" fill="blue"/><path grid="r"/></svg>`
	if got != want {
		t.Errorf("Apply() = %s, want %s", got, want)
	}

	markup = `<svg><rect grid="r" fill="red"/></svg>`
	if got := Apply(markup, []Mutation{{TargetID: "r", Attribute: "fill", Value: "blue"}}); got != markup {
		t.Errorf("Expected no element to match, got %s", got)
	}
}

// TestApply_InputUntouched tests that the source string semantics are
// copy-on-write: callers re-patch from pristine markup every frame.
func TestApply_InputUntouched(t *testing.T) {
	markup := `<rect id="r" fill="red"/>`
	_ = Apply(markup, []Mutation{{TargetID: "r", Attribute: "fill", Value: "blue"}})
	if markup != `<rect id="r" fill="red"/>` {
		t.Errorf("Input string changed: %s", markup)
	}
}
