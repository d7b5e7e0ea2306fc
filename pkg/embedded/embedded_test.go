package embedded

import (
	"strings"
	"testing"

	"github.com/decker502/svgplay/internal/smil"
)

func TestSceneNames(t *testing.T) {
	names := SceneNames()
	if len(names) == 0 {
		t.Fatalf("Expected embedded demo scenes")
	}

	found := false
	for _, n := range names {
		if n == DefaultScene {
			found = true
		}
	}
	if !found {
		t.Errorf("Default scene %s not among %v", DefaultScene, names)
	}
}

// TestScenesParse tests that every embedded scene loads through the real
// parser and carries at least one animation directive.
func TestScenesParse(t *testing.T) {
	for _, name := range SceneNames() {
		t.Run(name, func(t *testing.T) {
			data, err := Scene(name)
			if err != nil {
				t.Fatalf("Scene failed: %v", err)
			}
			model, err := smil.Parse(string(data))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !model.HasAnimations() {
				t.Errorf("Demo scene has no animation directives")
			}
			if model.Duration <= 0 {
				t.Errorf("Demo scene has no duration")
			}
		})
	}
}

func TestScene_Missing(t *testing.T) {
	_, err := Scene("nope.svg")
	if err == nil {
		t.Fatalf("Expected error for unknown scene")
	}
	if !strings.Contains(err.Error(), "nope.svg") {
		t.Errorf("Expected error to name the scene, got %v", err)
	}
}
