//go:build mobile

// Package mobile provides the ebitenmobile binding entry point.
//
// It builds the Android (.aar) and iOS (.xcframework) packages. The init
// function runs when the generated binding loads and registers a viewer
// playing the embedded default scene; host apps swap scenes through the
// exported Load functions.
//
// Build:
//
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.svgplay -o build/android/svgplay.aar -v ./mobile
//	ebitenmobile bind -target ios -tags mobile -o build/ios/SvgPlay.xcframework -v ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/decker502/svgplay/pkg/embedded"
)

var viewer *Viewer

func init() {
	markup, err := embedded.Scene(embedded.DefaultScene)
	if err != nil {
		log.Fatalf("embedded scene unavailable: %v", err)
	}

	viewer = NewViewer()
	if !viewer.LoadBytes(markup) {
		log.Fatalf("cannot load default scene: %s", viewer.LastError())
	}

	mobile.SetGame(viewer)
}

// LoadScene loads a scene from a path on the device. Returns false and
// keeps the current scene on failure.
func LoadScene(path string) bool { return viewer.LoadPath(path) }

// LoadSceneBytes loads a scene from serialized markup.
func LoadSceneBytes(data []byte) bool { return viewer.LoadBytes(data) }

// TogglePlayback switches between playing and paused.
func TogglePlayback() { viewer.Toggle() }

// SeekProgress seeks to a fraction of the scene duration.
func SeekProgress(p float64) { viewer.SeekProgress(p) }

// LastError returns the most recent failure message.
func LastError() string { return viewer.LastError() }

// Dummy is an empty exported function so ebitenmobile recognizes the
// package.
func Dummy() {}
