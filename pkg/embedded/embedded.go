// Package embedded ships a handful of demo scenes inside the binary so the
// player and the mobile binding always have something to show without any
// files on disk.
package embedded

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed scenes
var scenesFS embed.FS

// DefaultScene is the scene shown when nothing else was requested.
const DefaultScene = "traffic_light.svg"

// Scene returns the markup of an embedded demo scene by file name.
func Scene(name string) ([]byte, error) {
	data, err := fs.ReadFile(scenesFS, "scenes/"+name)
	if err != nil {
		return nil, fmt.Errorf("embedded scene %s: %w", name, err)
	}
	return data, nil
}

// SceneNames lists the embedded demo scenes in name order.
func SceneNames() []string {
	entries, err := fs.ReadDir(scenesFS, "scenes")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".svg") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}
