//go:build mobile

package mobile

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/svgplay/pkg/player"
)

const (
	viewerWidth  = 720
	viewerHeight = 1280
)

// Viewer is the ebiten.Game played inside the host app's view. It owns one
// player and a reusable pixel buffer; touch handling stays on the host
// side, which drives playback through the package-level functions.
type Viewer struct {
	player *player.Player
	buf    []byte
	frame  *ebiten.Image
	dirty  bool
}

func NewViewer() *Viewer {
	return &Viewer{
		player: player.New(),
		buf:    make([]byte, 4*viewerWidth*viewerHeight),
	}
}

func (v *Viewer) LoadPath(path string) bool {
	if !v.player.LoadFromPath(path) {
		return false
	}
	v.player.Play()
	v.dirty = true
	return true
}

func (v *Viewer) LoadBytes(data []byte) bool {
	if !v.player.LoadFromBytes(data) {
		return false
	}
	v.player.Play()
	v.dirty = true
	return true
}

func (v *Viewer) Toggle() { v.player.Toggle() }

func (v *Viewer) SeekProgress(p float64) {
	v.player.SeekToProgress(p)
	v.dirty = true
}

func (v *Viewer) LastError() string { return v.player.LastError() }

func (v *Viewer) Update() error {
	if v.player.Tick(1.0/float64(ebiten.TPS())) || v.dirty {
		v.redraw()
	}
	return nil
}

func (v *Viewer) redraw() {
	iw, ih := v.player.IntrinsicSize()
	scale := 1.0
	if iw > 0 && ih > 0 {
		scale = math.Min(float64(viewerWidth)/iw, float64(viewerHeight)/ih)
	}

	for i := range v.buf {
		v.buf[i] = 0
	}
	if v.player.RenderInto(v.buf, viewerWidth, viewerHeight, scale) {
		if v.frame == nil {
			v.frame = ebiten.NewImage(viewerWidth, viewerHeight)
		}
		v.frame.WritePixels(v.buf)
		v.dirty = false
	}
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	if v.frame != nil {
		screen.DrawImage(v.frame, &ebiten.DrawImageOptions{})
	}
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return viewerWidth, viewerHeight
}
