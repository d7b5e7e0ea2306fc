// cmd/showcase/main.go
// Grid browser: loads every SVG scene under a directory, composes them
// into one animated grid and plays the composite.
//
// Usage:
//   go run ./cmd/showcase --dir=scenes [--grid-config=grid.yaml]

package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
	"golang.org/x/sync/errgroup"

	"github.com/decker502/svgplay/pkg/compositor"
	"github.com/decker502/svgplay/pkg/config"
	"github.com/decker502/svgplay/pkg/player"
	"github.com/decker502/svgplay/pkg/storage"
	"github.com/decker502/svgplay/pkg/timeline"
)

var (
	dirFlag      = flag.String("dir", "", "scene directory (default: last browsed)")
	gridConfig   = flag.String("grid-config", "grid.yaml", "grid config file")
	windowWidth  = flag.Int("width", 1280, "window width")
	windowHeight = flag.Int("height", 800, "window height")
	verbose      = flag.Bool("verbose", false, "verbose logging")
)

// loadCells reads every .svg under dir concurrently and prepares one grid
// cell per scene, in name order.
func loadCells(dir string) ([]compositor.Cell, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scene directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".svg") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .svg scenes in %s", dir)
	}

	cells := make([]compositor.Cell, len(paths))
	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		eg.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			markup := string(data)
			w, h, ok := compositor.ExtractViewBox(markup)
			if !ok {
				w, h = 100, 100
			}
			cells[i] = compositor.Cell{
				Markup: markup,
				Label:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
				Width:  w,
				Height: h,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[Showcase] Loaded %d scenes from %s", len(cells), dir)
	return cells, nil
}

func composeGrid(cells []compositor.Cell, gc *config.GridConfig, w, h int) compositor.Result {
	cfg := compositor.Config{
		Columns:             gc.Columns,
		ContainerWidth:      float64(w),
		ContainerHeight:     float64(h),
		CellMargin:          *gc.CellMargin,
		LabelFontSize:       *gc.LabelFontSize,
		BGColor:             gc.BGColor,
		PreserveAspectRatio: true,
	}
	if *gc.ShowLabels {
		cfg.LabelHeight = *gc.LabelHeight
	}
	return compositor.Compose(cells, cfg)
}

// Game plays the composed grid as one scene.
type Game struct {
	player *player.Player
	buf    []byte
	frame  *ebiten.Image
	dirty  bool
	w, h   int
	count  int
}

func NewGame(composite compositor.Result, w, h int) (*Game, error) {
	g := &Game{
		player: player.New(),
		buf:    make([]byte, 4*w*h),
		frame:  ebiten.NewImage(w, h),
		w:      w,
		h:      h,
		count:  composite.CellCount,
	}
	if !g.player.LoadFromBytes([]byte(composite.Markup)) {
		return nil, fmt.Errorf("cannot load composite: %s", g.player.LastError())
	}
	g.player.Play()
	g.dirty = true
	return g, nil
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.player.Toggle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		g.player.StepForward()
		g.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		g.player.StepBackward()
		g.dirty = true
	}

	if g.player.Tick(1.0/float64(ebiten.TPS())) || g.dirty {
		g.redraw()
	}
	return nil
}

func (g *Game) redraw() {
	iw, ih := g.player.IntrinsicSize()
	scale := 1.0
	if iw > 0 && ih > 0 {
		scale = math.Min(float64(g.w)/iw, float64(g.h)/ih)
	}

	for i := range g.buf {
		g.buf[i] = 0
	}
	if g.player.RenderInto(g.buf, g.w, g.h, scale) {
		g.frame.WritePixels(g.buf)
		g.dirty = false
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 20, 255})
	screen.DrawImage(g.frame, &ebiten.DrawImageOptions{})

	hud := fmt.Sprintf("%d scenes | %s / %s | %v",
		g.count,
		timeline.FormatTime(g.player.CurrentTime()),
		timeline.FormatTime(g.player.Duration()),
		g.player.State())
	ebitenutil.DebugPrintAt(screen, hud, 10, 10)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w, g.h
}

func main() {
	flag.Parse()

	if *verbose {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	}

	gdataManager, err := gdata.Open(gdata.Config{AppName: "svgplay"})
	if err != nil {
		log.Printf("[Showcase] Warning: no app-data store: %v", err)
		gdataManager = nil
	}
	settings, err := storage.NewSettingsManager(gdataManager)
	if err != nil {
		log.Fatalf("settings: %v", err)
	}

	dir := *dirFlag
	if dir == "" {
		dir = settings.Get().LastDir
	}
	if dir == "" {
		fmt.Fprintln(os.Stderr, "usage: showcase --dir=scenes")
		os.Exit(2)
	}

	gc, err := config.LoadGridConfig(*gridConfig)
	if err != nil {
		log.Fatalf("grid config: %v", err)
	}

	cells, err := loadCells(dir)
	if err != nil {
		log.Fatalf("load scenes: %v", err)
	}

	composite := composeGrid(cells, gc, *windowWidth, *windowHeight)

	game, err := NewGame(composite, *windowWidth, *windowHeight)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	settings.SetLastDir(dir)
	if err := settings.Save(); err != nil {
		log.Printf("[Showcase] Warning: cannot save settings: %v", err)
	}

	ebiten.SetWindowSize(*windowWidth, *windowHeight)
	ebiten.SetWindowTitle("svgplay showcase - " + dir)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		log.Fatal(err)
	}
}
