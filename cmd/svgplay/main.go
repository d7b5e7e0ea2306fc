// cmd/svgplay/main.go
// Desktop SVG animation player.
//
// Usage:
//   go run ./cmd/svgplay [--config=player.yaml] scene.svg

package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/svgplay/pkg/config"
	"github.com/decker502/svgplay/pkg/embedded"
	"github.com/decker502/svgplay/pkg/player"
	"github.com/decker502/svgplay/pkg/storage"
	"github.com/decker502/svgplay/pkg/timeline"
)

var (
	configPath = flag.String("config", "player.yaml", "player config file")
	verbose    = flag.Bool("verbose", false, "verbose logging")
)

var repeatCycle = []timeline.RepeatMode{
	timeline.RepeatLoop,
	timeline.RepeatReverse,
	timeline.RepeatNone,
}

// Game is the ebiten shell around the player core.
type Game struct {
	cfg      *config.PlayerConfig
	settings *storage.SettingsManager
	player   *player.Player

	scenePath string
	buf       []byte
	frame     *ebiten.Image
	dirty     bool

	showStats  bool
	screenshot int
}

func NewGame(cfg *config.PlayerConfig, settings *storage.SettingsManager, scenePath string) (*Game, error) {
	g := &Game{
		cfg:       cfg,
		settings:  settings,
		player:    player.New(),
		scenePath: scenePath,
		buf:       make([]byte, 4*cfg.WindowWidth*cfg.WindowHeight),
		frame:     ebiten.NewImage(cfg.WindowWidth, cfg.WindowHeight),
		showStats: settings.Get().ShowStats,
	}

	if !g.loadScene() {
		return nil, fmt.Errorf("cannot load scene: %s", g.player.LastError())
	}

	g.player.SetRepeatMode(parseRepeatMode(settings.Get().RepeatMode))
	g.player.SetRate(settings.Get().Rate)
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
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		g.player.SeekToProgress(0)
		g.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnd) {
		g.player.SeekToProgress(1)
		g.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.cycleRepeatMode()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.adjustRate(0.25)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.adjustRate(-0.25)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.showStats = !g.showStats
		g.settings.SetShowStats(g.showStats)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		if g.loadScene() {
			g.player.Play()
			g.dirty = true
			log.Printf("[Shell] Reloaded scene")
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.saveScreenshot()
	}

	if g.player.Tick(1.0/float64(ebiten.TPS())) || g.dirty {
		g.redraw()
	}

	return nil
}

// loadScene loads the requested file, or the embedded demo when the shell
// was started without one.
func (g *Game) loadScene() bool {
	if g.scenePath != "" {
		return g.player.LoadFromPath(g.scenePath)
	}
	data, err := embedded.Scene(embedded.DefaultScene)
	if err != nil {
		log.Printf("[Shell] Warning: %v", err)
		return false
	}
	return g.player.LoadFromBytes(data)
}

func (g *Game) cycleRepeatMode() {
	current := g.player.RepeatMode()
	next := repeatCycle[0]
	for i, m := range repeatCycle {
		if m == current {
			next = repeatCycle[(i+1)%len(repeatCycle)]
			break
		}
	}
	g.player.SetRepeatMode(next)
	g.settings.SetRepeatMode(formatRepeatMode(next))
	if *verbose {
		log.Printf("[Shell] Repeat mode: %v", next)
	}
}

func (g *Game) adjustRate(delta float64) {
	rate := g.player.Rate() + delta
	if rate < 0.25 {
		rate = 0.25
	}
	g.player.SetRate(rate)
	g.settings.SetRate(rate)
	if *verbose {
		log.Printf("[Shell] Rate: %.2fx", rate)
	}
}

// redraw rasterizes the current frame into the reusable buffer and uploads
// it to the GPU image.
func (g *Game) redraw() {
	w, h := g.cfg.WindowWidth, g.cfg.WindowHeight
	iw, ih := g.player.IntrinsicSize()
	scale := 1.0
	if iw > 0 && ih > 0 {
		scale = math.Min(float64(w)/iw, float64(h)/ih) * (*g.cfg.Scale)
	}

	for i := range g.buf {
		g.buf[i] = 0
	}
	if g.player.RenderInto(g.buf, w, h, scale) {
		g.frame.WritePixels(g.buf)
		g.dirty = false
	}
}

func (g *Game) saveScreenshot() {
	name := fmt.Sprintf("svgplay_%03d.png", g.screenshot)
	g.screenshot++

	f, err := os.Create(name)
	if err != nil {
		log.Printf("[Shell] Warning: cannot create screenshot: %v", err)
		return
	}
	defer f.Close()

	w, h := g.cfg.WindowWidth, g.cfg.WindowHeight
	img := imageFromBuffer(g.buf, w, h)
	if err := png.Encode(f, img); err != nil {
		log.Printf("[Shell] Warning: cannot encode screenshot: %v", err)
		return
	}
	log.Printf("[Shell] Saved %s", name)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 30, 255})
	screen.DrawImage(g.frame, &ebiten.DrawImageOptions{})

	hud := fmt.Sprintf("%s / %s | frame %d/%d | %v | %v | %.2fx",
		timeline.FormatTime(g.player.CurrentTime()),
		timeline.FormatTime(g.player.Duration()),
		g.player.CurrentFrame()+1, g.player.TotalFrames(),
		g.player.State(), g.player.RepeatMode(), g.player.Rate())
	ebitenutil.DebugPrintAt(screen, hud, 10, 10)

	if g.showStats {
		s := g.player.Stats()
		stats := fmt.Sprintf("render %.2fms | update %.2fms | %.1f fps | peak %.1f MB",
			s.RenderTimeMs, s.UpdateTimeMs, s.FPS, float64(s.PeakMemoryBytes)/(1024*1024))
		ebitenutil.DebugPrintAt(screen, stats, 10, 26)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.WindowWidth, g.cfg.WindowHeight
}

// imageFromBuffer wraps the raw RGBA pixels for PNG encoding without a
// copy.
func imageFromBuffer(buf []byte, w, h int) *image.RGBA {
	return &image.RGBA{Pix: buf, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
}

func parseRepeatMode(s string) timeline.RepeatMode {
	switch s {
	case "none":
		return timeline.RepeatNone
	case "reverse":
		return timeline.RepeatReverse
	default:
		return timeline.RepeatLoop
	}
}

func formatRepeatMode(m timeline.RepeatMode) string {
	switch m {
	case timeline.RepeatNone:
		return "none"
	case timeline.RepeatReverse:
		return "reverse"
	default:
		return "loop"
	}
}

func main() {
	flag.Parse()

	if *verbose {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	}

	scenePath := flag.Arg(0)
	if scenePath == "" {
		log.Printf("[Shell] No scene given, playing the embedded demo")
	}

	cfg, err := config.LoadPlayerConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gdataManager, err := gdata.Open(gdata.Config{AppName: "svgplay"})
	if err != nil {
		log.Printf("[Shell] Warning: no app-data store: %v", err)
		gdataManager = nil
	}
	settings, err := storage.NewSettingsManager(gdataManager)
	if err != nil {
		log.Fatalf("settings: %v", err)
	}

	game, err := NewGame(cfg, settings, scenePath)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	title := "svgplay"
	if scenePath != "" {
		title += " - " + scenePath
	}
	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		log.Fatal(err)
	}

	if err := settings.Save(); err != nil {
		log.Printf("[Shell] Warning: cannot save settings: %v", err)
	}
}
