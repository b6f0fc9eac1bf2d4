// Package skyengine renders the animated night sky: a static milky way, a field of twinkling
// stars and short-lived shooting stars, composited as three layers by an ebiten game.
package skyengine

import (
	"bytes"
	"context"
	"log"
	"math/rand"
	"runtime/debug"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

type Engine struct {
	Config Config

	// FixedViewport pins the scene size (headless and streaming). When false the window size
	// reported by Layout drives debounced resizes until a viewport arrives on ViewportEvents;
	// from then on the bridge owns the size.
	FixedViewport bool

	// DPR overrides the monitor scale factor for window driven resizes when non-zero.
	DPR float64

	// TickCanvas supplies the canvas each accepted frame draws on. Nil uses the GPU dynamic
	// layer.
	TickCanvas func() FrameCanvas

	ShowStats       bool
	FrameCaptureDir string
	CaptureEvery    uint64
	OnFrame         func(screen *ebiten.Image)

	scene    *Scene
	surfaces *Surfaces
	driver   *Driver
	now      func() time.Time

	pending   *Viewport
	pendingAt time.Time
	events    chan Viewport
	bridged   bool

	captureDue bool

	fontSource *text.GoTextFaceSource
	monoSource *text.GoTextFaceSource

	nowPlayingMu  sync.Mutex
	currentSong   string
	currentArtist string
}

func NewEngine(cfg Config, seed int64) *Engine {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Printf("[engine] Failed to load regular font: %v", err)
	}
	m, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		log.Printf("[engine] Failed to load mono font: %v", err)
	}

	return &Engine{
		Config:     cfg,
		scene:      NewScene(cfg, rand.New(rand.NewSource(seed))),
		surfaces:   NewSurfaces(cfg.BackgroundTop, cfg.BackgroundBottom),
		driver:     NewDriver(cfg.TargetFPS),
		now:        time.Now,
		events:     make(chan Viewport, 16),
		fontSource: s,
		monoSource: m,
	}
}

func (e *Engine) Scene() *Scene { return e.scene }

func (e *Engine) Surfaces() *Surfaces { return e.surfaces }

func (e *Engine) Driver() *Driver { return e.driver }

// Start sizes the surfaces, builds the pools and star field and paints the milky way. The
// frame loop itself begins with Run.
func (e *Engine) Start(v Viewport) {
	e.scene.Init(v)
	e.surfaces.Resize(v)
	if e.surfaces.Ready() {
		e.scene.PaintMilkyWay(e.surfaces.MilkyWayCanvas())
	} else {
		log.Printf("[engine] Viewport %.0fx%.0f is empty, deferring draw until the next resize", v.Width, v.Height)
	}
	log.Printf("[engine] Started with %d stars at %.0fx%.0f @%.2fx", len(e.scene.Stars), v.Width, v.Height, v.Scale())
}

// Resize applies a new viewport immediately: surfaces are resized, stars re-fitted and the
// milky way regenerated.
func (e *Engine) Resize(v Viewport) {
	e.surfaces.Resize(v)
	if !e.surfaces.Ready() {
		log.Printf("[engine] Viewport %.0fx%.0f is empty, deferring draw", v.Width, v.Height)
		return
	}
	e.scene.Relayout(v)
	e.scene.PaintMilkyWay(e.surfaces.MilkyWayCanvas())
	log.Printf("[engine] Resized to %.0fx%.0f @%.2fx", v.Width, v.Height, v.Scale())
}

// RequestResize records a viewport change. It is applied once no further change has arrived
// for Config.ResizeDebounce.
func (e *Engine) RequestResize(v Viewport, now time.Time) {
	if e.pending != nil && *e.pending == v {
		return
	}
	if e.pending == nil && v == e.surfaces.Viewport() && e.surfaces.Resizes() > 0 {
		return
	}
	e.pending = &v
	e.pendingAt = now
}

// ViewportEvents is where external sources (the websocket bridge) post viewport changes.
func (e *Engine) ViewportEvents() chan<- Viewport { return e.events }

func (e *Engine) applyPendingResize(now time.Time) {
drain:
	for {
		select {
		case v := <-e.events:
			e.bridged = true
			e.RequestResize(v, now)
		default:
			break drain
		}
	}
	if e.pending == nil || now.Sub(e.pendingAt) < e.Config.ResizeDebounce {
		return
	}
	v := *e.pending
	e.pending = nil
	e.Resize(v)
}

func (e *Engine) Update() error {
	now := e.now()
	e.applyPendingResize(now)
	if !e.surfaces.Ready() {
		return nil
	}
	if !e.driver.Accept(now) {
		return nil
	}
	e.scene.Tick(e.tickCanvas())
	if e.FrameCaptureDir != "" && e.CaptureEvery > 0 && e.driver.Accepted%e.CaptureEvery == 0 {
		e.captureDue = true
	}
	return nil
}

func (e *Engine) tickCanvas() FrameCanvas {
	if e.TickCanvas != nil {
		return e.TickCanvas()
	}
	return e.surfaces.DynamicCanvas()
}

func (e *Engine) Draw(screen *ebiten.Image) {
	e.surfaces.Composite(screen)
	if e.ShowStats {
		e.drawStats(screen)
	}
	if e.captureDue {
		e.captureDue = false
		e.captureFrame(screen, "frame", e.now())
	}
	if e.OnFrame != nil {
		e.OnFrame(screen)
	}
}

func (e *Engine) Layout(outsideWidth, outsideHeight int) (int, int) {
	if e.followsWindow() {
		dpr := e.DPR
		if dpr <= 0 {
			dpr = ebiten.Monitor().DeviceScaleFactor()
		}
		e.RequestResize(Viewport{Width: float64(outsideWidth), Height: float64(outsideHeight), DPR: dpr}, e.now())
	}
	w, h := e.surfaces.BackingSize()
	return max(w, 1), max(h, 1)
}

// followsWindow reports whether Layout sizes should resize the scene.
func (e *Engine) followsWindow() bool {
	return !e.FixedViewport && !e.bridged
}

// Run hands the engine to ebiten. It blocks until the window closes.
func (e *Engine) Run() error {
	return ebiten.RunGame(e)
}

// SetNowPlaying is safe to call from any goroutine.
func (e *Engine) SetNowPlaying(song, artist string) {
	e.nowPlayingMu.Lock()
	defer e.nowPlayingMu.Unlock()
	e.currentSong, e.currentArtist = song, artist
}

func (e *Engine) nowPlaying() (string, string) {
	e.nowPlayingMu.Lock()
	defer e.nowPlayingMu.Unlock()
	return e.currentSong, e.currentArtist
}

// StartMemoryWatcher returns freed heap to the OS periodically. Long running streams grow
// otherwise.
func (e *Engine) StartMemoryWatcher(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				debug.FreeOSMemory()
			}
		}
	}()
}
