package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	_ "github.com/silbinarywolf/preferdiscretegpu"
	"github.com/sudorandom/starfield/pkg/skyengine"
	"github.com/sudorandom/starfield/pkg/soundtrack"
)

var cli struct {
	Width        float64 `help:"Initial window width in logical pixels." default:"1280"`
	Height       float64 `help:"Initial window height in logical pixels." default:"720"`
	DPR          float64 `name:"dpr" help:"Device pixel ratio. Zero uses the monitor's scale factor." default:"0"`
	Fixed        bool    `help:"Keep the initial size instead of following the window."`
	Headless     bool    `help:"Run without a local window (Xvfb rendering active)."`
	TPS          int     `name:"tps" help:"Host callbacks per second. -1 ties them to the display refresh." default:"-1"`
	FPS          float64 `name:"fps" help:"Frame cap for the animated layer." default:"45"`
	Seed         int64   `help:"Random seed. Zero picks one from the clock." default:"0"`
	Stars        int     `help:"Number of twinkling stars." default:"300"`
	Stats        bool    `help:"Show the stats panel."`
	CaptureDir   string  `help:"Directory for periodic PNG frame captures." type:"path"`
	CaptureEvery uint64  `help:"Capture every Nth drawn frame." default:"450"`
	ViewportURL  string  `name:"viewport-url" help:"Websocket bridge that reports the host page viewport. Its sizes take over from the window once the first one arrives."`
	AudioDir     string  `help:"Directory of MP3 files to loop behind the sky." type:"path"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("starfield-viewer"),
		kong.Description("Animated night sky in a window."),
	)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg := skyengine.DefaultConfig()
	cfg.TargetFPS = cli.FPS
	cfg.StarCount = cli.Stars

	engine := skyengine.NewEngine(cfg, seed(cli.Seed))
	engine.FixedViewport = cli.Fixed || cli.Headless
	engine.ShowStats = cli.Stats
	engine.FrameCaptureDir = cli.CaptureDir
	engine.CaptureEvery = cli.CaptureEvery
	engine.DPR = cli.DPR

	dpr := cli.DPR
	if dpr <= 0 {
		dpr = ebiten.Monitor().DeviceScaleFactor()
	}
	engine.Start(skyengine.Viewport{Width: cli.Width, Height: cli.Height, DPR: dpr})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cli.ViewportURL != "" {
		go skyengine.ListenForViewport(ctx, cli.ViewportURL, engine.ViewportEvents())
	}

	if cli.AudioDir != "" {
		player := soundtrack.NewPlayer(cli.AudioDir, nil, engine.SetNowPlaying)
		player.Start()
		defer player.Shutdown()
	}

	ebiten.SetTPS(cli.TPS)
	if cli.Headless {
		log.Println("Running in HEADLESS mode (Rendering active).")
	} else {
		ebiten.SetWindowSize(int(cli.Width), int(cli.Height))
		ebiten.SetWindowTitle("Starfield")
		if !engine.FixedViewport {
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
		}
	}
	if err := engine.Run(); err != nil {
		log.Fatal(err)
	}
}

func seed(s int64) int64 {
	if s != 0 {
		return s
	}
	return time.Now().UnixNano()
}
