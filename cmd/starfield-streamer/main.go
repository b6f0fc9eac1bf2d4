package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sudorandom/starfield/pkg/skyengine"
	"github.com/sudorandom/starfield/pkg/soundtrack"
)

var cli struct {
	Quality     string `help:"Stream quality: 1080p or 4k." enum:"1080p,4k" default:"1080p"`
	Headless    bool   `help:"Run without a local window (more stable for 24/7 streams)."`
	Output      string `help:"Output destination (file path or RTMP URL). Overrides the YouTube stream key."`
	Software    bool   `help:"Force software encoding (libx264) even if hardware acceleration is available."`
	Device      string `help:"VA-API render device path (Linux only)." default:"/dev/dri/renderD128"`
	VaapiDriver string `name:"vaapi-driver" help:"Force a specific VA-API driver (e.g., iHD, i965, radeonsi)."`
	AudioDir    string `help:"Directory of MP3 files to mix into the stream." type:"path"`
	Seed        int64  `help:"Random seed. Zero picks one from the clock." default:"0"`
	Debug       bool   `help:"Enable verbose logging for debugging."`
}

const streamFPS = 30

// encoderSettings describes one encoded stream.
type encoderSettings struct {
	Width, Height       int
	Bitrate, MaxBitrate string
	VCodec              string
	GlobalHWArgs        []string
	OutputHWArgs        []string
	Output              string
	Debug               bool
}

func qualitySettings(quality string) encoderSettings {
	if quality == "4k" {
		return encoderSettings{Width: 3840, Height: 2160, Bitrate: "18000k", MaxBitrate: "25000k", VCodec: "libx264"}
	}
	return encoderSettings{Width: 1920, Height: 1080, Bitrate: "9000k", MaxBitrate: "15000k", VCodec: "libx264"}
}

func main() {
	kong.Parse(&cli,
		kong.Name("starfield-streamer"),
		kong.Description("Render the starfield into an ffmpeg live stream."),
	)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	settings := qualitySettings(cli.Quality)
	settings.Debug = cli.Debug
	settings.Output = streamOutput(cli.Output, os.Getenv("YOUTUBE_STREAM_KEY"))
	if !cli.Software {
		detectHardwareEncoder(&settings, cli.Device)
	}

	cfg := skyengine.DefaultConfig()
	cfg.TargetFPS = streamFPS
	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engine := skyengine.NewEngine(cfg, seed)
	engine.FixedViewport = true
	engine.Start(skyengine.Viewport{Width: float64(settings.Width), Height: float64(settings.Height), DPR: 1})

	frameSize := settings.Width * settings.Height * 4
	bufferPool := &sync.Pool{
		New: func() any {
			return make([]byte, frameSize)
		},
	}

	stream, err := startFFmpeg(settings, cli.VaapiDriver)
	if err != nil {
		log.Fatalf("Failed to start ffmpeg: %v", err)
	}

	// Frames go through a small buffer so a slow encoder drops frames instead of stalling the
	// game loop.
	frameChan := make(chan []byte, 2)
	engine.OnFrame = func(screen *ebiten.Image) {
		buf := bufferPool.Get().([]byte)
		screen.ReadPixels(buf)
		select {
		case frameChan <- buf:
		default:
			bufferPool.Put(buf)
		}
	}
	go func() {
		for buf := range frameChan {
			if _, err := stream.video.Write(buf); err != nil {
				log.Printf("[stream] Video write error: %v", err)
			}
			bufferPool.Put(buf)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.StartMemoryWatcher(ctx)

	if cli.AudioDir != "" {
		player := soundtrack.NewPlayer(cli.AudioDir, stream.audio, engine.SetNowPlaying)
		player.Start()
	} else {
		go writeSilence(ctx, stream.audio)
	}

	log.Printf("Warming up connection using %s (5s)...", settings.VCodec)
	time.Sleep(5 * time.Second)

	ebiten.SetTPS(streamFPS)
	if cli.Headless {
		log.Println("Running in HEADLESS mode (Rendering active).")
	} else {
		ebiten.SetWindowSize(1280, 720)
		ebiten.SetWindowTitle("Starfield Streamer")
	}
	if err := engine.Run(); err != nil {
		log.Fatal(err)
	}
}

func streamOutput(output, streamKey string) string {
	if output != "" {
		return output
	}
	if streamKey != "" {
		log.Println("YouTube Stream Key detected. Preparing to go LIVE.")
		return "rtmp://a.rtmp.youtube.com/live2/" + streamKey
	}
	return "test.flv"
}

func detectHardwareEncoder(s *encoderSettings, device string) {
	switch runtime.GOOS {
	case "darwin":
		s.VCodec = "h264_videotoolbox"
		s.OutputHWArgs = []string{"-realtime", "true", "-q:v", "65", "-color_range", "1"}
	case "linux":
		if _, err := os.Stat(device); err != nil {
			if s.Debug {
				log.Printf("DEBUG: Render device %s NOT found.", device)
			}
			return
		}
		f, err := os.OpenFile(device, os.O_RDWR, 0)
		if err != nil {
			log.Printf("WARNING: Device %s exists but cannot be opened for RW: %v. Using software encoding.", device, err)
			return
		}
		f.Close()
		s.VCodec = "h264_vaapi"
		s.GlobalHWArgs = []string{"-vaapi_device", device}
		s.OutputHWArgs = []string{"-vf", "format=nv12,hwupload", "-color_range", "1"}
	}
}

// ffmpegArgs reads raw RGBA frames on stdin and s16le stereo PCM on fd 3.
func ffmpegArgs(s encoderSettings) []string {
	var args []string
	if s.Debug {
		args = append(args, "-loglevel", "debug")
	}
	args = append(args, s.GlobalHWArgs...)
	args = append(args,
		"-thread_queue_size", "1024",
		"-f", "rawvideo", "-pixel_format", "rgba", "-video_size", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"-framerate", fmt.Sprint(streamFPS), "-i", "pipe:0",
		"-f", "s16le", "-ar", fmt.Sprint(soundtrack.SampleRate), "-ac", "2", "-i", "pipe:3",
		"-c:v", s.VCodec,
		"-b:v", s.Bitrate,
		"-maxrate", s.MaxBitrate,
		"-bufsize", "30000k",
		"-g", "60",
	)
	if s.VCodec != "h264_vaapi" {
		args = append(args, "-pix_fmt", "yuv420p")
	}
	if s.VCodec == "libx264" {
		args = append(args, "-preset", "veryfast", "-crf", "18", "-x264-params", "keyint=60:min-keyint=60:scenecut=0:bframes=2", "-color_range", "1")
	}
	args = append(args, s.OutputHWArgs...)
	args = append(args, "-c:a", "aac", "-b:a", "128k")
	if strings.HasPrefix(s.Output, "rtmp://") || strings.HasPrefix(s.Output, "rtmps://") || strings.HasSuffix(s.Output, ".flv") {
		args = append(args, "-f", "flv")
	}
	return append(args, s.Output)
}

type ffmpegStream struct {
	video io.WriteCloser
	audio io.WriteCloser
}

func startFFmpeg(s encoderSettings, vaapiDriver string) (*ffmpegStream, error) {
	cmd := exec.Command("ffmpeg", ffmpegArgs(s)...)
	cmd.Env = append(os.Environ(), "LIBVA_MESSAGES=1")
	if vaapiDriver != "" {
		cmd.Env = append(cmd.Env, "LIBVA_DRIVER_NAME="+vaapiDriver)
	}

	video, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("video pipe: %w", err)
	}
	audioReader, audioWriter, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("audio pipe: %w", err)
	}
	cmd.ExtraFiles = []*os.File{audioReader}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg: %w", err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("ffmpeg process exited with error: %v", err)
		} else {
			log.Println("ffmpeg process exited normally")
		}
		video.Close()
		audioWriter.Close()
		log.Println("Stream connection lost. Exiting in 10s...")
		time.Sleep(10 * time.Second)
		os.Exit(1)
	}()

	return &ffmpegStream{video: video, audio: audioWriter}, nil
}

// writeSilence keeps the audio input of the muxer fed when there is no soundtrack.
func writeSilence(ctx context.Context, w io.Writer) {
	chunk := make([]byte, soundtrack.SampleRate*4/10)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Write(chunk); err != nil {
				log.Printf("[stream] Audio write error: %v", err)
				return
			}
		}
	}
}
