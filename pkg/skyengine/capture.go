package skyengine

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func (e *Engine) captureFrame(img *ebiten.Image, suffix string, timestamp time.Time) {
	if e.FrameCaptureDir == "" {
		return
	}

	if err := os.MkdirAll(e.FrameCaptureDir, 0o755); err != nil {
		log.Printf("[capture] Error creating capture directory: %v", err)
		return
	}

	filename := captureFileName(timestamp, e.driver.Accepted, suffix)
	path := filepath.Join(e.FrameCaptureDir, filename)

	// ReadPixels has to run on the game goroutine; encoding can happen elsewhere.
	rgba := image.NewRGBA(img.Bounds())
	img.ReadPixels(rgba.Pix)

	go func() {
		if err := WritePNG(path, rgba); err != nil {
			log.Printf("[capture] %v", err)
			return
		}
		log.Printf("[capture] Captured frame: %s", path)
	}()
}

func captureFileName(timestamp time.Time, frame uint64, suffix string) string {
	return fmt.Sprintf("starfield-%s-%06d-%s.png", timestamp.Format("20060102-150405"), frame, suffix)
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating capture file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing capture file: %w", cerr)
		}
	}()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding capture: %w", err)
	}
	return nil
}
