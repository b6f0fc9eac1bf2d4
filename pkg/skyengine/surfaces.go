package skyengine

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/hajimehoshi/ebiten/v2"
)

// Surfaces owns the three stacked layers: background, milky way and dynamic. The static
// layers are rasterised on the CPU and uploaded when dirty; the dynamic layer lives on the GPU.
// Nothing else resizes or replaces them.
type Surfaces struct {
	viewport Viewport
	ready    bool

	bgTop, bgBottom color.RGBA
	background      *RasterCanvas
	milkyWay        *RasterCanvas

	bgImage, mwImage, dynImage *ebiten.Image
	dynCanvas                  *EbitenCanvas
	bgDirty, mwDirty           bool

	resizes int
}

func NewSurfaces(top, bottom color.RGBA) *Surfaces {
	return &Surfaces{bgTop: top, bgBottom: bottom}
}

// Resize sizes every layer to viewport*DPR backing pixels. The milky way layer comes back
// blank and must be regenerated by the caller. Zero or negative viewports park the surfaces
// until a usable size arrives.
func (s *Surfaces) Resize(v Viewport) {
	s.viewport = v
	s.resizes++
	if !v.Valid() {
		s.ready = false
		s.background, s.milkyWay = nil, nil
		s.release()
		return
	}
	w, h := v.BackingSize()
	scale := v.Scale()
	s.background = NewRasterCanvas(w, h, scale)
	s.milkyWay = NewRasterCanvas(w, h, scale)
	paintVerticalGradient(s.background.Img, s.bgTop, s.bgBottom)
	s.bgDirty, s.mwDirty = true, true
	s.ready = true
}

func (s *Surfaces) release() {
	for _, img := range []*ebiten.Image{s.bgImage, s.mwImage, s.dynImage} {
		if img != nil {
			img.Deallocate()
		}
	}
	s.bgImage, s.mwImage, s.dynImage, s.dynCanvas = nil, nil, nil, nil
}

func (s *Surfaces) Ready() bool { return s.ready }

func (s *Surfaces) Viewport() Viewport { return s.viewport }

// Resizes counts Resize calls, valid or not.
func (s *Surfaces) Resizes() int { return s.resizes }

// BackingSize is the physical size shared by all three layers.
func (s *Surfaces) BackingSize() (int, int) { return s.viewport.BackingSize() }

// MilkyWayCanvas hands out the static layer for regeneration and marks it for upload.
func (s *Surfaces) MilkyWayCanvas() *RasterCanvas {
	if !s.ready {
		return nil
	}
	s.mwDirty = true
	return s.milkyWay
}

// MilkyWayPixels exposes the rasterised milky way, nil when not ready.
func (s *Surfaces) MilkyWayPixels() *image.RGBA {
	if s.milkyWay == nil {
		return nil
	}
	return s.milkyWay.Img
}

// BackgroundPixels exposes the rasterised background, nil when not ready.
func (s *Surfaces) BackgroundPixels() *image.RGBA {
	if s.background == nil {
		return nil
	}
	return s.background.Img
}

func ensureImage(img *ebiten.Image, w, h int) *ebiten.Image {
	if img != nil {
		if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
			return img
		}
		img.Deallocate()
	}
	return ebiten.NewImage(w, h)
}

// DynamicCanvas returns the GPU canvas for the animated layer. Must be called from the game
// loop.
func (s *Surfaces) DynamicCanvas() *EbitenCanvas {
	if !s.ready {
		return nil
	}
	w, h := s.BackingSize()
	img := ensureImage(s.dynImage, w, h)
	if img != s.dynImage || s.dynCanvas == nil {
		s.dynImage = img
		s.dynCanvas = NewEbitenCanvas(img, s.viewport.Scale())
	}
	return s.dynCanvas
}

func (s *Surfaces) upload() {
	w, h := s.BackingSize()
	if s.bgDirty || s.bgImage == nil {
		s.bgImage = ensureImage(s.bgImage, w, h)
		s.bgImage.WritePixels(s.background.Img.Pix)
		s.bgDirty = false
	}
	if s.mwDirty || s.mwImage == nil {
		s.mwImage = ensureImage(s.mwImage, w, h)
		s.mwImage.WritePixels(s.milkyWay.Img.Pix)
		s.mwDirty = false
	}
}

// Composite draws the layers back to front onto screen.
func (s *Surfaces) Composite(screen *ebiten.Image) {
	if !s.ready {
		return
	}
	s.upload()
	screen.DrawImage(s.bgImage, nil)
	screen.DrawImage(s.mwImage, nil)
	if s.dynImage != nil {
		screen.DrawImage(s.dynImage, nil)
	}
}

// CompositeRGBA flattens the static layers and an optional CPU-rendered dynamic layer into a
// new image. Used where no GPU is available.
func (s *Surfaces) CompositeRGBA(dynamic *RasterCanvas) *image.RGBA {
	if !s.ready {
		return nil
	}
	out := image.NewRGBA(s.background.Img.Bounds())
	draw.Draw(out, out.Bounds(), s.background.Img, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), s.milkyWay.Img, image.Point{}, draw.Over)
	if dynamic != nil {
		draw.Draw(out, out.Bounds(), dynamic.Img, image.Point{}, draw.Over)
	}
	return out
}

func paintVerticalGradient(img *image.RGBA, top, bottom color.RGBA) {
	b := img.Bounds()
	h := b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		t := 0.0
		if h > 1 {
			t = float64(y-b.Min.Y) / float64(h-1)
		}
		c := color.RGBA{
			R: lerp8(top.R, bottom.R, t),
			G: lerp8(top.G, bottom.G, t),
			B: lerp8(top.B, bottom.B, t),
			A: lerp8(top.A, bottom.A, t),
		}
		draw.Draw(img, image.Rect(b.Min.X, y, b.Max.X, y+1), &image.Uniform{c}, image.Point{}, draw.Src)
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
