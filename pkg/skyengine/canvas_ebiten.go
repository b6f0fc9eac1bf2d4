package skyengine

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var whiteSubImage *ebiten.Image

// solidSource returns the 1x1 white texture DrawTriangles samples from. Created on first use
// so importing the package does not touch the GPU.
func solidSource() *ebiten.Image {
	if whiteSubImage == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

// EbitenCanvas draws the animated layer onto a GPU image. Streak gradients are built from
// vertex-colored triangles so the GPU interpolates between stops.
type EbitenCanvas struct {
	Img   *ebiten.Image
	Scale float64

	vertices []ebiten.Vertex
	indices  []uint16
}

func NewEbitenCanvas(img *ebiten.Image, scale float64) *EbitenCanvas {
	if scale <= 0 {
		scale = 1
	}
	return &EbitenCanvas{Img: img, Scale: scale}
}

func (c *EbitenCanvas) Clear() {
	c.Img.Clear()
}

func (c *EbitenCanvas) FillCircle(x, y, r float64, col Color) {
	if r <= 0 {
		return
	}
	s := c.Scale
	vector.DrawFilledCircle(c.Img, float32(x*s), float32(y*s), float32(r*s), col.NRGBA(), true)
}

func (c *EbitenCanvas) vertex(x, y float64, col Color) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   float32(x * c.Scale),
		DstY:   float32(y * c.Scale),
		SrcX:   1,
		SrcY:   1,
		ColorR: float32(clamp01(col.R)),
		ColorG: float32(clamp01(col.G)),
		ColorB: float32(clamp01(col.B)),
		ColorA: float32(clamp01(col.A)),
	}
}

func (c *EbitenCanvas) flush() {
	if len(c.indices) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{}
	op.ColorScaleMode = ebiten.ColorScaleModeStraightAlpha
	op.AntiAlias = true
	c.Img.DrawTriangles(c.vertices, c.indices, solidSource(), op)
	c.vertices = c.vertices[:0]
	c.indices = c.indices[:0]
}

// StrokeGradientLine emits one quad per gradient span along the line.
func (c *EbitenCanvas) StrokeGradientLine(x0, y0, x1, y1, width float64, stops []ColorStop) {
	if len(stops) == 0 {
		return
	}
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	hw := width / 2
	nx, ny := -dy/length*hw, dx/length*hw

	for i := 0; i < len(stops); i++ {
		t := stops[i].Offset
		px, py := x0+dx*t, y0+dy*t
		base := uint16(len(c.vertices))
		c.vertices = append(c.vertices,
			c.vertex(px+nx, py+ny, stops[i].Color),
			c.vertex(px-nx, py-ny, stops[i].Color),
		)
		if i > 0 {
			c.indices = append(c.indices, base-2, base-1, base, base-1, base+1, base)
		}
	}
	c.flush()
}
