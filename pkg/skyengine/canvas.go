package skyengine

import (
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a straight-alpha color with channels in [0,1].
type Color struct {
	R, G, B, A float64
}

var (
	ColorWhite       = Color{1, 1, 1, 1}
	ColorTransparent = Color{0, 0, 0, 0}
)

// HSLA builds a color the way CSS hsla() does: hue in degrees, saturation, lightness and alpha
// in [0,1]. Out of range inputs are clamped.
func HSLA(hue, sat, light, alpha float64) Color {
	c := colorful.Hsl(math.Mod(math.Mod(hue, 360)+360, 360), clamp01(sat), clamp01(light)).Clamped()
	return Color{R: c.R, G: c.G, B: c.B, A: clamp01(alpha)}
}

// ParseHex parses "#rrggbb" into an opaque color.
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, err
	}
	return Color{R: c.R, G: c.G, B: c.B, A: 1}, nil
}

func (c Color) WithAlpha(a float64) Color {
	c.A = clamp01(a)
	return c
}

func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

// ColorStop is a gradient stop at Offset in [0,1].
type ColorStop struct {
	Offset float64
	Color  Color
}

// colorAt samples a gradient. Stops must be sorted by offset.
func colorAt(stops []ColorStop, t float64) Color {
	if len(stops) == 0 {
		return ColorTransparent
	}
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].Offset {
			a, b := stops[i-1], stops[i]
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Color
			}
			return lerpColor(a.Color, b.Color, (t-a.Offset)/span)
		}
	}
	return stops[len(stops)-1].Color
}

// FrameCanvas is what the per-frame pass draws on: stars and shooting star streaks.
// Coordinates are logical pixels; implementations apply the device pixel ratio themselves.
type FrameCanvas interface {
	Clear()
	FillCircle(x, y, r float64, c Color)
	StrokeGradientLine(x0, y0, x1, y1, width float64, stops []ColorStop)
}

// Canvas adds the radial washes the milky way generator needs.
type Canvas interface {
	FrameCanvas
	FillRadialGradient(x, y, r float64, stops []ColorStop)
}

var (
	_ Canvas      = (*RasterCanvas)(nil)
	_ FrameCanvas = (*EbitenCanvas)(nil)
)

// gradientSteps is the resolution of the falloff table used for radial gradients.
const gradientSteps = 1024

// RasterCanvas draws onto a CPU image with source-over blending. The static layers are
// rasterised here and uploaded to the GPU once per resize.
type RasterCanvas struct {
	Img   *image.RGBA
	Scale float64

	falloff []Color
}

func NewRasterCanvas(width, height int, scale float64) *RasterCanvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if scale <= 0 {
		scale = 1
	}
	return &RasterCanvas{Img: image.NewRGBA(image.Rect(0, 0, width, height)), Scale: scale}
}

func (r *RasterCanvas) Clear() {
	clear(r.Img.Pix)
}

// blend composites c with coverage cov over the pixel at (px, py).
func (r *RasterCanvas) blend(px, py int, c Color, cov float64) {
	b := r.Img.Rect
	if px < b.Min.X || py < b.Min.Y || px >= b.Max.X || py >= b.Max.Y {
		return
	}
	a := clamp01(c.A * cov)
	if a <= 0 {
		return
	}
	off := r.Img.PixOffset(px, py)
	p := r.Img.Pix[off : off+4 : off+4]
	inv := 1 - a
	p[0] = uint8(clamp01(c.R*a+float64(p[0])/255*inv)*255 + 0.5)
	p[1] = uint8(clamp01(c.G*a+float64(p[1])/255*inv)*255 + 0.5)
	p[2] = uint8(clamp01(c.B*a+float64(p[2])/255*inv)*255 + 0.5)
	p[3] = uint8(clamp01(a+float64(p[3])/255*inv)*255 + 0.5)
}

func (r *RasterCanvas) FillCircle(x, y, radius float64, c Color) {
	if radius <= 0 || math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	cx, cy, rr := x*r.Scale, y*r.Scale, radius*r.Scale
	if rr < 0.5 {
		// Sub-pixel point: spread its area onto the pixel that contains the centre.
		r.blend(int(math.Floor(cx)), int(math.Floor(cy)), c, math.Pi*rr*rr)
		return
	}
	x0, x1 := int(math.Floor(cx-rr)), int(math.Ceil(cx+rr))
	y0, y1 := int(math.Floor(cy-rr)), int(math.Ceil(cy+rr))
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			d := math.Hypot(float64(px)+0.5-cx, float64(py)+0.5-cy)
			if cov := rr - d + 0.5; cov > 0 {
				r.blend(px, py, c, math.Min(cov, 1))
			}
		}
	}
}

// FillRadialGradient samples the stops once into a falloff table and only visits pixels whose
// table entry can change the destination. Anything below half a level of alpha rounds back to
// the existing pixel, so skipping it leaves the output unchanged.
func (r *RasterCanvas) FillRadialGradient(x, y, radius float64, stops []ColorStop) {
	if radius <= 0 || len(stops) == 0 {
		return
	}
	if r.falloff == nil {
		r.falloff = make([]Color, gradientSteps)
	}
	reach := -1
	for i := range r.falloff {
		c := colorAt(stops, float64(i)/(gradientSteps-1))
		r.falloff[i] = c
		if visibleAlpha(c.A) {
			reach = i
		}
	}
	if reach < 0 {
		return
	}

	cx, cy, rr := x*r.Scale, y*r.Scale, radius*r.Scale
	outer := min(rr, rr*(float64(reach)+0.5)/(gradientSteps-1))
	outer2 := outer * outer
	b := r.Img.Rect
	y0, y1 := max(int(math.Floor(cy-outer)), b.Min.Y), min(int(math.Ceil(cy+outer)), b.Max.Y-1)
	for py := y0; py <= y1; py++ {
		dy := float64(py) + 0.5 - cy
		if dy*dy > outer2 {
			continue
		}
		half := math.Sqrt(outer2 - dy*dy)
		x0, x1 := max(int(math.Floor(cx-half)), b.Min.X), min(int(math.Ceil(cx+half)), b.Max.X-1)
		for px := x0; px <= x1; px++ {
			dx := float64(px) + 0.5 - cx
			d2 := dx*dx + dy*dy
			if d2 > outer2 {
				continue
			}
			idx := int(math.Sqrt(d2)/rr*(gradientSteps-1) + 0.5)
			if idx >= gradientSteps {
				continue
			}
			c := r.falloff[idx]
			if !visibleAlpha(c.A) {
				continue
			}
			r.blend(px, py, c, 1)
		}
	}
}

// visibleAlpha reports whether compositing at alpha a can move an 8-bit channel.
func visibleAlpha(a float64) bool {
	return a*255 >= 0.5
}

func (r *RasterCanvas) StrokeGradientLine(x0, y0, x1, y1, width float64, stops []ColorStop) {
	if len(stops) == 0 {
		return
	}
	sx0, sy0, sx1, sy1 := x0*r.Scale, y0*r.Scale, x1*r.Scale, y1*r.Scale
	length := math.Hypot(sx1-sx0, sy1-sy0)
	cov := clamp01(width * r.Scale)
	if length < 1 {
		r.blend(int(math.Floor(sx0)), int(math.Floor(sy0)), colorAt(stops, 0), cov)
		return
	}
	steps := int(math.Ceil(length))
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		px := sx0 + (sx1-sx0)*t
		py := sy0 + (sy1-sy0)*t
		r.blend(int(math.Floor(px)), int(math.Floor(py)), colorAt(stops, t), cov)
	}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
