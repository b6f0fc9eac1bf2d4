package skyengine

import (
	"math"
	"math/rand"

	"github.com/sudorandom/starfield/pkg/randfield"
)

// Star is a persistent twinkling point light. Cursor and Prev index the shared random pool.
type Star struct {
	X, Y      float64
	Size      float64
	BaseAlpha float64
	BaseHue   int
	HueWeight float64
	Cursor    int
	Prev      int
}

const (
	starSaturation = 1.0
	starLightness  = 0.85
)

// PopulateStars samples cfg.StarCount stars inside the viewport, inset by twice their size.
func PopulateStars(cfg Config, v Viewport, rng *rand.Rand, pool *randfield.RandomPool, hues *randfield.HuePool) []Star {
	stars := make([]Star, 0, cfg.StarCount)
	maxSize := cfg.MinSize + cfg.SizeRange
	for i := 0; i < cfg.StarCount; i++ {
		size := rng.Float64()*cfg.SizeRange + cfg.MinSize
		idx := rng.Intn(pool.Len())
		stars = append(stars, Star{
			X:         insetSample(rng.Float64(), v.Width, size),
			Y:         insetSample(rng.Float64(), v.Height, size),
			Size:      size,
			BaseAlpha: size / maxSize,
			BaseHue:   hues.At(rng.Intn(hues.Len())),
			HueWeight: rng.Float64(),
			Cursor:    idx,
			Prev:      idx,
		})
	}
	return stars
}

// insetSample maps u in [0,1) onto [2*size, dim-2*size]. Axes narrower than the inset put the
// star in the middle.
func insetSample(u, dim, size float64) float64 {
	lo, hi := 2*size, dim-2*size
	if hi < lo {
		return dim / 2
	}
	return lo + u*(hi-lo)
}

func clampInset(p, dim, size float64) float64 {
	lo, hi := 2*size, dim-2*size
	if hi < lo {
		return dim / 2
	}
	return math.Max(lo, math.Min(hi, p))
}

// RelayoutStars rescales star positions from one viewport to another and keeps them inside the
// inset bounds of the new one.
func RelayoutStars(stars []Star, from, to Viewport) {
	sx, sy := 1.0, 1.0
	if from.Width > 0 {
		sx = to.Width / from.Width
	}
	if from.Height > 0 {
		sy = to.Height / from.Height
	}
	for i := range stars {
		s := &stars[i]
		s.X = clampInset(s.X*sx, to.Width, s.Size)
		s.Y = clampInset(s.Y*sy, to.Height, s.Size)
	}
}

// UpdateStar advances the star's two pool cursors by one step.
func UpdateStar(s Star, pool *randfield.RandomPool) Star {
	s.Prev = s.Cursor
	s.Cursor = pool.Wrap(s.Cursor + 1)
	return s
}

// StarAlpha is the shimmering alpha for the current cursor.
func StarAlpha(s Star, pool *randfield.RandomPool, jitter float64) float64 {
	return s.BaseAlpha + math.Min((pool.At(s.Cursor)-0.5)*jitter, 1)
}

// StarHue picks the pool hue at the previous cursor when the pool value there beats the star's
// weight, otherwise the star keeps its base hue. Alpha reads the current cursor, so color and
// brightness flicker independently.
func StarHue(s Star, pool *randfield.RandomPool, hues *randfield.HuePool) int {
	if pool.At(s.Prev) > s.HueWeight {
		return hues.At(s.Prev)
	}
	return s.BaseHue
}

func RenderStar(c FrameCanvas, s Star, pool *randfield.RandomPool, hues *randfield.HuePool, jitter float64) {
	hue := StarHue(s, pool, hues)
	c.FillCircle(s.X, s.Y, s.Size, HSLA(float64(hue), starSaturation, starLightness, StarAlpha(s, pool, jitter)))
}
