package skyengine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/sudorandom/starfield/pkg/randfield"
)

func assertInset(t *testing.T, stars []Star, v Viewport) {
	t.Helper()
	for i, s := range stars {
		if s.X < 2*s.Size || s.X > v.Width-2*s.Size {
			t.Fatalf("star %d x=%v outside [%v, %v] for %vx%v", i, s.X, 2*s.Size, v.Width-2*s.Size, v.Width, v.Height)
		}
		if s.Y < 2*s.Size || s.Y > v.Height-2*s.Size {
			t.Fatalf("star %d y=%v outside [%v, %v] for %vx%v", i, s.Y, 2*s.Size, v.Height-2*s.Size, v.Width, v.Height)
		}
	}
}

func TestPopulateStarsInset(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(7))
	pool := randfield.NewRandomPool(rng, cfg.RandomPoolLength)
	hues := randfield.NewHuePool(rng, cfg.HuePoolLength)

	for _, v := range []Viewport{
		{Width: 800, Height: 600, DPR: 1},
		{Width: 1920, Height: 1080, DPR: 2},
		{Width: 4, Height: 4, DPR: 1},
		{Width: 4, Height: 3000, DPR: 1},
	} {
		stars := PopulateStars(cfg, v, rng, pool, hues)
		if len(stars) != cfg.StarCount {
			t.Fatalf("PopulateStars() = %d stars, want %d", len(stars), cfg.StarCount)
		}
		assertInset(t, stars, v)
		for i, s := range stars {
			if s.Size < cfg.MinSize || s.Size >= cfg.MinSize+cfg.SizeRange {
				t.Fatalf("star %d size %v out of range", i, s.Size)
			}
			if s.BaseAlpha <= 0 || s.BaseAlpha > 1 {
				t.Fatalf("star %d base alpha %v out of range", i, s.BaseAlpha)
			}
			if s.Cursor != s.Prev || s.Cursor < 0 || s.Cursor >= pool.Len() {
				t.Fatalf("star %d cursors (%d, %d) invalid", i, s.Cursor, s.Prev)
			}
		}
	}
}

func TestInsetSampleNarrowAxis(t *testing.T) {
	if got := insetSample(0.9, 1, 0.8); got != 0.5 {
		t.Errorf("insetSample() on a narrow axis = %v, want 0.5", got)
	}
	if got := clampInset(100, 1, 0.8); got != 0.5 {
		t.Errorf("clampInset() on a narrow axis = %v, want 0.5", got)
	}
	if got := clampInset(-5, 100, 1); got != 2 {
		t.Errorf("clampInset(-5) = %v, want 2", got)
	}
}

func TestRelayoutStarsRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(3))
	pool := randfield.NewRandomPool(rng, cfg.RandomPoolLength)
	hues := randfield.NewHuePool(rng, cfg.HuePoolLength)

	small := Viewport{Width: 800, Height: 600, DPR: 1}
	large := Viewport{Width: 1920, Height: 1080, DPR: 1}
	stars := PopulateStars(cfg, small, rng, pool, hues)
	first := stars[0]

	RelayoutStars(stars, small, large)
	assertInset(t, stars, large)
	if math.Abs(stars[0].X-first.X*1920/800) > 2*first.Size {
		t.Errorf("x did not scale: %v -> %v", first.X, stars[0].X)
	}

	RelayoutStars(stars, large, small)
	assertInset(t, stars, small)
	if math.Abs(stars[0].X-first.X) > 1e-6 || math.Abs(stars[0].Y-first.Y) > 1e-6 {
		t.Errorf("round trip moved star from (%v, %v) to (%v, %v)", first.X, first.Y, stars[0].X, stars[0].Y)
	}
}

func TestUpdateStarWraps(t *testing.T) {
	pool := randfield.NewRandomPoolFrom([]float64{0.1, 0.2, 0.3})
	s := Star{Cursor: 2, Prev: 2}
	s = UpdateStar(s, pool)
	if s.Prev != 2 || s.Cursor != 0 {
		t.Errorf("UpdateStar() cursors = (%d, %d), want (0, 2)", s.Cursor, s.Prev)
	}
	s = UpdateStar(s, pool)
	if s.Prev != 0 || s.Cursor != 1 {
		t.Errorf("UpdateStar() cursors = (%d, %d), want (1, 0)", s.Cursor, s.Prev)
	}
}

func TestStarAlpha(t *testing.T) {
	pool := randfield.NewRandomPoolFrom([]float64{0.5, 1, 0})
	tests := []struct {
		cursor int
		jitter float64
		want   float64
	}{
		{0, 0.5, 0.4},
		{1, 0.5, 0.65},
		{2, 0.5, 0.15},
		{1, 10, 1.4},
	}
	for _, tt := range tests {
		s := Star{BaseAlpha: 0.4, Cursor: tt.cursor}
		if got := StarAlpha(s, pool, tt.jitter); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("StarAlpha(cursor=%d, jitter=%v) = %v, want %v", tt.cursor, tt.jitter, got, tt.want)
		}
	}
}

func TestStarHue(t *testing.T) {
	pool := randfield.NewRandomPoolFrom([]float64{0.9, 0.1})
	hues := randfield.NewHuePool(&scriptedSource{values: []float64{0.1, 0.5}}, 2)

	s := Star{BaseHue: 33, HueWeight: 0.5, Prev: 0, Cursor: 1}
	if got, want := StarHue(s, pool, hues), hues.At(0); got != want {
		t.Errorf("StarHue() with heavy pool value = %d, want pool hue %d", got, want)
	}
	s.Prev = 1
	if got := StarHue(s, pool, hues); got != 33 {
		t.Errorf("StarHue() with light pool value = %d, want base hue 33", got)
	}
}

func TestRenderStar(t *testing.T) {
	pool := randfield.NewRandomPoolFrom([]float64{0.5})
	hues := randfield.NewHuePool(&scriptedSource{values: []float64{0}}, 1)
	c := &recordingCanvas{}
	s := Star{X: 10, Y: 20, Size: 0.5, BaseAlpha: 0.6, BaseHue: 200, HueWeight: 1}
	RenderStar(c, s, pool, hues, 0.5)

	if len(c.circles) != 1 {
		t.Fatalf("RenderStar() drew %d circles, want 1", len(c.circles))
	}
	got := c.circles[0]
	if got.X != 10 || got.Y != 20 || got.R != 0.5 {
		t.Errorf("RenderStar() circle = %+v", got)
	}
	if want := HSLA(200, 1, 0.85, 0.6); !approxColor(got.C, want) {
		t.Errorf("RenderStar() color = %+v, want %+v", got.C, want)
	}
}

// scriptedSource replays values in order, repeating the last one.
type scriptedSource struct {
	values []float64
	i      int
}

func (s *scriptedSource) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[min(s.i, len(s.values)-1)]
	s.i++
	return v
}
