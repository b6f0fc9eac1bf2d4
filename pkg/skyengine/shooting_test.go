package skyengine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/sudorandom/starfield/pkg/randfield"
)

func TestAgeModifier(t *testing.T) {
	tests := []struct {
		life, lifespan int
		want           float64
	}{
		{60, 60, 0},
		{30, 60, 1},
		{0, 60, 0},
		{45, 60, 0.25},
		{15, 60, 0.25},
		{-3, 60, 0},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := AgeModifier(tt.life, tt.lifespan); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AgeModifier(%d, %d) = %v, want %v", tt.life, tt.lifespan, got, tt.want)
		}
	}
}

func TestShootingStarStops(t *testing.T) {
	c := Color{0.6, 1, 0.7, 1}
	stops := ShootingStarStops(c, 1)
	if len(stops) != 3 {
		t.Fatalf("ShootingStarStops() = %d stops, want 3", len(stops))
	}
	if stops[0].Color != ColorWhite || stops[0].Offset != 0 {
		t.Errorf("head stop = %+v", stops[0])
	}
	if stops[1].Offset != 0.7 || stops[1].Color != c {
		t.Errorf("middle stop = %+v, want capped at 0.7", stops[1])
	}
	if stops[2].Color != ColorTransparent || stops[2].Offset != 1 {
		t.Errorf("tail stop = %+v", stops[2])
	}
	if got := ShootingStarStops(c, 0.2)[1].Offset; got != 0.2 {
		t.Errorf("middle offset = %v, want 0.2", got)
	}
}

func TestUpdateAndRenderShootingStar(t *testing.T) {
	cfg := DefaultConfig()
	s := ShootingStar{X: 100, Y: 50, VX: 4, VY: 2, Life: 31, Color: ColorWhite}
	s = UpdateShootingStar(s)
	if s.Life != 30 || s.X != 104 || s.Y != 52 {
		t.Fatalf("UpdateShootingStar() = %+v", s)
	}

	c := &recordingCanvas{}
	RenderShootingStar(c, s, cfg)
	if len(c.lines) != 1 {
		t.Fatalf("RenderShootingStar() drew %d lines, want 1", len(c.lines))
	}
	l := c.lines[0]
	// At half life the tail is a full BaseLength velocities behind the head.
	if l.X0 != 104 || l.Y0 != 52 || l.X1 != 104-4*cfg.ShootingBaseLength || l.Y1 != 52-2*cfg.ShootingBaseLength {
		t.Errorf("line = (%v,%v)->(%v,%v)", l.X0, l.Y0, l.X1, l.Y1)
	}
	if l.Width != cfg.ShootingLineWidth {
		t.Errorf("line width = %v", l.Width)
	}
}

func TestPruneShootingStars(t *testing.T) {
	stars := []ShootingStar{{ID: 1, Life: 3}, {ID: 2, Life: 0}, {ID: 3, Life: 1}, {ID: 4, Life: -1}}
	live := PruneShootingStars(stars)
	if len(live) != 2 || live[0].ID != 1 || live[1].ID != 3 {
		t.Errorf("PruneShootingStars() = %+v", live)
	}
	if stars[2].ID != 0 || stars[3].ID != 0 {
		t.Errorf("tail not cleared: %+v", stars[2:])
	}
	if got := PruneShootingStars(nil); len(got) != 0 {
		t.Errorf("PruneShootingStars(nil) = %+v", got)
	}
}

func TestParsePalette(t *testing.T) {
	got := parsePalette([]string{"#ff0000", "bogus", "#00ff00"})
	if len(got) != 2 {
		t.Fatalf("parsePalette() = %d colors, want 2", len(got))
	}
	if got := parsePalette([]string{"nope"}); len(got) != 1 || got[0] != ColorWhite {
		t.Errorf("parsePalette() fallback = %+v", got)
	}
}

func TestNewShootingStarRanges(t *testing.T) {
	cfg := DefaultConfig()
	palette := parsePalette(cfg.ShootingPalette)
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		s := newShootingStar(uint64(i), cfg, 1600, palette, rng)
		if s.X < 0 || s.X >= 1600 || s.Y < 0 || s.Y >= cfg.ShootingSpawnBand {
			t.Fatalf("spawn position (%v, %v) out of range", s.X, s.Y)
		}
		if math.Abs(s.VX) > cfg.ShootingBaseXSpeed/2 || s.VY < 0 || s.VY >= cfg.ShootingBaseYSpeed {
			t.Fatalf("velocity (%v, %v) out of range", s.VX, s.VY)
		}
		if s.Life != cfg.ShootingLifespan {
			t.Fatalf("life = %d, want %d", s.Life, cfg.ShootingLifespan)
		}
	}
}

// lifecycleScene has a pool that spawns exactly on the listed ticks (1-based).
func lifecycleScene(spawnTicks ...int) *Scene {
	cfg := DefaultConfig()
	cfg.StarCount = 5
	sc := NewScene(cfg, rand.New(rand.NewSource(1)))
	sc.Init(Viewport{Width: 800, Height: 600, DPR: 1})

	values := make([]float64, 200)
	for i := range values {
		values[i] = 0.5
	}
	for _, tick := range spawnTicks {
		values[tick-1] = 0
	}
	sc.Random = randfield.NewRandomPoolFrom(values)
	return sc
}

func findShooting(stars []ShootingStar, id uint64) (ShootingStar, bool) {
	for _, s := range stars {
		if s.ID == id {
			return s, true
		}
	}
	return ShootingStar{}, false
}

func TestShootingStarLifecycle(t *testing.T) {
	sc := lifecycleScene(1, 61)
	c := &recordingCanvas{}

	for tick := 1; tick <= 60; tick++ {
		sc.Tick(c)
		s, ok := findShooting(sc.Shooting, 1)
		if !ok {
			t.Fatalf("tick %d: shooting star missing", tick)
		}
		if s.Life != 60-tick {
			t.Fatalf("tick %d: life = %d, want %d", tick, s.Life, 60-tick)
		}
		if len(c.lines) != 1 {
			t.Fatalf("tick %d: drew %d streaks, want 1", tick, len(c.lines))
		}
	}

	sc.Tick(c)
	if _, ok := findShooting(sc.Shooting, 1); ok {
		t.Fatal("tick 61: expired shooting star still present")
	}
	if _, ok := findShooting(sc.Shooting, 2); !ok {
		t.Fatal("tick 61: new shooting star missing")
	}
	if len(sc.Shooting) != 1 {
		t.Errorf("tick 61: %d shooting stars, want 1", len(sc.Shooting))
	}
}

func TestShootingStarsOverlap(t *testing.T) {
	sc := lifecycleScene(1, 11)
	c := &recordingCanvas{}
	for tick := 1; tick <= 11; tick++ {
		sc.Tick(c)
	}
	if len(sc.Shooting) != 2 {
		t.Fatalf("%d shooting stars, want 2", len(sc.Shooting))
	}
	if len(c.lines) != 2 {
		t.Errorf("drew %d streaks, want 2", len(c.lines))
	}
	if sc.Shooting[0].ID == sc.Shooting[1].ID {
		t.Error("shooting star IDs collide")
	}
}
