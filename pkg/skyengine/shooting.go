package skyengine

import (
	"log"
	"math"
	"math/rand"
)

// ShootingStar is a transient streak. It is pruned the tick after Life reaches zero.
type ShootingStar struct {
	ID     uint64
	X, Y   float64
	VX, VY float64
	Life   int
	Color  Color
}

// Dead reports whether the star has used up its lifespan.
func (s ShootingStar) Dead() bool { return s.Life <= 0 }

// AgeModifier is a parabolic envelope: 0 at birth and death, 1 at half life.
func AgeModifier(life, lifespan int) float64 {
	if lifespan <= 0 {
		return 0
	}
	half := float64(lifespan) / 2
	v := 1 - math.Abs(float64(life)-half)/half
	if v < 0 {
		v = 0
	}
	return v * v
}

func UpdateShootingStar(s ShootingStar) ShootingStar {
	s.Life--
	s.X += s.VX
	s.Y += s.VY
	return s
}

// ShootingStarStops is the gradient from the white head to the transparent tail.
func ShootingStarStops(c Color, am float64) []ColorStop {
	return []ColorStop{
		{Offset: 0, Color: ColorWhite},
		{Offset: math.Min(am, 0.7), Color: c},
		{Offset: 1, Color: ColorTransparent},
	}
}

func RenderShootingStar(cv FrameCanvas, s ShootingStar, cfg Config) {
	am := AgeModifier(s.Life, cfg.ShootingLifespan)
	endX := s.X - s.VX*cfg.ShootingBaseLength*am
	endY := s.Y - s.VY*cfg.ShootingBaseLength*am
	cv.StrokeGradientLine(s.X, s.Y, endX, endY, cfg.ShootingLineWidth, ShootingStarStops(s.Color, am))
}

// PruneShootingStars drops dead stars in place, keeping order.
func PruneShootingStars(stars []ShootingStar) []ShootingStar {
	live := stars[:0]
	for _, s := range stars {
		if !s.Dead() {
			live = append(live, s)
		}
	}
	clear(stars[len(live):])
	return live
}

// parsePalette resolves the configured hex palette, skipping entries that do not parse.
func parsePalette(hexes []string) []Color {
	out := make([]Color, 0, len(hexes))
	for _, h := range hexes {
		c, err := ParseHex(h)
		if err != nil {
			log.Printf("[scene] Ignoring shooting star color %q: %v", h, err)
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		out = append(out, ColorWhite)
	}
	return out
}

// newShootingStar samples a fresh streak in the top band of a surface backingWidth pixels wide.
func newShootingStar(id uint64, cfg Config, backingWidth float64, palette []Color, rng *rand.Rand) ShootingStar {
	return ShootingStar{
		ID:    id,
		X:     rng.Float64() * backingWidth,
		Y:     rng.Float64() * cfg.ShootingSpawnBand,
		VX:    (rng.Float64() - 0.5) * cfg.ShootingBaseXSpeed,
		VY:    rng.Float64() * cfg.ShootingBaseYSpeed,
		Life:  cfg.ShootingLifespan,
		Color: palette[rng.Intn(len(palette))],
	}
}
