package skyengine

import (
	"image/color"
	"time"
)

// Config holds every tunable of the scene. DefaultConfig matches the shipped look.
type Config struct {
	// Twinkling stars
	StarCount   int
	MinSize     float64
	SizeRange   float64
	AlphaJitter float64

	// Shooting stars
	ShootingStarDensity float64
	ShootingBaseXSpeed  float64
	ShootingBaseYSpeed  float64
	ShootingBaseLength  float64
	ShootingLifespan    int
	ShootingSpawnBand   float64
	ShootingLineWidth   float64
	ShootingPalette     []string

	// Milky way
	MilkyWayStarCount      int
	MilkyWayRandomStarProp float64
	ClusterCount           int
	ClusterStarCount       int
	ClusterSize            float64
	ClusterSizeRange       float64
	ClusterLayers          int
	Incline                float64
	HueMin, HueMax         float64
	WhitenessMin           float64
	WhitenessMax           float64

	// Pools
	RandomPoolLength int
	HuePoolLength    int

	// Driver
	TargetFPS      float64
	ResizeDebounce time.Duration

	BackgroundTop    color.RGBA
	BackgroundBottom color.RGBA
}

func DefaultConfig() Config {
	return Config{
		StarCount:   300,
		MinSize:     0.3,
		SizeRange:   0.6,
		AlphaJitter: 0.5,

		ShootingStarDensity: 0.02,
		ShootingBaseXSpeed:  30,
		ShootingBaseYSpeed:  15,
		ShootingBaseLength:  8,
		ShootingLifespan:    60,
		ShootingSpawnBand:   150,
		ShootingLineWidth:   1,
		ShootingPalette: []string{
			"#a1ffba", // green
			"#a1d2ff", // blue
			"#fffaa1", // yellow
			"#ffa1a1", // red
		},

		MilkyWayStarCount:      20000,
		MilkyWayRandomStarProp: 0.2,
		ClusterCount:           80,
		ClusterStarCount:       800,
		ClusterSize:            120,
		ClusterSizeRange:       80,
		ClusterLayers:          10,
		Incline:                0.6,
		HueMin:                 150,
		HueMax:                 300,
		WhitenessMin:           50,
		WhitenessMax:           65,

		RandomPoolLength: 1000,
		HuePoolLength:    1000,

		TargetFPS:      45,
		ResizeDebounce: 150 * time.Millisecond,

		BackgroundTop:    color.RGBA{4, 6, 14, 255},
		BackgroundBottom: color.RGBA{12, 14, 28, 255},
	}
}

// Viewport is the logical size of the host area plus its device pixel ratio.
type Viewport struct {
	Width, Height float64
	DPR           float64
}

// Valid reports whether the viewport can be drawn into.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Scale is the device pixel ratio, defaulting to 1.
func (v Viewport) Scale() float64 {
	if v.DPR <= 0 {
		return 1
	}
	return v.DPR
}

// BackingSize is the physical pixel size of a surface covering the viewport.
func (v Viewport) BackingSize() (int, int) {
	if !v.Valid() {
		return 0, 0
	}
	s := v.Scale()
	w, h := int(v.Width*s+0.5), int(v.Height*s+0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
