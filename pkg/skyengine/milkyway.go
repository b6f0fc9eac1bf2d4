package skyengine

import (
	"math"
	"math/rand"
)

type bandMode int

const (
	bandStar bandMode = iota
	bandCluster
)

const (
	looseStarMaxSize = 0.27
	bandJitter       = 100
)

// milkyWayCluster only lives for the duration of GenerateMilkyWay.
type milkyWayCluster struct {
	X, Y       float64
	Radius     float64
	Hue        float64
	Whiteness  float64
	Brightness float64
}

// GenerateMilkyWay clears c and paints the loose band stars followed by the glow clusters.
// It does nothing for an invalid viewport.
func GenerateMilkyWay(c Canvas, cfg Config, v Viewport, rng *rand.Rand) {
	c.Clear()
	if !v.Valid() {
		return
	}

	for i := 0; i < cfg.MilkyWayStarCount; i++ {
		x := milkyWayX(v, rng)
		var y float64
		if rng.Float64() < cfg.MilkyWayRandomStarProp {
			y = math.Floor(rng.Float64() * v.Height)
		} else {
			y = yFromX(x, bandStar, cfg, v, rng)
		}
		size := rng.Float64() * looseStarMaxSize
		alpha := 0.4 + rng.Float64()*0.6
		c.FillCircle(x, y, size, HSLA(0, 1, 1, alpha))
	}

	for i := 0; i < cfg.ClusterCount; i++ {
		x := milkyWayX(v, rng)
		y := yFromX(x, bandCluster, cfg, v, rng)
		brightness := centerCloseness(x, y, v)
		cl := milkyWayCluster{
			X:          x,
			Y:          y,
			Radius:     cfg.ClusterSize + rng.Float64()*cfg.ClusterSizeRange,
			Hue:        clusterHue(cfg, rng.Float64(), brightness),
			Whiteness:  cfg.WhitenessMin + rng.Float64()*(cfg.WhitenessMax-cfg.WhitenessMin),
			Brightness: brightness,
		}
		drawCluster(c, cl, cfg, rng)
	}
}

func milkyWayX(v Viewport, rng *rand.Rand) float64 {
	return math.Floor(rng.Float64() * v.Width)
}

// yFromX places a point in the inclined galactic band. Density falls off away from the
// centre line; cluster mode keeps a tighter vertical spread.
func yFromX(x float64, mode bandMode, cfg Config, v Viewport, rng *rand.Rand) float64 {
	offset := (v.Width/2 - x) * cfg.Incline
	exp, height := 1.2, v.Height
	if mode == bandCluster {
		exp, height = 1.5, v.Height*0.6
	}
	return math.Floor(math.Pow(rng.Float64(), exp)*height*(rng.Float64()-0.5)+v.Height/2+(rng.Float64()-0.5)*bandJitter) + offset
}

// centerCloseness is 1 at the viewport centre and 0 at its edges. Each axis factor is clamped
// on its own: the plain product goes negative for a cluster the band offset pushed off screen
// on one axis, and back to positive when it is off on both. Clamped, such a cluster gets 0 and
// cluster hues stay inside [HueMin, HueMax].
func centerCloseness(x, y float64, v Viewport) float64 {
	hw, hh := v.Width/2, v.Height/2
	return clamp01(1-math.Abs(x-hw)/hw) * clamp01(1-math.Abs(y-hh)/hh)
}

// clusterHue leans towards HueMax for clusters near the centre.
func clusterHue(cfg Config, u, brightness float64) float64 {
	return cfg.HueMin + math.Floor((u*0.5+brightness*0.5)*(cfg.HueMax-cfg.HueMin))
}

// chordHalfSpan is the half height of the disc of radius r at sampled column px, written
// against the cluster centre cx. Rounding can push the radicand slightly negative.
func chordHalfSpan(r, cx, px float64) float64 {
	d := r*r - (cx-px)*(cx-px)
	if d <= 0 {
		return 0
	}
	return math.Sqrt(d)
}

func drawCluster(c Canvas, cl milkyWayCluster, cfg Config, rng *rand.Rand) {
	layers := max(cfg.ClusterLayers, 1)
	perLayer := cfg.ClusterStarCount / layers
	for layer := 1; layer <= layers; layer++ {
		r := cl.Radius * float64(layer) / float64(layers)
		for i := 0; i < perLayer; i++ {
			px := cl.X + 2*r*(rng.Float64()-0.5)
			py := cl.Y + 2*chordHalfSpan(r, cl.X, px)*(rng.Float64()-0.5)
			size := 0.05 + rng.Float64()*0.15
			alpha := 0.3 + rng.Float64()*0.4
			light := cl.Whiteness + 15 + 15*cl.Brightness + math.Floor(rng.Float64()*10)
			c.FillCircle(px, py, size, HSLA(cl.Hue, 1, light/100, alpha))
		}
	}
	c.FillRadialGradient(cl.X, cl.Y, cl.Radius, clusterGlow(cl))
}

func clusterGlow(cl milkyWayCluster) []ColorStop {
	return []ColorStop{
		{Offset: 0, Color: HSLA(cl.Hue, 1, cl.Whiteness/100, 0.002)},
		{Offset: 0.25, Color: HSLA(cl.Hue, 1, (cl.Whiteness+30)/100, 0.01+0.01*cl.Brightness)},
		{Offset: 0.4, Color: HSLA(cl.Hue, 1, (cl.Whiteness+15)/100, 0.005)},
		{Offset: 1, Color: ColorTransparent},
	}
}
