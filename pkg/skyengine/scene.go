package skyengine

import (
	"math/rand"

	"github.com/sudorandom/starfield/pkg/randfield"
)

// Scene owns every piece of mutable sky state: the pools, the persistent stars and the live
// shooting stars. It never touches surfaces directly; callers hand it a Canvas.
type Scene struct {
	cfg      Config
	rng      *rand.Rand
	palette  []Color
	viewport Viewport

	Random   *randfield.RandomPool
	Hues     *randfield.HuePool
	Stars    []Star
	Shooting []ShootingStar

	nextID uint64
	ticks  uint64
}

func NewScene(cfg Config, rng *rand.Rand) *Scene {
	return &Scene{
		cfg:     cfg,
		rng:     rng,
		palette: parsePalette(cfg.ShootingPalette),
	}
}

// Init builds the pools and populates the star field for v. Pools survive later resizes.
func (s *Scene) Init(v Viewport) {
	s.Random = randfield.NewRandomPool(s.rng, s.cfg.RandomPoolLength)
	s.Hues = randfield.NewHuePool(s.rng, s.cfg.HuePoolLength)
	s.Stars = PopulateStars(s.cfg, v, s.rng, s.Random, s.Hues)
	s.Shooting = nil
	s.viewport = v
}

// Relayout moves the star field into a new viewport. Invalid viewports are remembered but
// leave the stars where they are until a usable size arrives.
func (s *Scene) Relayout(v Viewport) {
	if !v.Valid() {
		return
	}
	if s.viewport.Valid() {
		RelayoutStars(s.Stars, s.viewport, v)
	} else {
		for i := range s.Stars {
			st := &s.Stars[i]
			st.X = insetSample(s.rng.Float64(), v.Width, st.Size)
			st.Y = insetSample(s.rng.Float64(), v.Height, st.Size)
		}
	}
	s.viewport = v
}

func (s *Scene) Viewport() Viewport { return s.viewport }

func (s *Scene) Config() Config { return s.cfg }

// Ticks is the number of frames the scene has advanced.
func (s *Scene) Ticks() uint64 { return s.ticks }

// PaintMilkyWay regenerates the static milky way layer.
func (s *Scene) PaintMilkyWay(c Canvas) {
	GenerateMilkyWay(c, s.cfg, s.viewport, s.rng)
}

// Tick runs one accepted frame: redraw the stars, run the shooting star pass and advance the
// shared pool cursor.
func (s *Scene) Tick(c FrameCanvas) {
	if s.Random == nil || !s.viewport.Valid() {
		return
	}
	c.Clear()

	for i := range s.Stars {
		s.Stars[i] = UpdateStar(s.Stars[i], s.Random)
		RenderStar(c, s.Stars[i], s.Random, s.Hues, s.cfg.AlphaJitter)
	}

	s.Shooting = PruneShootingStars(s.Shooting)
	if s.Random.Current() < s.cfg.ShootingStarDensity {
		bw, _ := s.viewport.BackingSize()
		s.nextID++
		s.Shooting = append(s.Shooting, newShootingStar(s.nextID, s.cfg, float64(bw), s.palette, s.rng))
	}
	for i := range s.Shooting {
		s.Shooting[i] = UpdateShootingStar(s.Shooting[i])
		RenderShootingStar(c, s.Shooting[i], s.cfg)
	}

	s.Random.Advance()
	s.ticks++
}
