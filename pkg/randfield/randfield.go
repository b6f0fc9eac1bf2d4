// Package randfield builds the pre-generated pools of random scalars and hues that the
// starfield consumes every frame instead of calling the random source per star.
package randfield

// Source is the subset of *rand.Rand the pools need.
type Source interface {
	Float64() float64
}

// Hue band limits. Raw hues above HueBandStart are pushed past the excluded band by HueBandSkip,
// so no pool entry ever lands in [HueBandStart+1, HueBandStart+HueBandSkip].
const (
	HueRawRange  = 160
	HueBandStart = 60
	HueBandSkip  = 110
)

// RandomPool is a fixed sequence of values in [0,1) read through a cyclic cursor.
type RandomPool struct {
	values []float64
	cursor int
}

func NewRandomPool(src Source, length int) *RandomPool {
	if length < 1 {
		length = 1
	}
	values := make([]float64, length)
	for i := range values {
		values[i] = src.Float64()
	}
	return &RandomPool{values: values}
}

// NewRandomPoolFrom wraps an existing slice. The pool takes ownership of values.
func NewRandomPoolFrom(values []float64) *RandomPool {
	if len(values) == 0 {
		values = []float64{0}
	}
	return &RandomPool{values: values}
}

func (p *RandomPool) Len() int { return len(p.values) }

// At returns the value at index i, wrapping i into the pool.
func (p *RandomPool) At(i int) float64 { return p.values[p.Wrap(i)] }

// Wrap maps any index (including negative ones) onto [0, Len).
func (p *RandomPool) Wrap(i int) int {
	n := len(p.values)
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func (p *RandomPool) Cursor() int { return p.cursor }

// Current is the value under the shared cursor.
func (p *RandomPool) Current() float64 { return p.values[p.cursor] }

// Advance moves the shared cursor one step, wrapping at the end of the pool.
func (p *RandomPool) Advance() {
	p.cursor = (p.cursor + 1) % len(p.values)
}

// HuePool is a fixed sequence of hue degrees with the excluded band skipped.
type HuePool struct {
	hues []int
}

func NewHuePool(src Source, length int) *HuePool {
	if length < 1 {
		length = 1
	}
	hues := make([]int, length)
	for i := range hues {
		hues[i] = HueFromRaw(int(src.Float64() * HueRawRange))
	}
	return &HuePool{hues: hues}
}

// HueFromRaw maps a raw draw in [0,160) onto the two allowed bands.
func HueFromRaw(raw int) int {
	if raw > HueBandStart {
		return raw + HueBandSkip
	}
	return raw
}

func (p *HuePool) Len() int { return len(p.hues) }

func (p *HuePool) At(i int) int {
	n := len(p.hues)
	i %= n
	if i < 0 {
		i += n
	}
	return p.hues[i]
}
