package randfield

import (
	"math/rand"
	"testing"
)

type scriptedSource struct {
	values []float64
	i      int
}

func (s *scriptedSource) Float64() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

func TestHueFromRaw(t *testing.T) {
	tests := []struct {
		raw, want int
	}{
		{0, 0},
		{45, 45},
		{60, 60},
		{61, 171},
		{90, 200},
		{159, 269},
	}
	for _, tt := range tests {
		if got := HueFromRaw(tt.raw); got != tt.want {
			t.Errorf("HueFromRaw(%d) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestHuePoolSkipsBand(t *testing.T) {
	p := NewHuePool(rand.New(rand.NewSource(7)), 5000)
	if p.Len() != 5000 {
		t.Fatalf("Len() = %d, want 5000", p.Len())
	}
	for i := 0; i < p.Len(); i++ {
		h := p.At(i)
		if h > HueBandStart && h <= HueBandStart+HueBandSkip {
			t.Fatalf("hue %d at %d falls inside the excluded band", h, i)
		}
		if h < 0 || h >= HueRawRange+HueBandSkip {
			t.Fatalf("hue %d at %d out of range", h, i)
		}
	}
}

func TestHuePoolFromScriptedSource(t *testing.T) {
	src := &scriptedSource{values: []float64{45.0 / 160, 90.0 / 160}}
	p := NewHuePool(src, 2)
	if p.At(0) != 45 {
		t.Errorf("At(0) = %d, want 45", p.At(0))
	}
	if p.At(1) != 200 {
		t.Errorf("At(1) = %d, want 200", p.At(1))
	}
	if p.At(3) != 200 {
		t.Errorf("At(3) = %d, want wrapped 200", p.At(3))
	}
}

func TestRandomPoolCursorWraps(t *testing.T) {
	p := NewRandomPoolFrom([]float64{0.1, 0.2, 0.3})
	want := []float64{0.1, 0.2, 0.3, 0.1, 0.2}
	for i, w := range want {
		if got := p.Current(); got != w {
			t.Errorf("step %d: Current() = %v, want %v", i, got, w)
		}
		p.Advance()
	}
	if p.Cursor() != 2 {
		t.Errorf("Cursor() = %d, want 2", p.Cursor())
	}
}

func TestRandomPoolValuesInRange(t *testing.T) {
	p := NewRandomPool(rand.New(rand.NewSource(1)), 1000)
	for i := 0; i < p.Len(); i++ {
		if v := p.At(i); v < 0 || v >= 1 {
			t.Fatalf("At(%d) = %v, want [0,1)", i, v)
		}
	}
}

func TestRandomPoolWrap(t *testing.T) {
	p := NewRandomPoolFrom([]float64{0, 0, 0, 0})
	tests := []struct{ in, want int }{{0, 0}, {3, 3}, {4, 0}, {9, 1}, {-1, 3}}
	for _, tt := range tests {
		if got := p.Wrap(tt.in); got != tt.want {
			t.Errorf("Wrap(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEmptyPoolsClampToOne(t *testing.T) {
	if p := NewRandomPool(rand.New(rand.NewSource(1)), 0); p.Len() != 1 {
		t.Errorf("RandomPool Len() = %d, want 1", p.Len())
	}
	if p := NewHuePool(rand.New(rand.NewSource(1)), -3); p.Len() != 1 {
		t.Errorf("HuePool Len() = %d, want 1", p.Len())
	}
}
