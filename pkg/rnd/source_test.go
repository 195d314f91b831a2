package rnd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Reproducible(t *testing.T) {
	a, b := New(42), New(42)
	for range 100 {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.IntN(10), b.IntN(10))
	}
}

func TestDerive(t *testing.T) {
	a := Derive("race-1", "car-1")
	b := Derive("race-1", "car-1")
	c := Derive("race-1", "car-2")
	va, vb, vc := a.Float64(), b.Float64(), c.Float64()
	assert.Equal(t, va, vb)
	assert.NotEqual(t, va, vc)
}

func TestUniform_Bounds(t *testing.T) {
	src := New(7)
	for range 1000 {
		v := Uniform(src, -15, 15)
		assert.GreaterOrEqual(t, v, -15.0)
		assert.Less(t, v, 15.0)
	}
}

func TestWeighted(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		draw    float64
		want    int
	}{
		{name: "first", weights: []float64{0.7, 0.25, 0.05}, draw: 0.1, want: 0},
		{name: "second", weights: []float64{0.7, 0.25, 0.05}, draw: 0.8, want: 1},
		{name: "last", weights: []float64{0.7, 0.25, 0.05}, draw: 0.99, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Weighted(&Fixed{Floats: []float64{tt.draw}}, tt.weights)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFixed(t *testing.T) {
	f := &Fixed{Floats: []float64{0.1, 0.2}, Ints: []int{5, -1}}
	assert.Equal(t, 0.1, f.Float64())
	assert.Equal(t, 0.2, f.Float64())
	assert.Equal(t, 0.1, f.Float64())
	assert.Equal(t, 1, f.IntN(4))
	assert.Equal(t, 3, f.IntN(4))
}
