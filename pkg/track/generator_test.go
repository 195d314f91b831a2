//nolint:funlen,lll // ok for tests
package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/rnd"
)

// rectangleWalk steers the walk around the 7x7 rectangle in the top left
// corner of the grid: 6 east, 6 south, 6 west, 5 north.
func rectangleWalk() []int {
	ret := make([]int, 0, 23)
	add := func(v, count int) {
		for range count {
			ret = append(ret, v)
		}
	}
	add(0, 6) // east along y=0, candidates [E S]
	add(1, 1) // turn south at (6,0), candidates [E S]
	add(1, 5) // south along x=6, candidates [E S W]
	add(2, 1) // turn west at (6,6), candidates [E S W]
	add(2, 5) // west along y=6, candidates [N S W]
	add(0, 1) // turn north at (0,6), candidates [N S]
	add(0, 4) // north along x=0, candidates [N E]
	return ret
}

func TestGenerate_FirstAttempt(t *testing.T) {
	src := &rnd.Fixed{Ints: rectangleWalk(), Floats: []float64{0.99}}
	g := NewGenerator(WithSource(src))

	tr, attempts := g.generate(12, 24, 10)

	assert.Equal(t, 1, attempts)
	require.NoError(t, tr.Validate(24))
	assert.False(t, tr.Fallback)
	assert.Equal(t, 12, tr.GridWidth)
	assert.Equal(t, 12, tr.GridHeight)
	assert.Len(t, tr.PathOrder, 24)
	assert.Equal(t, model.Coord{X: 0, Y: 0}, tr.PathOrder[0])
	assert.Equal(t, model.Coord{X: 0, Y: 1}, tr.PathOrder[23])

	// the cycle contains the start cell exactly once (closing duplicate
	// is implied by wrap-around) and every other cell at most once
	counts := map[model.Coord]int{}
	for _, c := range tr.PathOrder {
		counts[c]++
	}
	for c, cnt := range counts {
		assert.Equal(t, 1, cnt, "cell %v", c)
	}
	assert.True(t, tr.PathOrder[len(tr.PathOrder)-1].Adjacent(tr.PathOrder[0]))

	// corners of the rectangle
	assert.Equal(t, model.Tile{X: 0, Y: 0, Type: model.TileCurve, Orientation: model.CornerSE}, tr.Tiles[0])
	assert.Equal(t, model.Tile{X: 6, Y: 0, Type: model.TileCurve, Orientation: model.CornerSW}, tr.Tiles[6])
	assert.Equal(t, model.Tile{X: 6, Y: 6, Type: model.TileCurve, Orientation: model.CornerNW}, tr.Tiles[12])
	assert.Equal(t, model.Tile{X: 0, Y: 6, Type: model.TileCurve, Orientation: model.CornerNE}, tr.Tiles[18])
	assert.Equal(t, model.Tile{X: 3, Y: 0, Type: model.TileStraight, Orientation: model.Horizontal}, tr.Tiles[3])
	assert.Equal(t, model.Tile{X: 0, Y: 3, Type: model.TileStraight, Orientation: model.Vertical}, tr.Tiles[21])
}

func TestGenerate_Fallback(t *testing.T) {
	// a 6x6 walk visits at most 36 cells, so 40 steps can never be reached
	g := NewGenerator(WithSource(rnd.New(3)))
	tr, attempts := g.generate(6, 40, 3)
	assert.Equal(t, 0, attempts)
	assert.True(t, tr.Fallback)
	require.NoError(t, tr.Validate(40))
	assert.Equal(t, Oval(6), tr)
}

func TestGenerate_ZeroRetries(t *testing.T) {
	g := NewGenerator(WithSource(rnd.New(1)))
	tr := g.Generate(8, 10, 0)
	assert.True(t, tr.Fallback)
	assert.NoError(t, tr.Validate(10))
}

func TestGenerate_Properties(t *testing.T) {
	for _, size := range []int{1, 4, 5, 8, 12, 20, 40} {
		for seed := range uint64(25) {
			g := NewGenerator(WithSource(rnd.New(seed)))
			minSteps := max(size*2, 8)
			tr := g.Generate(size, minSteps, 10)
			require.NoError(t, tr.Validate(minSteps), "size %d seed %d", size, seed)
			assert.GreaterOrEqual(t, tr.GridWidth, MinGridSize)
			if !tr.Fallback {
				assert.GreaterOrEqual(t, tr.Len(), minSteps)
				assert.Equal(t, model.Coord{}, tr.PathOrder[0])
			}
			for i := range tr.Tiles {
				next := tr.TileAt(i + 1)
				if tr.Tiles[i].Type == model.TileChicane {
					assert.NotEqual(t, model.TileChicane, next.Type, "adjacent chicanes")
				}
			}
		}
	}
}

func TestGenerate_Reproducible(t *testing.T) {
	a := NewGenerator(WithSource(rnd.New(99))).Generate(12, 24, 10)
	b := NewGenerator(WithSource(rnd.New(99))).Generate(12, 24, 10)
	assert.Equal(t, a, b)
}

func TestPlaceChicanes(t *testing.T) {
	g := NewGenerator(WithSource(&rnd.Fixed{Floats: []float64{0}}), WithChicaneRate(1))
	tr := Oval(8)
	g.placeChicanes(tr)
	require.NoError(t, tr.Validate(0))
	chicanes := 0
	for i, tile := range tr.Tiles {
		if tile.Type != model.TileChicane {
			continue
		}
		chicanes++
		prev, next := tr.TileAt(i-1), tr.TileAt(i+1)
		assert.Equal(t, model.TileStraight, prev.Type)
		assert.Equal(t, model.TileStraight, next.Type)
		assert.Equal(t, tile.Orientation, prev.Orientation)
	}
	assert.Positive(t, chicanes)
}

func TestOval(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		wantLen  int
		wantGrid int
	}{
		{name: "minimal", n: 4, wantLen: 4, wantGrid: 4},
		{name: "clamped", n: 2, wantLen: 4, wantGrid: 4},
		{name: "default size", n: 12, wantLen: 36, wantGrid: 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Oval(tt.n)
			assert.True(t, tr.Fallback)
			assert.Equal(t, tt.wantGrid, tr.GridWidth)
			assert.Len(t, tr.PathOrder, tt.wantLen)
			assert.NoError(t, tr.Validate(0))
			assert.Equal(t, Oval(tt.n), tr)
		})
	}
}

func TestMinStepsFor(t *testing.T) {
	assert.Equal(t, 24, MinStepsFor(6))
	assert.Equal(t, 24, MinStepsFor(12))
	assert.Equal(t, 40, MinStepsFor(20))
}
