package track

import "github.com/tilerace/race-engine/pkg/model"

// buildTrack classifies every cell of the closed path.
func buildTrack(path []model.Coord, n int) *model.Track {
	m := len(path)
	tiles := make([]model.Tile, m)
	for i, c := range path {
		in, _ := path[(i-1+m)%m].DirectionTo(c)
		out, _ := c.DirectionTo(path[(i+1)%m])
		tiles[i] = classify(c, in, out)
	}
	order := make([]model.Coord, m)
	copy(order, path)
	return &model.Track{
		GridWidth:  n,
		GridHeight: n,
		Tiles:      tiles,
		PathOrder:  order,
	}
}

func classify(c model.Coord, in, out model.Direction) model.Tile {
	tile := model.Tile{X: c.X, Y: c.Y}
	if in == out {
		tile.Type = model.TileStraight
		tile.Orientation = model.Vertical
		if in.Horizontal() {
			tile.Orientation = model.Horizontal
		}
		return tile
	}
	tile.Type = model.TileCurve
	tile.Orientation = model.CornerOrientation(in, out)
	return tile
}

// Oval returns the rectangular fallback track, inset by one tile.
// It contains no randomness. n must be >= 4.
func Oval(n int) *model.Track {
	n = max(n, MinGridSize)
	lo, hi := 1, n-2
	path := make([]model.Coord, 0, 4*(hi-lo))
	for x := lo; x <= hi; x++ {
		path = append(path, model.Coord{X: x, Y: lo})
	}
	for y := lo + 1; y <= hi; y++ {
		path = append(path, model.Coord{X: hi, Y: y})
	}
	for x := hi - 1; x >= lo; x-- {
		path = append(path, model.Coord{X: x, Y: hi})
	}
	for y := hi - 1; y > lo; y-- {
		path = append(path, model.Coord{X: lo, Y: y})
	}
	t := buildTrack(path, n)
	t.Fallback = true
	return t
}
