package model

import (
	"errors"
	"fmt"
	"strings"
)

type (
	TileType    string
	Orientation string
	Direction   int
)

const (
	TileStraight TileType = "straight"
	TileCurve    TileType = "curve"
	TileChicane  TileType = "chicane"
)

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
	CornerNE   Orientation = "NE"
	CornerNW   Orientation = "NW"
	CornerSE   Orientation = "SE"
	CornerSW   Orientation = "SW"
)

const (
	North Direction = iota
	East
	South
	West
)

var ErrInvalidTrack = errors.New("invalid track")

// Coord is a grid cell. Y grows southwards.
//
//nolint:tagliatelle // wire format
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

type Tile struct {
	X           int         `json:"x"`
	Y           int         `json:"y"`
	Type        TileType    `json:"type"`
	Orientation Orientation `json:"orientation"`
}

//nolint:tagliatelle // wire format
type Track struct {
	GridWidth  int     `json:"grid_width"`
	GridHeight int     `json:"grid_height"`
	Tiles      []Tile  `json:"tiles"`
	PathOrder  []Coord `json:"path_order"`
	// Fallback is true if the track is the deterministic oval
	Fallback bool `json:"fallback"`
}

// SpeedProfile holds the target speed (ft/s) per entry of Track.PathOrder
type SpeedProfile []float64

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	}
	return "?"
}

func (d Direction) Horizontal() bool {
	return d == East || d == West
}

// Delta returns the grid step for moving one cell in direction d.
func (d Direction) Delta() Coord {
	switch d {
	case North:
		return Coord{0, -1}
	case East:
		return Coord{1, 0}
	case South:
		return Coord{0, 1}
	case West:
		return Coord{-1, 0}
	}
	return Coord{}
}

func (c Coord) Step(d Direction) Coord {
	delta := d.Delta()
	return Coord{X: c.X + delta.X, Y: c.Y + delta.Y}
}

// DirectionTo returns the direction from c to an adjacent cell o.
func (c Coord) DirectionTo(o Coord) (Direction, bool) {
	switch {
	case o.X == c.X+1 && o.Y == c.Y:
		return East, true
	case o.X == c.X-1 && o.Y == c.Y:
		return West, true
	case o.Y == c.Y+1 && o.X == c.X:
		return South, true
	case o.Y == c.Y-1 && o.X == c.X:
		return North, true
	}
	return 0, false
}

func (c Coord) Adjacent(o Coord) bool {
	_, ok := c.DirectionTo(o)
	return ok
}

// Len returns the number of tiles of one lap.
func (t *Track) Len() int {
	return len(t.PathOrder)
}

// TileAt returns the tile placed at path index i (wrapping).
func (t *Track) TileAt(i int) Tile {
	n := len(t.Tiles)
	return t.Tiles[((i%n)+n)%n]
}

// Validate checks the structural invariants of a closed loop track.
// minSteps is ignored for fallback tracks.
//
//nolint:cyclop // one check per invariant
func (t *Track) Validate(minSteps int) error {
	n := len(t.PathOrder)
	if n < 4 {
		return fmt.Errorf("%w: path has %d cells", ErrInvalidTrack, n)
	}
	if len(t.Tiles) != n {
		return fmt.Errorf("%w: %d tiles for %d path cells", ErrInvalidTrack, len(t.Tiles), n)
	}
	if !t.Fallback && n < minSteps {
		return fmt.Errorf("%w: path length %d below minimum %d", ErrInvalidTrack, n, minSteps)
	}
	seen := make(map[Coord]struct{}, n)
	for i, c := range t.PathOrder {
		if c.X < 0 || c.Y < 0 || c.X >= t.GridWidth || c.Y >= t.GridHeight {
			return fmt.Errorf("%w: cell %v outside grid", ErrInvalidTrack, c)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: cell %v visited twice", ErrInvalidTrack, c)
		}
		seen[c] = struct{}{}
		prev := t.PathOrder[(i-1+n)%n]
		next := t.PathOrder[(i+1)%n]
		in, ok := prev.DirectionTo(c)
		if !ok {
			return fmt.Errorf("%w: %v and %v are not adjacent", ErrInvalidTrack, prev, c)
		}
		out, ok := c.DirectionTo(next)
		if !ok {
			return fmt.Errorf("%w: %v and %v are not adjacent", ErrInvalidTrack, c, next)
		}
		tile := t.Tiles[i]
		if tile.X != c.X || tile.Y != c.Y {
			return fmt.Errorf("%w: tile %d placed at %d,%d, path says %v",
				ErrInvalidTrack, i, tile.X, tile.Y, c)
		}
		if !tile.Fits(in, out) {
			return fmt.Errorf("%w: tile %s/%s at %v does not connect %s->%s",
				ErrInvalidTrack, tile.Type, tile.Orientation, c, in, out)
		}
	}
	return nil
}

// Fits reports whether the tile connects a car travelling in direction in
// to leave in direction out.
func (t Tile) Fits(in, out Direction) bool {
	switch t.Type {
	case TileStraight, TileChicane:
		if in != out {
			return false
		}
		if in.Horizontal() {
			return t.Orientation == Horizontal
		}
		return t.Orientation == Vertical
	case TileCurve:
		if in == out || in.Horizontal() == out.Horizontal() {
			return false
		}
		return t.Orientation == CornerOrientation(in, out)
	}
	return false
}

// CornerOrientation names the two cell sides a curve connects. A car heading
// in direction in enters through the side opposite to in and leaves through
// side out.
func CornerOrientation(in, out Direction) Orientation {
	entrySide := (in + 2) % 4
	var ns, ew Direction
	for _, side := range []Direction{entrySide, out} {
		if side.Horizontal() {
			ew = side
		} else {
			ns = side
		}
	}
	return Orientation(ns.String() + ew.String())
}

// Render returns a simple text representation of the track grid.
func (t *Track) Render() string {
	grid := make([][]rune, t.GridHeight)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(".", t.GridWidth))
	}
	for i, tile := range t.Tiles {
		var r rune
		switch tile.Type {
		case TileStraight:
			r = '-'
			if tile.Orientation == Vertical {
				r = '|'
			}
		case TileChicane:
			r = '~'
		case TileCurve:
			r = '+'
		}
		if i == 0 {
			r = 'S'
		}
		grid[tile.Y][tile.X] = r
	}
	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}
