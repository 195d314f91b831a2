// Package track generates closed loop tile tracks by a bounded random walk
// with a deterministic oval fallback.
package track

import (
	"time"

	"github.com/tilerace/race-engine/log"
	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/rnd"
)

const (
	MinGridSize        = 4
	DefaultGridSize    = 12
	DefaultMinSteps    = 24
	DefaultMaxRetries  = 10
	DefaultChicaneRate = 0.15
)

// MinStepsFor scales the minimum loop length with the grid size.
func MinStepsFor(gridSize int) int {
	return max(DefaultMinSteps, 2*gridSize)
}

// neighbour order used when collecting walk candidates
var walkOrder = []model.Direction{model.North, model.East, model.South, model.West}

type (
	Generator struct {
		src         rnd.Source
		chicaneRate float64
		l           *log.Logger
	}
	Option func(*Generator)
)

func WithSource(src rnd.Source) Option {
	return func(g *Generator) {
		g.src = src
	}
}

// WithChicaneRate sets the probability of turning an eligible straight
// into a chicane. 0 disables chicanes.
func WithChicaneRate(rate float64) Option {
	return func(g *Generator) {
		g.chicaneRate = rate
	}
}

func WithLogger(l *log.Logger) Option {
	return func(g *Generator) {
		g.l = l
	}
}

func NewGenerator(opts ...Option) *Generator {
	ret := &Generator{
		chicaneRate: DefaultChicaneRate,
		l:           log.Default().Named("track"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.src == nil {
		ret.src = rnd.New(uint64(time.Now().UnixNano()))
	}
	return ret
}

// Generate returns a closed loop track on a gridSize x gridSize grid.
// It never fails: if no random walk closes within maxRetries attempts
// the oval fallback is returned. gridSize values below 4 are raised to 4.
func (g *Generator) Generate(gridSize, minSteps, maxRetries int) *model.Track {
	t, _ := g.generate(gridSize, minSteps, maxRetries)
	return t
}

// generate also reports the number of walks that were needed (0 for fallback).
func (g *Generator) generate(gridSize, minSteps, maxRetries int) (*model.Track, int) {
	n := max(gridSize, MinGridSize)
	minSteps = max(minSteps, 4)
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if path := g.walk(n, minSteps); path != nil {
			g.l.Debug("random walk closed",
				log.Int("grid", n),
				log.Int("attempt", attempt),
				log.Int("length", len(path)))
			t := buildTrack(path, n)
			g.placeChicanes(t)
			return t, attempt
		}
	}
	g.l.Info("random walk did not close, using oval",
		log.Int("grid", n), log.Int("minSteps", minSteps), log.Int("retries", maxRetries))
	return Oval(n), 0
}

// walk performs one self avoiding random walk starting at (0,0). It returns
// the visited cells (start first, without the closing duplicate) or nil if
// the walk got stuck or exceeded n*n moves.
func (g *Generator) walk(n, minSteps int) []model.Coord {
	start := model.Coord{X: 0, Y: 0}
	visited := map[model.Coord]bool{start: true}
	path := []model.Coord{start}
	current := start
	candidates := make([]model.Coord, 0, len(walkOrder))

	for range n * n {
		if len(path) >= minSteps && current.Adjacent(start) {
			return path
		}
		candidates = candidates[:0]
		for _, d := range walkOrder {
			c := current.Step(d)
			if c.X < 0 || c.Y < 0 || c.X >= n || c.Y >= n || visited[c] {
				continue
			}
			candidates = append(candidates, c)
		}
		if len(candidates) == 0 {
			return nil
		}
		current = rnd.Choice(g.src, candidates)
		visited[current] = true
		path = append(path, current)
	}
	return nil
}

// placeChicanes promotes straights whose neighbours are straights with the
// same heading. Neither neighbour changes direction, so entry and exit of
// all three tiles stay matched. Chicanes are never adjacent.
func (g *Generator) placeChicanes(t *model.Track) {
	if g.chicaneRate <= 0 {
		return
	}
	n := len(t.Tiles)
	for i := range t.Tiles {
		cur := t.Tiles[i]
		prev := t.Tiles[(i-1+n)%n]
		next := t.Tiles[(i+1)%n]
		if cur.Type != model.TileStraight ||
			prev.Type != model.TileStraight || next.Type != model.TileStraight ||
			prev.Orientation != cur.Orientation || next.Orientation != cur.Orientation {
			continue
		}
		if g.src.Float64() < g.chicaneRate {
			t.Tiles[i].Type = model.TileChicane
		}
	}
}
