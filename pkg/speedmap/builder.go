// Package speedmap derives the per tile target speeds of a track from
// nominal tile speeds and bounded acceleration and braking.
package speedmap

import (
	"errors"
	"fmt"
	"math"

	"github.com/tilerace/race-engine/pkg/model"
)

// tolerance used when comparing speeds (ft/s)
const epsilon = 0.01

var ErrProfileViolation = errors.New("speed profile violates limits")

// NominalSpeed returns the target speed of a tile type before any
// acceleration or braking constraint.
func (p Physics) NominalSpeed(tt model.TileType) float64 {
	switch tt {
	case model.TileStraight:
		return p.TopSpeed
	case model.TileCurve:
		return p.CornerSpeed
	case model.TileChicane:
		return p.ChicaneSpeed
	}
	return p.ChicaneSpeed
}

// reachable returns the highest speed that can be reached (or shed to v)
// over one tile length with the given rate.
func (p Physics) reachable(v, rate float64) float64 {
	return math.Sqrt(v*v + 2.0*rate*p.TileLength)
}

// Build computes the speed profile of a closed loop track. Entry i belongs
// to t.PathOrder[i]. The result is deterministic for a given track and physics.
func Build(t *model.Track, p Physics) (model.SpeedProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := len(t.Tiles)
	if n == 0 {
		return model.SpeedProfile{}, nil
	}
	speed := make(model.SpeedProfile, n)
	for i, tile := range t.Tiles {
		speed[i] = p.NominalSpeed(tile.Type)
	}

	for range p.MaxPasses {
		changed := false
		// braking: a tile may not be faster than what can be shed before the next one
		for i := n - 1; i >= 0; i-- {
			limit := p.reachable(speed[(i+1)%n], p.Brake)
			if speed[i] > limit+epsilon {
				speed[i] = limit
				changed = true
			}
		}
		// acceleration: a tile may not be faster than what can be gained after the previous one
		for i := range n {
			limit := p.reachable(speed[(i-1+n)%n], p.Accel)
			if speed[i] > limit+epsilon {
				speed[i] = limit
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return speed, nil
}

// CheckProfile verifies that no transition between consecutive entries
// (including the wrap from last to first) exceeds the limits.
func CheckProfile(profile model.SpeedProfile, p Physics) error {
	n := len(profile)
	for i := range n {
		cur, next := profile[i], profile[(i+1)%n]
		if next > p.reachable(cur, p.Accel)+epsilon {
			return fmt.Errorf("%w: accelerating %d->%d from %.2f to %.2f",
				ErrProfileViolation, i, (i+1)%n, cur, next)
		}
		if cur > p.reachable(next, p.Brake)+epsilon {
			return fmt.Errorf("%w: braking %d->%d from %.2f to %.2f",
				ErrProfileViolation, i, (i+1)%n, cur, next)
		}
	}
	return nil
}
