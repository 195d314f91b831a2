package speedmap

import (
	"errors"
	"fmt"
)

const (
	FeetPerSecPerG = 32.174
	MphToFps       = 5280.0 / 3600.0
)

var ErrInvalidPhysics = errors.New("invalid physics constants")

// Physics holds the constants the speed profile is derived from.
// Speeds are ft/s, accelerations ft/s², lengths ft.
type Physics struct {
	TileLength   float64 `yaml:"tileLength"`
	TopSpeed     float64 `yaml:"topSpeed"`
	CornerSpeed  float64 `yaml:"cornerSpeed"`
	ChicaneSpeed float64 `yaml:"chicaneSpeed"`
	Accel        float64 `yaml:"accel"`
	Brake        float64 `yaml:"brake"`
	// MaxPasses caps the alternating backward/forward passes
	MaxPasses int `yaml:"maxPasses"`
}

// DefaultPhysics: 30 ft tiles, 120/60/45 mph, 0.5 g acceleration, 1.0 g braking.
func DefaultPhysics() Physics {
	return Physics{
		TileLength:   30,
		TopSpeed:     120 * MphToFps,
		CornerSpeed:  60 * MphToFps,
		ChicaneSpeed: 45 * MphToFps,
		Accel:        0.5 * FeetPerSecPerG,
		Brake:        1.0 * FeetPerSecPerG,
		MaxPasses:    10,
	}
}

func (p Physics) Validate() error {
	switch {
	case p.TileLength <= 0:
		return fmt.Errorf("%w: tile length must be positive", ErrInvalidPhysics)
	case p.ChicaneSpeed <= 0:
		return fmt.Errorf("%w: chicane speed must be positive", ErrInvalidPhysics)
	case !(p.TopSpeed > p.CornerSpeed && p.CornerSpeed > p.ChicaneSpeed):
		return fmt.Errorf("%w: need top > corner > chicane speed", ErrInvalidPhysics)
	case p.Accel <= 0:
		return fmt.Errorf("%w: acceleration must be positive", ErrInvalidPhysics)
	case p.Brake <= p.Accel:
		return fmt.Errorf("%w: braking must exceed acceleration", ErrInvalidPhysics)
	case p.MaxPasses < 1:
		return fmt.Errorf("%w: at least one pass required", ErrInvalidPhysics)
	}
	return nil
}
