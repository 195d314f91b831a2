package model

import (
	"errors"
	"fmt"
	"math"
)

type (
	Slot string
	Tier string
)

const (
	SlotEngine      Slot = "engine"
	SlotTires       Slot = "tires"
	SlotSuspension  Slot = "suspension"
	SlotAero        Slot = "aero"
	SlotFuel        Slot = "fuel"
	SlotElectronics Slot = "electronics"
)

const (
	TierStandard    Tier = "standard"
	TierUpgraded    Tier = "upgraded"
	TierPerformance Tier = "performance"
)

var (
	ErrUnknownSlot      = errors.New("unknown slot")
	ErrUnknownTier      = errors.New("unknown tier")
	ErrMissingSlot      = errors.New("missing slot")
	ErrInvalidReadiness = errors.New("readiness outside [0,100]")
)

// Slots lists the six slots of a car in their canonical order.
var Slots = []Slot{
	SlotEngine, SlotTires, SlotSuspension, SlotAero, SlotFuel, SlotElectronics,
}

var Tiers = []Tier{TierStandard, TierUpgraded, TierPerformance}

func (s Slot) Valid() bool {
	switch s {
	case SlotEngine, SlotTires, SlotSuspension, SlotAero, SlotFuel, SlotElectronics:
		return true
	}
	return false
}

func (t Tier) Valid() bool {
	return t.Rank() >= 0
}

// Rank is the ordinal of the tier (standard=0). Unknown tiers yield -1.
func (t Tier) Rank() int {
	switch t {
	case TierStandard:
		return 0
	case TierUpgraded:
		return 1
	case TierPerformance:
		return 2
	}
	return -1
}

// BaseScore is the tier base score used by all score components.
func (t Tier) BaseScore() float64 {
	switch t {
	case TierStandard:
		return 40
	case TierUpgraded:
		return 70
	case TierPerformance:
		return 100
	}
	return 0
}

type SlotPart struct {
	Tier      Tier    `json:"tier" yaml:"tier"`
	Readiness float64 `json:"readiness" yaml:"readiness"`
}

// CarBuild maps every slot to its installed part.
type CarBuild map[Slot]SlotPart

// NewCarBuild returns a build with all slots set to part.
func NewCarBuild(part SlotPart) CarBuild {
	ret := make(CarBuild, len(Slots))
	for _, s := range Slots {
		ret[s] = part
	}
	return ret
}

// Validate reports the first problem found in the build.
func (b CarBuild) Validate() error {
	for s := range b {
		if !s.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownSlot, s)
		}
	}
	for _, s := range Slots {
		part, ok := b[s]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingSlot, s)
		}
		if !part.Tier.Valid() {
			return fmt.Errorf("%w: %q in slot %s", ErrUnknownTier, part.Tier, s)
		}
		if math.IsNaN(part.Readiness) || part.Readiness < 0 || part.Readiness > 100 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidReadiness, s, part.Readiness)
		}
	}
	return nil
}

// Clone returns an independent copy. Used to take the locked snapshot.
func (b CarBuild) Clone() CarBuild {
	if b == nil {
		return nil
	}
	ret := make(CarBuild, len(b))
	for k, v := range b {
		ret[k] = v
	}
	return ret
}

// Entry is a race entrant with its locked build.
//
//nolint:tagliatelle // wire format
type Entry struct {
	CarID    string   `json:"car_id" yaml:"carId"`
	PlayerID string   `json:"player_id,omitempty" yaml:"playerId,omitempty"`
	Username string   `json:"username" yaml:"username"`
	Build    CarBuild `json:"build" yaml:"build"`
}
