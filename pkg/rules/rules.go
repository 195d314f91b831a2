// Package rules holds the per event type configuration consumed by the scorer
// and the wear calculation. A Table is read-only once loaded.
package rules

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/tilerace/race-engine/pkg/model"
)

const (
	DefaultLuckBound = 15.0
	SoloLuckBound    = 5.0
)

type PenaltyKind string

const (
	// PenaltyTierBelow applies Amount once if any of Slots is below Tier.
	PenaltyTierBelow PenaltyKind = "tier_below"
	// PenaltyReadinessBelow applies Amount once if any of Slots has readiness
	// below Readiness.
	PenaltyReadinessBelow PenaltyKind = "readiness_below"
	// PenaltyWeightOver applies Amount for each of Slots if the total build
	// weight exceeds Cap.
	PenaltyWeightOver PenaltyKind = "weight_over"
)

var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrInvalidRules     = errors.New("invalid event rules")
)

type (
	Penalty struct {
		Kind      PenaltyKind  `yaml:"kind"`
		Slots     []model.Slot `yaml:"slots"`
		Tier      model.Tier   `yaml:"tier,omitempty"`
		Readiness float64      `yaml:"readiness,omitempty"`
		Cap       float64      `yaml:"cap,omitempty"`
		Amount    float64      `yaml:"amount"`
	}

	EventRules struct {
		SlotWeights    map[model.Slot]float64 `yaml:"slotWeights"`
		Penalties      []Penalty              `yaml:"penalties,omitempty"`
		WearMultiplier float64                `yaml:"wearMultiplier"`
		// StressedSlots take extra wear. Listed explicitly, never derived
		// from SlotWeights.
		StressedSlots []model.Slot `yaml:"stressedSlots,omitempty"`
		// Solo marks formats without direct opponents (compressed luck).
		Solo bool `yaml:"solo,omitempty"`
		// LuckBound overrides the bound derived from Solo if > 0.
		LuckBound float64 `yaml:"luckBound,omitempty"`
	}

	Table struct {
		Events      map[string]EventRules                 `yaml:"events"`
		WeightUnits map[model.Slot]map[model.Tier]float64 `yaml:"weightUnits"`
	}
)

// Luck returns the symmetric bound of the luck delta for the event.
func (e EventRules) Luck() float64 {
	if e.LuckBound > 0 {
		return e.LuckBound
	}
	if e.Solo {
		return SoloLuckBound
	}
	return DefaultLuckBound
}

// Weight returns the slot weight multiplier, 1.0 if the slot is not listed.
func (e EventRules) Weight(s model.Slot) float64 {
	if w, ok := e.SlotWeights[s]; ok {
		return w
	}
	return 1.0
}

func (e EventRules) Stressed(s model.Slot) bool {
	return slices.Contains(e.StressedSlots, s)
}

// Lookup returns the rules of the given event type.
func (t *Table) Lookup(eventType string) (EventRules, error) {
	if t == nil {
		return EventRules{}, fmt.Errorf("%w: %q (no rule table)", ErrUnknownEventType, eventType)
	}
	r, ok := t.Events[eventType]
	if !ok {
		return EventRules{}, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}
	return r, nil
}

// EventTypes returns the configured event types in sorted order.
func (t *Table) EventTypes() []string {
	ret := lo.Keys(t.Events)
	slices.Sort(ret)
	return ret
}

// BuildWeight sums the weight units of the installed parts.
func (t *Table) BuildWeight(b model.CarBuild) float64 {
	return lo.SumBy(model.Slots, func(s model.Slot) float64 {
		return t.WeightUnits[s][b[s].Tier]
	})
}

// Validate checks the table for configuration errors.
//
//nolint:cyclop // one check per invariant
func (t *Table) Validate() error {
	if len(t.Events) == 0 {
		return fmt.Errorf("%w: no events configured", ErrInvalidRules)
	}
	for _, name := range t.EventTypes() {
		ev := t.Events[name]
		for s, w := range ev.SlotWeights {
			if !s.Valid() {
				return fmt.Errorf("%w: event %s: %w: %q", ErrInvalidRules, name, model.ErrUnknownSlot, s)
			}
			if w < 0 {
				return fmt.Errorf("%w: event %s: negative weight for %s", ErrInvalidRules, name, s)
			}
		}
		if lo.SumBy(model.Slots, ev.Weight) == 0 {
			return fmt.Errorf("%w: event %s: all slot weights are zero", ErrInvalidRules, name)
		}
		if ev.WearMultiplier < 0 {
			return fmt.Errorf("%w: event %s: negative wear multiplier", ErrInvalidRules, name)
		}
		for _, s := range ev.StressedSlots {
			if !s.Valid() {
				return fmt.Errorf("%w: event %s: %w: %q", ErrInvalidRules, name, model.ErrUnknownSlot, s)
			}
		}
		for i, p := range ev.Penalties {
			if err := p.validate(); err != nil {
				return fmt.Errorf("%w: event %s penalty %d: %w", ErrInvalidRules, name, i, err)
			}
		}
	}
	for s, units := range t.WeightUnits {
		if !s.Valid() {
			return fmt.Errorf("%w: weight units: %w: %q", ErrInvalidRules, model.ErrUnknownSlot, s)
		}
		for tier := range units {
			if !tier.Valid() {
				return fmt.Errorf("%w: weight units: %w: %q", ErrInvalidRules, model.ErrUnknownTier, tier)
			}
		}
	}
	return nil
}

func (p Penalty) validate() error {
	if len(p.Slots) == 0 {
		return errors.New("no slots")
	}
	for _, s := range p.Slots {
		if !s.Valid() {
			return fmt.Errorf("%w: %q", model.ErrUnknownSlot, s)
		}
	}
	switch p.Kind {
	case PenaltyTierBelow:
		if !p.Tier.Valid() {
			return fmt.Errorf("%w: %q", model.ErrUnknownTier, p.Tier)
		}
	case PenaltyReadinessBelow:
		if p.Readiness <= 0 || p.Readiness > 100 {
			return fmt.Errorf("readiness threshold %v outside (0,100]", p.Readiness)
		}
	case PenaltyWeightOver:
		if p.Cap <= 0 {
			return errors.New("weight cap must be positive")
		}
	default:
		return fmt.Errorf("unknown penalty kind %q", p.Kind)
	}
	return nil
}
