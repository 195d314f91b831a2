package rules

import "github.com/tilerace/race-engine/pkg/model"

func weights(engine, tires, suspension, aero, fuel, electronics float64) map[model.Slot]float64 {
	return map[model.Slot]float64{
		model.SlotEngine:      engine,
		model.SlotTires:       tires,
		model.SlotSuspension:  suspension,
		model.SlotAero:        aero,
		model.SlotFuel:        fuel,
		model.SlotElectronics: electronics,
	}
}

func units(standard, upgraded, performance float64) map[model.Tier]float64 {
	return map[model.Tier]float64{
		model.TierStandard:    standard,
		model.TierUpgraded:    upgraded,
		model.TierPerformance: performance,
	}
}

// Default returns the built-in rule table. Each call returns a fresh copy.
//
//nolint:funlen // table
func Default() *Table {
	return &Table{
		Events: map[string]EventRules{
			"sprint": {
				SlotWeights:    weights(1.5, 1.0, 1.0, 1.0, 1.0, 1.0),
				WearMultiplier: 1.0,
				StressedSlots:  []model.Slot{model.SlotEngine},
			},
			"endurance": {
				SlotWeights: weights(1.0, 1.4, 1.0, 1.0, 1.4, 1.0),
				Penalties: []Penalty{{
					Kind:      PenaltyReadinessBelow,
					Slots:     []model.Slot{model.SlotTires, model.SlotFuel},
					Readiness: 50,
					Amount:    10,
				}},
				WearMultiplier: 1.8,
				StressedSlots:  []model.Slot{model.SlotFuel, model.SlotTires},
			},
			"time_trial": {
				SlotWeights:    weights(1.0, 1.0, 1.0, 1.0, 1.0, 1.0),
				WearMultiplier: 0.8,
				Solo:           true,
			},
			"wet_track": {
				SlotWeights: weights(1.0, 1.5, 1.3, 1.0, 1.0, 1.0),
				Penalties: []Penalty{{
					Kind:   PenaltyTierBelow,
					Slots:  []model.Slot{model.SlotTires},
					Tier:   model.TierUpgraded,
					Amount: 15,
				}},
				WearMultiplier: 1.2,
				StressedSlots:  []model.Slot{model.SlotTires, model.SlotSuspension},
			},
			"night_race": {
				SlotWeights: weights(1.0, 1.0, 1.0, 1.0, 1.0, 1.5),
				Penalties: []Penalty{{
					Kind:   PenaltyTierBelow,
					Slots:  []model.Slot{model.SlotElectronics},
					Tier:   model.TierUpgraded,
					Amount: 10,
				}},
				WearMultiplier: 1.0,
				StressedSlots:  []model.Slot{model.SlotElectronics},
			},
			"altitude": {
				SlotWeights:    weights(0.8, 1.0, 1.4, 1.3, 1.0, 1.0),
				WearMultiplier: 1.1,
				StressedSlots:  []model.Slot{model.SlotSuspension, model.SlotAero},
			},
			"spec_class": {
				SlotWeights:    weights(1.0, 1.0, 1.0, 1.0, 1.0, 1.4),
				WearMultiplier: 1.0,
				StressedSlots:  []model.Slot{model.SlotElectronics},
			},
			"weight_limit": {
				SlotWeights: weights(1.0, 1.0, 1.0, 1.0, 1.0, 1.0),
				Penalties: []Penalty{{
					Kind:   PenaltyWeightOver,
					Slots:  []model.Slot{model.SlotAero, model.SlotFuel},
					Cap:    70,
					Amount: 10,
				}},
				WearMultiplier: 1.0,
				StressedSlots:  []model.Slot{model.SlotAero, model.SlotFuel},
			},
		},
		WeightUnits: map[model.Slot]map[model.Tier]float64{
			model.SlotEngine:      units(10, 14, 18),
			model.SlotTires:       units(8, 10, 13),
			model.SlotSuspension:  units(6, 8, 11),
			model.SlotAero:        units(5, 7, 10),
			model.SlotFuel:        units(9, 11, 15),
			model.SlotElectronics: units(4, 6, 9),
		},
	}
}
