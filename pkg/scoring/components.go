package scoring

import (
	"github.com/samber/lo"

	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/rules"
)

const (
	readinessThreshold = 50.0
)

// buildQuality is the plain average of the tier base scores (0..100).
func buildQuality(b model.CarBuild) float64 {
	return lo.SumBy(model.Slots, func(s model.Slot) float64 {
		return b[s].Tier.BaseScore()
	}) / float64(len(model.Slots))
}

// eventFit returns the weighted average of the tier base scores (0..100)
// together with the per slot breakdown.
func eventFit(b model.CarBuild, ev rules.EventRules) (float64, map[model.Slot]model.SlotResult) {
	totalWeight := lo.SumBy(model.Slots, ev.Weight)
	perSlot := make(map[model.Slot]model.SlotResult, len(model.Slots))
	sum := 0.0
	for _, s := range model.Slots {
		part := b[s]
		base := part.Tier.BaseScore()
		w := ev.Weight(s)
		weighted := 0.0
		if totalWeight > 0 {
			weighted = base * w / totalWeight
		}
		sum += weighted
		perSlot[s] = model.SlotResult{
			Tier:          part.Tier,
			BaseScore:     base,
			EventWeight:   w,
			WeightedScore: round2(weighted),
			Readiness:     part.Readiness,
		}
	}
	return sum, perSlot
}

// eventPenalty sums the configured penalties triggered by the build.
func eventPenalty(b model.CarBuild, ev rules.EventRules, table *rules.Table) float64 {
	total := 0.0
	for _, p := range ev.Penalties {
		switch p.Kind {
		case rules.PenaltyTierBelow:
			if lo.SomeBy(p.Slots, func(s model.Slot) bool { return b[s].Tier.Rank() < p.Tier.Rank() }) {
				total += p.Amount
			}
		case rules.PenaltyReadinessBelow:
			if lo.SomeBy(p.Slots, func(s model.Slot) bool { return b[s].Readiness < p.Readiness }) {
				total += p.Amount
			}
		case rules.PenaltyWeightOver:
			if table.BuildWeight(b) > p.Cap {
				total += p.Amount * float64(len(p.Slots))
			}
		}
	}
	return total
}

// readinessScore averages the slot readiness after reducing every slot
// below 50 by its distance to 50 (floored at 0). The applied reduction is
// recorded in perSlot.
func readinessScore(b model.CarBuild, perSlot map[model.Slot]model.SlotResult) float64 {
	total := 0.0
	for _, s := range model.Slots {
		r := b[s].Readiness
		if r < readinessThreshold {
			penalty := readinessThreshold - r
			r = max(0, r-penalty)
			sr := perSlot[s]
			sr.ReadinessPenalty = penalty
			perSlot[s] = sr
		}
		total += r
	}
	return total / float64(len(model.Slots))
}
