package scoring

import (
	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/rnd"
)

const (
	dnfReadiness   = 20.0
	dnfProbability = 0.10

	// luck beyond this magnitude gets a narrative tag
	tagThreshold = 5.0
)

var (
	PositiveTags = []string{
		"Perfect run through all sectors",
		"Clean air throughout",
		"Flawless pit strategy",
		"Ideal conditions hit at the right moment",
		"Competitor incident cleared the way",
	}
	NegativeTags = []string{
		"Mechanical issue on lap 3",
		"Traffic incident cost time",
		"Safety car negated the lead",
		"Unexpected surface grip loss",
		"Debris on track forced evasion",
	}
	NeutralTag = "Uneventful run, luck was a non-factor"
)

// rollDNF rolls once for every slot below the DNF readiness threshold, in
// canonical slot order. The first failing slot is reported.
func rollDNF(b model.CarBuild, src rnd.Source) (bool, model.Slot) {
	dnf := false
	var slot model.Slot
	for _, s := range model.Slots {
		if b[s].Readiness >= dnfReadiness {
			continue
		}
		if src.Float64() < dnfProbability && !dnf {
			dnf = true
			slot = s
		}
	}
	return dnf, slot
}

func drawLuck(src rnd.Source, bound float64) float64 {
	return rnd.Uniform(src, -bound, bound)
}

// luckTag draws from src only if the luck is large enough to be worth a story.
func luckTag(src rnd.Source, luck float64) string {
	switch {
	case luck > tagThreshold:
		return rnd.Choice(src, PositiveTags)
	case luck < -tagThreshold:
		return rnd.Choice(src, NegativeTags)
	default:
		return NeutralTag
	}
}
