// Package wear reduces slot readiness after a race.
package wear

import (
	"github.com/shopspring/decimal"

	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/rules"
)

const (
	// BaseWear is the readiness (percent points) lost per race at multiplier 1.0.
	BaseWear = 15.0
	// StressFactor applies to the stressed slots of an event.
	StressFactor = 1.5
)

// Apply returns a new build with the post race readiness. The input is not modified.
func Apply(b model.CarBuild, eventType string, table *rules.Table) (model.CarBuild, error) {
	ev, err := table.Lookup(eventType)
	if err != nil {
		return nil, err
	}
	ret := b.Clone()
	for s, part := range ret {
		loss := BaseWear * ev.WearMultiplier
		if ev.Stressed(s) {
			loss *= StressFactor
		}
		part.Readiness = decimal.NewFromFloat(max(0, part.Readiness-loss)).
			Round(1).InexactFloat64()
		ret[s] = part
	}
	return ret, nil
}
