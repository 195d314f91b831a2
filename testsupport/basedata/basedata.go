package basedata

import (
	"time"

	"github.com/aarondl/opt/null"
	"github.com/google/go-cmp/cmp"

	"github.com/tilerace/race-engine/pkg/model"
)

// CmpOpts makes results with nullable fields comparable by cmp.Diff.
var CmpOpts = cmp.Options{
	cmp.Comparer(func(a, b null.Val[model.Slot]) bool {
		return a.IsNull() == b.IsNull() && a.GetOrZero() == b.GetOrZero()
	}),
	cmp.Comparer(func(a, b null.Val[model.Incident]) bool {
		return a.IsNull() == b.IsNull() && a.GetOrZero() == b.GetOrZero()
	}),
}

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2024-04-28T11:10:12Z")
	return t
}

// SampleBuild returns a build with every slot set to the same part.
func SampleBuild(tier model.Tier, readiness float64) model.CarBuild {
	return model.NewCarBuild(model.SlotPart{Tier: tier, Readiness: readiness})
}

// SampleEntries returns four healthy entrants of different strength.
func SampleEntries() []model.Entry {
	mixed := SampleBuild(model.TierUpgraded, 90)
	mixed[model.SlotEngine] = model.SlotPart{Tier: model.TierPerformance, Readiness: 80}
	mixed[model.SlotTires] = model.SlotPart{Tier: model.TierStandard, Readiness: 95}
	return []model.Entry{
		{CarID: "car-1", PlayerID: "player-1", Username: "alice", Build: SampleBuild(model.TierPerformance, 95)},
		{CarID: "car-2", PlayerID: "player-2", Username: "bob", Build: mixed},
		{CarID: "car-3", PlayerID: "player-3", Username: "carol", Build: SampleBuild(model.TierUpgraded, 70)},
		{CarID: "car-4", PlayerID: "player-4", Username: "dave", Build: SampleBuild(model.TierStandard, 60)},
	}
}
