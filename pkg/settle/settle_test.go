package settle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/rules"
)

func TestReward(t *testing.T) {
	for pos, want := range map[int]int{1: 800, 2: 500, 3: 300, 4: 100, 6: 100} {
		assert.Equal(t, want, Reward(pos), "position %d", pos)
	}
}

func TestSettle(t *testing.T) {
	build := model.NewCarBuild(model.SlotPart{Tier: model.TierUpgraded, Readiness: 100})
	entries := []model.Entry{
		{CarID: "a", Build: build},
		{CarID: "b", Build: build},
		{CarID: "c", Build: build},
		{CarID: "d", Build: build},
	}
	results := []model.EntryResult{
		{CarID: "c", Position: 1},
		{CarID: "a", Position: 2},
		{CarID: "d", Position: 3},
		{CarID: "b", Position: 4, DNF: true},
	}
	got, err := Settle(results, entries, "sprint", rules.Default())
	require.NoError(t, err)
	require.Len(t, got, 4)
	wantRewards := []int{800, 500, 300, 100}
	for i, s := range got {
		assert.Equal(t, results[i].CarID, s.CarID)
		assert.Equal(t, wantRewards[i], s.Reward)
		assert.InDelta(t, 77.5, s.Build[model.SlotEngine].Readiness, 1e-9)
	}
	assert.InDelta(t, 100, build[model.SlotEngine].Readiness, 0)
}

func TestSettle_Errors(t *testing.T) {
	_, err := Settle([]model.EntryResult{{CarID: "x", Position: 1}}, nil, "sprint", rules.Default())
	assert.ErrorIs(t, err, ErrMissingEntry)

	entries := []model.Entry{{CarID: "x", Build: model.NewCarBuild(model.SlotPart{Tier: model.TierStandard})}}
	_, err = Settle([]model.EntryResult{{CarID: "x", Position: 1}}, entries, "nope", rules.Default())
	assert.ErrorIs(t, err, rules.ErrUnknownEventType)
}
