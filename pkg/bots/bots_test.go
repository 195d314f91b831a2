package bots

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilerace/race-engine/pkg/model"
)

func TestFillGrid(t *testing.T) {
	tests := []struct {
		name    string
		current int
		target  int
		want    int
	}{
		{"empty grid", 0, 6, 6},
		{"partial grid", 4, 6, 2},
		{"full grid", 6, 6, 0},
		{"overfull grid", 8, 6, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FillGrid("race-1", tt.current, tt.target)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestFillGrid_Entries(t *testing.T) {
	got := FillGrid("race-1", 0, DefaultGridTarget)
	ids := map[string]bool{}
	for i, e := range got {
		require.NoError(t, e.Build.Validate())
		assert.True(t, IsBot(e))
		assert.Equal(t, Names[i], e.Username)
		assert.Equal(t, CarID("race-1", i), e.CarID)
		id, err := uuid.FromString(e.CarID)
		require.NoError(t, err)
		assert.Equal(t, byte(5), id.Version())
		ids[e.CarID] = true

		b := Brackets[i%len(Brackets)]
		for _, s := range model.Slots {
			assert.GreaterOrEqual(t, e.Build[s].Readiness, b.MinReadiness)
			assert.LessOrEqual(t, e.Build[s].Readiness, b.MaxReadiness)
		}
	}
	assert.Len(t, ids, DefaultGridTarget)
	assert.False(t, IsBot(model.Entry{PlayerID: "user-1"}))
}

func TestFillGrid_Deterministic(t *testing.T) {
	a := FillGrid("race-1", 2, 6)
	b := FillGrid("race-1", 2, 6)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("FillGrid() mismatch (-first +second):\n%s", diff)
	}
	other := FillGrid("race-2", 2, 6)
	assert.NotEqual(t, a[0].CarID, other[0].CarID)
	assert.NotEqual(t, a[0].Build, other[0].Build)
}
