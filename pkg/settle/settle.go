// Package settle computes what every entrant takes home from a finished race.
package settle

import (
	"errors"
	"fmt"

	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/rules"
	"github.com/tilerace/race-engine/pkg/wear"
)

const DefaultReward = 100

// Rewards maps finish positions to credits. Other positions get DefaultReward.
var Rewards = map[int]int{1: 800, 2: 500, 3: 300}

var ErrMissingEntry = errors.New("no entry for result")

//nolint:tagliatelle // wire format
type Settlement struct {
	CarID    string         `json:"car_id"`
	Position int            `json:"position"`
	Reward   int            `json:"reward"`
	Build    model.CarBuild `json:"build"`
}

func Reward(position int) int {
	if r, ok := Rewards[position]; ok {
		return r
	}
	return DefaultReward
}

// Settle returns one settlement per result, in result order. Build is the
// entrant's locked build after wear.
func Settle(
	results []model.EntryResult,
	entries []model.Entry,
	eventType string,
	table *rules.Table,
) ([]Settlement, error) {
	builds := make(map[string]model.CarBuild, len(entries))
	for _, e := range entries {
		builds[e.CarID] = e.Build
	}
	ret := make([]Settlement, 0, len(results))
	for _, r := range results {
		b, ok := builds[r.CarID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingEntry, r.CarID)
		}
		worn, err := wear.Apply(b, eventType, table)
		if err != nil {
			return nil, err
		}
		ret = append(ret, Settlement{
			CarID:    r.CarID,
			Position: r.Position,
			Reward:   Reward(r.Position),
			Build:    worn,
		})
	}
	return ret, nil
}
