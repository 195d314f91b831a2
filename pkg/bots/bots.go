// Package bots fills race grids with generated entrants.
package bots

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/rnd"
)

const (
	DefaultGridTarget = 6
	PlayerIDPrefix    = "bot_"
)

// namespace of the bot car ids
var namespace = uuid.NewV5(uuid.NamespaceURL, "https://tilerace.github.io/race-engine/bots")

var Names = []string{
	"Bot Alpha", "Bot Bravo", "Bot Charlie", "Bot Delta", "Bot Echo",
	"Bot Foxtrot", "Bot Golf", "Bot Hotel", "Bot India", "Bot Juliet",
	"Bot Kilo", "Bot Lima", "Bot Mike", "Bot November", "Bot Oscar",
	"Bot Papa", "Bot Quebec", "Bot Romeo", "Bot Sierra", "Bot Tango",
	"Bot Uniform", "Bot Victor", "Bot Whiskey", "Bot X-ray", "Bot Yankee",
	"Bot Zulu",
}

// Bracket describes the skill of a bot.
type Bracket struct {
	Name string
	// TierWeights are the relative chances of standard, upgraded, performance.
	TierWeights  []float64
	MinReadiness float64
	MaxReadiness float64
}

// Brackets are assigned round robin in this order.
var Brackets = []Bracket{
	{Name: "weak", TierWeights: []float64{0.70, 0.25, 0.05}, MinReadiness: 50, MaxReadiness: 85},
	{Name: "mid", TierWeights: []float64{0.30, 0.50, 0.20}, MinReadiness: 60, MaxReadiness: 95},
	{Name: "strong", TierWeights: []float64{0.05, 0.45, 0.50}, MinReadiness: 75, MaxReadiness: 100},
}

// FillGrid returns the bot entries needed to bring current entrants up to
// target. The result only depends on raceID and the counts.
func FillGrid(raceID string, current, target int) []model.Entry {
	needed := max(0, target-current)
	ret := make([]model.Entry, needed)
	for i := range needed {
		ret[i] = model.Entry{
			CarID:    CarID(raceID, i),
			PlayerID: PlayerIDPrefix + strconv.Itoa(i),
			Username: Names[i%len(Names)],
			Build:    generateBuild(rnd.Derive(raceID, "bot", strconv.Itoa(i)), Brackets[i%len(Brackets)]),
		}
	}
	return ret
}

// CarID returns the stable car id of the i-th bot of a race.
func CarID(raceID string, i int) string {
	return uuid.NewV5(namespace, fmt.Sprintf("%s:%s%d", raceID, PlayerIDPrefix, i)).String()
}

func IsBot(e model.Entry) bool {
	return strings.HasPrefix(e.PlayerID, PlayerIDPrefix)
}

func generateBuild(src rnd.Source, b Bracket) model.CarBuild {
	ret := make(model.CarBuild, len(model.Slots))
	for _, s := range model.Slots {
		tier := model.Tiers[rnd.Weighted(src, b.TierWeights)]
		readiness := rnd.Uniform(src, b.MinReadiness, b.MaxReadiness)
		ret[s] = model.SlotPart{
			Tier:      tier,
			Readiness: decimal.NewFromFloat(readiness).Round(1).InexactFloat64(),
		}
	}
	return ret
}
