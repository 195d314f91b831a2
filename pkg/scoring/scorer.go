// Package scoring computes the ranked outcome of a race from the locked
// builds of its entrants, the event rules and injected randomness.
package scoring

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tilerace/race-engine/log"
	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/rnd"
	"github.com/tilerace/race-engine/pkg/rules"
)

const (
	WeightBuildQuality = 0.40
	WeightEventFit     = 0.35
	WeightReadiness    = 0.25

	MinScore = 0.0
	MaxScore = 100.0
)

var (
	ErrMalformedBuild   = errors.New("malformed build")
	ErrUnknownEventType = rules.ErrUnknownEventType
)

type (
	// SourceFunc returns the random source of an entrant.
	SourceFunc func(carID string) rnd.Source
	Option     func(*scorer)
	scorer     struct {
		raceID  string
		sources SourceFunc
		l       *log.Logger
	}
)

// WithRaceID seeds every entrant's source from raceID and its car id.
func WithRaceID(raceID string) Option {
	return func(s *scorer) {
		s.raceID = raceID
	}
}

// WithSources replaces the per entrant sources, used to force luck and DNF rolls.
func WithSources(f SourceFunc) Option {
	return func(s *scorer) {
		s.sources = f
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *scorer) {
		s.l = l
	}
}

// SourceForEntrant derives the deterministic source of an entrant.
func SourceForEntrant(raceID, carID string) rnd.Source {
	return rnd.Derive(raceID, carID)
}

// Score computes one EntryResult per entrant, ordered by position.
// It fails without partial results if the event type is unknown or any
// build is malformed.
func Score(
	entries []model.Entry,
	eventType string,
	table *rules.Table,
	opts ...Option,
) ([]model.EntryResult, error) {
	s := &scorer{l: log.Default().Named("scoring")}
	for _, opt := range opts {
		opt(s)
	}
	if s.sources == nil {
		s.sources = func(carID string) rnd.Source {
			return SourceForEntrant(s.raceID, carID)
		}
	}

	ev, err := table.Lookup(eventType)
	if err != nil {
		return nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := e.Build.Validate(); err != nil {
			return nil, fmt.Errorf("%w: car %s: %w", ErrMalformedBuild, e.CarID, err)
		}
	}

	scored := make([]scoredEntry, len(entries))
	for i, e := range entries {
		scored[i] = s.scoreEntry(e, ev, table)
	}
	rank(scored)

	ret := make([]model.EntryResult, len(scored))
	for i := range scored {
		ret[i] = scored[i].result()
	}
	s.l.Debug("race scored",
		log.String("race", s.raceID),
		log.String("event", eventType),
		log.Int("entrants", len(ret)))
	return ret, nil
}

// scoredEntry keeps the unrounded values used for ranking.
type scoredEntry struct {
	entry        model.Entry
	buildQuality float64
	rawFit       float64
	penalty      float64
	readiness    float64
	luck         float64
	tag          string
	dnf          bool
	dnfSlot      model.Slot
	perSlot      map[model.Slot]model.SlotResult
	position     int
	cfPosition   int
}

func (s *scorer) scoreEntry(e model.Entry, ev rules.EventRules, table *rules.Table) scoredEntry {
	src := s.sources(e.CarID)
	ret := scoredEntry{entry: e}

	// draw order: DNF rolls, luck, tag
	ret.dnf, ret.dnfSlot = rollDNF(e.Build, src)
	ret.luck = drawLuck(src, ev.Luck())
	ret.tag = luckTag(src, ret.luck)

	ret.buildQuality = buildQuality(e.Build)
	ret.rawFit, ret.perSlot = eventFit(e.Build, ev)
	ret.penalty = eventPenalty(e.Build, ev, table)
	ret.readiness = readinessScore(e.Build, ret.perSlot)

	if ret.dnf {
		s.l.Debug("did not finish",
			log.String("car", e.CarID),
			log.String("slot", string(ret.dnfSlot)))
	}
	return ret
}

func (se *scoredEntry) fit() float64 {
	return se.rawFit - se.penalty
}

// preLuck is the unclamped formula result with luck held at zero.
func (se *scoredEntry) preLuck() float64 {
	return se.buildQuality*WeightBuildQuality +
		se.fit()*WeightEventFit +
		se.readiness*WeightReadiness
}

// finalScore is the clamped score including luck, ignoring DNF.
func (se *scoredEntry) finalScore() float64 {
	return clamp(se.preLuck() + se.luck)
}

// displayed is the score shown and ranked on. DNF entrants score 0.
func (se *scoredEntry) displayed() float64 {
	if se.dnf {
		return 0
	}
	return se.finalScore()
}

func (se *scoredEntry) result() model.EntryResult {
	ret := model.EntryResult{
		CarID:                  se.entry.CarID,
		Username:               se.entry.Username,
		Position:               se.position,
		ResultScore:            round2(se.displayed()),
		BuildQuality:           round2(se.buildQuality),
		EventFit:               round2(se.fit()),
		EventPenalty:           round2(se.penalty),
		ReadinessScore:         round2(se.readiness),
		LuckDelta:              round2(se.luck),
		LuckTag:                se.tag,
		PreLuckScore:           round2(se.preLuck()),
		CounterfactualPosition: se.cfPosition,
		PerSlot:                se.perSlot,
		DNF:                    se.dnf,
	}
	if se.dnf {
		ret.DNFSlot.Set(se.dnfSlot)
		ret.DNFScore = round2(se.finalScore())
	}
	return ret
}

func clamp(v float64) float64 {
	return min(MaxScore, max(MinScore, v))
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
