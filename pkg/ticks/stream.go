// Package ticks turns a scored race into a finite sequence of position and
// speed frames. The stream never sleeps; pacing is up to the consumer.
package ticks

import (
	"iter"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tilerace/race-engine/log"
	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/speedmap"
)

const (
	DefaultTickInterval  = 62 * time.Millisecond
	DefaultLapCount      = 25
	DefaultTrailingGrace = 160
	DefaultIncidentTick  = 40
	DefaultSpread        = 0.3
	DefaultMaxTicks      = 200_000

	// decimals of the reported progress, enough to resolve one tick of a
	// slow car on long tracks
	ProgressPlaces = 8
)

type (
	Option func(*Stream)

	// Stream is a cursor over the frames of one race. It is not safe for
	// concurrent use.
	Stream struct {
		physics       speedmap.Physics
		interval      time.Duration
		lapCount      int
		trailingGrace int
		incidentTick  int
		spread        float64
		maxTicks      int
		l             *log.Logger

		profile       model.SpeedProfile
		lapLength     float64
		totalDistance float64
		cars          []*carState
		tick          int
		leaderTick    int // 0 while no car has finished
		done          bool
	}

	carState struct {
		id       string
		factor   float64
		dnf      bool
		frozen   bool
		finished bool
		position float64 // ft
		velocity float64 // ft/s
	}
)

func WithLapCount(n int) Option {
	return func(s *Stream) {
		s.lapCount = n
	}
}

// WithTrailingGrace sets how many ticks trailing cars get after the leader finished.
func WithTrailingGrace(n int) Option {
	return func(s *Stream) {
		s.trailingGrace = n
	}
}

// WithIncidentTick sets the tick at which DNF cars stop.
func WithIncidentTick(n int) Option {
	return func(s *Stream) {
		s.incidentTick = n
	}
}

// WithSpread sets how much slower than the profile the weakest car may be.
// Values are limited to [0,1].
func WithSpread(f float64) Option {
	return func(s *Stream) {
		s.spread = min(1, max(0, f))
	}
}

func WithMaxTicks(n int) Option {
	return func(s *Stream) {
		s.maxTicks = n
	}
}

func WithPhysics(p speedmap.Physics) Option {
	return func(s *Stream) {
		s.physics = p
	}
}

func WithTickInterval(d time.Duration) Option {
	return func(s *Stream) {
		s.interval = d
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Stream) {
		s.l = l
	}
}

// NewStream prepares the frames for the given results. Results are
// expected in position order; frames list the cars in the same order.
// An empty result list yields a stream that is already done.
func NewStream(
	t *model.Track,
	profile model.SpeedProfile,
	results []model.EntryResult,
	opts ...Option,
) *Stream {
	s := &Stream{
		physics:       speedmap.DefaultPhysics(),
		interval:      DefaultTickInterval,
		lapCount:      DefaultLapCount,
		trailingGrace: DefaultTrailingGrace,
		incidentTick:  DefaultIncidentTick,
		spread:        DefaultSpread,
		maxTicks:      DefaultMaxTicks,
		l:             log.Default().Named("ticks"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lapCount = max(1, s.lapCount)

	tiles := 1
	if t != nil && len(t.Tiles) > 0 {
		tiles = len(t.Tiles)
	}
	s.profile = profile
	if len(s.profile) == 0 {
		s.profile = model.SpeedProfile{s.physics.TopSpeed}
	}
	s.lapLength = float64(tiles) * s.physics.TileLength
	s.totalDistance = s.lapLength * float64(s.lapCount)

	maxScore := 0.0
	for i := range results {
		maxScore = max(maxScore, results[i].ResultScore)
	}
	if maxScore <= 0 {
		maxScore = 1
	}
	s.cars = make([]*carState, len(results))
	for i := range results {
		s.cars[i] = &carState{
			id:     results[i].CarID,
			dnf:    results[i].DNF,
			factor: s.performanceFactor(results[i].ResultScore, maxScore),
		}
	}
	s.done = len(s.cars) == 0
	return s
}

// performanceFactor scales the profile for a car. The best car drives the
// profile, the others are at most spread slower.
func (s *Stream) performanceFactor(score, maxScore float64) float64 {
	ratio := min(1, max(0, score/maxScore))
	return 1 - s.spread*(1-ratio)
}

// Interval returns the simulated time between two frames.
func (s *Stream) Interval() time.Duration {
	return s.interval
}

// Tick returns the index of the last frame returned by Next.
func (s *Stream) Tick() int {
	return s.tick
}

// LeaderFinished returns the tick in which the first car crossed the line.
func (s *Stream) LeaderFinished() (int, bool) {
	return s.leaderTick, s.leaderTick > 0
}

func (s *Stream) Done() bool {
	return s.done
}

// Close ends the stream and releases the car states.
func (s *Stream) Close() {
	s.done = true
	s.cars = nil
	s.profile = nil
}

// Next computes the next frame. It returns false once the race is over.
func (s *Stream) Next() (model.TickBatch, bool) {
	if s.done {
		return model.TickBatch{}, false
	}
	s.tick++
	dt := s.interval.Seconds()
	batch := model.TickBatch{
		Tick:     s.tick,
		LapCount: s.lapCount,
		Cars:     make([]model.CarTick, len(s.cars)),
	}
	running := 0
	for i, c := range s.cars {
		if c.dnf && !c.frozen && s.tick >= s.incidentTick {
			c.frozen = true
			c.velocity = 0
		}
		if !c.frozen && !c.finished {
			s.advance(c, dt)
			if c.finished && s.leaderTick == 0 {
				s.leaderTick = s.tick
			}
		}
		if !c.frozen && !c.finished {
			running++
		}
		batch.Cars[i] = s.frame(c)
	}

	switch {
	case running == 0:
		s.finish("all cars stopped")
	case s.leaderTick > 0 && s.tick-s.leaderTick >= s.trailingGrace:
		s.finish("trailing grace expired")
	case s.tick >= s.maxTicks:
		s.finish("tick limit reached")
	}
	return batch, true
}

// All iterates the remaining frames.
func (s *Stream) All() iter.Seq[model.TickBatch] {
	return func(yield func(model.TickBatch) bool) {
		for {
			b, ok := s.Next()
			if !ok || !yield(b) {
				return
			}
		}
	}
}

func (s *Stream) advance(c *carState, dt float64) {
	idx := int(math.Mod(c.position, s.lapLength)/s.physics.TileLength) % len(s.profile)
	target := s.profile[idx] * c.factor
	switch {
	case c.velocity < target:
		c.velocity = min(target, c.velocity+s.physics.Accel*dt)
	case c.velocity > target:
		c.velocity = max(target, c.velocity-s.physics.Brake*dt)
	}
	c.position += c.velocity * dt
	if c.position >= s.totalDistance {
		c.position = s.totalDistance
		c.finished = true
	}
}

func (s *Stream) frame(c *carState) model.CarTick {
	ret := model.CarTick{
		CarID:    c.id,
		Progress: round(min(1, c.position/s.totalDistance), ProgressPlaces),
	}
	if !c.finished && !c.frozen {
		ret.Speed = round(c.velocity/speedmap.MphToFps, 1)
	}
	if c.frozen {
		ret.Incident.Set(model.IncidentDNF)
	}
	return ret
}

func (s *Stream) finish(reason string) {
	s.done = true
	s.l.Debug("race stream finished",
		log.String("reason", reason),
		log.Int("tick", s.tick),
		log.Int("leaderTick", s.leaderTick))
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
