// Package lifecycle drives a race through open, locked, running and finished.
//
// A Race must be driven by a single caller; it does no locking of its own.
package lifecycle

import (
	"context"
	"fmt"
	"maps"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tilerace/race-engine/log"
	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/rules"
	"github.com/tilerace/race-engine/pkg/scoring"
	"github.com/tilerace/race-engine/pkg/settle"
	"github.com/tilerace/race-engine/pkg/speedmap"
	"github.com/tilerace/race-engine/pkg/ticks"
	"github.com/tilerace/race-engine/pkg/track"
)

type (
	Option func(*Race)

	Race struct {
		id          string
		scheduledAt time.Time
		eventType   string
		lapCount    int
		gridSize    int
		status      model.RaceStatus
		track       *model.Track
		entries     []model.Entry
		results     []model.EntryResult
		stream      *ticks.Stream

		table      *rules.Table
		physics    speedmap.Physics
		profiles   *speedmap.Cache
		generator  *track.Generator
		minSteps   int
		maxRetries int
		scoreOpts  []scoring.Option
		streamOpts []ticks.Option
		tracer     trace.Tracer
		l          *log.Logger
	}
)

func WithRules(t *rules.Table) Option {
	return func(r *Race) {
		r.table = t
	}
}

func WithPhysics(p speedmap.Physics) Option {
	return func(r *Race) {
		r.physics = p
	}
}

// WithProfileCache shares a speed profile cache between races.
func WithProfileCache(c *speedmap.Cache) Option {
	return func(r *Race) {
		r.profiles = c
	}
}

func WithTrackGenerator(g *track.Generator) Option {
	return func(r *Race) {
		r.generator = g
	}
}

func WithTrackLimits(minSteps, maxRetries int) Option {
	return func(r *Race) {
		r.minSteps = minSteps
		r.maxRetries = maxRetries
	}
}

func WithScoringOptions(opts ...scoring.Option) Option {
	return func(r *Race) {
		r.scoreOpts = append(r.scoreOpts, opts...)
	}
}

func WithStreamOptions(opts ...ticks.Option) Option {
	return func(r *Race) {
		r.streamOpts = append(r.streamOpts, opts...)
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(r *Race) {
		r.tracer = tracer
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Race) {
		r.l = l
	}
}

// NewRace creates an open race. The track is generated and its speed
// profile built right away.
//
//nolint:whitespace // editor/linter
func NewRace(
	ctx context.Context,
	id string,
	scheduledAt time.Time,
	eventType string,
	lapCount, gridSize int,
	opts ...Option,
) (*Race, error) {
	r := &Race{
		id:          id,
		scheduledAt: scheduledAt,
		eventType:   eventType,
		lapCount:    max(1, lapCount),
		gridSize:    max(track.MinGridSize, gridSize),
		status:      model.RaceOpen,
		physics:     speedmap.DefaultPhysics(),
		maxRetries:  track.DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.table == nil {
		r.table = rules.Default()
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer("rce")
	}
	if r.l == nil {
		r.l = log.Default().Named("lifecycle")
	}
	if r.generator == nil {
		r.generator = track.NewGenerator(track.WithLogger(r.l.Named("track")))
	}
	if r.minSteps == 0 {
		r.minSteps = track.MinStepsFor(r.gridSize)
	}

	_, span := r.startSpan(ctx, "race.create", "", model.RaceOpen)
	defer span.End()

	if _, err := r.table.Lookup(eventType); err != nil {
		return nil, r.fail(span, err)
	}
	r.track = r.generator.Generate(r.gridSize, r.minSteps, r.maxRetries)
	if r.profiles != nil {
		r.profiles.Register(ctx, r.id, r.track)
	}
	if _, err := r.profile(ctx); err != nil {
		return nil, r.fail(span, err)
	}
	span.SetAttributes(
		attribute.Int("track.tiles", len(r.track.Tiles)),
		attribute.Bool("track.fallback", r.track.Fallback))
	r.l.Info("race created",
		log.String("race", r.id),
		log.String("event", r.eventType),
		log.Int("laps", r.lapCount),
		log.Int("tiles", len(r.track.Tiles)),
		log.Bool("fallback", r.track.Fallback))
	return r, nil
}

// Lock takes the snapshot of the entrants' builds. It is only possible
// while the race is open and before its scheduled start.
func (r *Race) Lock(ctx context.Context, now time.Time, entries []model.Entry) error {
	_, span := r.startSpan(ctx, "race.lock", r.status, model.RaceLocked)
	defer span.End()

	if r.status != model.RaceOpen {
		return r.fail(span, &TransitionError{From: r.status, To: model.RaceLocked})
	}
	if !now.Before(r.scheduledAt) {
		return r.fail(span, fmt.Errorf("%w: now %s, scheduled %s",
			ErrLockWindowClosed, now.Format(time.RFC3339), r.scheduledAt.Format(time.RFC3339)))
	}
	seen := make(map[string]bool, len(entries))
	locked := make([]model.Entry, len(entries))
	for i, e := range entries {
		if seen[e.CarID] {
			return r.fail(span, fmt.Errorf("%w: %s", ErrDuplicateEntry, e.CarID))
		}
		seen[e.CarID] = true
		locked[i] = e
		locked[i].Build = e.Build.Clone()
	}
	r.entries = locked
	r.status = model.RaceLocked
	span.SetAttributes(attribute.Int("race.entries", len(locked)))
	r.l.Info("race locked", log.String("race", r.id), log.Int("entries", len(locked)))
	return nil
}

// Start scores the locked entrants and returns the tick stream of the race.
// On error the race stays locked.
func (r *Race) Start(ctx context.Context) (*ticks.Stream, error) {
	ctx, span := r.startSpan(ctx, "race.start", r.status, model.RaceRunning)
	defer span.End()

	if r.status != model.RaceLocked {
		return nil, r.fail(span, &TransitionError{From: r.status, To: model.RaceRunning})
	}
	profile, err := r.profile(ctx)
	if err != nil {
		return nil, r.fail(span, err)
	}
	opts := append([]scoring.Option{
		scoring.WithRaceID(r.id),
		scoring.WithLogger(r.l.Named("scoring")),
	}, r.scoreOpts...)
	results, err := scoring.Score(r.entries, r.eventType, r.table, opts...)
	if err != nil {
		return nil, r.fail(span, err)
	}
	streamOpts := append([]ticks.Option{
		ticks.WithLapCount(r.lapCount),
		ticks.WithPhysics(r.physics),
		ticks.WithLogger(r.l.Named("ticks")),
	}, r.streamOpts...)

	r.results = results
	r.stream = ticks.NewStream(r.track, profile, results, streamOpts...)
	r.status = model.RaceRunning
	r.l.Info("race started", log.String("race", r.id), log.Int("entries", len(results)))
	return r.stream, nil
}

// Finish completes a running race once its stream has been exhausted.
func (r *Race) Finish(ctx context.Context, s *ticks.Stream) error {
	_, span := r.startSpan(ctx, "race.finish", r.status, model.RaceFinished)
	defer span.End()

	if r.status != model.RaceRunning {
		return r.fail(span, &TransitionError{From: r.status, To: model.RaceFinished})
	}
	if s != r.stream {
		return r.fail(span, ErrForeignStream)
	}
	if !s.Done() {
		return r.fail(span, fmt.Errorf("%w: at tick %d", ErrStreamActive, s.Tick()))
	}
	r.stream = nil
	r.status = model.RaceFinished
	if r.profiles != nil {
		r.profiles.Invalidate(ctx, r.id)
	}
	r.l.Info("race finished", log.String("race", r.id))
	return nil
}

// Settle returns rewards and worn builds of a finished race.
func (r *Race) Settle() ([]settle.Settlement, error) {
	if r.status != model.RaceFinished {
		return nil, fmt.Errorf("%w: status %s", ErrNotFinished, r.status)
	}
	return settle.Settle(r.results, r.entries, r.eventType, r.table)
}

func (r *Race) ID() string {
	return r.id
}

func (r *Race) Status() model.RaceStatus {
	return r.status
}

func (r *Race) Track() *model.Track {
	return r.track
}

// Results returns the scored results, nil before the race was started.
func (r *Race) Results() []model.EntryResult {
	if r.results == nil {
		return nil
	}
	ret := make([]model.EntryResult, len(r.results))
	for i, res := range r.results {
		ret[i] = res
		ret[i].PerSlot = maps.Clone(res.PerSlot)
	}
	return ret
}

// Snapshot returns the serializable view of the race.
func (r *Race) Snapshot() model.Race {
	entries := make([]model.Entry, len(r.entries))
	for i, e := range r.entries {
		entries[i] = e
		entries[i].Build = e.Build.Clone()
	}
	return model.Race{
		ID:          r.id,
		ScheduledAt: r.scheduledAt,
		EventType:   r.eventType,
		Status:      r.status,
		LapCount:    r.lapCount,
		GridSize:    r.gridSize,
		Track:       r.track,
		Entries:     entries,
		Results:     r.Results(),
	}
}

// profile returns the speed profile of the race track, from the shared
// cache if there is one.
func (r *Race) profile(ctx context.Context) (model.SpeedProfile, error) {
	if r.profiles == nil {
		return speedmap.Build(r.track, r.physics)
	}
	return r.profiles.Get(ctx, r.id)
}

//nolint:whitespace // editor/linter
func (r *Race) startSpan(
	ctx context.Context,
	name string,
	from, to model.RaceStatus,
) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("race.id", r.id),
		attribute.String("race.event", r.eventType),
		attribute.String("race.from", string(from)),
		attribute.String("race.to", string(to)),
	))
}

func (r *Race) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.l.Warn("race operation rejected", log.String("race", r.id), log.ErrorField(err))
	return err
}
