//nolint:funlen // ok for tests
package ticks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/speedmap"
	"github.com/tilerace/race-engine/pkg/track"
)

func testTrack(t *testing.T, n int) (*model.Track, model.SpeedProfile) {
	t.Helper()
	tr := track.Oval(n)
	profile, err := speedmap.Build(tr, speedmap.DefaultPhysics())
	require.NoError(t, err)
	return tr, profile
}

func results(scores ...float64) []model.EntryResult {
	ret := make([]model.EntryResult, len(scores))
	for i, s := range scores {
		ret[i] = model.EntryResult{
			CarID:       string(rune('a' + i)),
			Position:    i + 1,
			ResultScore: s,
		}
	}
	return ret
}

func collect(s *Stream) []model.TickBatch {
	var ret []model.TickBatch
	for b := range s.All() {
		ret = append(ret, b)
	}
	return ret
}

func TestStream_Empty(t *testing.T) {
	tr, profile := testTrack(t, 6)
	s := NewStream(tr, profile, nil)
	assert.True(t, s.Done())
	_, ok := s.Next()
	assert.False(t, ok)
	assert.Empty(t, collect(s))
}

func TestStream_Terminates(t *testing.T) {
	tr, profile := testTrack(t, 8)
	s := NewStream(tr, profile, results(90, 80, 50))
	batches := collect(s)
	require.NotEmpty(t, batches)
	assert.True(t, s.Done())

	leader, ok := s.LeaderFinished()
	require.True(t, ok)
	last := batches[len(batches)-1]
	assert.LessOrEqual(t, last.Tick-leader, DefaultTrailingGrace)
	assert.Equal(t, len(batches), last.Tick)

	topMph := speedmap.DefaultPhysics().TopSpeed / speedmap.MphToFps
	prev := map[string]float64{}
	for i, b := range batches {
		assert.Equal(t, i+1, b.Tick)
		assert.Equal(t, DefaultLapCount, b.LapCount)
		require.Len(t, b.Cars, 3)
		for _, c := range b.Cars {
			if prev[c.CarID] < 1 {
				assert.Greater(t, c.Progress, prev[c.CarID], "tick %d car %s", b.Tick, c.CarID)
			}
			assert.LessOrEqual(t, c.Progress, 1.0)
			assert.LessOrEqual(t, c.Speed, topMph+0.1)
			assert.True(t, c.Incident.IsNull())
			prev[c.CarID] = c.Progress
		}
	}
	assert.InDelta(t, 1.0, prev["a"], 1e-9, "leader completes the distance")
	assert.Less(t, prev["c"], prev["a"])
	assert.Equal(t, leader, firstFinish(batches, "a"))

	_, ok = s.Next()
	assert.False(t, ok)
}

func firstFinish(batches []model.TickBatch, carID string) int {
	for _, b := range batches {
		for _, c := range b.Cars {
			if c.CarID == carID && c.Progress >= 1 {
				return b.Tick
			}
		}
	}
	return 0
}

func TestStream_EndsWhenAllFinished(t *testing.T) {
	tr, profile := testTrack(t, 6)
	s := NewStream(tr, profile, results(75, 75), WithLapCount(2))
	batches := collect(s)
	leader, ok := s.LeaderFinished()
	require.True(t, ok)
	assert.Equal(t, leader, batches[len(batches)-1].Tick)
	for _, c := range batches[len(batches)-1].Cars {
		assert.InDelta(t, 1.0, c.Progress, 1e-9)
		assert.InDelta(t, 0, c.Speed, 1e-9)
	}
}

func TestStream_DNF(t *testing.T) {
	tr, profile := testTrack(t, 8)
	res := results(90, 60)
	res[1].DNF = true
	res[1].ResultScore = 0
	s := NewStream(tr, profile, res, WithLapCount(3), WithIncidentTick(10))
	batches := collect(s)
	require.Greater(t, len(batches), 10)

	var frozenAt float64
	for _, b := range batches {
		car := b.Cars[1]
		if b.Tick < 10 {
			assert.True(t, car.Incident.IsNull(), "tick %d", b.Tick)
			continue
		}
		assert.Equal(t, model.IncidentDNF, car.Incident.GetOrZero(), "tick %d", b.Tick)
		assert.InDelta(t, 0, car.Speed, 1e-9)
		if b.Tick == 10 {
			frozenAt = car.Progress
			assert.Positive(t, frozenAt)
		}
		assert.InDelta(t, frozenAt, car.Progress, 1e-9)
		assert.True(t, b.Cars[0].Incident.IsNull())
	}
}

func TestStream_AllDNF(t *testing.T) {
	tr, profile := testTrack(t, 8)
	res := results(0, 0)
	res[0].DNF = true
	res[1].DNF = true
	batches := collect(NewStream(tr, profile, res))
	require.Len(t, batches, DefaultIncidentTick)
	for _, c := range batches[len(batches)-1].Cars {
		assert.Equal(t, model.IncidentDNF, c.Incident.GetOrZero())
	}
}

func TestStream_Close(t *testing.T) {
	tr, profile := testTrack(t, 8)
	s := NewStream(tr, profile, results(90, 80))
	for range 5 {
		_, ok := s.Next()
		require.True(t, ok)
	}
	assert.Equal(t, 5, s.Tick())
	s.Close()
	assert.True(t, s.Done())
	_, ok := s.Next()
	assert.False(t, ok)
}

func TestStream_MaxTicks(t *testing.T) {
	tr, profile := testTrack(t, 8)
	batches := collect(NewStream(tr, profile, results(90), WithMaxTicks(10)))
	assert.Len(t, batches, 10)
}

func TestStream_StopIteration(t *testing.T) {
	tr, profile := testTrack(t, 8)
	s := NewStream(tr, profile, results(90))
	for b := range s.All() {
		if b.Tick == 3 {
			break
		}
	}
	assert.False(t, s.Done())
	b, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, 4, b.Tick)
}

func TestPerformanceFactor(t *testing.T) {
	s := &Stream{spread: DefaultSpread}
	tests := []struct {
		score float64
		want  float64
	}{
		{100, 1},
		{50, 0.85},
		{0, 0.7},
		{-10, 0.7},
		{120, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, s.performanceFactor(tt.score, 100), 1e-9, "score %v", tt.score)
	}
}

func TestCarTick_JSON(t *testing.T) {
	tr, profile := testTrack(t, 6)
	res := results(90)
	b, ok := NewStream(tr, profile, res).Next()
	require.True(t, ok)
	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tick_index":1`)
	assert.Contains(t, string(data), `"lap_count":25`)
	assert.Contains(t, string(data), `"incident":null`)
	assert.Contains(t, string(data), `"car_id":"a"`)
}

func TestStream_ProgressIncreasesOnLongTrack(t *testing.T) {
	tr, profile := testTrack(t, 60)
	s := NewStream(tr, profile, results(100, 10), WithLapCount(DefaultLapCount))
	prev := map[string]float64{}
	for b := range s.All() {
		for _, c := range b.Cars {
			if prev[c.CarID] < 1 {
				require.Greater(t, c.Progress, prev[c.CarID], "tick %d car %s", b.Tick, c.CarID)
			}
			prev[c.CarID] = c.Progress
		}
	}
	assert.InDelta(t, 1.0, prev["a"], 1e-9)
}
