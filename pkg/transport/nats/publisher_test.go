//nolint:funlen // ok for tests
package nats

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/testsupport/tcnats"
)

// natsURL returns NATS_URL if set, otherwise starts a container.
func natsURL(t *testing.T) string {
	t.Helper()
	if url := os.Getenv("NATS_URL"); url != "" {
		return url
	}
	if testing.Short() {
		t.Skip("needs docker or NATS_URL")
	}
	ctx := context.Background()
	c, err := tcnats.SetupNats(ctx)
	if err != nil {
		t.Skipf("could not start nats container: %v", err)
	}
	testcontainers.CleanupContainer(t, c.Container)
	return c.URL
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "race.r1.ticks", TickSubject("r1"))
	assert.Equal(t, "race.r1.status", StatusSubject("r1"))
	assert.Equal(t, "race.r1.results", ResultSubject("r1"))
}

func TestPublisher(t *testing.T) {
	url := natsURL(t)
	conn, err := Connect(url)
	require.NoError(t, err)
	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()

	p, err := NewPublisher(conn, WithResultBucket("rce-test", time.Minute))
	require.NoError(t, err)
	defer p.Close()

	msgs := make(chan *nats.Msg, 16)
	s, err := sub.ChanSubscribe("race.r1.>", msgs)
	require.NoError(t, err)
	defer func() { _ = s.Unsubscribe() }()
	require.NoError(t, sub.Flush())

	ticks := make(chan model.TickBatch)
	done := p.Forward("r1", ticks)
	tick := model.TickBatch{Tick: 1, LapCount: 3, Cars: []model.CarTick{{CarID: "a", Progress: 0.1}}}
	tick.Cars[0].Incident.Set(model.IncidentDNF)
	ticks <- tick
	close(ticks)
	<-done

	select {
	case m := <-msgs:
		assert.Equal(t, "race.r1.ticks", m.Subject)
		var got model.TickBatch
		require.NoError(t, json.Unmarshal(m.Data, &got))
		assert.Equal(t, tick, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no tick received")
	}

	require.NoError(t, p.PublishStatus("r1", model.RaceFinished))
	select {
	case m := <-msgs:
		assert.Equal(t, "race.r1.status", m.Subject)
		assert.Equal(t, "finished", string(m.Data))
	case <-time.After(5 * time.Second):
		t.Fatal("no status received")
	}

	results := []model.EntryResult{{CarID: "a", Position: 1, ResultScore: 80}}
	require.NoError(t, p.PublishResults("r1", results))
	got, err := p.Results("r1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].CarID)
}
