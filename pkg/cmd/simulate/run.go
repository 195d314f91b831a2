package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tilerace/race-engine/log"
	"github.com/tilerace/race-engine/pkg/bots"
	"github.com/tilerace/race-engine/pkg/config"
	"github.com/tilerace/race-engine/pkg/lifecycle"
	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/rnd"
	"github.com/tilerace/race-engine/pkg/rules"
	"github.com/tilerace/race-engine/pkg/settle"
	"github.com/tilerace/race-engine/pkg/track"
	natsTransport "github.com/tilerace/race-engine/pkg/transport/nats"
	"github.com/tilerace/race-engine/pkg/utils"
	"github.com/tilerace/race-engine/pkg/utils/broadcast"
)

const (
	DefaultLead = 5 * time.Minute
	ResultTTL   = 24 * time.Hour
)

var ErrNoEntrants = errors.New("no entrants")

// Summary is written as the last line of a simulation.
//
//nolint:tagliatelle // wire format
type Summary struct {
	RaceID      string              `json:"race_id"`
	EventType   string              `json:"event_type"`
	Ticks       int                 `json:"ticks"`
	Results     []model.EntryResult `json:"results"`
	Settlements []settle.Settlement `json:"settlements"`
}

// Run drives one race from creation to settlement. Every tick batch is
// written to w as a JSON line, followed by the Summary.
//
//nolint:funlen,cyclop // sequential flow
func Run(ctx context.Context, c *config.SimulateConfig, w io.Writer) (*Summary, error) {
	l := log.Default().Named("simulate")
	table, err := rules.LoadFile(config.RulesFile)
	if err != nil {
		return nil, err
	}
	entries, err := loadEntries(c.EntriesFile)
	if err != nil {
		return nil, err
	}
	raceID := c.RaceID
	if raceID == "" {
		raceID = uuid.NewString()
	}
	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	lead := c.Lead
	if lead <= 0 {
		lead = DefaultLead
	}

	now := time.Now()
	race, err := lifecycle.NewRace(ctx, raceID, now.Add(lead), c.EventType, c.Laps, c.GridSize,
		lifecycle.WithRules(table),
		lifecycle.WithTrackGenerator(track.NewGenerator(
			track.WithSource(rnd.New(seed)),
			track.WithLogger(l.Named("track")))),
		lifecycle.WithLogger(l.Named("race")))
	if err != nil {
		return nil, err
	}
	if c.FillBots > 0 {
		entries = append(entries, bots.FillGrid(raceID, len(entries), c.FillBots)...)
	}
	if len(entries) == 0 {
		return nil, ErrNoEntrants
	}
	if err = race.Lock(ctx, now, entries); err != nil {
		return nil, err
	}

	var pub *natsTransport.Publisher
	if c.NatsURL != "" {
		if pub, err = connectPublisher(ctx, c, l); err != nil {
			return nil, err
		}
		defer pub.Close()
	}

	stream, err := race.Start(ctx)
	if err != nil {
		return nil, err
	}
	publishStatus(pub, raceID, model.RaceRunning, l)

	source := make(chan model.TickBatch)
	bs := broadcast.NewBroadcastServer("ticks", source,
		broadcast.WithTelemetry[model.TickBatch](raceID),
		broadcast.WithSendTimeout[model.TickBatch](time.Second),
		broadcast.WithLogger[model.TickBatch](l.Named("broadcast")))

	enc := json.NewEncoder(w)
	writerDone := make(chan error, 1)
	go func(ch <-chan model.TickBatch) {
		var werr error
		for b := range ch {
			if werr == nil {
				werr = enc.Encode(b)
			}
		}
		writerDone <- werr
	}(bs.Subscribe())

	var natsDone <-chan struct{}
	if pub != nil {
		natsDone = pub.Forward(raceID, bs.Subscribe())
	}

	var pacing time.Duration
	if c.Speed > 0 {
		pacing = time.Duration(float64(stream.Interval()) / c.Speed)
	}
	for batch := range stream.All() {
		source <- batch
		if err = pace(ctx, pacing); err != nil {
			stream.Close()
			break
		}
	}
	close(source)
	<-bs.Done()
	if natsDone != nil {
		<-natsDone
	}
	if werr := <-writerDone; werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}

	if err = race.Finish(ctx, stream); err != nil {
		return nil, err
	}
	settlements, err := race.Settle()
	if err != nil {
		return nil, err
	}
	publishStatus(pub, raceID, model.RaceFinished, l)
	if pub != nil {
		if perr := pub.PublishResults(raceID, race.Results()); perr != nil {
			l.Warn("could not publish results", log.ErrorField(perr))
		}
	}
	ret := &Summary{
		RaceID:      raceID,
		EventType:   c.EventType,
		Ticks:       stream.Tick(),
		Results:     race.Results(),
		Settlements: settlements,
	}
	if err = enc.Encode(ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// pace waits d or until ctx is done. A zero d only checks ctx.
func pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func loadEntries(path string) ([]model.Entry, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ret []model.Entry
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("entries file %s: %w", path, err)
	}
	return ret, nil
}

func connectPublisher(
	ctx context.Context,
	c *config.SimulateConfig,
	l *log.Logger,
) (*natsTransport.Publisher, error) {
	if addr := utils.ExtractFromNatsURL(c.NatsURL); addr != "" && c.WaitForNats > 0 {
		if err := utils.WaitForTCP(ctx, addr, c.WaitForNats); err != nil {
			return nil, err
		}
	}
	conn, err := natsTransport.Connect(c.NatsURL)
	if err != nil {
		return nil, err
	}
	opts := []natsTransport.Option{
		natsTransport.WithContext(ctx),
		natsTransport.WithLogger(l.Named("nats")),
	}
	if c.NatsBucket != "" {
		opts = append(opts, natsTransport.WithResultBucket(c.NatsBucket, ResultTTL))
	}
	pub, err := natsTransport.NewPublisher(conn, opts...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return pub, nil
}

func publishStatus(pub *natsTransport.Publisher, raceID string, s model.RaceStatus, l *log.Logger) {
	if pub == nil {
		return
	}
	if err := pub.PublishStatus(raceID, s); err != nil {
		l.Warn("could not publish status", log.String("status", string(s)), log.ErrorField(err))
	}
}
