// Package nats publishes race frames and outcomes to NATS subjects.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tilerace/race-engine/log"
	"github.com/tilerace/race-engine/pkg/model"
)

const DefaultBucket = "rce-results"

var ErrNoBucket = errors.New("no result bucket configured")

type (
	// Publisher sends the data of races to NATS. Tick batches and status
	// changes are plain publishes, results are also kept in a KV bucket
	// when one is configured.
	Publisher struct {
		ctx    context.Context
		conn   *nats.Conn
		bucket string
		ttl    time.Duration
		kv     jetstream.KeyValue
		l      *log.Logger
	}
	Option func(*Publisher)
)

func WithContext(ctx context.Context) Option {
	return func(p *Publisher) {
		p.ctx = ctx
	}
}

func WithLogger(l *log.Logger) Option {
	return func(p *Publisher) {
		p.l = l
	}
}

// WithResultBucket stores published results in the given KV bucket.
func WithResultBucket(bucket string, ttl time.Duration) Option {
	return func(p *Publisher) {
		p.bucket = bucket
		p.ttl = ttl
	}
}

// Connect opens a connection named after the binary.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url, nats.Name("rce"), nats.MaxReconnects(5))
}

func NewPublisher(conn *nats.Conn, opts ...Option) (*Publisher, error) {
	ret := &Publisher{
		ctx:  context.Background(),
		conn: conn,
		l:    log.Default().Named("nats"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.bucket != "" {
		if err := ret.setupKV(); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func TickSubject(raceID string) string {
	return fmt.Sprintf("race.%s.ticks", raceID)
}

func StatusSubject(raceID string) string {
	return fmt.Sprintf("race.%s.status", raceID)
}

func ResultSubject(raceID string) string {
	return fmt.Sprintf("race.%s.results", raceID)
}

func (p *Publisher) PublishTick(raceID string, b model.TickBatch) error {
	return p.publishJSON(TickSubject(raceID), b)
}

func (p *Publisher) PublishStatus(raceID string, status model.RaceStatus) error {
	return p.conn.Publish(StatusSubject(raceID), []byte(status))
}

func (p *Publisher) PublishResults(raceID string, results []model.EntryResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(ResultSubject(raceID), data); err != nil {
		return err
	}
	if p.kv == nil {
		return nil
	}
	rev, err := p.kv.Put(p.ctx, resultKey(raceID), data)
	p.l.Debug("results put",
		log.String("key", resultKey(raceID)),
		log.ErrorField(err), log.Uint64("rev", rev))
	return err
}

// Results returns the results stored for a race.
func (p *Publisher) Results(raceID string) ([]model.EntryResult, error) {
	if p.kv == nil {
		return nil, ErrNoBucket
	}
	entry, err := p.kv.Get(p.ctx, resultKey(raceID))
	if err != nil {
		return nil, err
	}
	var ret []model.EntryResult
	if err := json.Unmarshal(entry.Value(), &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Forward publishes every batch received on ch until ch is closed. The
// returned channel is closed afterwards.
func (p *Publisher) Forward(raceID string, ch <-chan model.TickBatch) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for b := range ch {
			if err := p.PublishTick(raceID, b); err != nil {
				p.l.Warn("could not publish tick",
					log.String("race", raceID), log.Int("tick", b.Tick), log.ErrorField(err))
			}
		}
		if err := p.conn.Flush(); err != nil {
			p.l.Warn("flush failed", log.ErrorField(err))
		}
		p.l.Debug("tick channel closed", log.String("race", raceID))
	}()
	return done
}

func (p *Publisher) Close() {
	p.conn.Close()
}

func (p *Publisher) publishJSON(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}

func (p *Publisher) setupKV() error {
	js, err := jetstream.New(p.conn)
	if err != nil {
		return err
	}
	p.kv, err = js.CreateOrUpdateKeyValue(p.ctx, jetstream.KeyValueConfig{
		Bucket: p.bucket,
		TTL:    p.ttl,
	})
	return err
}

func resultKey(raceID string) string {
	return fmt.Sprintf("results.%s", raceID)
}
