package speedmap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tilerace/race-engine/log"
	"github.com/tilerace/race-engine/pkg/model"
	"github.com/tilerace/race-engine/pkg/utils/cache"
	"github.com/tilerace/race-engine/pkg/utils/cache/loadercache"
)

var ErrUnknownRace = errors.New("no track registered for race")

type (
	// Cache keeps one speed profile per race. Profiles are built lazily
	// from the registered track and reused until invalidated.
	Cache struct {
		physics  Physics
		mutex    sync.RWMutex
		tracks   map[string]*model.Track
		profiles cache.Cache[string, model.SpeedProfile]
		builds   atomic.Int64
		l        *log.Logger
	}
	CacheOption func(*Cache)
)

func WithCacheLogger(l *log.Logger) CacheOption {
	return func(c *Cache) {
		c.l = l
	}
}

func NewCache(p Physics, opts ...CacheOption) *Cache {
	ret := &Cache{
		physics: p,
		tracks:  make(map[string]*model.Track),
		l:       log.Default().Named("speedmap"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.profiles = loadercache.New(
		loadercache.WithLoader(ret.load),
		loadercache.WithExpiration[string, model.SpeedProfile](0),
		loadercache.WithLogger[string, model.SpeedProfile](ret.l),
	)
	return ret
}

// Register associates a track with a race. A previously cached profile
// for the race is dropped.
func (c *Cache) Register(ctx context.Context, raceID string, t *model.Track) {
	c.mutex.Lock()
	c.tracks[raceID] = t
	c.mutex.Unlock()
	c.profiles.Invalidate(ctx, raceID)
}

func (c *Cache) Get(ctx context.Context, raceID string) (model.SpeedProfile, error) {
	p, err := c.profiles.Get(ctx, raceID)
	if err != nil {
		return nil, err
	}
	return *p, nil
}

// Invalidate removes the race's track and profile.
func (c *Cache) Invalidate(ctx context.Context, raceID string) {
	c.mutex.Lock()
	delete(c.tracks, raceID)
	c.mutex.Unlock()
	c.profiles.Invalidate(ctx, raceID)
}

// Builds returns how many profiles were computed so far.
func (c *Cache) Builds() int64 {
	return c.builds.Load()
}

func (c *Cache) load(_ context.Context, raceID string) (*model.SpeedProfile, error) {
	c.mutex.RLock()
	t, ok := c.tracks[raceID]
	c.mutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRace, raceID)
	}
	profile, err := Build(t, c.physics)
	if err != nil {
		return nil, err
	}
	c.builds.Add(1)
	c.l.Debug("built speed profile", log.String("race", raceID), log.Int("tiles", len(profile)))
	return &profile, nil
}
