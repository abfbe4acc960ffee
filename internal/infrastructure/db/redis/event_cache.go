package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookly/event-booking/internal/core/domain"
)

const (
	eventListKeyPrefix = "events:list:"
	eventGenKey        = "events:gen"
	defaultCacheTTL    = 30 * time.Second
)

// EventListCache stores the serialised event listing, one key per generation.
// Invalidate increments the generation counter; entries of older generations
// are left to expire.
//
// Key format: events:list:{generation}, counter: events:gen
type EventListCache struct {
	client *redis.Client
	ttl    time.Duration

	// OnLookup, when set, is called with "hit", "miss" or "error" after each Get.
	OnLookup func(result string)
}

func NewEventListCache(client *redis.Client, ttl time.Duration) *EventListCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &EventListCache{client: client, ttl: ttl}
}

func eventListKey(gen int64) string {
	return eventListKeyPrefix + strconv.FormatInt(gen, 10)
}

// Get returns the cached listing of the current generation. The boolean is
// false on a miss; the generation is valid either way.
func (c *EventListCache) Get(ctx context.Context) ([]domain.Event, int64, bool, error) {
	gen, err := c.client.Get(ctx, eventGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		gen, err = 0, nil
	}
	if err != nil {
		c.observe("error")
		return nil, 0, false, fmt.Errorf("events cache generation: %w", err)
	}

	raw, err := c.client.Get(ctx, eventListKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.observe("miss")
		return nil, gen, false, nil
	}
	if err != nil {
		c.observe("error")
		return nil, 0, false, fmt.Errorf("events cache get: %w", err)
	}

	var events []domain.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		c.observe("error")
		return nil, 0, false, fmt.Errorf("events cache decode: %w", err)
	}
	if events == nil {
		events = []domain.Event{}
	}
	c.observe("hit")
	return events, gen, true, nil
}

// Set stores events under gen. A gen that has since been invalidated is
// written to a key no Get will read.
func (c *EventListCache) Set(ctx context.Context, gen int64, events []domain.Event) error {
	raw, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("events cache encode: %w", err)
	}
	if err := c.client.Set(ctx, eventListKey(gen), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("events cache set: %w", err)
	}
	return nil
}

func (c *EventListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, eventGenKey).Err(); err != nil {
		return fmt.Errorf("events cache invalidate: %w", err)
	}
	return nil
}

func (c *EventListCache) observe(result string) {
	if c.OnLookup != nil {
		c.OnLookup(result)
	}
}
