package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"pinmap/internal/model"
)

const (
	pinListKey       = "pins:list"
	pinGenerationKey = "pins:generation"
)

// PinCache caches the full pin list. Every pin creation bumps a generation
// counter; a cached list is served only while its generation is current.
type PinCache struct {
	client  *redisv9.Client
	listTTL time.Duration
}

type cachedPinList struct {
	Generation int64       `json:"generation"`
	Pins       []model.Pin `json:"pins"`
}

func NewPinCache(client *redisv9.Client, listTTL time.Duration) *PinCache {
	if listTTL <= 0 {
		listTTL = 60 * time.Second
	}
	return &PinCache{
		client:  client,
		listTTL: listTTL,
	}
}

// Load returns the current generation and, when the cached list was built
// at that generation, the list itself.
func (c *PinCache) Load(ctx context.Context) ([]model.Pin, int64, bool, error) {
	results, err := c.client.MGet(ctx, pinGenerationKey, pinListKey).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis get pin list failed: %w", err)
	}

	generation, err := parseGeneration(results[0])
	if err != nil {
		return nil, 0, false, err
	}

	raw, ok := results[1].(string)
	if !ok {
		return nil, generation, false, nil
	}

	var cached cachedPinList
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, generation, false, fmt.Errorf("unmarshal cached pin list failed: %w", err)
	}
	if cached.Generation != generation {
		return nil, generation, false, nil
	}
	if cached.Pins == nil {
		cached.Pins = []model.Pin{}
	}
	return cached.Pins, generation, true, nil
}

// Store caches pins as the list for generation. Callers pass the generation
// they observed before reading the pins from the database.
func (c *PinCache) Store(ctx context.Context, generation int64, pins []model.Pin) error {
	payload, err := json.Marshal(cachedPinList{Generation: generation, Pins: pins})
	if err != nil {
		return fmt.Errorf("marshal pin list cache failed: %w", err)
	}
	if err := c.client.Set(ctx, pinListKey, payload, c.listTTL).Err(); err != nil {
		return fmt.Errorf("redis set pin list failed: %w", err)
	}
	return nil
}

// Invalidate advances the generation, which retires any cached list.
func (c *PinCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, pinGenerationKey).Err(); err != nil {
		return fmt.Errorf("redis bump pin generation failed: %w", err)
	}
	return nil
}

func parseGeneration(value interface{}) (int64, error) {
	if value == nil {
		return 0, nil
	}
	raw, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected pin generation type %T", value)
	}
	generation, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse pin generation failed: %w", err)
	}
	return generation, nil
}
