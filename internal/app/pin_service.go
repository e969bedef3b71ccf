package app

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"pinmap/internal/model"
)

const (
	minRating = 1
	maxRating = 5

	maxTitleLength = 255
)

type PinStore interface {
	Create(ctx context.Context, pin *model.Pin) error
	List(ctx context.Context) ([]model.Pin, error)
}

type PinListCache interface {
	Load(ctx context.Context) ([]model.Pin, int64, bool, error)
	Store(ctx context.Context, generation int64, pins []model.Pin) error
	Invalidate(ctx context.Context) error
}

type PinService struct {
	pinRepo   PinStore
	cache     PinListCache
	publisher EventPublisher
}

type CreatePinInput struct {
	Username string
	Title    string
	Desc     string
	Rating   int
	Lat      float64
	Long     float64
}

// NewPinService builds the pin service. cache and publisher are optional.
func NewPinService(pinRepo PinStore, cache PinListCache, publisher EventPublisher) *PinService {
	return &PinService{
		pinRepo:   pinRepo,
		cache:     cache,
		publisher: publisher,
	}
}

func (s *PinService) CreatePin(ctx context.Context, input CreatePinInput) (*model.Pin, error) {
	if err := validatePin(input); err != nil {
		return nil, err
	}

	pin := &model.Pin{
		Username: strings.TrimSpace(input.Username),
		Title:    input.Title,
		Desc:     input.Desc,
		Rating:   input.Rating,
		Lat:      input.Lat,
		Long:     input.Long,
	}
	if err := s.pinRepo.Create(ctx, pin); err != nil {
		return nil, storeFailure(err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			slog.ErrorContext(ctx, "invalidate pin list cache failed", "pin_id", pin.ID, "error", err)
		}
	}
	publishEvent(ctx, s.publisher, model.Event{Type: model.EventPinCreated, Pin: pin})
	return pin, nil
}

// ListPins returns every pin. Cache trouble is logged and the database is
// read instead.
func (s *PinService) ListPins(ctx context.Context) ([]model.Pin, error) {
	if s.cache == nil {
		return s.listFromStore(ctx)
	}

	cached, generation, hit, err := s.cache.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "load pin list cache failed", "error", err)
		return s.listFromStore(ctx)
	}
	if hit {
		return cached, nil
	}

	pins, err := s.listFromStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Store(ctx, generation, pins); err != nil {
		slog.WarnContext(ctx, "store pin list cache failed", "error", err)
	}
	return pins, nil
}

// WarmCache rebuilds the cached pin list if the current one is missing or
// stale.
func (s *PinService) WarmCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	_, generation, hit, err := s.cache.Load(ctx)
	if err != nil {
		return err
	}
	if hit {
		return nil
	}
	pins, err := s.listFromStore(ctx)
	if err != nil {
		return err
	}
	return s.cache.Store(ctx, generation, pins)
}

func (s *PinService) listFromStore(ctx context.Context) ([]model.Pin, error) {
	pins, err := s.pinRepo.List(ctx)
	if err != nil {
		return nil, storeFailure(err)
	}
	if pins == nil {
		pins = []model.Pin{}
	}
	return pins, nil
}

func validatePin(input CreatePinInput) error {
	switch {
	case strings.TrimSpace(input.Username) == "":
		return invalid("username", "username is required")
	case len(strings.TrimSpace(input.Username)) > maxUsernameLength:
		return invalid("username", "username must be at most %d characters", maxUsernameLength)
	case strings.TrimSpace(input.Title) == "":
		return invalid("title", "title is required")
	case len(input.Title) > maxTitleLength:
		return invalid("title", "title must be at most %d characters", maxTitleLength)
	case strings.TrimSpace(input.Desc) == "":
		return invalid("desc", "desc is required")
	case input.Rating < minRating || input.Rating > maxRating:
		return invalid("rating", "rating must be an integer between %d and %d", minRating, maxRating)
	case !isFinite(input.Lat):
		return invalid("lat", "lat must be a finite number")
	case !isFinite(input.Long):
		return invalid("long", "long must be a finite number")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
