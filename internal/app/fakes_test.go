package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"pinmap/internal/model"
	"pinmap/internal/repository"
)

type memoryUserStore struct {
	mu      sync.Mutex
	users   map[string]model.User
	findErr error
	created int
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]model.User)}
}

func (s *memoryUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return repository.ErrDuplicateUsername
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	s.users[user.Username] = *user
	s.created++
	return nil
}

func (s *memoryUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	user, ok := s.users[username]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *memoryUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *memoryUserStore) count(username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return 1
	}
	return 0
}

type memoryPinStore struct {
	mu        sync.Mutex
	pins      []model.Pin
	createErr error
	listErr   error
	lists     int
}

func (s *memoryPinStore) Create(_ context.Context, pin *model.Pin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	pin.ID = uuid.NewString()
	pin.CreatedAt = time.Now()
	s.pins = append(s.pins, *pin)
	return nil
}

func (s *memoryPinStore) List(_ context.Context) ([]model.Pin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]model.Pin, len(s.pins))
	copy(out, s.pins)
	return out, nil
}

type memoryPinCache struct {
	mu         sync.Mutex
	generation int64
	stored     *int64
	pins       []model.Pin
	loadErr    error
	// invalidateErr leaves the generation untouched, like a failed INCR.
	invalidateErr error
}

func (c *memoryPinCache) Load(context.Context) ([]model.Pin, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadErr != nil {
		return nil, 0, false, c.loadErr
	}
	if c.stored == nil || *c.stored != c.generation {
		return nil, c.generation, false, nil
	}
	return c.pins, c.generation, true, nil
}

func (c *memoryPinCache) Store(_ context.Context, generation int64, pins []model.Pin) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = &generation
	c.pins = pins
	return nil
}

func (c *memoryPinCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	c.generation++
	return nil
}

// expire drops the cached list the way the Redis TTL would.
func (c *memoryPinCache) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = nil
	c.pins = nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errDBDown = errors.New("db down")
