package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/campusquiz/internal/campusquiz"
	"github.com/playperu/campusquiz/internal/quiz"
	"github.com/playperu/campusquiz/internal/timer"
)

var ErrNotFound = errors.New("not found")

// Session is one player's quiz, addressed by an opaque ID.
type Session struct {
	ID        string
	Quiz      *quiz.Controller
	CreatedAt time.Time

	clock    timer.Clock
	mu       sync.Mutex
	lastSeen time.Time
}

// touch marks the session as in use so Sweep keeps it.
func (s *Session) touch() {
	now := s.clock.Now()
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type RegistryOptions struct {
	Locations    []campusquiz.Location
	Clock        timer.Clock
	TickInterval time.Duration
	// TTL is how long a session may go without requests before Sweep
	// closes it.
	TTL time.Duration
}

// Registry owns every live quiz session. Each session gets its own
// controller; only the best-time record is shared.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	broker *Broker
	best   quiz.BestTimes
	opts   RegistryOptions
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger, broker *Broker, best quiz.BestTimes, opts RegistryOptions) *Registry {
	if opts.Locations == nil {
		opts.Locations = campusquiz.Locations
	}
	if opts.Clock == nil {
		opts.Clock = timer.System()
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	return &Registry{
		sessions: make(map[string]*Session),
		broker:   broker,
		best:     best,
		opts:     opts,
		logger:   logger,
	}
}

// Create starts tracking a new idle session.
func (r *Registry) Create() *Session {
	id := uuid.NewString()
	now := r.opts.Clock.Now()
	s := &Session{
		ID: id,
		Quiz: quiz.New(r.opts.Locations, presenter{sessionID: id, broker: r.broker}, r.best, quiz.Options{
			ID:           id,
			Clock:        r.opts.Clock,
			TickInterval: r.opts.TickInterval,
			Logger:       r.logger,
		}),
		CreatedAt: now,
		clock:     r.opts.Clock,
		lastSeen:  now,
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.logger.Debug("session created", "session", id)
	return s
}

// Get returns the session and marks it as recently used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch()
	return s, nil
}

// Delete closes and forgets a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Quiz.Close()
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	cutoff := r.opts.Clock.Now().Add(-r.opts.TTL)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Quiz.Close()
		r.logger.Debug("session expired", "session", s.ID, "subscribers", r.broker.Subscribers(s.ID))
	}
	return len(expired)
}

// Run sweeps idle sessions until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) error {
	interval := r.opts.TTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("expired idle sessions", "count", n, "remaining", r.Len())
			}
		}
	}
}

// Close stops every session's timer.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		s.Quiz.Close()
		delete(r.sessions, id)
	}
	return nil
}
