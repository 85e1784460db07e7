// Package store holds the current game state and broadcasts every
// replacement to subscribers.
package store

import (
	"sync"

	"github.com/tatianab/campus-day/internal/models"
	"go.uber.org/zap"
)

// Listener is notified with the new and previous state.
type Listener func(next, prev *models.GameState)

// Persister receives every committed state. Implementations decide what to
// write; failures must not be reported back to the store.
type Persister interface {
	Persist(s *models.GameState)
}

// Factory builds a fresh state for a major, used by Reset.
type Factory func(major models.MajorID) *models.GameState

// Intent is a queued state transition.
type Intent func(prev *models.GameState) *models.GameState

type subscription struct {
	id uint64
	fn Listener
}

// Store owns the current state. State values are replaced, never mutated.
type Store struct {
	mu        sync.Mutex
	state     *models.GameState
	listeners []subscription
	nextID    uint64

	persister Persister
	factory   Factory
	logger    *zap.Logger

	draining bool
	pending  []Intent
}

type Option func(*Store)

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithFactory(f Factory) Option {
	return func(s *Store) { s.factory = f }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l.Named("Store") }
}

// New returns a store seeded with initial.
func New(initial *models.GameState, opts ...Option) *Store {
	s := &Store{
		state:  initial,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot. Callers must not mutate it.
func (s *Store) State() *models.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn and returns a function that removes it. Calling
// the returned function more than once is harmless.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Set replaces the state with next. It is a no-op when next is the current
// pointer.
func (s *Store) Set(next *models.GameState) {
	s.Update(func(*models.GameState) *models.GameState { return next })
}

// Update computes the next state from the current one. Returning the same
// pointer skips persistence and notification.
func (s *Store) Update(fn func(prev *models.GameState) *models.GameState) {
	s.mu.Lock()
	prev := s.state
	s.mu.Unlock()

	next := fn(prev)
	if next == nil || next == prev {
		return
	}
	s.commit(next, prev)
}

// Reset starts a new day for major and always notifies.
func (s *Store) Reset(major models.MajorID) {
	if s.factory == nil {
		s.logger.Warn("Reset called without a state factory", zap.String("major", string(major)))
		return
	}
	next := s.factory(major)

	s.mu.Lock()
	prev := s.state
	s.mu.Unlock()

	s.logger.Info("State reset", zap.String("major", string(major)))
	s.commit(next, prev)
}

// Dispatch queues intent. If no drain is running, it applies every queued
// intent in order and commits once per settled state. Intents dispatched
// from listeners during that commit start a new drain round.
func (s *Store) Dispatch(intent Intent) {
	s.mu.Lock()
	s.pending = append(s.pending, intent)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	for {
		s.mu.Lock()
		batch := s.pending
		s.pending = nil
		if len(batch) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		prev := s.state
		s.mu.Unlock()

		next := prev
		for _, in := range batch {
			if out := in(next); out != nil {
				next = out
			}
		}
		if next != prev {
			s.commit(next, prev)
		}
	}
}

func (s *Store) commit(next, prev *models.GameState) {
	s.mu.Lock()
	s.state = next
	listeners := make([]subscription, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if prev != nil && next.CurrentScene != prev.CurrentScene {
		s.logger.Debug("Scene changed",
			zap.String("from", string(prev.CurrentScene)),
			zap.String("to", string(next.CurrentScene)),
			zap.Int("minutes", next.TimeMinutes),
		)
	}

	if s.persister != nil {
		s.persister.Persist(next)
	}
	for _, sub := range listeners {
		// A listener committed a newer state, which has already been
		// delivered to everyone.
		if s.State() != next {
			return
		}
		sub.fn(next, prev)
	}
}
