// Package scene owns the lifecycle of the active scene. Each visit to a
// scene gets a Session holding that visit's transient state and cleanups.
// Sessions are torn down only when the current scene actually changes.
package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/tatianab/campus-day/internal/models"
	"github.com/tatianab/campus-day/internal/store"
	"go.uber.org/zap"
)

// ErrNoRenderer is returned when a scene has no registered Mounter.
var ErrNoRenderer = errors.New("no renderer for scene")

// Session is one visit to a scene.
type Session struct {
	scene    models.SceneID
	mu       sync.Mutex
	slots    map[string]any
	cleanups []func()
	closed   bool
}

func newSession(scene models.SceneID) *Session {
	return &Session{scene: scene, slots: make(map[string]any)}
}

func (s *Session) Scene() models.SceneID { return s.scene }

// OnCleanup registers fn to run when the session ends. Cleanups run last
// registered first. Registering on a closed session runs fn immediately.
func (s *Session) OnCleanup(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
	s.mu.Unlock()
}

// Closed reports whether the player has left this visit.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	fns := s.cleanups
	s.cleanups = nil
	s.slots = nil
	s.mu.Unlock()

	for _, fn := range slices.Backward(fns) {
		fn()
	}
}

// Slot returns the session's value named name, creating it with init on
// first use. The value lives until the session closes.
func Slot[T any](s *Session, name string, init func() T) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.slots[name].(*T); ok {
		return v
	}
	v := new(T)
	if init != nil {
		*v = init()
	}
	if s.slots != nil {
		s.slots[name] = v
	}
	return v
}

// Mounter renders a scene. Mount runs once per visit.
type Mounter interface {
	Mount(sess *Session, s *models.GameState) error
}

// Updater is implemented by mounters that want state changes which do not
// change the scene.
type Updater interface {
	Update(sess *Session, next *models.GameState)
}

type MounterFunc func(sess *Session, s *models.GameState) error

func (f MounterFunc) Mount(sess *Session, s *models.GameState) error { return f(sess, s) }

// Registry maps each scene to its renderer.
type Registry map[models.SceneID]Mounter

// Mount dispatches to the renderer registered for s's scene.
func (r Registry) Mount(sess *Session, s *models.GameState) error {
	m, ok := r[sess.Scene()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoRenderer, sess.Scene())
	}
	return m.Mount(sess, s)
}

// Manager follows the store and keeps exactly one live session.
type Manager struct {
	mu          sync.Mutex
	store       *store.Store
	registry    Registry
	current     *Session
	unsubscribe func()
	logger      *zap.Logger
	onError     func(error)
}

type Option func(*Manager)

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l.Named("Scene") }
}

// WithErrorHandler receives mount failures. They are logged either way.
func WithErrorHandler(fn func(error)) Option {
	return func(m *Manager) { m.onError = fn }
}

func NewManager(st *store.Store, registry Registry, opts ...Option) *Manager {
	m := &Manager{
		store:    st,
		registry: registry,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start mounts the current scene and begins following the store.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.unsubscribe != nil {
		m.mu.Unlock()
		return
	}
	m.unsubscribe = m.store.Subscribe(m.onChange)
	m.mu.Unlock()

	m.enter(m.store.State())
}

// Stop ends the current session and stops following the store.
func (m *Manager) Stop() {
	m.mu.Lock()
	unsub := m.unsubscribe
	m.unsubscribe = nil
	cur := m.current
	m.current = nil
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if cur != nil {
		cur.close()
	}
}

// Current returns the live session, or nil before Start.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) onChange(next, prev *models.GameState) {
	m.mu.Lock()
	cur := m.current
	m.mu.Unlock()

	if cur != nil && cur.Scene() == next.CurrentScene {
		if u, ok := m.registry[cur.Scene()].(Updater); ok {
			u.Update(cur, next)
		}
		return
	}
	m.enter(next)
}

// enter closes the previous session before the next one mounts.
func (m *Manager) enter(s *models.GameState) {
	sess := newSession(s.CurrentScene)

	m.mu.Lock()
	prev := m.current
	m.current = sess
	m.mu.Unlock()

	if prev != nil {
		prev.close()
		m.logger.Debug("Left scene", zap.String("scene", string(prev.Scene())))
	}
	if err := m.registry.Mount(sess, s); err != nil {
		m.logger.Error("Failed to mount scene", zap.String("scene", string(sess.Scene())), zap.Error(err))
		if m.onError != nil {
			m.onError(err)
		}
		return
	}
	m.logger.Debug("Mounted scene", zap.String("scene", string(sess.Scene())))
}
