// Package engine resolves player choices into state transitions. Every
// mutation goes through the store's intent queue so a choice lands as a
// single committed state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tatianab/campus-day/internal/content"
	"github.com/tatianab/campus-day/internal/flow"
	"github.com/tatianab/campus-day/internal/gamestate"
	"github.com/tatianab/campus-day/internal/minigame"
	"github.com/tatianab/campus-day/internal/models"
	"github.com/tatianab/campus-day/internal/narrator"
	"github.com/tatianab/campus-day/internal/store"
	"go.uber.org/zap"
)

var (
	ErrWrongScene          = errors.New("action not available in this scene")
	ErrUnknownLeg          = errors.New("unknown commute leg")
	ErrUnknownOption       = errors.New("unknown commute option")
	ErrUnaffordable        = errors.New("cannot afford this option")
	ErrCommuteForced       = errors.New("no paid option is affordable; commute is forced")
	ErrCommutePhase        = errors.New("commute is not in the expected phase")
	ErrUnknownActivity     = errors.New("unknown activity")
	ErrActivityUnavailable = errors.New("activity unavailable")
	ErrNPCRequired         = errors.New("activity needs a valid NPC")
	ErrUnknownChoice       = errors.New("unknown choice")
	ErrChoiceUnavailable   = errors.New("choice unavailable")
	ErrNotSideScene        = errors.New("not a side scene")
	ErrNameRequired        = errors.New("player name is required")
	// ErrDeferred means the transition was queued behind a commit still
	// notifying listeners. It runs once that commit settles.
	ErrDeferred = errors.New("transition deferred behind an update in progress")
)

type Engine struct {
	tables   *content.Tables
	store    *store.Store
	minigame minigame.Minigame
	narrator narrator.Narrator
	logger   *zap.Logger
}

type Option func(*Engine)

func WithMinigame(m minigame.Minigame) Option {
	return func(e *Engine) { e.minigame = m }
}

func WithNarrator(n narrator.Narrator) Option {
	return func(e *Engine) { e.narrator = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l.Named("Engine") }
}

// New wires an engine to st. Without options it plays minigames as seeded
// stat checks and narrates the recap from the log.
func New(tables *content.Tables, st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		tables:   tables,
		store:    st,
		minigame: minigame.NewStatCheck(1),
		narrator: narrator.Plain{Tables: tables},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Tables() *content.Tables { return e.tables }

func (e *Engine) State() *models.GameState { return e.store.State() }

// apply queues a transition that only runs while the player is still in
// scene. It reports ErrWrongScene when the intent was dropped as stale and
// ErrDeferred when it has not run yet.
func (e *Engine) apply(scene models.SceneID, fn func(prev *models.GameState) *models.GameState) error {
	ran := false
	var stale models.SceneID
	e.store.Dispatch(func(prev *models.GameState) *models.GameState {
		if prev.CurrentScene != scene {
			stale = prev.CurrentScene
			e.logger.Warn("Dropping stale intent",
				zap.String("want", string(scene)),
				zap.String("scene", string(prev.CurrentScene)))
			return prev
		}
		ran = true
		return fn(prev)
	})
	switch {
	case stale != "":
		return fmt.Errorf("%w: in %s, need %s", ErrWrongScene, stale, scene)
	case !ran:
		return ErrDeferred
	}
	return nil
}

func (e *Engine) requireScene(scene models.SceneID) error {
	if cur := e.store.State().CurrentScene; cur != scene {
		return fmt.Errorf("%w: in %s, need %s", ErrWrongScene, cur, scene)
	}
	return nil
}

// NewGame throws the current day away and starts over at the main menu.
func (e *Engine) NewGame(major models.MajorID) {
	e.store.Reset(major)
}

// StartGame finishes character creation: a fresh day for major, named name,
// standing at the first scene after creation.
func (e *Engine) StartGame(name string, major models.MajorID) error {
	if err := e.requireScene(models.SceneCharacterCreation); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	next, err := flow.Next(models.SceneCharacterCreation)
	if err != nil {
		return err
	}

	err = e.apply(models.SceneCharacterCreation, func(*models.GameState) *models.GameState {
		s := gamestate.NewInitialState(e.tables, major)
		s = gamestate.SetPlayerName(s, name)
		return gamestate.TransitionScene(s, next)
	})
	if err != nil {
		return err
	}
	e.logger.Info("Game started", zap.String("major", string(major)))
	return nil
}

// Advance moves to the next scene in the day without logging anything.
func (e *Engine) Advance() error {
	cur := e.store.State().CurrentScene
	next, err := flow.Next(cur)
	if err != nil {
		return err
	}
	return e.apply(cur, func(prev *models.GameState) *models.GameState {
		return gamestate.TransitionScene(prev, next)
	})
}

// ReturnFromSideScene leaves a detour scene for the scene it hangs off.
func (e *Engine) ReturnFromSideScene() error {
	cur := e.store.State().CurrentScene
	back, ok := flow.ReturnScene(cur)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSideScene, cur)
	}
	return e.apply(cur, func(prev *models.GameState) *models.GameState {
		return gamestate.TransitionScene(prev, back)
	})
}

// Recap narrates the day. A failing narrator falls back to the plain one.
func (e *Engine) Recap(ctx context.Context) string {
	s := e.store.State()
	text, err := e.narrator.Recap(ctx, s)
	if err == nil && text != "" {
		return text
	}
	if err != nil {
		e.logger.Warn("Narrator failed, using plain recap", zap.Error(err))
	}
	text, err = narrator.Plain{Tables: e.tables}.Recap(context.WithoutCancel(ctx), s)
	if err != nil {
		e.logger.Error("Plain recap failed", zap.Error(err))
	}
	return text
}

// optional returns nil for a zero delta so logged deltas stay sparse.
func optional(v int) *int {
	if v == 0 {
		return nil
	}
	return models.Int(v)
}
