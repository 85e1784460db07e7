package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/campus-day/internal/content"
	"github.com/tatianab/campus-day/internal/flow"
	"github.com/tatianab/campus-day/internal/gamestate"
	"github.com/tatianab/campus-day/internal/models"
	"github.com/tatianab/campus-day/internal/store"
	"go.uber.org/zap"
)

// newTestEngine returns an engineering student (M6 O5 N4 A4 S7 H10, hunger
// 10, $60) standing in scene, with d applied on top.
func newTestEngine(t *testing.T, scene models.SceneID, d models.Deltas, opts ...Option) (*Engine, *store.Store) {
	t.Helper()
	tables, err := content.Load()
	require.NoError(t, err)

	s := gamestate.NewInitialState(tables, models.MajorEngineering)
	s = gamestate.ApplyDeltas(s, d)
	s = gamestate.TransitionScene(s, scene)

	st := store.New(s, store.WithFactory(func(m models.MajorID) *models.GameState {
		return gamestate.NewInitialState(tables, m)
	}))
	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	return New(tables, st, opts...), st
}

func lastEntry(t *testing.T, s *models.GameState) models.ActivityEntry {
	t.Helper()
	require.NotEmpty(t, s.ActivityLog)
	return s.ActivityLog[len(s.ActivityLog)-1]
}

type failingNarrator struct{}

func (failingNarrator) Recap(context.Context, *models.GameState) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestStartGame(t *testing.T) {
	e, st := newTestEngine(t, models.SceneCharacterCreation, models.Deltas{})

	require.NoError(t, e.StartGame("  Sam ", models.MajorArts))

	s := st.State()
	assert.Equal(t, "Sam", s.PlayerName)
	assert.Equal(t, models.MajorArts, s.Major)
	assert.Equal(t, models.SceneOnboarding, s.CurrentScene)
	assert.Zero(t, s.TimeMinutes)
}

func TestStartGameRejects(t *testing.T) {
	e, _ := newTestEngine(t, models.SceneCharacterCreation, models.Deltas{})
	assert.ErrorIs(t, e.StartGame("   ", models.MajorArts), ErrNameRequired)

	e, _ = newTestEngine(t, models.SceneBedroom, models.Deltas{})
	assert.ErrorIs(t, e.StartGame("Sam", models.MajorArts), ErrWrongScene)
}

func TestNewGameResets(t *testing.T) {
	e, st := newTestEngine(t, models.SceneCampus, models.Deltas{Time: models.Int(200)})

	e.NewGame(models.MajorMedicine)

	s := st.State()
	assert.Equal(t, models.SceneMainMenu, s.CurrentScene)
	assert.Equal(t, models.MajorMedicine, s.Major)
	assert.Zero(t, s.TimeMinutes)
}

func TestAdvance(t *testing.T) {
	e, st := newTestEngine(t, models.SceneOnboarding, models.Deltas{})
	require.NoError(t, e.Advance())
	assert.Equal(t, models.SceneBedroom, st.State().CurrentScene)
	assert.Empty(t, st.State().ActivityLog)

	e, _ = newTestEngine(t, models.SceneRecap, models.Deltas{})
	assert.ErrorIs(t, e.Advance(), flow.ErrEndOfFlow)

	e, _ = newTestEngine(t, models.ScenePhone, models.Deltas{})
	assert.ErrorIs(t, e.Advance(), flow.ErrNotInFlow)
}

func TestReturnFromSideScene(t *testing.T) {
	e, st := newTestEngine(t, models.SceneLTBInside, models.Deltas{})
	require.NoError(t, e.ReturnFromSideScene())
	assert.Equal(t, models.SceneCampusLTB, st.State().CurrentScene)

	e, _ = newTestEngine(t, models.SceneCampus, models.Deltas{})
	assert.ErrorIs(t, e.ReturnFromSideScene(), ErrNotSideScene)
}

func TestRecapFallsBackToPlain(t *testing.T) {
	e, _ := newTestEngine(t, models.SceneRecap, models.Deltas{}, WithNarrator(failingNarrator{}))

	got := e.Recap(context.Background())
	assert.Contains(t, got, "studying Engineering")
}

func TestStaleIntentIsDropped(t *testing.T) {
	e, st := newTestEngine(t, models.SceneBedroom, models.Deltas{})
	before := st.State()

	err := e.apply(models.SceneCampus, func(prev *models.GameState) *models.GameState {
		return gamestate.TransitionScene(prev, models.SceneRecap)
	})

	assert.ErrorIs(t, err, ErrWrongScene)
	assert.Same(t, before, st.State())
}

func TestActionDuringCommitIsDeferred(t *testing.T) {
	e, st := newTestEngine(t, models.SceneEveningActivity, models.Deltas{Time: models.Int(600)})

	var nestedErr error
	nested := false
	st.Subscribe(func(next, _ *models.GameState) {
		if nested {
			return
		}
		nested = true
		_, nestedErr = e.ResolveActivity("doomscroll", "")
	})

	_, err := e.ResolveActivity("rest", "")
	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, ErrDeferred)

	s := st.State()
	assert.True(t, s.Flags.Has(models.FlagDoomscrolled))
	ids := []string{s.ActivityLog[len(s.ActivityLog)-2].ChoiceID, lastEntry(t, s).ChoiceID}
	assert.Equal(t, []string{"rest", "doomscroll"}, ids)
}
