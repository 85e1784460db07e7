package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/campus-day/internal/content"
	"github.com/tatianab/campus-day/internal/gamestate"
	"github.com/tatianab/campus-day/internal/models"
	"go.uber.org/zap"
)

type recordingPersister struct {
	saved []*models.GameState
}

func (p *recordingPersister) Persist(s *models.GameState) { p.saved = append(p.saved, s) }

func newTestStore(t *testing.T) (*Store, *recordingPersister) {
	t.Helper()
	tables, err := content.Load()
	require.NoError(t, err)
	p := &recordingPersister{}
	s := New(
		gamestate.NewInitialState(tables, models.MajorEngineering),
		WithPersister(p),
		WithLogger(zap.NewNop()),
		WithFactory(func(m models.MajorID) *models.GameState { return gamestate.NewInitialState(tables, m) }),
	)
	return s, p
}

func shallowCopy(s *models.GameState) *models.GameState {
	c := *s
	return &c
}

func TestUpdateIdentityIsNoop(t *testing.T) {
	s, p := newTestStore(t)
	calls := 0
	s.Subscribe(func(next, prev *models.GameState) { calls++ })

	s.Update(func(prev *models.GameState) *models.GameState { return prev })
	s.Set(s.State())

	assert.Zero(t, calls)
	assert.Empty(t, p.saved)
}

func TestUpdateNewReferenceNotifiesOnce(t *testing.T) {
	s, p := newTestStore(t)
	before := s.State()

	var gotNext, gotPrev *models.GameState
	calls := 0
	s.Subscribe(func(next, prev *models.GameState) {
		calls++
		gotNext, gotPrev = next, prev
	})

	s.Update(shallowCopy)

	assert.Equal(t, 1, calls)
	assert.Len(t, p.saved, 1)
	assert.Same(t, before, gotPrev)
	assert.Same(t, s.State(), gotNext)
	assert.NotSame(t, before, gotNext)
}

func TestListenerSeesNewStateDuringNotification(t *testing.T) {
	s, _ := newTestStore(t)
	var seen *models.GameState
	s.Subscribe(func(next, prev *models.GameState) { seen = s.State() })

	next := gamestate.TransitionScene(s.State(), models.SceneBedroom)
	s.Set(next)

	assert.Same(t, next, seen)
}

func TestPersistRunsBeforeListeners(t *testing.T) {
	s, p := newTestStore(t)
	var savedAtNotify int
	s.Subscribe(func(next, prev *models.GameState) { savedAtNotify = len(p.saved) })

	s.Update(shallowCopy)
	assert.Equal(t, 1, savedAtNotify)
}

func TestUnsubscribe(t *testing.T) {
	s, _ := newTestStore(t)
	calls := 0
	unsub := s.Subscribe(func(next, prev *models.GameState) { calls++ })

	s.Update(shallowCopy)
	unsub()
	unsub()
	s.Update(shallowCopy)

	assert.Equal(t, 1, calls)
}

func TestSubscribeAndUnsubscribeDuringNotification(t *testing.T) {
	s, _ := newTestStore(t)

	var lateCalls, selfCalls, otherCalls int
	var unsubOther func()
	var unsubSelf func()
	unsubSelf = s.Subscribe(func(next, prev *models.GameState) {
		selfCalls++
		unsubSelf()
		unsubOther()
		s.Subscribe(func(next, prev *models.GameState) { lateCalls++ })
	})
	unsubOther = s.Subscribe(func(next, prev *models.GameState) { otherCalls++ })

	require.NotPanics(t, func() { s.Update(shallowCopy) })
	assert.Equal(t, 1, selfCalls)
	assert.Equal(t, 1, otherCalls, "snapshot taken before notification still runs")
	assert.Zero(t, lateCalls)

	s.Update(shallowCopy)
	assert.Equal(t, 1, selfCalls)
	assert.Equal(t, 1, otherCalls)
	assert.Equal(t, 1, lateCalls)
}

func TestCascadingSetDuringNotification(t *testing.T) {
	s, p := newTestStore(t)

	var scenes []models.SceneID
	s.Subscribe(func(next, prev *models.GameState) {
		scenes = append(scenes, next.CurrentScene)
		if next.CurrentScene == models.SceneOnboarding {
			s.Set(gamestate.TransitionScene(next, models.SceneBedroom))
		}
	})

	s.Set(gamestate.TransitionScene(s.State(), models.SceneOnboarding))

	assert.Equal(t, []models.SceneID{models.SceneOnboarding, models.SceneBedroom}, scenes)
	assert.Equal(t, models.SceneBedroom, s.State().CurrentScene)
	assert.Len(t, p.saved, 2)
}

func TestLaterListenersSkipSupersededState(t *testing.T) {
	s, _ := newTestStore(t)

	s.Subscribe(func(next, prev *models.GameState) {
		if next.CurrentScene == models.SceneOnboarding {
			s.Set(gamestate.TransitionScene(next, models.SceneBedroom))
		}
	})
	var seen []models.SceneID
	s.Subscribe(func(next, prev *models.GameState) {
		seen = append(seen, next.CurrentScene)
	})

	s.Set(gamestate.TransitionScene(s.State(), models.SceneOnboarding))

	assert.Equal(t, []models.SceneID{models.SceneBedroom}, seen)
}

func TestResetAlwaysNotifies(t *testing.T) {
	s, p := newTestStore(t)
	s.Set(gamestate.ApplyDeltas(s.State(), models.Deltas{Money: models.Int(-30)}))

	calls := 0
	s.Subscribe(func(next, prev *models.GameState) { calls++ })
	s.Reset(models.MajorArts)
	s.Reset(models.MajorArts)

	assert.Equal(t, 2, calls)
	assert.Equal(t, models.MajorArts, s.State().Major)
	assert.Len(t, p.saved, 3)
}

func TestResetWithoutFactoryIsIgnored(t *testing.T) {
	initial := &models.GameState{CurrentScene: models.SceneMainMenu}
	s := New(initial)
	s.Reset(models.MajorArts)
	assert.Same(t, initial, s.State())
}

func TestDispatchSettlesQueuedIntents(t *testing.T) {
	s, p := newTestStore(t)

	var notifications []int
	s.Subscribe(func(next, prev *models.GameState) {
		notifications = append(notifications, next.TimeMinutes)
		if next.TimeMinutes == 10 {
			// Both intents queue behind the running drain.
			s.Dispatch(func(prev *models.GameState) *models.GameState {
				return gamestate.ApplyDeltas(prev, models.Deltas{Time: models.Int(5)})
			})
			s.Dispatch(func(prev *models.GameState) *models.GameState {
				return gamestate.ApplyDeltas(prev, models.Deltas{Time: models.Int(5)})
			})
		}
	})

	s.Dispatch(func(prev *models.GameState) *models.GameState {
		return gamestate.ApplyDeltas(prev, models.Deltas{Time: models.Int(10)})
	})

	assert.Equal(t, []int{10, 20}, notifications)
	assert.Equal(t, 20, s.State().TimeMinutes)
	assert.Len(t, p.saved, 2)
}

func TestDispatchIdentityIntentDoesNotCommit(t *testing.T) {
	s, p := newTestStore(t)
	calls := 0
	s.Subscribe(func(next, prev *models.GameState) { calls++ })

	s.Dispatch(func(prev *models.GameState) *models.GameState { return prev })
	s.Dispatch(func(prev *models.GameState) *models.GameState { return nil })

	assert.Zero(t, calls)
	assert.Empty(t, p.saved)
}
