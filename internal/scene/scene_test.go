package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/campus-day/internal/gamestate"
	"github.com/tatianab/campus-day/internal/models"
	"github.com/tatianab/campus-day/internal/store"
)

type recorder struct {
	events  []string
	updates int
}

func (r *recorder) mounter(name string) Mounter {
	return MounterFunc(func(sess *Session, s *models.GameState) error {
		r.events = append(r.events, "mount "+name)
		sess.OnCleanup(func() { r.events = append(r.events, "cleanup "+name+" 1") })
		sess.OnCleanup(func() { r.events = append(r.events, "cleanup "+name+" 2") })
		return nil
	})
}

type updatingMounter struct {
	*recorder
}

func (u updatingMounter) Mount(sess *Session, s *models.GameState) error {
	u.events = append(u.events, "mount campus")
	return nil
}

func (u updatingMounter) Update(sess *Session, next *models.GameState) {
	u.updates++
}

func start(scene models.SceneID) *store.Store {
	return store.New(&models.GameState{CurrentScene: scene, Flags: models.NewFlagSet()})
}

func TestCleanupRunsBeforeNextMount(t *testing.T) {
	rec := &recorder{}
	st := start(models.SceneBedroom)
	m := NewManager(st, Registry{
		models.SceneBedroom: rec.mounter("bedroom"),
		models.ScenePhone:   rec.mounter("phone"),
	})
	m.Start()

	st.Set(gamestate.TransitionScene(st.State(), models.ScenePhone))

	assert.Equal(t, []string{
		"mount bedroom",
		"cleanup bedroom 2",
		"cleanup bedroom 1",
		"mount phone",
	}, rec.events)
	assert.Equal(t, models.ScenePhone, m.Current().Scene())
}

func TestNestedSetMountsLatestScene(t *testing.T) {
	rec := &recorder{}
	st := start(models.SceneCharacterCreation)
	st.Subscribe(func(next, _ *models.GameState) {
		if next.CurrentScene == models.SceneOnboarding {
			st.Set(gamestate.TransitionScene(next, models.SceneBedroom))
		}
	})
	m := NewManager(st, Registry{
		models.SceneCharacterCreation: rec.mounter("creation"),
		models.SceneOnboarding:        rec.mounter("onboarding"),
		models.SceneBedroom:           rec.mounter("bedroom"),
	})
	m.Start()

	st.Set(gamestate.TransitionScene(st.State(), models.SceneOnboarding))

	require.Equal(t, models.SceneBedroom, st.State().CurrentScene)
	assert.Equal(t, models.SceneBedroom, m.Current().Scene())
	assert.Equal(t, []string{
		"mount creation",
		"cleanup creation 2",
		"cleanup creation 1",
		"mount bedroom",
	}, rec.events)
}

func TestNoRemountWithinScene(t *testing.T) {
	rec := &recorder{}
	st := start(models.SceneCampus)
	m := NewManager(st, Registry{models.SceneCampus: updatingMounter{rec}})
	m.Start()
	sess := m.Current()

	st.Set(gamestate.ApplyDeltas(st.State(), models.Deltas{Time: models.Int(10)}))
	st.Set(gamestate.ApplyDeltas(st.State(), models.Deltas{Time: models.Int(10)}))

	assert.Equal(t, []string{"mount campus"}, rec.events)
	assert.Equal(t, 2, rec.updates)
	assert.Same(t, sess, m.Current())
}

func TestSlotSurvivesUpdatesAndDiesWithSession(t *testing.T) {
	st := start(models.SceneLTBInside)
	m := NewManager(st, Registry{
		models.SceneLTBInside: MounterFunc(func(*Session, *models.GameState) error { return nil }),
		models.SceneCampus:    MounterFunc(func(*Session, *models.GameState) error { return nil }),
	})
	m.Start()

	first := m.Current()
	cursor := Slot(first, "cursor", func() int { return 2 })
	*cursor = 5
	assert.Equal(t, 5, *Slot[int](first, "cursor", nil))

	st.Set(gamestate.ApplyDeltas(st.State(), models.Deltas{Money: models.Int(-1)}))
	assert.Equal(t, 5, *Slot[int](m.Current(), "cursor", nil))

	st.Set(gamestate.TransitionScene(st.State(), models.SceneCampus))
	assert.True(t, first.Closed())
	assert.Equal(t, 0, *Slot[int](m.Current(), "cursor", nil))
}

func TestMissingRendererReported(t *testing.T) {
	var got error
	st := start(models.SceneRecap)
	m := NewManager(st, Registry{}, WithErrorHandler(func(err error) { got = err }))
	m.Start()

	require.Error(t, got)
	assert.ErrorIs(t, got, ErrNoRenderer)
}

func TestStopRunsCleanupsAndUnsubscribes(t *testing.T) {
	rec := &recorder{}
	st := start(models.SceneBedroom)
	m := NewManager(st, Registry{
		models.SceneBedroom: rec.mounter("bedroom"),
		models.ScenePhone:   rec.mounter("phone"),
	})
	m.Start()
	m.Stop()

	st.Set(gamestate.TransitionScene(st.State(), models.ScenePhone))
	assert.Equal(t, []string{"mount bedroom", "cleanup bedroom 2", "cleanup bedroom 1"}, rec.events)
	assert.Nil(t, m.Current())
}

func TestOnCleanupAfterCloseRunsNow(t *testing.T) {
	sess := newSession(models.SceneBedroom)
	sess.close()

	ran := false
	sess.OnCleanup(func() { ran = true })
	assert.True(t, ran)
}
