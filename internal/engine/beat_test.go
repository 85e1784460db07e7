package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/campus-day/internal/models"
)

func TestBreakfastOnce(t *testing.T) {
	e, st := newTestEngine(t, models.SceneBedroom, models.Deltas{Hunger: models.Int(-5)})

	require.NoError(t, e.ResolveBeat(models.SceneBedroom, "eat-breakfast"))
	s := st.State()
	assert.Equal(t, 8, s.Hunger)
	assert.Equal(t, 15, s.TimeMinutes)
	assert.True(t, s.Flags.Has(models.FlagAteBreakfast))
	assert.Equal(t, models.SceneBedroom, s.CurrentScene)

	assert.ErrorIs(t, e.ResolveBeat(models.SceneBedroom, "eat-breakfast"), ErrChoiceUnavailable)

	_, open, ok := e.Beat()
	require.True(t, ok)
	for _, c := range open {
		assert.NotEqual(t, "eat-breakfast", c.ID)
	}
}

func TestPhoneDetour(t *testing.T) {
	e, st := newTestEngine(t, models.SceneBedroom, models.Deltas{})

	require.NoError(t, e.ResolveBeat(models.SceneBedroom, "check-phone"))
	assert.Equal(t, models.ScenePhone, st.State().CurrentScene)
	assert.True(t, st.State().Flags.Has(models.FlagCheckedPhone))

	require.NoError(t, e.ResolveBeat(models.ScenePhone, "reply-priya"))
	s := st.State()
	assert.Equal(t, models.SceneBedroom, s.CurrentScene)
	assert.Equal(t, 1, s.Rapport[models.NPCPriya])
	assert.Equal(t, 10, s.TimeMinutes)
}

func TestHeadOutAdvances(t *testing.T) {
	e, st := newTestEngine(t, models.SceneBedroom, models.Deltas{})
	require.NoError(t, e.ResolveBeat(models.SceneBedroom, "head-out"))
	assert.Equal(t, models.SceneMorningCommute, st.State().CurrentScene)
}

func TestLeadingTheMeeting(t *testing.T) {
	e, st := newTestEngine(t, models.SceneGroupMeeting, models.Deltas{Time: models.Int(180)})

	require.NoError(t, e.ResolveBeat(models.SceneGroupMeeting, "lead"))

	s := st.State()
	assert.Equal(t, models.SceneEveningCommute, s.CurrentScene)
	assert.Equal(t, 270, s.TimeMinutes)
	assert.Equal(t, 1, s.Rapport[models.NPCPriya])
	assert.Equal(t, 1, s.Rapport[models.NPCMarcus])
	assert.True(t, s.Flags.Has(models.FlagLedMeeting))
	assert.True(t, s.Flags.Has(models.FlagMetGroup))
	assert.Equal(t, models.SceneGroupMeeting, lastEntry(t, s).Segment)
}

func TestCoffeeNeedsMoney(t *testing.T) {
	e, _ := newTestEngine(t, models.SceneLTBInside, models.Deltas{Money: models.Int(-57)})
	assert.ErrorIs(t, e.ResolveBeat(models.SceneLTBInside, "buy-coffee"), ErrChoiceUnavailable)
}

func TestBeatGuards(t *testing.T) {
	e, _ := newTestEngine(t, models.SceneCampus, models.Deltas{})
	assert.ErrorIs(t, e.ResolveBeat(models.SceneBedroom, "head-out"), ErrWrongScene)
	assert.ErrorIs(t, e.ResolveBeat(models.SceneCampus, "fly"), ErrUnknownChoice)

	e, _ = newTestEngine(t, models.SceneRecap, models.Deltas{})
	assert.ErrorIs(t, e.ResolveBeat(models.SceneRecap, "anything"), ErrUnknownChoice)
	_, _, ok := e.Beat()
	assert.False(t, ok)
}
