package narrator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/campus-day/internal/content"
	"github.com/tatianab/campus-day/internal/gamestate"
	"github.com/tatianab/campus-day/internal/models"
)

func playedDay(t *testing.T) (*content.Tables, *models.GameState) {
	t.Helper()
	tables, err := content.Load()
	require.NoError(t, err)

	s := gamestate.NewInitialState(tables, models.MajorEngineering)
	s = gamestate.SetPlayerName(s, "Sam")
	s = gamestate.ApplyDeltas(s, models.Deltas{Time: models.Int(35), Rapport: map[models.NPCID]int{models.NPCLena: 2}})
	s = gamestate.LogActivity(s, models.ActivityEntry{Segment: models.SceneMorningCommute, ChoiceID: "bus", Summary: "Caught the bus."})
	s = gamestate.ApplyDeltas(s, models.Deltas{Time: models.Int(90)})
	s = gamestate.LogActivity(s, models.ActivityEntry{Segment: models.SceneGroupMeeting, ChoiceID: "lead", Summary: "Led the meeting."})
	return tables, s
}

func TestPlainRecap(t *testing.T) {
	tables, s := playedDay(t)

	got, err := Plain{Tables: tables}.Recap(context.Background(), s)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "Sam's day studying Engineering"))
	assert.Contains(t, got, "07:35  Caught the bus.")
	assert.Contains(t, got, "09:05  Led the meeting.")
	assert.Less(t, strings.Index(got, "Caught the bus."), strings.Index(got, "Led the meeting."))
	assert.Contains(t, got, "Home by 09:05 with $60 left")
	assert.Contains(t, got, "closest to Lena")
}

func TestPlainRecapEmptyDay(t *testing.T) {
	tables, err := content.Load()
	require.NoError(t, err)
	s := gamestate.NewInitialState(tables, models.MajorArts)

	got, err := Plain{Tables: tables}.Recap(context.Background(), s)
	require.NoError(t, err)
	assert.Contains(t, got, "Your day studying Arts")
	assert.Contains(t, got, "Nothing much happened")
	assert.NotContains(t, got, "closest to")
}

func TestRecapPromptListsLogInOrder(t *testing.T) {
	tables, s := playedDay(t)

	prompt, err := renderRecapPrompt(tables, s)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Player: Sam (Engineering), carrying a Scientific calculator.")
	assert.Contains(t, prompt, "- 07:35 [morning-commute] Caught the bus.")
	assert.Contains(t, prompt, "Lena=+2")
	assert.Less(t, strings.Index(prompt, "Caught the bus."), strings.Index(prompt, "Led the meeting."))
}
