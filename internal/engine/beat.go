package engine

import (
	"fmt"
	"maps"

	"github.com/tatianab/campus-day/internal/content"
	"github.com/tatianab/campus-day/internal/flow"
	"github.com/tatianab/campus-day/internal/gamestate"
	"github.com/tatianab/campus-day/internal/models"
	"go.uber.org/zap"
)

// ChoiceAvailable reports whether c can be picked in s.
func ChoiceAvailable(s *models.GameState, c content.BeatChoice) bool {
	if c.RequiresFlag != "" && !s.Flags.Has(c.RequiresFlag) {
		return false
	}
	if c.ExcludesFlag != "" && s.Flags.Has(c.ExcludesFlag) {
		return false
	}
	return c.MoneyDelta >= 0 || s.Money >= -c.MoneyDelta
}

func beatDeltas(c content.BeatChoice) models.Deltas {
	d := models.Deltas{
		Hunger: optional(c.HungerDelta),
		Money:  optional(c.MoneyDelta),
		Time:   optional(c.TimeDelta),
	}
	if len(c.StatDeltas) > 0 {
		d.Stats = maps.Clone(c.StatDeltas)
	}
	if len(c.RapportDeltas) > 0 {
		d.Rapport = maps.Clone(c.RapportDeltas)
	}
	if len(c.Flags) > 0 {
		d.FlagsGained = append([]models.MemoryFlag(nil), c.Flags...)
	}
	return d
}

// Beat returns the prompt and the choices currently open in the player's
// scene. ok is false for scenes without a beat.
func (e *Engine) Beat() (beat content.Beat, open []content.BeatChoice, ok bool) {
	s := e.store.State()
	beat, ok = e.tables.Beat(s.CurrentScene)
	if !ok {
		return content.Beat{}, nil, false
	}
	for _, c := range beat.Choices {
		if ChoiceAvailable(s, c) {
			open = append(open, c)
		}
	}
	return beat, open, true
}

// ResolveBeat applies choiceID from the beat of scene, then follows the
// choice: along the day, into a side scene, or nowhere.
func (e *Engine) ResolveBeat(scene models.SceneID, choiceID string) error {
	if err := e.requireScene(scene); err != nil {
		return err
	}
	beat, ok := e.tables.Beat(scene)
	if !ok {
		return fmt.Errorf("%w: no choices in %s", ErrUnknownChoice, scene)
	}
	c, ok := beat.Choice(choiceID)
	if !ok {
		return fmt.Errorf("%w: %s in %s", ErrUnknownChoice, choiceID, scene)
	}
	if !ChoiceAvailable(e.store.State(), c) {
		return fmt.Errorf("%w: %s", ErrChoiceUnavailable, choiceID)
	}

	target := c.Goto
	if c.Advance {
		next, err := flow.Next(scene)
		if err != nil {
			return err
		}
		target = next
	}

	d := beatDeltas(c)
	err := e.apply(scene, func(prev *models.GameState) *models.GameState {
		s := gamestate.ApplyDeltas(prev, d)
		if c.Summary != "" {
			s = gamestate.LogActivity(s, models.ActivityEntry{
				Segment:  scene,
				ChoiceID: c.ID,
				Summary:  c.Summary,
				Deltas:   d,
			})
		}
		if target != "" {
			s = gamestate.TransitionScene(s, target)
		}
		return s
	})
	if err != nil {
		return err
	}

	e.logger.Debug("Beat resolved",
		zap.String("scene", string(scene)),
		zap.String("choice", choiceID),
		zap.String("to", string(target)))
	return nil
}
