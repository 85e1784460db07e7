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

// CutoffMinutes is how close to 22:00 the evening gets cut short.
const CutoffMinutes = 30

// Availability says whether an activity can be picked right now.
type Availability struct {
	CanAfford bool
	HasTime   bool
	Eligible  bool
}

func (a Availability) Available() bool { return a.CanAfford && a.HasTime && a.Eligible }

func (a Availability) String() string {
	switch {
	case !a.CanAfford:
		return "can't afford it"
	case !a.HasTime:
		return "not enough time"
	case !a.Eligible:
		return "not right now"
	}
	return "available"
}

// ActivityAvailability checks money, the 22:00 deadline, the hunger window
// and once-only flags.
func ActivityAvailability(s *models.GameState, act content.Activity) Availability {
	eligible := true
	if act.MinHunger != nil && s.Hunger < *act.MinHunger {
		eligible = false
	}
	if act.MaxHunger != nil && s.Hunger > *act.MaxHunger {
		eligible = false
	}
	if act.Once {
		for _, f := range act.Flags {
			if s.Flags.Has(f) {
				eligible = false
			}
		}
	}
	return Availability{
		CanAfford: s.Money >= act.Cost,
		HasTime:   s.TimeMinutes+act.Duration <= gamestate.DayEndMinute,
		Eligible:  eligible,
	}
}

// ActivityDeltas builds the deltas for doing act. Texting adds rapport with
// npc: +2 while the relationship is at or below zero, +1 after that.
func ActivityDeltas(s *models.GameState, act content.Activity, npc models.NPCID) models.Deltas {
	d := models.Deltas{
		Hunger: optional(act.HungerDelta),
		Money:  optional(-act.Cost),
		Time:   models.Int(act.Duration),
	}
	if len(act.StatDeltas) > 0 {
		d.Stats = maps.Clone(act.StatDeltas)
	}
	if len(act.RapportDeltas) > 0 {
		d.Rapport = maps.Clone(act.RapportDeltas)
	}
	if act.RequiresNPC && npc.Valid() {
		if d.Rapport == nil {
			d.Rapport = map[models.NPCID]int{}
		}
		bonus := 1
		if s.Rapport[npc] <= 0 {
			bonus = 2
		}
		d.Rapport[npc] += bonus
	}
	if len(act.Flags) > 0 {
		d.FlagsGained = append([]models.MemoryFlag(nil), act.Flags...)
	}
	return d
}

// ActivityOption pairs an activity with its current availability.
type ActivityOption struct {
	Activity     content.Activity
	Availability Availability
}

// Activities lists every evening activity for the current state.
func (e *Engine) Activities() []ActivityOption {
	s := e.store.State()
	out := make([]ActivityOption, 0, len(e.tables.Activities))
	for _, act := range e.tables.Activities {
		out = append(out, ActivityOption{Activity: act, Availability: ActivityAvailability(s, act)})
	}
	return out
}

// Cutoff reports what the end-of-evening check did.
type Cutoff int

const (
	CutoffNone Cutoff = iota
	CutoffForcedRest
	CutoffFatigue
)

func (c Cutoff) String() string {
	switch c {
	case CutoffNone:
		return "none"
	case CutoffForcedRest:
		return "forced-rest"
	case CutoffFatigue:
		return "fatigue"
	}
	return fmt.Sprintf("Cutoff(%d)", int(c))
}

// ResolveActivity does activity id. npc is only read for activities that
// need one. The evening cutoff runs straight after, in the same commit.
func (e *Engine) ResolveActivity(id string, npc models.NPCID) (Cutoff, error) {
	if err := e.requireScene(models.SceneEveningActivity); err != nil {
		return CutoffNone, err
	}
	act, ok := e.tables.Activity(id)
	if !ok {
		return CutoffNone, fmt.Errorf("%w: %s", ErrUnknownActivity, id)
	}
	if act.RequiresNPC && !npc.Valid() {
		return CutoffNone, fmt.Errorf("%w: %s needs someone, got %q", ErrNPCRequired, id, npc)
	}
	if av := ActivityAvailability(e.store.State(), act); !av.Available() {
		return CutoffNone, fmt.Errorf("%w: %s: %s", ErrActivityUnavailable, id, av)
	}

	summary := act.Description
	if act.RequiresNPC {
		name := string(npc)
		if n, ok := e.tables.NPC(npc); ok {
			name = n.Name
		}
		summary = fmt.Sprintf("Texted %s.", name)
	}

	var cut Cutoff
	err := e.apply(models.SceneEveningActivity, func(prev *models.GameState) *models.GameState {
		d := ActivityDeltas(prev, act, npc)
		s := gamestate.ApplyDeltas(prev, d)
		s = gamestate.LogActivity(s, models.ActivityEntry{
			Segment:  models.SceneEveningActivity,
			ChoiceID: act.ID,
			Summary:  summary,
			Deltas:   d,
		})
		s, cut = eveningCutoff(e.tables, s)
		return s
	})
	if err != nil {
		return CutoffNone, err
	}

	e.logger.Info("Activity resolved", zap.String("activity", id), zap.Stringer("cutoff", cut))
	return cut, nil
}

// CheckEveningCutoff ends the evening when less than half an hour is left.
// The front end calls it on arriving home.
func (e *Engine) CheckEveningCutoff() (Cutoff, error) {
	if err := e.requireScene(models.SceneEveningActivity); err != nil {
		return CutoffNone, err
	}
	var cut Cutoff
	err := e.apply(models.SceneEveningActivity, func(prev *models.GameState) *models.GameState {
		var s *models.GameState
		s, cut = eveningCutoff(e.tables, prev)
		return s
	})
	if err != nil {
		return CutoffNone, err
	}
	if cut != CutoffNone {
		e.logger.Info("Evening cut off", zap.Stringer("cutoff", cut))
	}
	return cut, nil
}

// EndEvening wraps the evening up by choice.
func (e *Engine) EndEvening() error {
	if err := e.requireScene(models.SceneEveningActivity); err != nil {
		return err
	}
	return e.apply(models.SceneEveningActivity, func(prev *models.GameState) *models.GameState {
		s := gamestate.LogActivity(prev, models.ActivityEntry{
			Segment:  models.SceneEveningActivity,
			ChoiceID: models.ChoiceEndEvening,
			Summary:  "Called it a night.",
		})
		return leaveEvening(s)
	})
}

// eveningCutoff forces a rest when the player can still afford and qualify
// for one, ignoring the time check. Otherwise it logs fatigue. Either way
// the evening ends.
func eveningCutoff(tables *content.Tables, s *models.GameState) (*models.GameState, Cutoff) {
	remaining := gamestate.RemainingMinutes(s)
	if remaining >= CutoffMinutes {
		return s, CutoffNone
	}

	rest, ok := tables.Activity(content.ActivityRest)
	if ok {
		if av := ActivityAvailability(s, rest); av.CanAfford && av.Eligible {
			d := ActivityDeltas(s, rest, "")
			d.Time = models.Int(min(rest.Duration, max(0, remaining)))
			s = gamestate.ApplyDeltas(s, d)
			s = gamestate.LogActivity(s, models.ActivityEntry{
				Segment:  models.SceneEveningActivity,
				ChoiceID: models.ChoiceForcedRest,
				Summary:  "Too tired for anything else. You lie down until lights out.",
				Deltas:   d,
			})
			return leaveEvening(s), CutoffForcedRest
		}
	}

	s = gamestate.LogActivity(s, models.ActivityEntry{
		Segment:  models.SceneEveningActivity,
		ChoiceID: models.ChoiceFatigue,
		Summary:  "Running on empty. The evening is over.",
	})
	return leaveEvening(s), CutoffFatigue
}

func leaveEvening(s *models.GameState) *models.GameState {
	next, ok := flow.NextScene(models.SceneEveningActivity)
	if !ok {
		return s
	}
	return gamestate.TransitionScene(s, next)
}
