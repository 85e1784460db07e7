package engine

import (
	"context"
	"fmt"
	"maps"

	"github.com/tatianab/campus-day/internal/content"
	"github.com/tatianab/campus-day/internal/gamestate"
	"github.com/tatianab/campus-day/internal/minigame"
	"github.com/tatianab/campus-day/internal/models"
	"go.uber.org/zap"
)

// CommuteChoice is an option as offered to the player.
type CommuteChoice struct {
	Option     content.CommuteOption
	Affordable bool
}

// CommutePlan lists the options for one leg. When Forced is set the player
// cannot pay for any paid option and ForcedOption's auto outcome applies.
type CommutePlan struct {
	Leg          content.CommuteLeg
	Choices      []CommuteChoice
	Forced       bool
	ForcedOption content.CommuteOption
}

// Choice returns the offered option with id.
func (p CommutePlan) Choice(id string) (CommuteChoice, bool) {
	for _, c := range p.Choices {
		if c.Option.ID == id {
			return c, true
		}
	}
	return CommuteChoice{}, false
}

// PlanCommute works out which options s can pay for on leg.
func PlanCommute(tables *content.Tables, s *models.GameState, leg content.CommuteLeg) CommutePlan {
	plan := CommutePlan{Leg: leg}
	paid, paidAffordable := false, false
	var free *content.CommuteOption

	for i, opt := range tables.Commutes {
		affordable := s.Money >= opt.Cost
		plan.Choices = append(plan.Choices, CommuteChoice{Option: opt, Affordable: affordable})
		if opt.Cost > 0 {
			paid = true
			paidAffordable = paidAffordable || affordable
		} else if opt.Auto != nil && free == nil {
			free = &tables.Commutes[i]
		}
	}
	if paid && !paidAffordable && free != nil {
		plan.Forced = true
		plan.ForcedOption = *free
	}
	return plan
}

// CommuteOutcomeDeltas turns an outcome into deltas. The minigame's extra
// time penalty is added to the outcome's time. Commutes never grant flags.
func CommuteOutcomeDeltas(o content.Outcome, penalty int) models.Deltas {
	d := models.Deltas{
		Hunger:      models.Int(o.HungerDelta),
		Money:       models.Int(o.MoneyDelta),
		Time:        models.Int(o.TimeDelta + max(0, penalty)),
		FlagsGained: []models.MemoryFlag{},
	}
	if len(o.StatDeltas) > 0 {
		d.Stats = maps.Clone(o.StatDeltas)
	}
	if len(o.RapportDeltas) > 0 {
		d.Rapport = maps.Clone(o.RapportDeltas)
	}
	return d
}

// CommutePhase tracks a commute from choosing to resolved.
type CommutePhase int

const (
	PhaseChoosing CommutePhase = iota
	PhasePlaying
	PhaseResolved
)

func (p CommutePhase) String() string {
	switch p {
	case PhaseChoosing:
		return "choosing"
	case PhasePlaying:
		return "playing-minigame"
	case PhaseResolved:
		return "resolved"
	}
	return fmt.Sprintf("CommutePhase(%d)", int(p))
}

// CommuteReport describes how a commute went.
type CommuteReport struct {
	Option  content.CommuteOption
	Success bool
	Forced  bool
	Summary string
	Deltas  models.Deltas
}

// CommuteAttempt drives one leg. The terminal front end holds on to it
// while the minigame runs in the background.
type CommuteAttempt struct {
	engine *Engine
	plan   CommutePlan
	phase  CommutePhase
	option content.CommuteOption
}

// BeginCommute starts the leg with id legID. The player must be standing in
// the leg's scene.
func (e *Engine) BeginCommute(legID string) (*CommuteAttempt, error) {
	leg, ok := e.tables.Leg(legID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLeg, legID)
	}
	if err := e.requireScene(leg.Scene); err != nil {
		return nil, err
	}
	return &CommuteAttempt{
		engine: e,
		plan:   PlanCommute(e.tables, e.store.State(), leg),
	}, nil
}

func (a *CommuteAttempt) Plan() CommutePlan  { return a.plan }
func (a *CommuteAttempt) Phase() CommutePhase { return a.phase }

// Choose picks an option and returns the snapshot the minigame plays with.
func (a *CommuteAttempt) Choose(optionID string) (minigame.Config, error) {
	if a.phase != PhaseChoosing {
		return minigame.Config{}, fmt.Errorf("%w: %s", ErrCommutePhase, a.phase)
	}
	if a.plan.Forced {
		return minigame.Config{}, ErrCommuteForced
	}
	choice, ok := a.plan.Choice(optionID)
	if !ok {
		return minigame.Config{}, fmt.Errorf("%w: %s", ErrUnknownOption, optionID)
	}
	if !choice.Affordable {
		return minigame.Config{}, fmt.Errorf("%w: %s costs $%d", ErrUnaffordable, optionID, choice.Option.Cost)
	}

	s := a.engine.store.State()
	a.option = choice.Option
	a.phase = PhasePlaying
	return minigame.Config{
		Kind:        choice.Option.Minigame,
		Leg:         a.plan.Leg.ID,
		Stat:        choice.Option.Stat,
		Stats:       s.Stats,
		Hunger:      s.Hunger,
		TimeMinutes: s.TimeMinutes,
	}, nil
}

// Finish applies the minigame's result. An incomplete run or a play error
// counts as a failure.
func (a *CommuteAttempt) Finish(res minigame.Result, playErr error) (CommuteReport, error) {
	if a.phase != PhasePlaying {
		return CommuteReport{}, fmt.Errorf("%w: %s", ErrCommutePhase, a.phase)
	}
	if playErr != nil {
		a.engine.logger.Warn("Minigame failed, using failure outcome",
			zap.String("option", a.option.ID), zap.Error(playErr))
		res = minigame.Result{}
	}

	success := res.Completed && res.Success
	outcome := a.option.Failure
	if success {
		outcome = a.option.Success
	}
	summary := outcome.Description
	if res.ExtraTimePenalty > 0 && res.PenaltyReason != "" {
		summary += " " + res.PenaltyReason
	}

	report := CommuteReport{
		Option:  a.option,
		Success: success,
		Summary: summary,
		Deltas:  CommuteOutcomeDeltas(outcome, res.ExtraTimePenalty),
	}
	if err := a.resolve(report, a.option.ID); err != nil {
		return CommuteReport{}, err
	}
	return report, nil
}

// ForceAuto applies the free option's auto outcome without a minigame.
func (a *CommuteAttempt) ForceAuto() (CommuteReport, error) {
	if a.phase != PhaseChoosing {
		return CommuteReport{}, fmt.Errorf("%w: %s", ErrCommutePhase, a.phase)
	}
	if !a.plan.Forced {
		return CommuteReport{}, fmt.Errorf("%w: a paid option is affordable", ErrCommutePhase)
	}
	a.option = a.plan.ForcedOption
	auto := *a.option.Auto
	report := CommuteReport{
		Option:  a.option,
		Forced:  true,
		Summary: auto.Description,
		Deltas:  CommuteOutcomeDeltas(auto, 0),
	}
	if err := a.resolve(report, a.option.ID+"-auto"); err != nil {
		return CommuteReport{}, err
	}
	return report, nil
}

func (a *CommuteAttempt) resolve(report CommuteReport, choiceID string) error {
	leg := a.plan.Leg
	err := a.engine.apply(leg.Scene, func(prev *models.GameState) *models.GameState {
		s := gamestate.ApplyDeltas(prev, report.Deltas)
		s = gamestate.LogActivity(s, models.ActivityEntry{
			Segment:  leg.Scene,
			ChoiceID: choiceID,
			Summary:  report.Summary,
			Deltas:   report.Deltas,
		})
		return gamestate.TransitionScene(s, leg.Next)
	})
	a.phase = PhaseResolved
	if err != nil {
		return err
	}

	a.engine.logger.Info("Commute resolved",
		zap.String("leg", leg.ID),
		zap.String("choice", choiceID),
		zap.Bool("success", report.Success),
		zap.Bool("forced", report.Forced),
	)
	return nil
}

// ResolveCommute plays optionID on leg legID in one go, blocking on the
// minigame.
func (e *Engine) ResolveCommute(ctx context.Context, legID, optionID string) (CommuteReport, error) {
	a, err := e.BeginCommute(legID)
	if err != nil {
		return CommuteReport{}, err
	}
	cfg, err := a.Choose(optionID)
	if err != nil {
		return CommuteReport{}, err
	}
	res, playErr := e.minigame.Play(ctx, cfg)
	return a.Finish(res, playErr)
}

// ResolveForcedCommute walks the player when nothing else is affordable.
func (e *Engine) ResolveForcedCommute(legID string) (CommuteReport, error) {
	a, err := e.BeginCommute(legID)
	if err != nil {
		return CommuteReport{}, err
	}
	return a.ForceAuto()
}

// PlayMinigame runs the configured minigame. The terminal front end calls
// it from a background command.
func (e *Engine) PlayMinigame(ctx context.Context, cfg minigame.Config) (minigame.Result, error) {
	return e.minigame.Play(ctx, cfg)
}
