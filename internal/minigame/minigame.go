// Package minigame defines the contract between outcome resolution and the
// arcade minigames, plus a stat-check stand-in for headless play.
package minigame

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/tatianab/campus-day/internal/models"
)

// Config is the read-only snapshot handed to a minigame.
type Config struct {
	Kind        string // walk, bus or drive
	Leg         string
	Stat        models.StatKey
	Stats       models.StatBlock
	Hunger      int
	TimeMinutes int
}

// Result is what a minigame reports when it ends.
type Result struct {
	Success          bool
	Completed        bool
	ExtraTimePenalty int
	PenaltyReason    string
}

// Minigame plays one round. It may block until the player finishes or quits.
type Minigame interface {
	Play(ctx context.Context, cfg Config) (Result, error)
}

// Func adapts a function to Minigame.
type Func func(ctx context.Context, cfg Config) (Result, error)

func (f Func) Play(ctx context.Context, cfg Config) (Result, error) { return f(ctx, cfg) }

// Fixed always returns the same result.
type Fixed Result

func (f Fixed) Play(ctx context.Context, cfg Config) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result(f), nil
}

// StatCheck resolves a round by rolling against the relevant stat. Each
// stat point adds 8% to a 20% base; running on empty costs 15%.
type StatCheck struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewStatCheck(seed uint64) *StatCheck {
	return &StatCheck{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *StatCheck) Play(ctx context.Context, cfg Config) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	chance := successChance(cfg)

	s.mu.Lock()
	roll := s.rng.IntN(100)
	stumble := s.rng.IntN(100)
	s.mu.Unlock()

	res := Result{Success: roll < chance, Completed: true}
	if !res.Success && stumble < 25 {
		res.ExtraTimePenalty = 10
		res.PenaltyReason = penaltyReason(cfg.Kind)
	}
	return res, nil
}

func successChance(cfg Config) int {
	chance := 20 + 8*cfg.Stats.Get(cfg.Stat)
	if cfg.Hunger <= 2 {
		chance -= 15
	}
	return chance
}

func penaltyReason(kind string) string {
	switch kind {
	case "bus":
		return "Missed your stop."
	case "drive":
		return "Circled the car park twice."
	default:
		return "Stopped to tie a shoelace. Twice."
	}
}
