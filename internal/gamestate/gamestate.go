// Package gamestate implements the pure state transitions of the day. Every
// function takes a state and returns a new one; inputs are never mutated.
package gamestate

import (
	"fmt"
	"slices"

	"github.com/tatianab/campus-day/internal/content"
	"github.com/tatianab/campus-day/internal/models"
)

const (
	// DayStartMinute is 07:00 expressed in minutes after midnight.
	DayStartMinute = 7 * 60
	// DayEndMinute is the number of minutes from 07:00 to 22:00.
	DayEndMinute = 15 * ((22 - 7) * 4)

	StatMin    = 0
	StatMax    = 10
	RapportMin = -3
	RapportMax = 5
)

// NewInitialState builds a fresh day for major. An unknown major falls back
// to the first major defined in the tables.
func NewInitialState(tables *content.Tables, major models.MajorID) *models.GameState {
	def, ok := tables.Major(major)
	if !ok && len(tables.Majors) > 0 {
		def = tables.Majors[0]
	}
	return FromMajor(def)
}

// FromMajor builds a fresh day from a major definition.
func FromMajor(def content.Major) *models.GameState {
	rapport := make(models.RapportMap, len(models.AllNPCs))
	for _, id := range models.AllNPCs {
		rapport[id] = 0
	}
	return &models.GameState{
		Stats:        def.Stats,
		Hunger:       Clamp(def.Hunger, 0, def.Stats.H),
		Money:        max(0, def.Money),
		TimeMinutes:  0,
		CurrentScene: models.SceneMainMenu,
		Major:        def.ID,
		SpecialItem:  def.SpecialItem,
		Rapport:      rapport,
		Flags:        models.NewFlagSet(),
		ActivityLog:  []models.ActivityEntry{},
	}
}

// ApplyDeltas applies d to s. Absent fields are left untouched. The hunger
// ceiling is the stat block after this call's stat changes.
func ApplyDeltas(s *models.GameState, d models.Deltas) *models.GameState {
	next := s.Clone()

	for _, k := range models.AllStats {
		delta, ok := d.Stats[k]
		if !ok {
			continue
		}
		cur := next.Stats.Get(k)
		if k == models.StatHunger {
			next.Stats = next.Stats.With(k, max(0, cur+delta))
			continue
		}
		next.Stats = next.Stats.With(k, Clamp(cur+delta, StatMin, StatMax))
	}

	_, capacityChanged := d.Stats[models.StatHunger]
	switch {
	case d.Hunger != nil:
		next.Hunger = Clamp(next.Hunger+*d.Hunger, 0, next.Stats.H)
	case capacityChanged:
		next.Hunger = Clamp(next.Hunger, 0, next.Stats.H)
	}

	if d.Money != nil {
		next.Money = max(0, next.Money+*d.Money)
	}
	if d.Time != nil {
		next.TimeMinutes = max(0, next.TimeMinutes+*d.Time)
	}

	for id, delta := range d.Rapport {
		if !id.Valid() {
			continue
		}
		next.Rapport[id] = Clamp(next.Rapport[id]+delta, RapportMin, RapportMax)
	}

	for _, f := range d.FlagsGained {
		next.Flags[f] = struct{}{}
	}

	return next
}

// LogActivity appends entry to the log. An empty Time is stamped from the
// current clock.
func LogActivity(s *models.GameState, entry models.ActivityEntry) *models.GameState {
	if entry.Time == "" {
		entry.Time = FormatMinutes(s.TimeMinutes)
	}
	next := *s
	next.ActivityLog = append(slices.Clip(s.ActivityLog), entry)
	return &next
}

// TransitionScene replaces the current scene only.
func TransitionScene(s *models.GameState, scene models.SceneID) *models.GameState {
	next := *s
	next.CurrentScene = scene
	return &next
}

// SetPlayerName names the character. The name is fixed once set.
func SetPlayerName(s *models.GameState, name string) *models.GameState {
	if s.PlayerName != "" {
		return s
	}
	next := *s
	next.PlayerName = name
	return &next
}

// FormatMinutes renders minutes since 07:00 as a wall clock. Values past
// midnight keep counting (24:xx, 25:xx...).
func FormatMinutes(minutes int) string {
	total := DayStartMinute + minutes
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// RemainingMinutes is the time left before the 22:00 cutoff.
func RemainingMinutes(s *models.GameState) int {
	return DayEndMinute - s.TimeMinutes
}

// Clamp bounds value to [lo, hi].
func Clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
