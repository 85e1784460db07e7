// Package narrator turns the day's activity log into a recap.
package narrator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tatianab/campus-day/internal/content"
	"github.com/tatianab/campus-day/internal/gamestate"
	"github.com/tatianab/campus-day/internal/models"
)

// Narrator writes the recap shown at the end of the day.
type Narrator interface {
	Recap(ctx context.Context, s *models.GameState) (string, error)
}

// recapData is the view both narrators render from.
type recapData struct {
	Name        string
	Major       string
	SpecialItem string
	Clock       string
	Money       int
	Hunger      int
	Capacity    int
	Stats       []string
	Rapport     []string
	Log         []models.ActivityEntry
}

func newRecapData(tables *content.Tables, s *models.GameState) recapData {
	d := recapData{
		Name:        s.PlayerName,
		Major:       string(s.Major),
		SpecialItem: s.SpecialItem,
		Clock:       gamestate.FormatMinutes(s.TimeMinutes),
		Money:       s.Money,
		Hunger:      s.Hunger,
		Capacity:    s.Stats.H,
		Log:         s.ActivityLog,
	}
	if m, ok := tables.Major(s.Major); ok {
		d.Major = m.Name
	}
	for _, k := range models.AllStats {
		if k == models.StatHunger {
			continue
		}
		d.Stats = append(d.Stats, fmt.Sprintf("%s=%d", k, s.Stats.Get(k)))
	}
	for _, id := range models.AllNPCs {
		name := string(id)
		if n, ok := tables.NPC(id); ok {
			name = n.Name
		}
		d.Rapport = append(d.Rapport, fmt.Sprintf("%s=%+d", name, s.Rapport[id]))
	}
	return d
}

// Plain builds the recap directly from the log.
type Plain struct {
	Tables *content.Tables
}

func (p Plain) Recap(ctx context.Context, s *models.GameState) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d := newRecapData(p.Tables, s)

	var b strings.Builder
	if d.Name == "" {
		fmt.Fprintf(&b, "Your day studying %s\n\n", d.Major)
	} else {
		fmt.Fprintf(&b, "%s's day studying %s\n\n", d.Name, d.Major)
	}
	if len(d.Log) == 0 {
		b.WriteString("Nothing much happened. Sometimes that's fine.\n")
	}
	for _, e := range d.Log {
		fmt.Fprintf(&b, "%s  %s\n", e.Time, e.Summary)
	}
	fmt.Fprintf(&b, "\nHome by %s with $%d left and hunger at %d/%d.\n", d.Clock, d.Money, d.Hunger, d.Capacity)

	if best, score := closest(p.Tables, s); score > 0 {
		fmt.Fprintf(&b, "You got closest to %s today.\n", best)
	}
	if n := len(s.ActivityLog); n > 0 && s.ActivityLog[n-1].ChoiceID == models.ChoiceFatigue {
		b.WriteString("You ran out of steam before the night was over.\n")
	}
	return b.String(), nil
}

// closest returns the NPC with the highest rapport, ties broken by id.
func closest(tables *content.Tables, s *models.GameState) (string, int) {
	ids := make([]models.NPCID, 0, len(s.Rapport))
	for id := range s.Rapport {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var best models.NPCID
	score := 0
	for _, id := range ids {
		if s.Rapport[id] > score {
			best, score = id, s.Rapport[id]
		}
	}
	if n, ok := tables.NPC(best); ok {
		return n.Name, score
	}
	return string(best), score
}
