// Package content holds the static, validated tables the game logic reads:
// majors, NPCs, commute options, evening activities, the campus map, phone
// messages and per-scene beats.
package content

import (
	"github.com/tatianab/campus-day/internal/models"
)

// Major is the starting loadout for one major.
type Major struct {
	ID          models.MajorID   `yaml:"id" validate:"required,major_id"`
	Name        string           `yaml:"name" validate:"required"`
	Description string           `yaml:"description" validate:"required"`
	Stats       models.StatBlock `yaml:"stats"`
	Hunger      int              `yaml:"hunger" validate:"gte=0"`
	Money       int              `yaml:"money" validate:"gte=0"`
	SpecialItem string           `yaml:"special_item" validate:"required"`
}

// NPC is a character the player can build rapport with.
type NPC struct {
	ID          models.NPCID `yaml:"id" validate:"required,npc_id"`
	Name        string       `yaml:"name" validate:"required"`
	Role        string       `yaml:"role" validate:"required"`
	Description string       `yaml:"description"`
}

// Outcome bundles the narrative text and deltas for one branch.
type Outcome struct {
	Description   string                 `yaml:"description" validate:"required"`
	StatDeltas    map[models.StatKey]int `yaml:"stat_deltas" validate:"dive,keys,stat_key,endkeys"`
	HungerDelta   int                    `yaml:"hunger_delta"`
	MoneyDelta    int                    `yaml:"money_delta"`
	TimeDelta     int                    `yaml:"time_delta" validate:"gte=0"`
	RapportDeltas map[models.NPCID]int   `yaml:"rapport_deltas" validate:"dive,keys,npc_id,endkeys"`
}

// CommuteOption is one transport choice (walk, bus, drive).
type CommuteOption struct {
	ID       string         `yaml:"id" validate:"required"`
	Label    string         `yaml:"label" validate:"required"`
	Minigame string         `yaml:"minigame" validate:"required,oneof=walk bus drive"`
	Stat     models.StatKey `yaml:"stat" validate:"required,stat_key"`
	Cost     int            `yaml:"cost" validate:"gte=0"`
	Success  Outcome        `yaml:"success"`
	Failure  Outcome        `yaml:"failure"`
	Auto     *Outcome       `yaml:"auto,omitempty"`
}

// CommuteLeg ties a commute scene to its fixed successor.
type CommuteLeg struct {
	ID    string         `yaml:"id" validate:"required,oneof=morning evening"`
	Scene models.SceneID `yaml:"scene" validate:"required,scene_id"`
	Next  models.SceneID `yaml:"next" validate:"required,scene_id"`
}

// Activity is an evening activity.
type Activity struct {
	ID            string                 `yaml:"id" validate:"required"`
	Label         string                 `yaml:"label" validate:"required"`
	Description   string                 `yaml:"description" validate:"required"`
	Cost          int                    `yaml:"cost" validate:"gte=0"`
	Duration      int                    `yaml:"duration" validate:"gt=0"`
	MinHunger     *int                   `yaml:"min_hunger,omitempty" validate:"omitempty,gte=0"`
	MaxHunger     *int                   `yaml:"max_hunger,omitempty" validate:"omitempty,gte=0"`
	Once          bool                   `yaml:"once"`
	RequiresNPC   bool                   `yaml:"requires_npc"`
	StatDeltas    map[models.StatKey]int `yaml:"stat_deltas" validate:"dive,keys,stat_key,endkeys"`
	HungerDelta   int                    `yaml:"hunger_delta"`
	RapportDeltas map[models.NPCID]int   `yaml:"rapport_deltas" validate:"dive,keys,npc_id,endkeys"`
	Flags         []models.MemoryFlag    `yaml:"flags" validate:"dive,memory_flag"`
}

// Location is a point on the campus map.
type Location struct {
	ID          string         `yaml:"id" validate:"required"`
	Name        string         `yaml:"name" validate:"required"`
	Description string         `yaml:"description"`
	Scene       models.SceneID `yaml:"scene,omitempty" validate:"omitempty,scene_id"`
	X           int            `yaml:"x" validate:"gte=0"`
	Y           int            `yaml:"y" validate:"gte=0"`
}

// Message is a phone message shown in the phone scene.
type Message struct {
	ID           string            `yaml:"id" validate:"required"`
	From         models.NPCID      `yaml:"from" validate:"required,npc_id"`
	Time         string            `yaml:"time" validate:"required,clock"`
	Text         string            `yaml:"text" validate:"required"`
	RequiresFlag models.MemoryFlag `yaml:"requires_flag,omitempty" validate:"omitempty,memory_flag"`
}

// BeatChoice is a single choice inside a scene beat.
type BeatChoice struct {
	ID            string                 `yaml:"id" validate:"required"`
	Label         string                 `yaml:"label" validate:"required"`
	Summary       string                 `yaml:"summary"`
	StatDeltas    map[models.StatKey]int `yaml:"stat_deltas" validate:"dive,keys,stat_key,endkeys"`
	HungerDelta   int                    `yaml:"hunger_delta"`
	MoneyDelta    int                    `yaml:"money_delta"`
	TimeDelta     int                    `yaml:"time_delta" validate:"gte=0"`
	RapportDeltas map[models.NPCID]int   `yaml:"rapport_deltas" validate:"dive,keys,npc_id,endkeys"`
	Flags         []models.MemoryFlag    `yaml:"flags" validate:"dive,memory_flag"`
	RequiresFlag  models.MemoryFlag      `yaml:"requires_flag,omitempty" validate:"omitempty,memory_flag"`
	ExcludesFlag  models.MemoryFlag      `yaml:"excludes_flag,omitempty" validate:"omitempty,memory_flag"`
	Advance       bool                   `yaml:"advance"`
	Goto          models.SceneID         `yaml:"goto,omitempty" validate:"omitempty,scene_id"`
}

// Beat is the list of choices offered in one scene.
type Beat struct {
	Scene   models.SceneID `yaml:"scene" validate:"required,scene_id"`
	Prompt  string         `yaml:"prompt" validate:"required"`
	Choices []BeatChoice   `yaml:"choices" validate:"required,min=1,dive"`
}

// Tables is the full validated content set.
type Tables struct {
	Majors     []Major         `yaml:"majors"`
	NPCs       []NPC           `yaml:"npcs"`
	Commutes   []CommuteOption `yaml:"commutes"`
	Legs       []CommuteLeg    `yaml:"legs"`
	Activities []Activity      `yaml:"activities"`
	Locations  []Location      `yaml:"locations"`
	Messages   []Message       `yaml:"messages"`
	Beats      []Beat          `yaml:"beats"`
}

func (t *Tables) Major(id models.MajorID) (Major, bool) {
	for _, m := range t.Majors {
		if m.ID == id {
			return m, true
		}
	}
	return Major{}, false
}

func (t *Tables) NPC(id models.NPCID) (NPC, bool) {
	for _, n := range t.NPCs {
		if n.ID == id {
			return n, true
		}
	}
	return NPC{}, false
}

func (t *Tables) Commute(id string) (CommuteOption, bool) {
	for _, c := range t.Commutes {
		if c.ID == id {
			return c, true
		}
	}
	return CommuteOption{}, false
}

func (t *Tables) Leg(id string) (CommuteLeg, bool) {
	for _, l := range t.Legs {
		if l.ID == id {
			return l, true
		}
	}
	return CommuteLeg{}, false
}

// LegForScene finds the commute leg played in scene.
func (t *Tables) LegForScene(scene models.SceneID) (CommuteLeg, bool) {
	for _, l := range t.Legs {
		if l.Scene == scene {
			return l, true
		}
	}
	return CommuteLeg{}, false
}

func (t *Tables) Activity(id string) (Activity, bool) {
	for _, a := range t.Activities {
		if a.ID == id {
			return a, true
		}
	}
	return Activity{}, false
}

func (t *Tables) Beat(scene models.SceneID) (Beat, bool) {
	for _, b := range t.Beats {
		if b.Scene == scene {
			return b, true
		}
	}
	return Beat{}, false
}

// Choice looks up a choice in the beat for scene.
func (b Beat) Choice(id string) (BeatChoice, bool) {
	for _, c := range b.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return BeatChoice{}, false
}

// Inbox returns the phone messages visible given the player's flags.
func (t *Tables) Inbox(flags models.FlagSet) []Message {
	var out []Message
	for _, m := range t.Messages {
		if m.RequiresFlag != "" && !flags.Has(m.RequiresFlag) {
			continue
		}
		out = append(out, m)
	}
	return out
}
