package content

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/tatianab/campus-day/internal/models"
)

// Required activity ids the engine depends on.
const (
	ActivityRest = "rest"
	ActivityText = "text"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("major_id", func(fl validator.FieldLevel) bool {
		return models.MajorID(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("npc_id", func(fl validator.FieldLevel) bool {
		return models.NPCID(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("stat_key", func(fl validator.FieldLevel) bool {
		return models.StatKey(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("memory_flag", func(fl validator.FieldLevel) bool {
		return models.MemoryFlag(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("scene_id", func(fl validator.FieldLevel) bool {
		return models.SceneID(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(validateStatBlock, models.StatBlock{})
	return v
}

// M, O, N, A and S start within [0,10]; the hunger capacity must be positive.
func validateStatBlock(sl validator.StructLevel) {
	b := sl.Current().Interface().(models.StatBlock)
	for _, k := range models.AllStats {
		v := b.Get(k)
		if k == models.StatHunger {
			if v < 1 {
				sl.ReportError(v, string(k), string(k), "gte", "1")
			}
			continue
		}
		if v < 0 || v > 10 {
			sl.ReportError(v, string(k), string(k), "stat_range", "0-10")
		}
	}
}

// Validate checks every table entry against its schema and the cross
// references between tables. The returned error names the offending id.
func (t *Tables) Validate() error {
	v := newValidator()

	if err := t.validateMajors(v); err != nil {
		return err
	}
	if err := t.validateNPCs(v); err != nil {
		return err
	}
	if err := t.validateCommutes(v); err != nil {
		return err
	}
	if err := t.validateActivities(v); err != nil {
		return err
	}
	for _, l := range t.Locations {
		if err := v.Struct(l); err != nil {
			return fmt.Errorf("location %q: %w", l.ID, err)
		}
	}
	if err := unique("location", t.Locations, func(l Location) string { return l.ID }); err != nil {
		return err
	}
	for _, m := range t.Messages {
		if err := v.Struct(m); err != nil {
			return fmt.Errorf("message %q: %w", m.ID, err)
		}
	}
	if err := unique("message", t.Messages, func(m Message) string { return m.ID }); err != nil {
		return err
	}
	return t.validateBeats(v)
}

func (t *Tables) validateMajors(v *validator.Validate) error {
	for _, m := range t.Majors {
		if err := v.Struct(m); err != nil {
			return fmt.Errorf("major %q: %w", m.ID, err)
		}
		if m.Hunger > m.Stats.H {
			return fmt.Errorf("major %q: starting hunger %d exceeds capacity %d", m.ID, m.Hunger, m.Stats.H)
		}
	}
	if err := unique("major", t.Majors, func(m Major) string { return string(m.ID) }); err != nil {
		return err
	}
	for _, id := range models.AllMajors {
		if _, ok := t.Major(id); !ok {
			return fmt.Errorf("major %q: missing definition", id)
		}
	}
	return nil
}

func (t *Tables) validateNPCs(v *validator.Validate) error {
	for _, n := range t.NPCs {
		if err := v.Struct(n); err != nil {
			return fmt.Errorf("npc %q: %w", n.ID, err)
		}
	}
	if err := unique("npc", t.NPCs, func(n NPC) string { return string(n.ID) }); err != nil {
		return err
	}
	for _, id := range models.AllNPCs {
		if _, ok := t.NPC(id); !ok {
			return fmt.Errorf("npc %q: missing definition", id)
		}
	}
	return nil
}

func (t *Tables) validateCommutes(v *validator.Validate) error {
	if len(t.Commutes) == 0 {
		return errors.New("commutes: no options defined")
	}
	for _, c := range t.Commutes {
		if err := v.Struct(c); err != nil {
			return fmt.Errorf("commute %q: %w", c.ID, err)
		}
	}
	if err := unique("commute", t.Commutes, func(c CommuteOption) string { return c.ID }); err != nil {
		return err
	}
	for _, l := range t.Legs {
		if err := v.Struct(l); err != nil {
			return fmt.Errorf("leg %q: %w", l.ID, err)
		}
	}
	if err := unique("leg", t.Legs, func(l CommuteLeg) string { return l.ID }); err != nil {
		return err
	}
	for _, id := range []string{"morning", "evening"} {
		if _, ok := t.Leg(id); !ok {
			return fmt.Errorf("leg %q: missing definition", id)
		}
	}
	return nil
}

func (t *Tables) validateActivities(v *validator.Validate) error {
	for _, a := range t.Activities {
		if err := v.Struct(a); err != nil {
			return fmt.Errorf("activity %q: %w", a.ID, err)
		}
		if a.MinHunger != nil && a.MaxHunger != nil && *a.MinHunger > *a.MaxHunger {
			return fmt.Errorf("activity %q: min_hunger %d above max_hunger %d", a.ID, *a.MinHunger, *a.MaxHunger)
		}
		if a.Once && len(a.Flags) == 0 {
			return fmt.Errorf("activity %q: once-only activity must grant a flag", a.ID)
		}
	}
	if err := unique("activity", t.Activities, func(a Activity) string { return a.ID }); err != nil {
		return err
	}
	if _, ok := t.Activity(ActivityRest); !ok {
		return fmt.Errorf("activity %q: missing definition", ActivityRest)
	}
	text, ok := t.Activity(ActivityText)
	if !ok {
		return fmt.Errorf("activity %q: missing definition", ActivityText)
	}
	if !text.RequiresNPC {
		return fmt.Errorf("activity %q: must require an npc", ActivityText)
	}
	return nil
}

func (t *Tables) validateBeats(v *validator.Validate) error {
	for _, b := range t.Beats {
		if err := v.Struct(b); err != nil {
			return fmt.Errorf("beat %q: %w", b.Scene, err)
		}
		if err := unique(fmt.Sprintf("beat %q choice", b.Scene), b.Choices, func(c BeatChoice) string { return c.ID }); err != nil {
			return err
		}
		for _, c := range b.Choices {
			if c.Advance && c.Goto != "" {
				return fmt.Errorf("beat %q choice %q: advance and goto are exclusive", b.Scene, c.ID)
			}
		}
	}
	return unique("beat", t.Beats, func(b Beat) string { return string(b.Scene) })
}

func unique[T any](kind string, items []T, key func(T) string) error {
	seen := make([]string, 0, len(items))
	for _, it := range items {
		k := key(it)
		if slices.Contains(seen, k) {
			return fmt.Errorf("%s %q: duplicate id", kind, k)
		}
		seen = append(seen, k)
	}
	return nil
}
