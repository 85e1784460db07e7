package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/campus-day/internal/content"
	"github.com/tatianab/campus-day/internal/engine"
	"github.com/tatianab/campus-day/internal/gamestate"
	"github.com/tatianab/campus-day/internal/models"
)

// option is one numbered line the player can pick.
type option struct {
	key      string
	label    string
	note     string
	disabled bool
	run      func(m *model) tea.Cmd
}

func (o option) candidates() []string {
	var out []string
	for _, c := range []string{o.key, o.label} {
		if c != "" {
			out = append(out, strings.ToLower(c))
		}
	}
	return out
}

var quitOption = option{key: "quit", label: "Quit", run: func(m *model) tea.Cmd {
	m.scenes.Stop()
	return tea.Quit
}}

// check reports err and returns no command.
func check(m *model, err error) tea.Cmd {
	if err != nil {
		m.fail(err)
	}
	return nil
}

func (m model) options() []option {
	s := m.store.State()
	_, scr := m.current()

	switch s.CurrentScene {
	case models.SceneMainMenu:
		opts := []option{{key: "start", label: "Start a new day", run: func(m *model) tea.Cmd {
			return check(m, m.eng.Advance())
		}}}
		if m.saver != nil && m.saver.HasSave(context.Background()) {
			opts = append(opts, option{key: "load", label: "Load your saved day", run: loadSave})
		}
		return append(opts, quitOption)

	case models.SceneCharacterCreation:
		if scr.name == "" {
			return nil
		}
		var opts []option
		for _, major := range m.eng.Tables().Majors {
			opts = append(opts, option{
				key:   string(major.ID),
				label: major.Name,
				note:  major.SpecialItem,
				run: func(m *model) tea.Cmd {
					return check(m, m.eng.StartGame(scr.name, major.ID))
				},
			})
		}
		return append(opts, option{key: "rename", label: "Change your name", run: func(*model) tea.Cmd {
			scr.name = ""
			return nil
		}})

	case models.SceneOnboarding:
		return []option{{key: "continue", label: "Go to bed", run: func(m *model) tea.Cmd {
			return check(m, m.eng.Advance())
		}}}

	case models.SceneMorningCommute, models.SceneEveningCommute:
		return m.commuteOptions(scr)

	case models.SceneEveningActivity:
		return m.eveningOptions(s, scr)

	case models.SceneRecap:
		return []option{
			{key: "again", label: "Live another day", run: func(m *model) tea.Cmd {
				if m.saver != nil {
					m.saver.DeleteSave(context.Background())
				}
				m.eng.NewGame(m.store.State().Major)
				return nil
			}},
			quitOption,
		}
	}

	_, open, ok := m.eng.Beat()
	if !ok {
		return nil
	}
	opts := make([]option, 0, len(open))
	for _, c := range open {
		scene := s.CurrentScene
		opts = append(opts, option{
			key:   c.ID,
			label: c.Label,
			note:  choiceNote(c),
			run: func(m *model) tea.Cmd {
				return check(m, m.eng.ResolveBeat(scene, c.ID))
			},
		})
	}
	return opts
}

func choiceNote(c content.BeatChoice) string {
	var parts []string
	if c.MoneyDelta < 0 {
		parts = append(parts, fmt.Sprintf("$%d", -c.MoneyDelta))
	}
	if c.TimeDelta > 0 {
		parts = append(parts, fmt.Sprintf("%d min", c.TimeDelta))
	}
	return strings.Join(parts, ", ")
}

func loadSave(m *model) tea.Cmd {
	st := m.saver.Load(context.Background(), false)
	if st == nil {
		m.say("That save couldn't be read.")
		return nil
	}
	m.store.Set(st)
	m.say("Picked up where you left off.")
	return nil
}

func (m model) commuteOptions(scr *screen) []option {
	if scr.attempt == nil || scr.playing || scr.attempt.Phase() != engine.PhaseChoosing {
		return nil
	}
	a := scr.attempt
	plan := a.Plan()
	if plan.Forced {
		o := plan.ForcedOption
		return []option{{
			key:   o.ID,
			label: o.Label,
			note:  "nothing else is affordable",
			run: func(m *model) tea.Cmd {
				report, err := a.ForceAuto()
				if err != nil {
					return check(m, err)
				}
				m.say(report.Summary)
				return nil
			},
		}}
	}

	opts := make([]option, 0, len(plan.Choices))
	for _, c := range plan.Choices {
		label := c.Option.Label
		if c.Option.Cost > 0 {
			label = fmt.Sprintf("%s ($%d)", label, c.Option.Cost)
		}
		o := option{key: c.Option.ID, label: label, disabled: !c.Affordable}
		if !c.Affordable {
			o.note = "can't afford it"
		}
		o.run = func(m *model) tea.Cmd {
			sess, scr := m.current()
			cfg, err := a.Choose(c.Option.ID)
			if err != nil {
				return check(m, err)
			}
			scr.playing = true
			return m.playMinigame(sess, cfg)
		}
		opts = append(opts, o)
	}
	return opts
}

func (m model) eveningOptions(s *models.GameState, scr *screen) []option {
	tables := m.eng.Tables()
	if scr.pickNPC {
		var opts []option
		for _, id := range models.AllNPCs {
			name := string(id)
			if n, ok := tables.NPC(id); ok {
				name = n.Name
			}
			opts = append(opts, option{key: string(id), label: name, note: fmt.Sprintf("%+d", s.Rapport[id]), run: func(m *model) tea.Cmd {
				scr.pickNPC = false
				_, err := m.eng.ResolveActivity(content.ActivityText, id)
				return check(m, err)
			}})
		}
		return append(opts, option{key: "cancel", label: "Never mind", run: func(*model) tea.Cmd {
			scr.pickNPC = false
			return nil
		}})
	}

	var opts []option
	for _, a := range m.eng.Activities() {
		act := a.Activity
		label := fmt.Sprintf("%s (%d min)", act.Label, act.Duration)
		if act.Cost > 0 {
			label = fmt.Sprintf("%s ($%d, %d min)", act.Label, act.Cost, act.Duration)
		}
		o := option{key: act.ID, label: label, disabled: !a.Availability.Available()}
		if o.disabled {
			o.note = a.Availability.String()
		}
		o.run = func(m *model) tea.Cmd {
			if act.RequiresNPC {
				scr.pickNPC = true
				return nil
			}
			_, err := m.eng.ResolveActivity(act.ID, "")
			return check(m, err)
		}
		opts = append(opts, o)
	}
	return append(opts, option{key: "sleep", label: "Call it a night", run: func(m *model) tea.Cmd {
		return check(m, m.eng.EndEvening())
	}})
}

func (m model) prompt(s *models.GameState) string {
	tables := m.eng.Tables()
	_, scr := m.current()

	switch s.CurrentScene {
	case models.SceneMainMenu:
		return "CAMPUS DAY\n\nOne day at uni. Make it count."

	case models.SceneCharacterCreation:
		if scr.name == "" {
			return "What's your name?"
		}
		return fmt.Sprintf("Hi %s. What are you studying?", scr.name)

	case models.SceneOnboarding:
		major, _ := tables.Major(s.Major)
		return fmt.Sprintf("%s\n\nYou're carrying: %s.\nTomorrow: group meeting at 10. Get some sleep.", major.Description, s.SpecialItem)

	case models.SceneMorningCommute, models.SceneEveningCommute:
		where := "to campus"
		if s.CurrentScene == models.SceneEveningCommute {
			where = "home"
		}
		if scr.playing {
			return fmt.Sprintf("On your way %s...", where)
		}
		return fmt.Sprintf("How are you getting %s? You have $%d.", where, s.Money)

	case models.SceneEveningActivity:
		if scr.pickNPC {
			return "Text who?"
		}
		return fmt.Sprintf("Home at %s. %d minutes until lights out.",
			gamestate.FormatMinutes(s.TimeMinutes), max(0, gamestate.RemainingMinutes(s)))

	case models.SceneRecap:
		if scr.recap == "" {
			return "Writing up your day..."
		}
		return scr.recap
	}

	beat, _, ok := m.eng.Beat()
	if !ok {
		return string(s.CurrentScene)
	}
	var b strings.Builder
	b.WriteString(beat.Prompt)
	switch s.CurrentScene {
	case models.ScenePhone:
		for _, msg := range tables.Inbox(s.Flags) {
			name := string(msg.From)
			if n, ok := tables.NPC(msg.From); ok {
				name = n.Name
			}
			fmt.Fprintf(&b, "\n  [%s] %s: %s", msg.Time, name, msg.Text)
		}
	case models.SceneCampus:
		for _, loc := range tables.Locations {
			fmt.Fprintf(&b, "\n  %s: %s", loc.Name, loc.Description)
		}
	}
	return b.String()
}
