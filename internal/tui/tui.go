package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/campus-day/internal/engine"
	"github.com/tatianab/campus-day/internal/gamestate"
	"github.com/tatianab/campus-day/internal/minigame"
	"github.com/tatianab/campus-day/internal/models"
	"github.com/tatianab/campus-day/internal/persistence"
	"github.com/tatianab/campus-day/internal/scene"
	"github.com/tatianab/campus-day/internal/store"
	"go.uber.org/zap"
)

const screenSlot = "screen"

// Deps is what the terminal front end plays against. Saver may be nil.
type Deps struct {
	Engine *engine.Engine
	Store  *store.Store
	Saver  *persistence.Saver
	Logger *zap.Logger
}

// screen is the UI state of one visit to a scene. It lives in the scene
// session, so it survives re-renders and is dropped when the scene changes.
type screen struct {
	name         string
	attempt      *engine.CommuteAttempt
	playing      bool
	pickNPC      bool
	recap        string
	recapPending bool
}

type model struct {
	eng    *engine.Engine
	store  *store.Store
	saver  *persistence.Saver
	scenes *scene.Manager
	logger *zap.Logger

	textInput textinput.Model
	viewport  viewport.Model
	notice    string
	noticeErr bool
	width     int
	height    int
}

func NewModel(d Deps) model {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "Type a number or a choice..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	m := model{
		eng:       d.Engine,
		store:     d.Store,
		saver:     d.Saver,
		logger:    logger.Named("TUI"),
		textInput: ti,
		viewport:  viewport.New(80, 8),
	}
	m.scenes = scene.NewManager(d.Store, m.registry(), scene.WithLogger(logger))
	m.scenes.Start()
	m.syncLog()
	return m
}

// registry mounts every scene. Commute scenes start their attempt on entry.
func (m model) registry() scene.Registry {
	r := scene.Registry{}
	eng := m.eng
	for _, id := range models.AllScenes {
		r[id] = scene.MounterFunc(func(sess *scene.Session, s *models.GameState) error {
			scr := scene.Slot(sess, screenSlot, func() screen { return screen{} })
			if leg, ok := eng.Tables().LegForScene(id); ok {
				a, err := eng.BeginCommute(leg.ID)
				if err != nil {
					return err
				}
				scr.attempt = a
			}
			return nil
		})
	}
	return r
}

func (m model) current() (*scene.Session, *screen) {
	sess := m.scenes.Current()
	if sess == nil {
		return nil, &screen{}
	}
	return sess, scene.Slot[screen](sess, screenSlot, nil)
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.afterAction())
}

type minigameDoneMsg struct {
	sess *scene.Session
	res  minigame.Result
	err  error
}

type recapMsg struct {
	sess *scene.Session
	text string
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.scenes.Stop()
			return m, tea.Quit

		case tea.KeyPgUp, tea.KeyPgDown:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd

		case tea.KeyEnter:
			input := m.textInput.Value()
			m.textInput.Reset()
			cmd = m.submit(input)
			m.syncLog()
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = max(4, msg.Height/3)
		m.syncLog()

	case minigameDoneMsg:
		cmd = m.finishCommute(msg)
		m.syncLog()
		return m, cmd

	case recapMsg:
		if !msg.sess.Closed() {
			scr := scene.Slot[screen](msg.sess, screenSlot, nil)
			scr.recap = msg.text
			scr.recapPending = false
		}
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *model) say(text string) {
	m.notice, m.noticeErr = text, false
}

func (m *model) fail(err error) {
	m.logger.Debug("Action rejected", zap.Error(err))
	m.notice, m.noticeErr = err.Error(), true
}

func (m *model) submit(input string) tea.Cmd {
	input = strings.TrimSpace(input)
	m.notice, m.noticeErr = "", false
	if strings.HasPrefix(input, "/") {
		return m.command(input)
	}

	_, scr := m.current()
	if m.store.State().CurrentScene == models.SceneCharacterCreation && scr.name == "" {
		if input == "" {
			m.fail(engine.ErrNameRequired)
			return nil
		}
		scr.name = input
		return nil
	}
	if input == "" {
		return nil
	}

	opts := m.options()
	i, ok := matchChoice(input, opts)
	if !ok {
		m.say(fmt.Sprintf("Not sure what %q means here. Type a number or a choice.", input))
		return nil
	}
	if opts[i].disabled {
		m.say(fmt.Sprintf("%s: %s", opts[i].label, opts[i].note))
		return nil
	}
	cmd := opts[i].run(m)
	return tea.Batch(cmd, m.afterAction())
}

func (m *model) command(input string) tea.Cmd {
	switch strings.ToLower(input) {
	case "/quit":
		m.scenes.Stop()
		return tea.Quit
	case "/save":
		if m.saver == nil {
			m.fail(errors.New("saving is not configured"))
			return nil
		}
		if m.saver.Save(context.Background(), m.store.State()) {
			m.say("Saved.")
		} else {
			m.fail(errors.New("couldn't save, see the log for details"))
		}
	case "/back":
		if err := m.eng.ReturnFromSideScene(); err != nil {
			m.fail(err)
		}
	case "/help":
		m.say("Type a number or a choice. /save saves, /back leaves a detour, /quit quits. PgUp/PgDn scroll the log.")
	default:
		m.say(fmt.Sprintf("Unknown command %s. Try /help.", input))
	}
	return nil
}

// afterAction runs the checks that follow any state change: the evening
// cutoff, and kicking off the recap once the day is over.
func (m *model) afterAction() tea.Cmd {
	if m.store.State().CurrentScene == models.SceneEveningActivity {
		cut, err := m.eng.CheckEveningCutoff()
		switch {
		case err != nil:
			m.fail(err)
		case cut == engine.CutoffForcedRest:
			m.say("It's nearly 22:00. You're too tired for anything but rest.")
		case cut == engine.CutoffFatigue:
			m.say("It's nearly 22:00 and you're running on empty.")
		}
	}

	if m.store.State().CurrentScene != models.SceneRecap {
		return nil
	}
	sess, scr := m.current()
	if sess == nil || scr.recap != "" || scr.recapPending {
		return nil
	}
	scr.recapPending = true

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	sess.OnCleanup(cancel)
	eng := m.eng
	return func() tea.Msg {
		defer cancel()
		return recapMsg{sess: sess, text: eng.Recap(ctx)}
	}
}

func (m *model) playMinigame(sess *scene.Session, cfg minigame.Config) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	sess.OnCleanup(cancel)
	eng := m.eng
	return func() tea.Msg {
		res, err := eng.PlayMinigame(ctx, cfg)
		return minigameDoneMsg{sess: sess, res: res, err: err}
	}
}

// finishCommute applies a minigame result, unless the player has already
// left the scene it was started in.
func (m *model) finishCommute(msg minigameDoneMsg) tea.Cmd {
	if msg.sess.Closed() {
		m.logger.Debug("Dropping minigame result for a closed scene", zap.String("scene", string(msg.sess.Scene())))
		return nil
	}
	scr := scene.Slot[screen](msg.sess, screenSlot, nil)
	scr.playing = false
	if scr.attempt == nil {
		return nil
	}
	report, err := scr.attempt.Finish(msg.res, msg.err)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.say(report.Summary)
	return m.afterAction()
}

func (m *model) syncLog() {
	s := m.store.State()
	var b strings.Builder
	for _, e := range s.ActivityLog {
		fmt.Fprintf(&b, "%s  %s\n", logTimeStyle.Render(e.Time), e.Summary)
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m model) View() string {
	width := m.width
	if width == 0 {
		width = 100
	}
	s := m.store.State()

	sceneView := lipgloss.NewStyle().Width(int(float64(width) * 0.65)).Render(m.renderScene(s))
	stateView := stateStyle.Width(int(float64(width) * 0.3)).Render(m.renderState(s))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, sceneView, stateView)

	notice := ""
	if m.notice != "" {
		if m.noticeErr {
			notice = errorStyle.Render(m.notice)
		} else {
			notice = noticeStyle.Render(m.notice)
		}
	}
	help := helpStyle.Render("Commands: /save, /back, /help, /quit. Esc quits.")

	return lipgloss.JoinVertical(lipgloss.Left,
		mainView,
		"",
		titleStyle.Render("TODAY"),
		m.viewport.View(),
		notice,
		m.textInput.View(),
		help,
	) + "\n"
}

func (m model) renderScene(s *models.GameState) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render(m.prompt(s)))
	b.WriteString("\n\n")

	for i, o := range m.options() {
		line := fmt.Sprintf("%d. %s", i+1, o.label)
		if o.disabled {
			b.WriteString(disabledStyle.Render(line))
			b.WriteString(helpStyle.Render("  " + o.note))
		} else {
			b.WriteString(choiceStyle.Render(line))
			if o.note != "" {
				b.WriteString(helpStyle.Render("  " + o.note))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderState(s *models.GameState) string {
	tables := m.eng.Tables()
	var b strings.Builder

	b.WriteString(titleStyle.Render("TIME") + "\n")
	fmt.Fprintf(&b, "%s (%d min left)\n\n", gamestate.FormatMinutes(s.TimeMinutes), max(0, gamestate.RemainingMinutes(s)))

	b.WriteString(titleStyle.Render("YOU") + "\n")
	if s.PlayerName != "" {
		b.WriteString(s.PlayerName + "\n")
	}
	fmt.Fprintf(&b, "Money: $%d\nHunger: %d/%d\n", s.Money, s.Hunger, s.Stats.H)
	for _, k := range models.AllStats {
		if k == models.StatHunger {
			continue
		}
		fmt.Fprintf(&b, "%s: %d  ", k, s.Stats.Get(k))
	}
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("PEOPLE") + "\n")
	for _, id := range models.AllNPCs {
		name := string(id)
		if n, ok := tables.NPC(id); ok {
			name = n.Name
		}
		fmt.Fprintf(&b, "%s %+d\n", name, s.Rapport[id])
	}
	return b.String()
}

func Run(d Deps) error {
	p := tea.NewProgram(NewModel(d), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
