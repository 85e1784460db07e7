package main

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/campus-day/internal/config"
	"github.com/tatianab/campus-day/internal/content"
	"github.com/tatianab/campus-day/internal/engine"
	"github.com/tatianab/campus-day/internal/flow"
	"github.com/tatianab/campus-day/internal/gamestate"
	"github.com/tatianab/campus-day/internal/minigame"
	"github.com/tatianab/campus-day/internal/models"
	"github.com/tatianab/campus-day/internal/persistence"
	"github.com/tatianab/campus-day/internal/store"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const maxSteps = 60

// player picks one of choices. Without a Gemini key it takes the last one,
// which in every beat is the option that moves the day along.
type player struct {
	model *genai.GenerativeModel
}

func (p player) pick(ctx context.Context, situation string, choices []string) int {
	if p.model == nil || len(choices) < 2 {
		return len(choices) - 1
	}
	var list strings.Builder
	for i, c := range choices {
		fmt.Fprintf(&list, "%d. %s\n", i+1, c)
	}
	prompt := fmt.Sprintf(`You are a uni student playing through one day on campus.
%s

Choices:
%s
Reply with ONLY the number of your choice.`, situation, list.String())

	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil || len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return len(choices) - 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])))
	if err != nil || n < 1 || n > len(choices) {
		return len(choices) - 1
	}
	return n - 1
}

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tables, err := content.Load()
	if err != nil {
		log.Fatalf("Failed to load content: %v", err)
	}

	logger := zap.NewNop()
	saver := persistence.NewSaver(persistence.NewMemoryKV(), logger)
	st := store.New(gamestate.NewInitialState(tables, cfg.DefaultMajor),
		store.WithPersister(persistence.AutoSaver{Saver: saver}),
	)
	eng := engine.New(tables, st, engine.WithMinigame(minigame.NewStatCheck(cfg.MinigameSeed)))

	var p player
	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			log.Fatalf("Failed to create player client: %v", err)
		}
		defer client.Close()
		p.model = client.GenerativeModel(cfg.GeminiModel)
	}

	for step := 1; step <= maxSteps; step++ {
		s := eng.State()
		fmt.Printf("--- %s @ %s ($%d, hunger %d) ---\n",
			s.CurrentScene, gamestate.FormatMinutes(s.TimeMinutes), s.Money, s.Hunger)

		if flow.IsTerminal(s.CurrentScene) {
			fmt.Println(eng.Recap(ctx))
			fmt.Printf("Autosave written: %v\n", saver.HasAutoSave(ctx))
			return
		}
		if err := takeTurn(ctx, eng, p); err != nil {
			log.Fatalf("Step %d failed: %v", step, err)
		}
		if n := len(eng.State().ActivityLog); n > len(s.ActivityLog) {
			fmt.Printf("Log: %s\n\n", eng.State().ActivityLog[n-1].Summary)
		}
	}
	fmt.Println("Ran out of steps before the day ended.")
}

func takeTurn(ctx context.Context, eng *engine.Engine, p player) error {
	s := eng.State()
	tables := eng.Tables()

	switch s.CurrentScene {
	case models.SceneMainMenu, models.SceneOnboarding:
		return eng.Advance()

	case models.SceneCharacterCreation:
		var names []string
		for _, m := range tables.Majors {
			names = append(names, m.Name)
		}
		i := p.pick(ctx, "Pick a major.", names)
		return eng.StartGame("Sim", tables.Majors[i].ID)

	case models.SceneMorningCommute, models.SceneEveningCommute:
		leg, _ := tables.LegForScene(s.CurrentScene)
		a, err := eng.BeginCommute(leg.ID)
		if err != nil {
			return err
		}
		plan := a.Plan()
		if plan.Forced {
			report, err := a.ForceAuto()
			fmt.Printf("Forced: %s\n", report.Summary)
			return err
		}
		var ids, labels []string
		for _, c := range plan.Choices {
			if c.Affordable {
				ids = append(ids, c.Option.ID)
				labels = append(labels, fmt.Sprintf("%s ($%d)", c.Option.Label, c.Option.Cost))
			}
		}
		i := p.pick(ctx, fmt.Sprintf("How do you get there? You have $%d.", s.Money), labels)
		mg, err := a.Choose(ids[i])
		if err != nil {
			return err
		}
		res, playErr := eng.PlayMinigame(ctx, mg)
		report, err := a.Finish(res, playErr)
		fmt.Printf("Took the %s: success=%v\n", ids[i], report.Success)
		return err

	case models.SceneEveningActivity:
		if cut, err := eng.CheckEveningCutoff(); err != nil || cut != engine.CutoffNone {
			fmt.Printf("Cutoff: %s\n", cut)
			return err
		}
		acts := []content.Activity{{}}
		labels := []string{"Call it a night"}
		for _, a := range eng.Activities() {
			if a.Availability.Available() {
				acts = append(acts, a.Activity)
				labels = append(labels, a.Activity.Label)
			}
		}
		i := p.pick(ctx, fmt.Sprintf("Evening. %d minutes left.", gamestate.RemainingMinutes(s)), labels)
		if i == 0 {
			return eng.EndEvening()
		}
		var npc models.NPCID
		if acts[i].RequiresNPC {
			npc = loneliest(s)
		}
		_, err := eng.ResolveActivity(acts[i].ID, npc)
		return err
	}

	beat, open, ok := eng.Beat()
	if !ok {
		return fmt.Errorf("no beat for %s", s.CurrentScene)
	}
	var labels []string
	for _, c := range open {
		labels = append(labels, c.Label)
	}
	i := p.pick(ctx, beat.Prompt, labels)
	return eng.ResolveBeat(s.CurrentScene, open[i].ID)
}

// loneliest returns the NPC with the lowest rapport.
func loneliest(s *models.GameState) models.NPCID {
	ids := slices.Clone(models.AllNPCs)
	slices.SortStableFunc(ids, func(a, b models.NPCID) int { return s.Rapport[a] - s.Rapport[b] })
	return ids[0]
}
