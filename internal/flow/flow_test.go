package flow

import (
	"errors"
	"testing"

	"github.com/tatianab/campus-day/internal/models"
)

func TestNextScene(t *testing.T) {
	next, ok := NextScene(models.SceneMainMenu)
	if !ok || next != models.SceneCharacterCreation {
		t.Fatalf("main-menu -> %q (%v), want character-creation", next, ok)
	}

	if next, ok := NextScene(models.SceneRecap); ok {
		t.Fatalf("recap should be terminal, got %q", next)
	}
}

func TestNextDistinguishesTerminalFromUnwired(t *testing.T) {
	if _, err := Next(models.SceneRecap); !errors.Is(err, ErrEndOfFlow) {
		t.Errorf("recap: got %v, want ErrEndOfFlow", err)
	}
	for _, s := range []models.SceneID{models.ScenePhone, models.SceneCampusLTB, models.SceneLTBInside, "nowhere"} {
		if _, err := Next(s); !errors.Is(err, ErrNotInFlow) {
			t.Errorf("%s: got %v, want ErrNotInFlow", s, err)
		}
	}
}

func TestChainIsLinear(t *testing.T) {
	scenes := Scenes()
	seen := map[models.SceneID]bool{}
	cur := scenes[0]
	for {
		if seen[cur] {
			t.Fatalf("cycle at %s", cur)
		}
		seen[cur] = true
		next, ok := NextScene(cur)
		if !ok {
			break
		}
		cur = next
	}
	if cur != models.SceneRecap || !IsTerminal(cur) {
		t.Fatalf("chain ends at %s, want recap", cur)
	}
	if len(seen) != len(scenes) {
		t.Fatalf("walked %d scenes, chain has %d", len(seen), len(scenes))
	}
}

func TestEveryKnownSceneIsReachable(t *testing.T) {
	for _, s := range models.AllScenes {
		_, inChain := NextScene(s)
		_, side := ReturnScene(s)
		if !inChain && !side && !IsTerminal(s) {
			t.Errorf("scene %s is neither in the chain nor a side scene", s)
		}
	}
}

func TestReturnScene(t *testing.T) {
	tests := map[models.SceneID]models.SceneID{
		models.ScenePhone:     models.SceneBedroom,
		models.SceneCampusLTB: models.SceneCampus,
		models.SceneLTBInside: models.SceneCampusLTB,
	}
	for from, want := range tests {
		got, ok := ReturnScene(from)
		if !ok || got != want {
			t.Errorf("ReturnScene(%s) = %s, %v; want %s", from, got, ok, want)
		}
	}
	if _, ok := ReturnScene(models.SceneBedroom); ok {
		t.Error("bedroom is not a side scene")
	}
}
