// Package flow defines the order the day's scenes play in.
package flow

import (
	"errors"
	"fmt"

	"github.com/tatianab/campus-day/internal/models"
)

var (
	// ErrEndOfFlow is returned for the terminal scene.
	ErrEndOfFlow = errors.New("end of flow")
	// ErrNotInFlow is returned for scenes that are not part of the chain.
	ErrNotInFlow = errors.New("scene not in flow")
)

// chain is the main story line. Each scene has exactly one successor; the
// last entry is terminal.
var chain = []models.SceneID{
	models.SceneMainMenu,
	models.SceneCharacterCreation,
	models.SceneOnboarding,
	models.SceneBedroom,
	models.SceneMorningCommute,
	models.SceneCampus,
	models.SceneGroupMeeting,
	models.SceneEveningCommute,
	models.SceneEveningActivity,
	models.SceneRecap,
}

// sideScenes branch off the chain and return to their parent.
var sideScenes = map[models.SceneID]models.SceneID{
	models.ScenePhone:     models.SceneBedroom,
	models.SceneCampusLTB: models.SceneCampus,
	models.SceneLTBInside: models.SceneCampusLTB,
}

// Next returns the successor of current.
func Next(current models.SceneID) (models.SceneID, error) {
	for i, s := range chain {
		if s != current {
			continue
		}
		if i == len(chain)-1 {
			return "", ErrEndOfFlow
		}
		return chain[i+1], nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotInFlow, current)
}

// NextScene is Next without the reason: false means there is no successor.
func NextScene(current models.SceneID) (models.SceneID, bool) {
	next, err := Next(current)
	return next, err == nil
}

// ReturnScene reports where a side scene goes back to.
func ReturnScene(current models.SceneID) (models.SceneID, bool) {
	parent, ok := sideScenes[current]
	return parent, ok
}

// IsTerminal reports whether current ends the day.
func IsTerminal(current models.SceneID) bool {
	return current == chain[len(chain)-1]
}

// Scenes returns the chain in play order.
func Scenes() []models.SceneID {
	out := make([]models.SceneID, len(chain))
	copy(out, chain)
	return out
}
