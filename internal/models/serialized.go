package models

// SerializedGameState is the persisted shape of GameState: flags become a
// plain sorted array.
type SerializedGameState struct {
	PlayerName   string          `json:"playerName"`
	Stats        StatBlock       `json:"stats"`
	Hunger       int             `json:"hunger"`
	Money        int             `json:"money"`
	TimeMinutes  int             `json:"timeMinutes"`
	CurrentScene SceneID         `json:"currentScene"`
	Major        MajorID         `json:"major"`
	SpecialItem  string          `json:"specialItem"`
	Rapport      RapportMap      `json:"rapport"`
	Flags        []MemoryFlag    `json:"flags"`
	ActivityLog  []ActivityEntry `json:"activityLog"`
}

// Serialize converts s for persistence.
func (s *GameState) Serialize() SerializedGameState {
	return SerializedGameState{
		PlayerName:   s.PlayerName,
		Stats:        s.Stats,
		Hunger:       s.Hunger,
		Money:        s.Money,
		TimeMinutes:  s.TimeMinutes,
		CurrentScene: s.CurrentScene,
		Major:        s.Major,
		SpecialItem:  s.SpecialItem,
		Rapport:      s.Rapport.Clone(),
		Flags:        s.Flags.Sorted(),
		ActivityLog:  cloneLog(s.ActivityLog),
	}
}

// Deserialize rebuilds a GameState, reconstituting the flag set. NPCs
// missing from the rapport map start at zero.
func (s SerializedGameState) Deserialize() *GameState {
	rapport := make(RapportMap, len(AllNPCs))
	for _, id := range AllNPCs {
		rapport[id] = 0
	}
	for id, v := range s.Rapport {
		rapport[id] = v
	}
	return &GameState{
		PlayerName:   s.PlayerName,
		Stats:        s.Stats,
		Hunger:       s.Hunger,
		Money:        s.Money,
		TimeMinutes:  s.TimeMinutes,
		CurrentScene: s.CurrentScene,
		Major:        s.Major,
		SpecialItem:  s.SpecialItem,
		Rapport:      rapport,
		Flags:        NewFlagSet(s.Flags...),
		ActivityLog:  cloneLog(s.ActivityLog),
	}
}

// cloneLog copies log, never returning nil so an empty log encodes as [].
func cloneLog(log []ActivityEntry) []ActivityEntry {
	out := make([]ActivityEntry, len(log))
	copy(out, log)
	return out
}
