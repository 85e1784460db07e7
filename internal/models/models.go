package models

import "slices"

// SceneID names a UI mode of the day. It drives which renderer mounts.
type SceneID string

const (
	SceneMainMenu          SceneID = "main-menu"
	SceneCharacterCreation SceneID = "character-creation"
	SceneOnboarding        SceneID = "onboarding"
	SceneBedroom           SceneID = "bedroom"
	ScenePhone             SceneID = "phone"
	SceneMorningCommute    SceneID = "morning-commute"
	SceneCampus            SceneID = "campus"
	SceneCampusLTB         SceneID = "campus-ltb"
	SceneLTBInside         SceneID = "ltb-inside"
	SceneGroupMeeting      SceneID = "group-meeting"
	SceneEveningCommute    SceneID = "evening-commute"
	SceneEveningActivity   SceneID = "evening-activity"
	SceneRecap             SceneID = "recap"
)

// AllScenes lists every known scene.
var AllScenes = []SceneID{
	SceneMainMenu, SceneCharacterCreation, SceneOnboarding, SceneBedroom, ScenePhone,
	SceneMorningCommute, SceneCampus, SceneCampusLTB, SceneLTBInside, SceneGroupMeeting,
	SceneEveningCommute, SceneEveningActivity, SceneRecap,
}

func (s SceneID) Valid() bool { return slices.Contains(AllScenes, s) }

// MajorID identifies one of the six selectable majors.
type MajorID string

const (
	MajorEngineering MajorID = "engineering"
	MajorScience     MajorID = "science"
	MajorArts        MajorID = "arts"
	MajorCommerce    MajorID = "commerce"
	MajorIT          MajorID = "it"
	MajorMedicine    MajorID = "medicine"
)

var AllMajors = []MajorID{MajorEngineering, MajorScience, MajorArts, MajorCommerce, MajorIT, MajorMedicine}

func (m MajorID) Valid() bool { return slices.Contains(AllMajors, m) }

// NPCID identifies one of the five fixed NPCs.
type NPCID string

const (
	NPCPriya  NPCID = "priya"
	NPCMarcus NPCID = "marcus"
	NPCLena   NPCID = "lena"
	NPCTomas  NPCID = "tomas"
	NPCAisha  NPCID = "aisha"
)

var AllNPCs = []NPCID{NPCPriya, NPCMarcus, NPCLena, NPCTomas, NPCAisha}

func (n NPCID) Valid() bool { return slices.Contains(AllNPCs, n) }

// MemoryFlag is a one-way narrative milestone.
type MemoryFlag string

const (
	FlagAteBreakfast     MemoryFlag = "ate-breakfast"
	FlagCheckedPhone     MemoryFlag = "checked-phone"
	FlagVisitedLTB       MemoryFlag = "visited-ltb"
	FlagStudiedAtLTB     MemoryFlag = "studied-at-ltb"
	FlagMetGroup         MemoryFlag = "met-group"
	FlagLedMeeting       MemoryFlag = "led-meeting"
	FlagSlackedInMeeting MemoryFlag = "slacked-in-meeting"
	FlagDoomscrolled     MemoryFlag = "doomscrolled"
	FlagTextedFriend     MemoryFlag = "texted-friend"
	FlagCookedDinner     MemoryFlag = "cooked-dinner"
	FlagWentToGym        MemoryFlag = "went-to-gym"
)

var AllFlags = []MemoryFlag{
	FlagAteBreakfast, FlagCheckedPhone, FlagVisitedLTB, FlagStudiedAtLTB, FlagMetGroup,
	FlagLedMeeting, FlagSlackedInMeeting, FlagDoomscrolled, FlagTextedFriend, FlagCookedDinner,
	FlagWentToGym,
}

func (f MemoryFlag) Valid() bool { return slices.Contains(AllFlags, f) }

// StatKey is one of the six stat letters.
type StatKey string

const (
	StatMobility     StatKey = "M"
	StatOrganisation StatKey = "O"
	StatNetworking   StatKey = "N"
	StatAura         StatKey = "A"
	StatSkills       StatKey = "S"
	StatHunger       StatKey = "H"
)

// AllStats is ordered the way stat blocks are displayed.
var AllStats = []StatKey{StatMobility, StatOrganisation, StatNetworking, StatAura, StatSkills, StatHunger}

func (k StatKey) Valid() bool { return slices.Contains(AllStats, k) }

// StatBlock holds the six player attributes. H is the hunger capacity.
type StatBlock struct {
	M int `json:"M" yaml:"M"`
	O int `json:"O" yaml:"O"`
	N int `json:"N" yaml:"N"`
	A int `json:"A" yaml:"A"`
	S int `json:"S" yaml:"S"`
	H int `json:"H" yaml:"H"`
}

// Get returns the value for k, or 0 for an unknown key.
func (b StatBlock) Get(k StatKey) int {
	switch k {
	case StatMobility:
		return b.M
	case StatOrganisation:
		return b.O
	case StatNetworking:
		return b.N
	case StatAura:
		return b.A
	case StatSkills:
		return b.S
	case StatHunger:
		return b.H
	}
	return 0
}

// With returns a copy of b with k set to v. Unknown keys are ignored.
func (b StatBlock) With(k StatKey, v int) StatBlock {
	switch k {
	case StatMobility:
		b.M = v
	case StatOrganisation:
		b.O = v
	case StatNetworking:
		b.N = v
	case StatAura:
		b.A = v
	case StatSkills:
		b.S = v
	case StatHunger:
		b.H = v
	}
	return b
}

// RapportMap holds the relationship score per NPC.
type RapportMap map[NPCID]int

func (r RapportMap) Clone() RapportMap {
	out := make(RapportMap, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FlagSet is the accumulated set of memory flags.
type FlagSet map[MemoryFlag]struct{}

func NewFlagSet(flags ...MemoryFlag) FlagSet {
	s := make(FlagSet, len(flags))
	for _, f := range flags {
		s[f] = struct{}{}
	}
	return s
}

func (s FlagSet) Has(f MemoryFlag) bool {
	_, ok := s[f]
	return ok
}

func (s FlagSet) Clone() FlagSet {
	out := make(FlagSet, len(s))
	for f := range s {
		out[f] = struct{}{}
	}
	return out
}

// Sorted returns the flags as a sorted slice.
func (s FlagSet) Sorted() []MemoryFlag {
	out := make([]MemoryFlag, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Deltas describes relative changes applied in one transition.
// A nil field or absent map key means "leave unchanged".
type Deltas struct {
	Stats       map[StatKey]int `json:"stats,omitempty" yaml:"stats,omitempty"`
	Hunger      *int            `json:"hunger,omitempty" yaml:"hunger,omitempty"`
	Money       *int            `json:"money,omitempty" yaml:"money,omitempty"`
	Time        *int            `json:"time,omitempty" yaml:"time,omitempty"`
	Rapport     map[NPCID]int   `json:"rapport,omitempty" yaml:"rapport,omitempty"`
	FlagsGained []MemoryFlag    `json:"flagsGained,omitempty" yaml:"flagsGained,omitempty"`
}

// IsZero reports whether d changes nothing.
func (d Deltas) IsZero() bool {
	return len(d.Stats) == 0 && d.Hunger == nil && d.Money == nil && d.Time == nil &&
		len(d.Rapport) == 0 && len(d.FlagsGained) == 0
}

// Choice ids the engine logs for entries it creates on its own.
const (
	ChoiceFatigue    = "fatigue"
	ChoiceForcedRest = "rest-auto"
	ChoiceEndEvening = "end-evening"
)

// Int returns a pointer to v, for building Deltas literals.
func Int(v int) *int { return &v }

// ActivityEntry is one line of the day's log.
type ActivityEntry struct {
	Time     string  `json:"time"`
	Segment  SceneID `json:"segment"`
	ChoiceID string  `json:"choiceId"`
	Summary  string  `json:"summary"`
	Deltas   Deltas  `json:"deltas"`
}

// GameState is the root of the simulation. Values are replaced, never
// mutated in place, once handed to the store.
type GameState struct {
	PlayerName   string
	Stats        StatBlock
	Hunger       int
	Money        int
	TimeMinutes  int
	CurrentScene SceneID
	Major        MajorID
	SpecialItem  string
	Rapport      RapportMap
	Flags        FlagSet
	ActivityLog  []ActivityEntry
}

// Clone returns a deep copy of s.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Rapport = s.Rapport.Clone()
	out.Flags = s.Flags.Clone()
	out.ActivityLog = slices.Clone(s.ActivityLog)
	return &out
}
