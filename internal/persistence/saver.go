package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tatianab/campus-day/internal/content"
	"github.com/tatianab/campus-day/internal/gamestate"
	"github.com/tatianab/campus-day/internal/models"
	"go.uber.org/zap"
)

const (
	Version     = "1.0.0"
	SaveKey     = "monash-sim-save"
	AutoSaveKey = "monash-sim-autosave"
)

// Envelope is the persisted document.
type Envelope struct {
	Version   string                     `json:"version"`
	Timestamp int64                      `json:"timestamp"`
	State     models.SerializedGameState `json:"state"`
}

// Saver reads and writes envelopes. Failures are logged and reported as
// false or nil; they never reach the player as errors.
type Saver struct {
	kv     KV
	logger *zap.Logger
	now    func() time.Time
}

func NewSaver(kv KV, logger *zap.Logger) *Saver {
	return &Saver{
		kv:     kv,
		logger: logger.Named("Saver"),
		now:    time.Now,
	}
}

// Encode wraps s in an envelope stamped with now.
func Encode(s *models.GameState, now time.Time) ([]byte, error) {
	return json.Marshal(Envelope{
		Version:   Version,
		Timestamp: now.UnixMilli(),
		State:     s.Serialize(),
	})
}

// Decode parses an envelope and rebuilds the state.
func Decode(data []byte) (*models.GameState, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode save: %w", err)
	}
	if env.Version == "" {
		return nil, errors.New("decode save: missing version")
	}
	if err := checkState(env.State); err != nil {
		return nil, fmt.Errorf("decode save: %w", err)
	}
	return env.State.Deserialize(), nil
}

// checkState rejects a saved state the reducer could never have produced.
func checkState(st models.SerializedGameState) error {
	if !st.CurrentScene.Valid() {
		return fmt.Errorf("unknown scene %q", st.CurrentScene)
	}
	if !st.Major.Valid() {
		return fmt.Errorf("unknown major %q", st.Major)
	}
	for _, k := range models.AllStats {
		v := st.Stats.Get(k)
		if k == models.StatHunger {
			if v < 0 {
				return fmt.Errorf("stat %s is %d", k, v)
			}
			continue
		}
		if v < gamestate.StatMin || v > gamestate.StatMax {
			return fmt.Errorf("stat %s is %d", k, v)
		}
	}
	if st.Hunger < 0 || st.Hunger > st.Stats.H {
		return fmt.Errorf("hunger %d outside 0..%d", st.Hunger, st.Stats.H)
	}
	if st.Money < 0 {
		return fmt.Errorf("money is %d", st.Money)
	}
	if st.TimeMinutes < 0 {
		return fmt.Errorf("time is %d", st.TimeMinutes)
	}
	for id, v := range st.Rapport {
		if !id.Valid() {
			return fmt.Errorf("unknown npc %q", id)
		}
		if v < gamestate.RapportMin || v > gamestate.RapportMax {
			return fmt.Errorf("rapport with %s is %d", id, v)
		}
	}
	for _, f := range st.Flags {
		if !f.Valid() {
			return fmt.Errorf("unknown flag %q", f)
		}
	}
	return nil
}

func (s *Saver) write(ctx context.Context, key string, st *models.GameState) bool {
	data, err := Encode(st, s.now())
	if err != nil {
		s.logger.Error("Failed to encode save", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := s.kv.Put(ctx, key, data); err != nil {
		s.logger.Error("Failed to write save", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Save writes the manual save slot.
func (s *Saver) Save(ctx context.Context, st *models.GameState) bool {
	return s.write(ctx, SaveKey, st)
}

// SaveAuto writes the autosave slot.
func (s *Saver) SaveAuto(ctx context.Context, st *models.GameState) bool {
	return s.write(ctx, AutoSaveKey, st)
}

// Load reads the autosave when useAuto is set, otherwise the manual save.
// A missing or unreadable save yields nil.
func (s *Saver) Load(ctx context.Context, useAuto bool) *models.GameState {
	key := SaveKey
	if useAuto {
		key = AutoSaveKey
	}
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Error("Failed to read save", zap.String("key", key), zap.Error(err))
		return nil
	}
	st, err := Decode(data)
	if err != nil {
		s.logger.Warn("Ignoring corrupt save", zap.String("key", key), zap.Error(err))
		return nil
	}
	return st
}

func (s *Saver) has(ctx context.Context, key string) bool {
	ok, err := s.kv.Has(ctx, key)
	if err != nil {
		s.logger.Error("Failed to check save", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

func (s *Saver) HasSave(ctx context.Context) bool     { return s.has(ctx, SaveKey) }
func (s *Saver) HasAutoSave(ctx context.Context) bool { return s.has(ctx, AutoSaveKey) }

// DeleteSave removes both the manual save and the autosave.
func (s *Saver) DeleteSave(ctx context.Context) {
	for _, key := range []string{SaveKey, AutoSaveKey} {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.logger.Error("Failed to delete save", zap.String("key", key), zap.Error(err))
		}
	}
}

// AutoSaver is the store's persistence hook. It writes the autosave
// whenever a committed state is in the bedroom.
type AutoSaver struct {
	Saver   *Saver
	Timeout time.Duration
}

func (a AutoSaver) Persist(st *models.GameState) {
	if st.CurrentScene != models.SceneBedroom {
		return
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	a.Saver.SaveAuto(ctx, st)
}

// Bootstrap picks the state the game starts from: the autosave when one
// loads, otherwise a fresh day for defaultMajor.
func Bootstrap(ctx context.Context, saver *Saver, tables *content.Tables, defaultMajor models.MajorID) (*models.GameState, bool) {
	if saver.HasAutoSave(ctx) {
		if st := saver.Load(ctx, true); st != nil {
			saver.logger.Info("Resuming from autosave",
				zap.String("scene", string(st.CurrentScene)),
				zap.Int("minutes", st.TimeMinutes))
			return st, true
		}
	}
	return gamestate.NewInitialState(tables, defaultMajor), false
}
