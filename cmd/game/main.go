package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tatianab/campus-day/internal/config"
	"github.com/tatianab/campus-day/internal/content"
	"github.com/tatianab/campus-day/internal/engine"
	"github.com/tatianab/campus-day/internal/gamestate"
	"github.com/tatianab/campus-day/internal/logger"
	"github.com/tatianab/campus-day/internal/minigame"
	"github.com/tatianab/campus-day/internal/models"
	"github.com/tatianab/campus-day/internal/narrator"
	"github.com/tatianab/campus-day/internal/persistence"
	"github.com/tatianab/campus-day/internal/store"
	"github.com/tatianab/campus-day/internal/tui"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Encoding:   cfg.LogEncoding,
		OutputPath: cfg.LogOutput,
	})
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = log.With(zap.String("run_id", uuid.NewString()))

	tables, err := content.Load()
	if err != nil {
		log.Error("Failed to load content", zap.Error(err))
		fmt.Printf("Error loading content: %v\n", err)
		os.Exit(1)
	}

	kv, closeKV, err := openKV(ctx, cfg, log)
	if err != nil {
		// Saving is optional; play on without it.
		log.Warn("Save backend unavailable, keeping saves in memory",
			zap.String("backend", cfg.SaveBackend), zap.Error(err))
		kv, closeKV = persistence.NewMemoryKV(), func() {}
	}
	defer closeKV()

	saver := persistence.NewSaver(kv, log)
	initial, resumed := persistence.Bootstrap(ctx, saver, tables, cfg.DefaultMajor)
	log.Info("Starting game",
		zap.String("backend", cfg.SaveBackend),
		zap.Bool("resumed", resumed),
		zap.String("scene", string(initial.CurrentScene)))

	st := store.New(initial,
		store.WithPersister(persistence.AutoSaver{Saver: saver}),
		store.WithFactory(func(major models.MajorID) *models.GameState {
			return gamestate.NewInitialState(tables, major)
		}),
		store.WithLogger(log),
	)

	seed := cfg.MinigameSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	opts := []engine.Option{
		engine.WithMinigame(minigame.NewStatCheck(seed)),
		engine.WithLogger(log),
	}
	if cfg.GeminiAPIKey != "" {
		g, err := narrator.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, tables)
		if err != nil {
			log.Warn("Gemini narrator unavailable, using plain recap", zap.Error(err))
		} else {
			defer g.Close()
			opts = append(opts, engine.WithNarrator(g))
		}
	}
	eng := engine.New(tables, st, opts...)

	if err := tui.Run(tui.Deps{Engine: eng, Store: st, Saver: saver, Logger: log}); err != nil {
		log.Error("TUI exited with error", zap.Error(err))
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// openKV connects the save backend named in cfg.
func openKV(ctx context.Context, cfg *config.Config, log *zap.Logger) (persistence.KV, func(), error) {
	switch cfg.SaveBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis at %s: %w", cfg.RedisAddr, err)
		}
		return persistence.NewRedisKV(client, cfg.RedisPrefix, log), func() { client.Close() }, nil

	case config.BackendSQLite:
		kv, err := persistence.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { kv.Close() }, nil

	case config.BackendMemory:
		return persistence.NewMemoryKV(), func() {}, nil
	}
	return persistence.NewFileKV(cfg.SaveDir), func() {}, nil
}
