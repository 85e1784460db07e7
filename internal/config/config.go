package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/tatianab/campus-day/internal/models"
)

// Save backends understood by SaveBackend.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	SaveBackend string `envconfig:"SAVE_BACKEND" default:"file"`
	SaveDir     string `envconfig:"SAVE_DIR" default:".saves"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"campus-day:"`

	SQLitePath string `envconfig:"SQLITE_PATH" default:".saves/saves.db"`

	// The Gemini narrator is optional; without a key the recap is plain.
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	DefaultMajor models.MajorID `envconfig:"DEFAULT_MAJOR" default:"engineering"`
	MinigameSeed uint64         `envconfig:"MINIGAME_SEED" default:"0"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	LogOutput   string `envconfig:"LOG_OUTPUT" default:".saves/game.log"`
}

// LoadConfig reads envFile (if present) and then the environment.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	c.SaveBackend = strings.ToLower(strings.TrimSpace(c.SaveBackend))
	switch c.SaveBackend {
	case BackendFile, BackendRedis, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("SAVE_BACKEND must be one of file, redis, sqlite, memory; got %q", c.SaveBackend)
	}
	if !c.DefaultMajor.Valid() {
		return fmt.Errorf("DEFAULT_MAJOR %q is not a known major", c.DefaultMajor)
	}
	return nil
}
