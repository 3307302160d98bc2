// Package config resolves the CLI's settings from the environment, with an
// optional .env file in the working directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fpang/idea-studio/internal/chat"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreDynamo = "dynamodb"
	StoreMemory = "memory"
)

// DefaultVoiceLocale is the regional voice narration prefers.
const DefaultVoiceLocale = "en-IN"

type Config struct {
	APIKey   string
	SSMParam string

	Models ModelConfig
	Store  StoreConfig
	Export ExportConfig

	AuditBus    string
	VoiceLocale string
	Metrics     bool
	LogLevel    string
}

type ModelConfig struct {
	Text  string
	Image string
	TTS   string
}

type StoreConfig struct {
	Backend     string
	DBPath      string
	DynamoTable string
	Compress    bool
}

type ExportConfig struct {
	Dir    string
	Bucket string
}

// Load reads .env (if present) into the process environment without
// overriding variables already set, then resolves the configuration.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv resolves the configuration from the current environment only.
func FromEnv() (*Config, error) {
	compress, err := boolEnv("STUDIO_COMPRESS", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIKey:   strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		SSMParam: strings.TrimSpace(os.Getenv("SSM_API_KEY_PARAM")),
		Models: ModelConfig{
			Text:  chat.GetModelName(),
			Image: chat.GetImageModelName(),
			TTS:   chat.GetTTSModelName(),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(firstNonEmpty(os.Getenv("STUDIO_STORE"), StoreSQLite)),
			DBPath:      firstNonEmpty(os.Getenv("STUDIO_DB_PATH"), defaultDBPath()),
			DynamoTable: strings.TrimSpace(os.Getenv("STUDIO_DYNAMO_TABLE")),
			Compress:    compress,
		},
		Export: ExportConfig{
			Dir:    firstNonEmpty(os.Getenv("STUDIO_EXPORT_DIR"), "."),
			Bucket: strings.TrimSpace(os.Getenv("STUDIO_EXPORT_BUCKET")),
		},
		AuditBus:    strings.TrimSpace(os.Getenv("STUDIO_AUDIT_BUS")),
		VoiceLocale: firstNonEmpty(os.Getenv("STUDIO_VOICE_LOCALE"), DefaultVoiceLocale),
		Metrics:     strings.EqualFold(strings.TrimSpace(os.Getenv("STUDIO_METRICS")), "emf"),
		LogLevel:    strings.TrimSpace(os.Getenv("STUDIO_LOG_LEVEL")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreSQLite:
		if c.Store.DBPath == "" {
			return fmt.Errorf("STUDIO_DB_PATH is required for the sqlite store")
		}
	case StoreDynamo:
		if c.Store.DynamoTable == "" {
			return fmt.Errorf("STUDIO_DYNAMO_TABLE is required for the dynamodb store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STUDIO_STORE %q (want sqlite, dynamodb or memory)", c.Store.Backend)
	}
	return nil
}

// NeedsAWS reports whether any configured component talks to AWS.
func (c *Config) NeedsAWS() bool {
	return c.Store.Backend == StoreDynamo || c.Export.Bucket != "" || c.AuditBus != "" ||
		(c.APIKey == "" && c.SSMParam != "")
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".idea-studio.db"
	}
	return filepath.Join(dir, "idea-studio", "studio.db")
}

func boolEnv(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
