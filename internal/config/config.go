// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/beitans8/telegram-ig-agent/internal/errors"
)

// Config holds application configuration.
type Config struct {
	// BotToken is the Telegram Bot API credential.
	BotToken string

	// OpenAIKey is the completion provider credential.
	OpenAIKey string

	// BraveKey is the search provider credential.
	BraveKey string

	// AdminChatID is the chat that receives the usage report. Zero when unset.
	AdminChatID int64

	// Model is the completion model identifier.
	Model string

	// CompletionTimeout bounds the synthesis call.
	CompletionTimeout time.Duration

	// DataDir is the directory holding the usage ledger database.
	DataDir string

	// CatalogPath is the offer catalog document.
	CatalogPath string
}

// Load reads configuration from the environment, applying defaults for the
// optional values. Required credentials are checked by the Validate helpers,
// not here, so read-only commands can run without a full credential set.
func Load() (*Config, error) {
	dataDir := os.Getenv("IGAGENT_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		dataDir = filepath.Join(home, ".igagent")
	}

	adminChatID, err := parseAdminChatID(os.Getenv("ADMIN_CHAT_ID"))
	if err != nil {
		return nil, err
	}

	timeout, err := parseTimeout(os.Getenv("COMPLETION_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	return &Config{
		BotToken:          os.Getenv("BOT_TOKEN"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		BraveKey:          os.Getenv("BRAVE_API_KEY"),
		AdminChatID:       adminChatID,
		Model:             getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		CompletionTimeout: timeout,
		DataDir:           dataDir,
		CatalogPath:       getEnv("CATALOG_PATH", "catalog.json"),
	}, nil
}

// ValidateBot checks the credentials the conversational bot requires.
// Missing any of them is fatal at startup.
func (c *Config) ValidateBot() error {
	if c.BotToken == "" {
		return errors.NewConfigMissing("BOT_TOKEN")
	}
	if c.OpenAIKey == "" {
		return errors.NewConfigMissing("OPENAI_API_KEY")
	}
	if c.BraveKey == "" {
		return errors.NewConfigMissing("BRAVE_API_KEY")
	}
	return nil
}

// ValidateAdminReport checks the credentials the admin usage report requires.
func (c *Config) ValidateAdminReport() error {
	if c.BotToken == "" {
		return errors.NewConfigMissing("BOT_TOKEN")
	}
	if c.AdminChatID == 0 {
		return errors.NewConfigMissing("ADMIN_CHAT_ID")
	}
	return nil
}

// parseAdminChatID parses the admin chat identifier. Empty is allowed: the
// admin report is optional for the bot itself.
func parseAdminChatID(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest("ADMIN_CHAT_ID must be a numeric chat identifier")
	}
	return id, nil
}

// parseTimeout parses COMPLETION_TIMEOUT as a Go duration, defaulting to
// two minutes.
func parseTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return 2 * time.Minute, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, errors.NewInvalidRequest("COMPLETION_TIMEOUT must be a positive duration (e.g. 90s)")
	}
	return d, nil
}

// getEnv returns the environment value or a default when unset.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
