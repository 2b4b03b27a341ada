// Package config manages application configuration from default values,
// an optional config.yaml file, and BOT_* environment variables.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config defines the application configuration for all components.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Bot       BotConfig       `mapstructure:"bot"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Update    UpdateConfig    `mapstructure:"update"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials and runtime identity.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
	Name  string `mapstructure:"name"`

	// BotInfo is populated at startup from GetMe and is not read from file.
	BotInfo *models.User `mapstructure:"-"`
}

// BotConfig holds behavior switches for the command layer and the chat path.
type BotConfig struct {
	// GroupShareMode controls whether a group conversation shares a single
	// configuration/history namespace or each member gets an isolated one.
	GroupShareMode bool `mapstructure:"group_share_mode"`

	EnableUsageStats bool     `mapstructure:"enable_usage_stats"`
	HideCommands     []string `mapstructure:"hide_commands"`

	DebugMode bool `mapstructure:"debug_mode"`
	DevMode   bool `mapstructure:"dev_mode"`

	DefaultInitMessage string `mapstructure:"default_init_message" validate:"required"`
	MaxHistoryLength   int    `mapstructure:"max_history_length"   validate:"min=1,max=1000"`
}

// GeminiConfig holds settings for the Gemini AI client.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key" validate:"required"`
	Model             string  `mapstructure:"model"   validate:"required"`
	ImageModel        string  `mapstructure:"image_model" validate:"required"`
	Temperature       float64 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=300"`
}

// DatabaseConfig holds settings for the SQLite-backed key-value store.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig holds the scheduled task table.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named task and assigns its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// UpdateConfig points /version at the remote build manifest.
type UpdateConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Branch  string        `mapstructure:"branch"   validate:"required"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"min=1s,max=2m"`
}
