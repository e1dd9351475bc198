package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// AdminChatID receives completed-submission notifications; 0 disables them.
	AdminChatID int64 `yaml:"admin_chat_id" envconfig:"TELEGRAM_ADMIN_CHAT_ID"`
	// AllowedUserIDs restricts the bot to listed users. Empty means open mode.
	AllowedUserIDs []int64 `yaml:"allowed_user_ids" envconfig:"TELEGRAM_ALLOWED_USER_IDS"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// GoogleConfig groups Google Sheets and Drive settings.
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file" envconfig:"GOOGLE_CREDENTIALS_FILE"`
	SpreadsheetID   string `yaml:"spreadsheet_id" envconfig:"GOOGLE_SPREADSHEET_ID"`
	SheetName       string `yaml:"sheet_name" envconfig:"GOOGLE_SHEET_NAME"`
	// DriveParentFolderID is the Drive folder that receives per-project folders.
	DriveParentFolderID string `yaml:"drive_parent_folder_id" envconfig:"GOOGLE_DRIVE_PARENT_FOLDER_ID"`
	// DriveDisabled turns off folder creation entirely; submissions then carry
	// no folder link and the summary file is skipped.
	DriveDisabled bool `yaml:"drive_disabled" envconfig:"GOOGLE_DRIVE_DISABLED"`
}

// DatabaseConfig holds session database connection settings. It mirrors the
// database package's own Config; keeping a local declaration here avoids
// pulling the database layer (and its logging) into this package.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// SurveyConfig controls the intake questionnaire.
type SurveyConfig struct {
	QuestionsPath string `yaml:"questions_path" envconfig:"SURVEY_QUESTIONS_PATH"`
	// SessionTTLSeconds bounds how long an unfinished survey survives in the store.
	SessionTTLSeconds int `yaml:"session_ttl_seconds" envconfig:"SURVEY_SESSION_TTL_SECONDS"`
	// SinkTimeoutSeconds caps each Sheets/Drive/notification call.
	SinkTimeoutSeconds int `yaml:"sink_timeout_seconds" envconfig:"SURVEY_SINK_TIMEOUT_SECONDS"`
	SkipToken          string `yaml:"skip_token" envconfig:"SURVEY_SKIP_TOKEN"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

const (
	defaultSessionTTLSeconds  = 3600
	defaultSinkTimeoutSeconds = 10
	defaultSkipToken          = "Skip this question ⏭️"
	defaultQuestionsPath      = "questions.yaml"
	defaultSheetName          = "Renovation Projects"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the whole application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Database  DatabaseConfig  `yaml:"database"`
	Google    GoogleConfig    `yaml:"google"`
	Survey    SurveyConfig    `yaml:"survey"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if strings.TrimSpace(cfg.Google.SpreadsheetID) == "" {
		return fmt.Errorf("google.spreadsheet_id is required")
	}
	if strings.TrimSpace(cfg.Google.CredentialsFile) == "" {
		return fmt.Errorf("google.credentials_file is required")
	}
	if strings.TrimSpace(cfg.Google.SheetName) == "" {
		cfg.Google.SheetName = defaultSheetName
	}
	if !cfg.Google.DriveDisabled && strings.TrimSpace(cfg.Google.DriveParentFolderID) == "" {
		return fmt.Errorf("google.drive_parent_folder_id is required unless google.drive_disabled is set")
	}

	if cfg.Survey.SessionTTLSeconds < 0 {
		return fmt.Errorf("survey.session_ttl_seconds must be >= 0")
	}
	if cfg.Survey.SessionTTLSeconds == 0 {
		cfg.Survey.SessionTTLSeconds = defaultSessionTTLSeconds
	}
	if cfg.Survey.SinkTimeoutSeconds < 0 {
		return fmt.Errorf("survey.sink_timeout_seconds must be >= 0")
	}
	if cfg.Survey.SinkTimeoutSeconds == 0 {
		cfg.Survey.SinkTimeoutSeconds = defaultSinkTimeoutSeconds
	}
	if strings.TrimSpace(cfg.Survey.SkipToken) == "" {
		cfg.Survey.SkipToken = defaultSkipToken
	}
	if strings.TrimSpace(cfg.Survey.QuestionsPath) == "" {
		cfg.Survey.QuestionsPath = defaultQuestionsPath
	}

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}
	return nil
}
