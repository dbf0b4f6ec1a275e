package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings that are common for all bots.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Stacks      string `yaml:"stacks"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	ErrorsFile  string `yaml:"errors_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// MongoConfig holds document store connection settings.
type MongoConfig struct {
	URI                   string `yaml:"uri" envconfig:"MONGO_URI"`
	Database              string `yaml:"database" envconfig:"MONGO_DB"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds" envconfig:"MONGO_CONNECT_TIMEOUT_SECONDS"`
}

// RedisConfig holds connection settings for the redis session backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
	// TTLMinutes bounds how long an idle session survives; 0 -> default.
	TTLMinutes int `yaml:"ttl_minutes" envconfig:"REDIS_SESSION_TTL_MINUTES"`
}

const (
	// SessionsMemory keeps dialogue sessions in process memory.
	SessionsMemory = "memory"
	// SessionsRedis keeps dialogue sessions in redis with an idle TTL.
	SessionsRedis = "redis"
)

// SessionsConfig selects and configures the dialogue session backend.
type SessionsConfig struct {
	Backend string      `yaml:"backend" envconfig:"SESSIONS_BACKEND"`
	Redis   RedisConfig `yaml:"redis"`
}

// BoardConfig carries classifieds board settings: pagination sizes, the
// owner edit window, store retention, and the fixed category set.
type BoardConfig struct {
	MyPageSize        int               `yaml:"my_page_size" envconfig:"BOARD_MY_PAGE_SIZE"`
	ViewPageSize      int               `yaml:"view_page_size" envconfig:"BOARD_VIEW_PAGE_SIZE"`
	EditWindowMinutes int               `yaml:"edit_window_minutes" envconfig:"BOARD_EDIT_WINDOW_MINUTES"`
	RetentionDays     int               `yaml:"retention_days" envconfig:"BOARD_RETENTION_DAYS"`
	Categories        []string          `yaml:"categories"`
	KindGlyphs        map[string]string `yaml:"kind_glyphs"`
}

// EditWindow returns the owner edit window as a duration.
func (b BoardConfig) EditWindow() time.Duration {
	return time.Duration(b.EditWindowMinutes) * time.Minute
}

// Retention returns the listing retention period as a duration.
func (b BoardConfig) Retention() time.Duration {
	return time.Duration(b.RetentionDays) * 24 * time.Hour
}

// DefaultCategories is the fixed category enumeration used when the config
// file does not override it. Order matters: callbacks select by index.
var DefaultCategories = []string{
	"👷 Jobs / Gigs",
	"🛠️ Household services",
	"🚗 Delivery / Transport",
	"💻 Online services",
	"💅 Beauty / Health",
	"📚 Tutoring / Education",
	"🧩 Other",
}

// DefaultKindGlyphs maps a listing kind to its display glyph.
var DefaultKindGlyphs = map[string]string{
	"job":     "💼",
	"service": "🤝",
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
	// UpdateInlineQuery identifies inline query updates for rate limit exclusions.
	UpdateInlineQuery = "inline_query"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
// - "inline_query": inline query updates
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the full application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Board     BoardConfig     `yaml:"board"`
}

// CoreConfig exposes the configuration to the shared cmd runner.
func (c *Config) CoreConfig() *Config { return c }

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

	allowed := map[string]struct{}{
		UpdateCallback:    {},
		UpdateMessage:     {},
		UpdateInlineQuery: {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message, inline_query", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	if strings.TrimSpace(cfg.Mongo.URI) == "" {
		return fmt.Errorf("mongo.uri is required")
	}
	if strings.TrimSpace(cfg.Mongo.Database) == "" {
		cfg.Mongo.Database = "kropbot"
	}
	if cfg.Mongo.ConnectTimeoutSeconds <= 0 {
		cfg.Mongo.ConnectTimeoutSeconds = 5
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Sessions.Backend))
	if backend == "" {
		backend = SessionsMemory
	}
	switch backend {
	case SessionsMemory:
	case SessionsRedis:
		if strings.TrimSpace(cfg.Sessions.Redis.Addr) == "" {
			return fmt.Errorf("sessions.redis.addr is required when sessions.backend is 'redis'")
		}
		if cfg.Sessions.Redis.TTLMinutes <= 0 {
			cfg.Sessions.Redis.TTLMinutes = 12 * 60
		}
	default:
		return fmt.Errorf("invalid sessions.backend %q; allowed: memory, redis", cfg.Sessions.Backend)
	}
	cfg.Sessions.Backend = backend

	if cfg.Board.MyPageSize <= 0 {
		cfg.Board.MyPageSize = 5
	}
	if cfg.Board.ViewPageSize <= 0 {
		cfg.Board.ViewPageSize = 5
	}
	if cfg.Board.EditWindowMinutes <= 0 {
		cfg.Board.EditWindowMinutes = 15
	}
	if cfg.Board.RetentionDays <= 0 {
		cfg.Board.RetentionDays = 30
	}
	if len(cfg.Board.Categories) == 0 {
		cfg.Board.Categories = append([]string(nil), DefaultCategories...)
	}
	if len(cfg.Board.KindGlyphs) == 0 {
		cfg.Board.KindGlyphs = make(map[string]string, len(DefaultKindGlyphs))
		for k, v := range DefaultKindGlyphs {
			cfg.Board.KindGlyphs[k] = v
		}
	}

	return nil
}
