package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "TECHPORTFOLIO_CONFIG"
	databaseDriverEnv = "DATABASE_DRIVER"
	databaseDSNEnv    = "DATABASE_DSN"
	httpAddrEnv       = "HTTP_ADDR"
	logLevelEnv       = "LOG_LEVEL"
	logFormatEnv      = "LOG_FORMAT"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	importCronEnv     = "IMPORT_CRON"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Server        ServerConfig       `yaml:"server"`
	Recommend     RecommendConfig    `yaml:"recommend"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Breaker       BreakerConfig      `yaml:"breaker"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
	Importer      ImporterConfig     `yaml:"importer"`
	Sites         []SiteConfig       `yaml:"sites" validate:"dive"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=postgres sqlite3"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// ServerConfig drives the HTTP API.
type ServerConfig struct {
	Addr         string          `yaml:"addr" validate:"required"`
	ReadTimeout  time.Duration   `yaml:"readTimeout" validate:"gt=0"`
	WriteTimeout time.Duration   `yaml:"writeTimeout" validate:"gt=0"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig caps requests per client IP; zero requests disables the limiter.
type RateLimitConfig struct {
	Requests int           `yaml:"requests" validate:"gte=0"`
	Window   time.Duration `yaml:"window" validate:"gt=0"`
}

// RecommendConfig bounds recommendation requests.
type RecommendConfig struct {
	DefaultLimit    int           `yaml:"defaultLimit" validate:"min=1,ltefield=MaxLimit"`
	MaxLimit        int           `yaml:"maxLimit" validate:"min=1"`
	HomepageRefresh time.Duration `yaml:"homepageRefresh" validate:"gt=0"`
}

// SchedulerConfig defines when the importer should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression" validate:"required"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// BreakerConfig tunes the circuit breaker guarding pool reads.
type BreakerConfig struct {
	MaxRequests      uint32        `yaml:"maxRequests" validate:"min=1"`
	Interval         time.Duration `yaml:"interval" validate:"gte=0"`
	Timeout          time.Duration `yaml:"timeout" validate:"gt=0"`
	FailureThreshold uint32        `yaml:"failureThreshold" validate:"min=1"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken   string `yaml:"botToken"`
	ChatID     string `yaml:"chatId"`
	APIBaseURL string `yaml:"apiBaseUrl" validate:"omitempty,url"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// ImporterConfig controls how scraped listings enter the catalogue.
type ImporterConfig struct {
	Publish *bool `yaml:"publish"`
}

// PublishImported reports whether imported items become visible immediately.
func (i ImporterConfig) PublishImported() bool {
	return i.Publish == nil || *i.Publish
}

// SiteConfig describes a single site with its scanner strategy.
type SiteConfig struct {
	Name    string            `yaml:"name" validate:"required"`
	Scanner string            `yaml:"scanner" validate:"required"`
	Pages   []PageConfig      `yaml:"pages" validate:"dive"`
	Options map[string]string `yaml:"options"`
}

// PageConfig holds a concrete listing endpoint to crawl.
type PageConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url" validate:"required,url"`
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile behaves like Load but reads YAML from path; an empty path keeps defaults.
func LoadFile(path string) Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: cannot read .env: %v", err)
	}

	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Validate checks the merged configuration.
func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(importCronEnv); v != "" {
		c.Scheduler.CronExpression = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.ReadTimeout > 0 {
		base.Server.ReadTimeout = override.Server.ReadTimeout
	}
	if override.Server.WriteTimeout > 0 {
		base.Server.WriteTimeout = override.Server.WriteTimeout
	}
	if len(override.Server.CORSOrigins) > 0 {
		base.Server.CORSOrigins = override.Server.CORSOrigins
	}
	if override.Server.RateLimit.Requests != 0 {
		base.Server.RateLimit.Requests = override.Server.RateLimit.Requests
	}
	if override.Server.RateLimit.Window > 0 {
		base.Server.RateLimit.Window = override.Server.RateLimit.Window
	}

	if override.Recommend.DefaultLimit != 0 {
		base.Recommend.DefaultLimit = override.Recommend.DefaultLimit
	}
	if override.Recommend.MaxLimit != 0 {
		base.Recommend.MaxLimit = override.Recommend.MaxLimit
	}
	if override.Recommend.HomepageRefresh > 0 {
		base.Recommend.HomepageRefresh = override.Recommend.HomepageRefresh
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Breaker.MaxRequests != 0 {
		base.Breaker.MaxRequests = override.Breaker.MaxRequests
	}
	if override.Breaker.Interval > 0 {
		base.Breaker.Interval = override.Breaker.Interval
	}
	if override.Breaker.Timeout > 0 {
		base.Breaker.Timeout = override.Breaker.Timeout
	}
	if override.Breaker.FailureThreshold != 0 {
		base.Breaker.FailureThreshold = override.Breaker.FailureThreshold
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.APIBaseURL != "" {
		base.Notifications.Telegram.APIBaseURL = override.Notifications.Telegram.APIBaseURL
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Importer.Publish != nil {
		base.Importer.Publish = override.Importer.Publish
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database: DatabaseConfig{Driver: "sqlite3", DSN: "file:techportfolio.db?_foreign_keys=on"},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			CORSOrigins:  []string{"*"},
			RateLimit:    RateLimitConfig{Requests: 120, Window: time.Minute},
		},
		Recommend: RecommendConfig{DefaultLimit: 3, MaxLimit: 20, HomepageRefresh: 5 * time.Minute},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Breaker: BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{APIBaseURL: "https://api.telegram.org"},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Sites: []SiteConfig{
			{
				Name:    "tech-transfer",
				Scanner: "listing",
				Pages: []PageConfig{
					{Name: "available", URL: "https://techtransfer.example.edu/technologies"},
				},
			},
		},
	}
}

// String renders the scheduler summary for log lines.
func (s SchedulerConfig) String() string {
	return s.CronExpression + " (" + s.Location().String() + ")"
}
