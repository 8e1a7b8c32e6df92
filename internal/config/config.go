package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token   string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	Mode    string `yaml:"mode" env:"BOT_MODE"`     // polling | webhook
	BaseURL string `yaml:"base_url" env:"BASE_URL"` // public URL the webhook is registered under
	Workers int    `yaml:"workers" env:"BOT_WORKERS"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL"`   // trace|debug|info|warn|error
	Format   string `yaml:"format" env:"LOG_FORMAT"` // json|console
	Sampling bool   `yaml:"sampling" env:"LOG_SAMPLING"`
}

type HTTPConfig struct {
	Port int `yaml:"port" env:"PORT"`
}

type TrackerConfig struct {
	Policy       string        `yaml:"policy" env:"TRACKER_POLICY"` // passenger | text
	PollInterval time.Duration `yaml:"poll_interval" env:"TRACKER_POLL_INTERVAL"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"TRACKER_FETCH_TIMEOUT"`
	Lang         string        `yaml:"lang" env:"TRACKER_LANG"`
}

type ScraperConfig struct {
	BaseURL   string        `yaml:"base_url" env:"SCRAPER_BASE_URL"`
	UserAgent string        `yaml:"user_agent" env:"SCRAPER_USER_AGENT"`
	Timeout   time.Duration `yaml:"timeout" env:"SCRAPER_TIMEOUT"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url" env:"DATABASE_URL"`
	MaxConns int32  `yaml:"max_conns" env:"DATABASE_MAX_CONNS"`
}

type RedisConfig struct {
	URL      string        `yaml:"url" env:"REDIS_URL"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL"`
}

type RateLimitConfig struct {
	MessagesPerMinute int `yaml:"messages_per_minute" env:"RATE_LIMIT_PER_MINUTE"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// LoadConfig reads the YAML file at path (optional when the environment carries
// everything), loads a .env file if present, then applies environment overrides.
func LoadConfig(path string, dev bool) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return cfg, nil
}

// LoadToolConfig reads configuration like LoadConfig but skips the bot
// checks, for tools that only talk to storage or the status site.
func LoadToolConfig(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// environment-only deployment
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.Bot.Mode = strings.ToLower(strings.TrimSpace(cfg.Bot.Mode))
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = ModePolling
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	cfg.Bot.BaseURL = strings.TrimRight(cfg.Bot.BaseURL, "/")
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 3000
	}
	if cfg.Tracker.Policy == "" {
		cfg.Tracker.Policy = "passenger"
	}
	if cfg.Tracker.FetchTimeout <= 0 {
		cfg.Tracker.FetchTimeout = 20 * time.Second
	}
	if cfg.Tracker.Lang == "" {
		cfg.Tracker.Lang = "en"
	}
	if cfg.Scraper.BaseURL == "" {
		cfg.Scraper.BaseURL = "https://www.railyatri.in/pnr-status"
	}
	cfg.Scraper.BaseURL = strings.TrimRight(cfg.Scraper.BaseURL, "/")
	if cfg.Scraper.UserAgent == "" {
		cfg.Scraper.UserAgent = defaultUserAgent
	}
	if cfg.Scraper.Timeout <= 0 {
		cfg.Scraper.Timeout = 15 * time.Second
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.RateLimit.MessagesPerMinute <= 0 {
		cfg.RateLimit.MessagesPerMinute = 20
	}
}

// Validate performs the minimal checks needed to start the bot.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return errors.New("bot.token is required")
	}
	switch c.Bot.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.Bot.BaseURL == "" {
			return errors.New("bot.base_url is required in webhook mode")
		}
	default:
		return fmt.Errorf("bot.mode %q is not supported", c.Bot.Mode)
	}
	if c.Tracker.PollInterval < 0 {
		return errors.New("tracker.poll_interval must not be negative")
	}
	return nil
}

// WebhookPath is the route Telegram posts updates to.
func (c *Config) WebhookPath() string {
	return "/bot" + c.Bot.Token
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
