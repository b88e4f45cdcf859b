// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

type BotConfig struct {
	Token              string        `yaml:"token"`
	Mode               string        `yaml:"mode"` // polling | webhook
	WebhookURL         string        `yaml:"webhook_url"`
	WebhookPath        string        `yaml:"webhook_path"`
	SecretToken        string        `yaml:"secret_token"`
	Port               int           `yaml:"port"`
	Workers            int           `yaml:"workers"` // polling workers
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	SearchCacheSeconds *int          `yaml:"search_cache_seconds"`
	DropPendingUpdates bool          `yaml:"drop_pending_updates"`
}

// CacheSeconds returns the cache_time used for search answers.
func (b BotConfig) CacheSeconds() int {
	if b.SearchCacheSeconds == nil {
		return 60
	}
	return *b.SearchCacheSeconds
}

type WikiConfig struct {
	APIURL      string        `yaml:"api_url"`
	ArticleBase string        `yaml:"article_base"`
	UserAgent   string        `yaml:"user_agent"`
	Timeout     time.Duration `yaml:"timeout"`
	SearchLimit int           `yaml:"search_limit"`
	ThumbSize   int           `yaml:"thumb_size"`
	RandomMode  string        `yaml:"random_mode"` // list | redirect
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"` // metrics/health listener in polling mode, 0 disables
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type Config struct {
	Bot   BotConfig   `yaml:"bot"`
	Wiki  WikiConfig  `yaml:"wiki"`
	Log   LogConfig   `yaml:"log"`
	Admin AdminConfig `yaml:"admin"`
	Redis RedisConfig `yaml:"redis"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (a missing file is fine),
// applies environment overrides and defaults, then validates.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("TELEGRAM_TOKEN", &cfg.Bot.Token)
	str("WEBHOOK_URL", &cfg.Bot.WebhookURL)
	str("WEBHOOK_SECRET_TOKEN", &cfg.Bot.SecretToken)
	str("REDIS_URL", &cfg.Redis.URL)
	str("LOG_LEVEL", &cfg.Log.Level)
	if cfg.Bot.WebhookURL != "" && cfg.Bot.Mode == "" {
		cfg.Bot.Mode = ModeWebhook
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Bot.Port = port
	}
	if v, ok := lookup("DROP_PENDING_UPDATES"); ok && v != "" {
		// any non-empty value enables it, "false"/"0" included
		cfg.Bot.DropPendingUpdates = true
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = ModePolling
	}
	cfg.Bot.Mode = strings.ToLower(cfg.Bot.Mode)
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Port == 0 {
		cfg.Bot.Port = 8443
	}
	if cfg.Bot.WebhookPath == "" {
		cfg.Bot.WebhookPath = "/api/webhook"
	}
	if cfg.Bot.RequestTimeout <= 0 {
		cfg.Bot.RequestTimeout = 10 * time.Second
	}
	if cfg.Wiki.APIURL == "" {
		cfg.Wiki.APIURL = "https://uk.wikipedia.org/w/api.php"
	}
	if cfg.Wiki.ArticleBase == "" {
		cfg.Wiki.ArticleBase = "https://uk.wikipedia.org/wiki/"
	}
	if !strings.HasSuffix(cfg.Wiki.ArticleBase, "/") {
		cfg.Wiki.ArticleBase += "/"
	}
	if cfg.Wiki.UserAgent == "" {
		cfg.Wiki.UserAgent = "wikiukbot/1.0 (https://github.com/skrwo/wikiukbot)"
	}
	if cfg.Wiki.Timeout <= 0 {
		cfg.Wiki.Timeout = 8 * time.Second
	}
	if cfg.Wiki.SearchLimit <= 0 {
		cfg.Wiki.SearchLimit = 15
	}
	if cfg.Wiki.ThumbSize <= 0 {
		cfg.Wiki.ThumbSize = 120
	}
	if cfg.Wiki.RandomMode == "" {
		cfg.Wiki.RandomMode = "list"
	}
	cfg.Wiki.RandomMode = strings.ToLower(cfg.Wiki.RandomMode)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Redis.LockTTL = normalizeTTL(cfg.Redis.LockTTL)
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return errors.New("bot.token is required (or TELEGRAM_TOKEN)")
	}
	switch c.Bot.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.Bot.WebhookURL == "" {
			return errors.New("bot.webhook_url is required in webhook mode (or WEBHOOK_URL)")
		}
	default:
		return fmt.Errorf("bot.mode %q: want polling or webhook", c.Bot.Mode)
	}
	switch c.Wiki.RandomMode {
	case "list", "redirect":
	default:
		return fmt.Errorf("wiki.random_mode %q: want list or redirect", c.Wiki.RandomMode)
	}
	if c.Bot.CacheSeconds() < 0 {
		return errors.New("bot.search_cache_seconds must not be negative")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Minute
	}
	return d
}
