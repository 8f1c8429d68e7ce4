package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the cold-start configuration shared by the Lambda entry points and the CLI.
type Config struct {
	OpenAI OpenAIConfig
	Log    LogConfig
	Page   PageConfig
}

// OpenAIConfig controls the completion-service client.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string        // empty means the SDK default
	OrgID   string        // optional organization header
	Model   string        // e.g. "gpt-4o-mini"
	Timeout time.Duration // per-request timeout, zero means the caller's deadline only
}

// LogConfig selects the slog handler and level.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// PageConfig controls the headless browser used by the page text function.
type PageConfig struct {
	ChromePath string        // empty means chromedp's lookup
	Timeout    time.Duration // whole render budget
	Settle     time.Duration // extra wait after body is ready
}

const (
	defaultModel       = "gpt-4o-mini"
	defaultLogLevel    = "info"
	defaultLogFormat   = "json"
	defaultPageTimeout = 60 * time.Second
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		OrgID   string `yaml:"org_id"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"openai"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Page struct {
		ChromePath string `yaml:"chrome_path"`
		Timeout    string `yaml:"timeout"`
		Settle     string `yaml:"settle"`
	} `yaml:"page"`
}

// InLambda reports whether the process runs inside the Lambda runtime.
func InLambda() bool {
	return os.Getenv("AWS_LAMBDA_RUNTIME_API") != ""
}

// Load builds a Config from defaults, the optional YAML file at path, and the
// environment, in increasing order of precedence. Outside Lambda a .env file in the
// working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if !InLambda() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	var raw rawConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	overlay(&raw.OpenAI.APIKey, "OPENAI_KEY")
	overlay(&raw.OpenAI.APIKey, "OPENAI_API_KEY")
	overlay(&raw.OpenAI.BaseURL, "OPENAI_BASE_URL")
	overlay(&raw.OpenAI.OrgID, "OPENAI_ORG_ID")
	overlay(&raw.OpenAI.Model, "OPENAI_MODEL")
	overlay(&raw.OpenAI.Timeout, "OPENAI_TIMEOUT")
	overlay(&raw.Log.Level, "LOG_LEVEL")
	overlay(&raw.Log.Format, "LOG_FORMAT")
	overlay(&raw.Page.ChromePath, "CHROME_PATH")
	overlay(&raw.Page.Timeout, "PAGE_TIMEOUT")
	overlay(&raw.Page.Settle, "PAGE_SETTLE")

	openAITimeout, err := parseDuration("openai.timeout", raw.OpenAI.Timeout, 0)
	if err != nil {
		return nil, err
	}
	pageTimeout, err := parseDuration("page.timeout", raw.Page.Timeout, defaultPageTimeout)
	if err != nil {
		return nil, err
	}
	pageSettle, err := parseDuration("page.settle", raw.Page.Settle, 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		OpenAI: OpenAIConfig{
			APIKey:  raw.OpenAI.APIKey,
			BaseURL: raw.OpenAI.BaseURL,
			OrgID:   raw.OpenAI.OrgID,
			Model:   withDefault(raw.OpenAI.Model, defaultModel),
			Timeout: openAITimeout,
		},
		Log: LogConfig{
			Level:  strings.ToLower(withDefault(raw.Log.Level, defaultLogLevel)),
			Format: strings.ToLower(withDefault(raw.Log.Format, defaultLogFormat)),
		},
		Page: PageConfig{
			ChromePath: raw.Page.ChromePath,
			Timeout:    pageTimeout,
			Settle:     pageSettle,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the extractor cannot run without. The page text
// function does not call it, since it never talks to the completion service.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY (or openai.api_key) is required")
	}
	if c.OpenAI.Model == "" {
		return fmt.Errorf("openai.model must not be empty")
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.OpenAI.Timeout < 0 {
		return fmt.Errorf("openai.timeout must not be negative, got %v", cfg.OpenAI.Timeout)
	}
	if cfg.Page.Timeout <= 0 {
		return fmt.Errorf("page.timeout must be positive, got %v", cfg.Page.Timeout)
	}
	if cfg.Page.Settle < 0 {
		return fmt.Errorf("page.settle must not be negative, got %v", cfg.Page.Settle)
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", cfg.Log.Format)
	}
	return nil
}

// overlay replaces *dst with the named environment variable when it is set and non-empty.
func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseDuration(name, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, raw, err)
	}
	return d, nil
}
