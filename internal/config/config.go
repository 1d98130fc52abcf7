package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db_path"`

	JWTSecret string `yaml:"jwt_secret"`

	OpenAIKey     string `yaml:"openai_key"`
	OpenAIModel   string `yaml:"openai_model"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	// AIMode is "proxy" or "direct". Proxy mode routes completion
	// requests through ProxyBaseURL and falls back to the direct path
	// when the intermediary fails.
	AIMode       string `yaml:"ai_mode"`
	ProxyBaseURL string `yaml:"proxy_base_url"`
}

func Default() *Config {
	return &Config{
		Addr:        ":8080",
		DBPath:      "lingua-todo.db",
		JWTSecret:   "CHANGE_ME_IN_PROD",
		OpenAIModel: "gpt-4o-mini",
		AIMode:      "direct",
	}
}

// Load builds the config from defaults, then an optional YAML file,
// then environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	overrideEnv(&cfg.Addr, "ADDR")
	overrideEnv(&cfg.DBPath, "DB_PATH")
	overrideEnv(&cfg.JWTSecret, "JWT_SECRET")
	overrideEnv(&cfg.OpenAIKey, "OPENAI_API_KEY")
	overrideEnv(&cfg.OpenAIModel, "OPENAI_MODEL")
	overrideEnv(&cfg.OpenAIBaseURL, "OPENAI_BASE_URL")
	overrideEnv(&cfg.AIMode, "AI_MODE")
	overrideEnv(&cfg.ProxyBaseURL, "PROXY_BASE_URL")

	if cfg.AIMode != "proxy" && cfg.AIMode != "direct" {
		return nil, fmt.Errorf("config: ai_mode must be \"proxy\" or \"direct\", got %q", cfg.AIMode)
	}
	return cfg, nil
}

func overrideEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}
