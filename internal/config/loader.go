// Package config holds runtime parameters for the service and their
// file/env loading. Precedence is defaults < config file < environment <
// command-line flags (flags are applied by cmd/answerd).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
type Config struct {
	Addr       string `json:"addr" yaml:"addr" toml:"addr" env:"ANSWERD_ADDR"`
	Checkpoint string `json:"checkpoint" yaml:"checkpoint" toml:"checkpoint" env:"ANSWERD_CHECKPOINT"`
	// Backend selects the generation runtime: "local" (in-process llama.cpp)
	// or "server" (OpenAI-compatible inference server).
	Backend   string `json:"backend" yaml:"backend" toml:"backend" env:"ANSWERD_BACKEND"`
	ServerURL string `json:"server_url" yaml:"server_url" toml:"server_url" env:"ANSWERD_SERVER_URL"`
	APIKey    string `json:"api_key" yaml:"api_key" toml:"api_key" env:"ANSWERD_API_KEY"`

	// Generation parameters.
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens" env:"ANSWERD_MAX_TOKENS"`
	Temperature float64 `json:"temperature" yaml:"temperature" toml:"temperature" env:"ANSWERD_TEMPERATURE"`
	TopP        float64 `json:"top_p" yaml:"top_p" toml:"top_p" env:"ANSWERD_TOP_P"`
	ContextSize int     `json:"context_size" yaml:"context_size" toml:"context_size" env:"ANSWERD_CONTEXT_SIZE"`
	Threads     int     `json:"threads" yaml:"threads" toml:"threads" env:"ANSWERD_THREADS"`

	// Admission and HTTP limits.
	MaxQueueDepth  int   `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth" env:"ANSWERD_MAX_QUEUE_DEPTH"`
	MaxWaitMS      int   `json:"max_wait_ms" yaml:"max_wait_ms" toml:"max_wait_ms" env:"ANSWERD_MAX_WAIT_MS"`
	MaxBodyBytes   int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" env:"ANSWERD_MAX_BODY_BYTES"`
	AnswerTimeoutS int64 `json:"answer_timeout_s" yaml:"answer_timeout_s" toml:"answer_timeout_s" env:"ANSWERD_ANSWER_TIMEOUT_S"`

	// Logging.
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level" env:"ANSWERD_LOG_LEVEL"`
	PrettyLog bool   `json:"pretty_log" yaml:"pretty_log" toml:"pretty_log" env:"ANSWERD_PRETTY_LOG"`

	// CORS (opt-in).
	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled" env:"ANSWERD_CORS_ENABLED"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" env:"ANSWERD_CORS_ORIGINS"`
	CORSMethods []string `json:"cors_methods" yaml:"cors_methods" toml:"cors_methods" env:"ANSWERD_CORS_METHODS"`
	CORSHeaders []string `json:"cors_headers" yaml:"cors_headers" toml:"cors_headers" env:"ANSWERD_CORS_HEADERS"`
}

// Default returns the configuration used when nothing overrides it. The
// listen port and checkpoint match the original local deployment.
func Default() Config {
	return Config{
		Addr:          ":5000",
		Checkpoint:    "./LaMini-Flan-T5-783M",
		Backend:       "local",
		MaxTokens:     512,
		Temperature:   0.7,
		TopP:          0.9,
		MaxQueueDepth: 32,
		MaxWaitMS:     30000,
		LogLevel:      "info",
	}
}

// Load reads a configuration file based on its extension, overlaying it on
// the defaults. Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// FromEnv overlays ANSWERD_* environment variables onto cfg.
func FromEnv(cfg *Config) error {
	return env.Parse(cfg)
}
