package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mgpai22/subtrans/internal/language"
	"github.com/mgpai22/subtrans/internal/translate"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "SUBTRANS"
	DefaultEnvFile = ".env"
)

// Config holds all configuration for the application
type Config struct {
	Provider  ProviderConfig `mapstructure:"provider"`
	Pipeline  PipelineConfig `mapstructure:"pipeline"`
	Lookup    LookupConfig   `mapstructure:"lookup"`
	Server    ServerConfig   `mapstructure:"server"`
	OutputDir string         `mapstructure:"output_dir"`
}

// ProviderConfig selects the language model backend
type ProviderConfig struct {
	Name        string   `mapstructure:"name"`
	Model       string   `mapstructure:"model"`
	APIKey      string   `mapstructure:"api_key"`
	BaseURL     string   `mapstructure:"base_url"`
	Temperature *float64 `mapstructure:"temperature"`
	MaxTokens   int      `mapstructure:"max_tokens"`
}

// PipelineConfig holds chunking, formatting and orchestration limits
type PipelineConfig struct {
	SourceLanguage    string `mapstructure:"source_language"`
	TargetLanguage    string `mapstructure:"target_language"`
	ChunkSize         int    `mapstructure:"chunk_size"`
	MaxLines          int    `mapstructure:"max_lines"`
	MaxLineLength     int    `mapstructure:"max_line_length"`
	MaxRounds         int    `mapstructure:"max_rounds"`
	MaxFormatAttempts int    `mapstructure:"max_format_attempts"`
	ChunkRetries      int    `mapstructure:"chunk_retries"`
}

// LookupConfig holds dictionary lookup configuration
type LookupConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	MaxWords    int           `mapstructure:"max_words"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Listen          string        `mapstructure:"listen"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"provider":        "provider.name",
	"model":           "provider.model",
	"api-key":         "provider.api_key",
	"base-url":        "provider.base_url",
	"max-tokens":      "provider.max_tokens",
	"source-language": "pipeline.source_language",
	"target-language": "pipeline.target_language",
	"chunk-size":      "pipeline.chunk_size",
	"max-lines":       "pipeline.max_lines",
	"max-line-length": "pipeline.max_line_length",
	"max-rounds":      "pipeline.max_rounds",
	"chunk-retries":   "pipeline.chunk_retries",
	"lookup":          "lookup.enabled",
	"lookup-url":      "lookup.base_url",
	"max-attempts":    "lookup.max_attempts",
	"max-words":       "lookup.max_words",
	"listen":          "server.listen",
	"output-dir":      "output_dir",
}

// Load reads configuration from defaults, an optional YAML file, SUBTRANS_*
// environment variables and the changed flags of fs, in increasing order of
// precedence. configPath and fs may be empty/nil.
func Load(configPath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("provider.temperature")

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// a temperature flag only counts when set, its zero default is meaningful
	if fs != nil {
		if f := fs.Lookup("temperature"); f != nil && f.Changed {
			t, err := fs.GetFloat64("temperature")
			if err != nil {
				return nil, err
			}
			cfg.Provider.Temperature = &t
		}
	}

	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv(translate.APIKeyEnv(translate.Provider(cfg.Provider.Name)))
	}

	return &cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing default file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if path == DefaultEnvFile && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("provider.name", string(translate.ProviderGemini))
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.max_tokens", translate.DefaultMaxTokens)

	// Pipeline defaults
	v.SetDefault("pipeline.source_language", "")
	v.SetDefault("pipeline.target_language", "")
	v.SetDefault("pipeline.chunk_size", 30)
	v.SetDefault("pipeline.max_lines", 2)
	v.SetDefault("pipeline.max_line_length", 50)
	v.SetDefault("pipeline.max_rounds", 50)
	v.SetDefault("pipeline.max_format_attempts", 3)
	v.SetDefault("pipeline.chunk_retries", 1)

	// Lookup defaults
	v.SetDefault("lookup.enabled", true)
	v.SetDefault("lookup.base_url", "https://en.wiktionary.org/api/rest_v1/page/definition/")
	v.SetDefault("lookup.max_attempts", 1)
	v.SetDefault("lookup.max_words", 20)
	v.SetDefault("lookup.timeout", "15s")
	v.SetDefault("lookup.rate_limit", 10)

	// Server defaults
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30m")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_upload_bytes", 10<<20)

	v.SetDefault("output_dir", "data")
}

// Validate rejects limits the pipeline cannot work with.
func (c *Config) Validate() error {
	switch translate.Provider(c.Provider.Name) {
	case translate.ProviderGemini, translate.ProviderOpenAI,
		translate.ProviderAnthropic, translate.ProviderOllama:
	default:
		return fmt.Errorf("unsupported provider %q: use gemini, openai, anthropic or ollama", c.Provider.Name)
	}
	if t := c.Provider.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", *t)
	}

	p := c.Pipeline
	positive := []struct {
		name  string
		value int
	}{
		{"chunk-size", p.ChunkSize},
		{"max-lines", p.MaxLines},
		{"max-line-length", p.MaxLineLength},
		{"max-rounds", p.MaxRounds},
		{"max-format-attempts", p.MaxFormatAttempts},
		{"max-attempts", c.Lookup.MaxAttempts},
		{"max-words", c.Lookup.MaxWords},
	}
	for _, f := range positive {
		if f.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", f.name, f.value)
		}
	}
	if p.ChunkRetries < 0 {
		return fmt.Errorf("chunk-retries must not be negative, got %d", p.ChunkRetries)
	}

	if p.SourceLanguage != "" && p.TargetLanguage != "" &&
		language.Same(p.SourceLanguage, p.TargetLanguage) {
		return fmt.Errorf(
			"source language %q and target language %q cannot be the same",
			p.SourceLanguage,
			p.TargetLanguage,
		)
	}
	return nil
}

// NeedsAPIKey reports whether the configured provider requires a key.
func (c *Config) NeedsAPIKey() bool {
	return translate.Provider(c.Provider.Name) != translate.ProviderOllama
}
