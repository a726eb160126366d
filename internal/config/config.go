package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds high-level settings required across the application.
type Config struct {
	App         AppConfig        `yaml:"app"`
	Server      ServerConfig     `yaml:"server"`
	Logging     LoggingConfig    `yaml:"logging"`
	Evaluation  EvaluationConfig `yaml:"evaluation"`
	OpenAI      OpenAIConfig     `yaml:"openai"`
	Sources     []SourceConfig   `yaml:"sources"`
	Debug       bool             `yaml:"debug"`
	Environment string           `yaml:"environment"`
}

// AppConfig is echoed by the metadata endpoint.
type AppConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}

// ServerConfig describes the HTTP listener and its middleware.
type ServerConfig struct {
	Host            string          `yaml:"host"`
	Port            int             `yaml:"port"`
	CORSOrigins     []string        `yaml:"cors_origins"`
	BodyLimit       string          `yaml:"body_limit"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RateLimitConfig configures per-client limits on evaluation routes.
// A non-positive rate disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// LoggingConfig selects slog level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// EvaluationConfig is the scoring policy.
type EvaluationConfig struct {
	QualityThreshold float64       `yaml:"quality_threshold"`
	MaxArticleLength int           `yaml:"max_article_length"`
	MinArticleLength int           `yaml:"min_article_length"`
	Weights          WeightsConfig `yaml:"weights"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
}

// WeightsConfig holds the per-policy weights.
type WeightsConfig struct {
	NPOV             float64 `yaml:"npov_score"`
	Verifiability    float64 `yaml:"verifiability_score"`
	OriginalResearch float64 `yaml:"original_research_score"`
}

// OpenAIConfig defines how to contact the chat completion API.
type OpenAIConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// SourceConfig maps page hosts to a draft extractor.
type SourceConfig struct {
	Name      string   `yaml:"name"`
	Extractor string   `yaml:"extractor"`
	Hosts     []string `yaml:"hosts"`
}

// envOverrides lists the environment variables that win over the file.
type envOverrides struct {
	ConfigPath    string `env:"ARTICLE_EVALUATOR_CONFIG"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	Host          string `env:"API_HOST"`
	Port          int    `env:"API_PORT"`
	Debug         *bool  `env:"DEBUG,noinit"`
	Environment   string `env:"ENVIRONMENT"`
	LogLevel      string `env:"LOG_LEVEL"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return load(envconfig.OsLookuper())
}

func load(lookuper envconfig.Lookuper) Config {
	cfg := defaultConfig()

	var env envOverrides
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &env,
		Lookuper: lookuper,
	}); err != nil {
		log.Printf("config: cannot read environment: %v (ignoring overrides)", err)
		env = envOverrides{}
	}

	if env.ConfigPath != "" {
		if raw, err := os.ReadFile(env.ConfigPath); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", env.ConfigPath, err)
		} else {
			fileCfg := defaultConfig()
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", env.ConfigPath, err)
			} else {
				cfg = fileCfg
			}
		}
	}

	cfg.applyEnvOverrides(env)

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides(env envOverrides) {
	if env.OpenAIAPIKey != "" {
		c.OpenAI.APIKey = env.OpenAIAPIKey
	}
	if env.OpenAIModel != "" {
		c.OpenAI.Model = env.OpenAIModel
	}
	if env.OpenAIBaseURL != "" {
		c.OpenAI.BaseURL = env.OpenAIBaseURL
	}
	if env.Host != "" {
		c.Server.Host = env.Host
	}
	if env.Port != 0 {
		c.Server.Port = env.Port
	}
	if env.Debug != nil {
		c.Debug = *env.Debug
	}
	if env.Environment != "" {
		c.Environment = env.Environment
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
}

// Validate rejects settings the evaluator cannot run with.
func (c Config) Validate() error {
	var errs []error

	ev := c.Evaluation
	if ev.QualityThreshold < 0 || ev.QualityThreshold > 100 {
		errs = append(errs, fmt.Errorf("evaluation.quality_threshold %v is outside [0,100]", ev.QualityThreshold))
	}
	if ev.MaxArticleLength <= 0 {
		errs = append(errs, fmt.Errorf("evaluation.max_article_length must be positive, got %d", ev.MaxArticleLength))
	}
	if ev.MinArticleLength < 0 {
		errs = append(errs, fmt.Errorf("evaluation.min_article_length must not be negative, got %d", ev.MinArticleLength))
	}
	if ev.MinArticleLength > ev.MaxArticleLength {
		errs = append(errs, fmt.Errorf("evaluation.min_article_length %d exceeds max_article_length %d",
			ev.MinArticleLength, ev.MaxArticleLength))
	}
	if ev.Weights.NPOV < 0 || ev.Weights.Verifiability < 0 || ev.Weights.OriginalResearch < 0 {
		errs = append(errs, errors.New("evaluation.weights must not be negative"))
	}
	if c.OpenAI.Model == "" {
		errs = append(errs, errors.New("openai.model is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is invalid", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout))
	}

	return errors.Join(errs...)
}

// Default returns the built-in configuration without file or env overrides.
func Default() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		App: AppConfig{
			Title:       "Wikipedia Article Evaluator",
			Description: "Evaluates article drafts against Wikipedia core content policies",
			Version:     "1.0.0",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			CORSOrigins:     []string{"*"},
			BodyLimit:       "1M",
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       RateLimitConfig{RequestsPerSecond: 2, Burst: 5},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Evaluation: EvaluationConfig{
			QualityThreshold: 70,
			MaxArticleLength: 10000,
			MinArticleLength: 100,
			Weights: WeightsConfig{
				NPOV:             0.4,
				Verifiability:    0.3,
				OriginalResearch: 0.3,
			},
			RequestTimeout: 30 * time.Second,
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.1,
		},
		Sources: []SourceConfig{
			{Name: "wikipedia", Extractor: "mediawiki", Hosts: []string{"*.wikipedia.org"}},
		},
		Environment: "development",
	}
}
