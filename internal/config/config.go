package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       App       `mapstructure:"app"`
	AI        AI        `mapstructure:"ai"`
	Pipeline  Pipeline  `mapstructure:"pipeline"`
	Store     Store     `mapstructure:"store"`
	Output    Output    `mapstructure:"output"`
	Messaging Messaging `mapstructure:"messaging"`
	Notion    Notion    `mapstructure:"notion"`
	Analytics Analytics `mapstructure:"analytics"`
	Server    Server    `mapstructure:"server"`
	Logging   Logging   `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	DataDir string `mapstructure:"data_dir"`
}

// AI holds LLM provider configuration
type AI struct {
	Provider string       `mapstructure:"provider"` // primary provider: gemini or openai
	Gemini   GeminiConfig `mapstructure:"gemini"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Retry    Retry        `mapstructure:"retry"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// OpenAIConfig holds configuration for any OpenAI-compatible endpoint
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Retry holds per-provider retry settings
type Retry struct {
	MaxAttempts   int    `mapstructure:"max_attempts"`
	RateLimitBase string `mapstructure:"rate_limit_base"`
	TransientWait string `mapstructure:"transient_wait"`
}

// Pipeline holds generate/critique loop settings
type Pipeline struct {
	MinScore           int     `mapstructure:"min_score"`
	MaxCycles          int     `mapstructure:"max_cycles"`
	CriticAttempts     int     `mapstructure:"critic_attempts"`
	FeedbackHints      bool    `mapstructure:"feedback_hints"`
	Focus              string  `mapstructure:"focus"`
	GeneratorTemp      float32 `mapstructure:"generator_temperature"`
	GeneratorMaxTokens int32   `mapstructure:"generator_max_tokens"`
	CriticTemp         float32 `mapstructure:"critic_temperature"`
	CriticMaxTokens    int32   `mapstructure:"critic_max_tokens"`
}

// Store holds persistence configuration
type Store struct {
	Backend string `mapstructure:"backend"` // json, sqlite or postgres
	DSN     string `mapstructure:"dsn"`
}

// Output holds rendered artifact directories
type Output struct {
	ReportsDir   string `mapstructure:"reports_dir"`
	LandingDir   string `mapstructure:"landing_dir"`
	DashboardDir string `mapstructure:"dashboard_dir"`
}

// Messaging holds notifier configuration
type Messaging struct {
	Telegram       TelegramConfig `mapstructure:"telegram"`
	SlackWebhook   string         `mapstructure:"slack_webhook"`
	DiscordWebhook string         `mapstructure:"discord_webhook"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// Notion holds workspace sync configuration
type Notion struct {
	Token        string `mapstructure:"token"`
	DatabaseID   string `mapstructure:"database_id"`
	PollInterval string `mapstructure:"poll_interval"`
	Workers      int    `mapstructure:"workers"`
}

// Enabled reports whether both credentials are present.
func (n Notion) Enabled() bool { return n.Token != "" && n.DatabaseID != "" }

// Analytics holds product analytics configuration
type Analytics struct {
	PostHog PostHogConfig `mapstructure:"posthog"`
}

// PostHogConfig holds PostHog configuration
type PostHogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Host    string `mapstructure:"host"`
}

// Server holds HTTP server configuration
type Server struct {
	Addr string `mapstructure:"addr"`
}

// Logging holds logging configuration
type Logging struct {
	Level string `mapstructure:"level"`
}

var globalConfig *Config

// Load loads the configuration from the optional file, .env and the environment
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".ideaforge")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

func setDefaults() {
	viper.SetDefault("app.data_dir", "data")

	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.retry.max_attempts", 3)
	viper.SetDefault("ai.retry.rate_limit_base", "30s")
	viper.SetDefault("ai.retry.transient_wait", "5s")

	viper.SetDefault("pipeline.min_score", 65)
	viper.SetDefault("pipeline.max_cycles", 3)
	viper.SetDefault("pipeline.critic_attempts", 3)
	viper.SetDefault("pipeline.feedback_hints", false)
	viper.SetDefault("pipeline.generator_temperature", 0.9)
	viper.SetDefault("pipeline.generator_max_tokens", 1024)
	viper.SetDefault("pipeline.critic_temperature", 0.3)
	viper.SetDefault("pipeline.critic_max_tokens", 1024)

	viper.SetDefault("store.backend", "json")

	viper.SetDefault("output.reports_dir", "reports")
	viper.SetDefault("output.landing_dir", "landing")
	viper.SetDefault("output.dashboard_dir", "dashboard")

	viper.SetDefault("notion.poll_interval", "1m")
	viper.SetDefault("notion.workers", 4)

	viper.SetDefault("analytics.posthog.enabled", false)
	viper.SetDefault("analytics.posthog.host", "https://us.i.posthog.com")

	viper.SetDefault("server.addr", ":8080")

	viper.SetDefault("logging.level", "info")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_API_KEY",
	})
	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
		"OPENROUTER_API_KEY",
	})
	bindEnvKeys("ai.openai.base_url", []string{
		"OPENAI_BASE_URL",
	})

	bindEnvKeys("store.dsn", []string{
		"DATABASE_URL",
		"IDEAFORGE_DSN",
	})

	bindEnvKeys("messaging.telegram.bot_token", []string{
		"TELEGRAM_BOT_TOKEN",
	})
	bindEnvKeys("messaging.telegram.chat_id", []string{
		"TELEGRAM_CHAT_ID",
	})
	bindEnvKeys("messaging.slack_webhook", []string{
		"SLACK_WEBHOOK_URL",
		"SLACK_WEBHOOK",
	})
	bindEnvKeys("messaging.discord_webhook", []string{
		"DISCORD_WEBHOOK_URL",
		"DISCORD_WEBHOOK",
	})

	bindEnvKeys("notion.token", []string{
		"NOTION_TOKEN",
		"NOTION_API_KEY",
	})
	bindEnvKeys("notion.database_id", []string{
		"NOTION_DATABASE_ID",
	})

	bindEnvKeys("analytics.posthog.api_key", []string{
		"POSTHOG_API_KEY",
	})

	bindEnvKeys("logging.level", []string{
		"LOG_LEVEL",
		"IDEAFORGE_LOG_LEVEL",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

func postProcessConfig(config *Config) error {
	config.App.DataDir = expandPath(config.App.DataDir)
	config.Output.ReportsDir = expandPath(config.Output.ReportsDir)
	config.Output.LandingDir = expandPath(config.Output.LandingDir)
	config.Output.DashboardDir = expandPath(config.Output.DashboardDir)

	durations := map[string]string{
		"ai.gemini.timeout":        config.AI.Gemini.Timeout,
		"ai.retry.rate_limit_base": config.AI.Retry.RateLimitBase,
		"ai.retry.transient_wait":  config.AI.Retry.TransientWait,
		"notion.poll_interval":     config.Notion.PollInterval,
	}
	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

func validateConfig(config *Config) error {
	var errors []string

	switch config.AI.Provider {
	case "gemini", "openai":
	default:
		errors = append(errors, fmt.Sprintf("Unknown AI provider: %s. Supported: gemini, openai", config.AI.Provider))
	}

	if config.Pipeline.MinScore < 0 || config.Pipeline.MinScore > 100 {
		errors = append(errors, fmt.Sprintf("pipeline.min_score must be between 0 and 100, got %d", config.Pipeline.MinScore))
	}
	if config.Pipeline.MaxCycles < 1 {
		errors = append(errors, "pipeline.max_cycles must be at least 1")
	}
	if config.Pipeline.CriticAttempts < 1 {
		errors = append(errors, "pipeline.critic_attempts must be at least 1")
	}
	if config.AI.Retry.MaxAttempts < 1 {
		errors = append(errors, "ai.retry.max_attempts must be at least 1")
	}

	switch config.Store.Backend {
	case "json", "sqlite":
	case "postgres":
		if config.Store.DSN == "" {
			errors = append(errors, "Postgres store requires a DSN. Set DATABASE_URL or store.dsn")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown store backend: %s. Supported: json, sqlite, postgres", config.Store.Backend))
	}

	if (config.Messaging.Telegram.BotToken == "") != (config.Messaging.Telegram.ChatID == "") {
		errors = append(errors, "Telegram requires both TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
	}

	if config.Analytics.PostHog.Enabled && config.Analytics.PostHog.APIKey == "" {
		errors = append(errors, "PostHog is enabled but POSTHOG_API_KEY is not set")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// RequireLLM checks that at least one LLM provider has credentials.
// Commands that only read stored ideas do not call it.
func (c *Config) RequireLLM() error {
	if c.AI.Gemini.APIKey == "" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("no LLM credentials configured. Set GEMINI_API_KEY or OPENAI_API_KEY.\nGet a Gemini key from: https://aistudio.google.com/app/apikey")
	}
	return nil
}

// Duration parses a validated duration setting, returning fallback when empty.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
