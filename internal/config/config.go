// Package config handles configuration loading from files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string

	// HTTP server port for the API server
	HTTPPort int

	// Orchestrator settings
	OrchestratorID           string
	OrchestratorConcurrency  int
	OrchestratorTickInterval time.Duration
	OrchestratorMaxBackoff   time.Duration

	// Per-platform publish call deadline
	DispatchTimeout time.Duration

	// Terminal posts older than this are pruned by the janitor
	RetentionWindow time.Duration

	// Platform credentials, keyed by platform id ("facebook", "twitter", ...)
	PlatformTokens map[string]string

	// OTLP collector endpoint for traces
	OTELEndpoint string
}

// Load reads configuration from an optional config file and environment
// variables. Environment variables take precedence over file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("http_port", 8080)
	v.SetDefault("orchestrator_id", "orchestrator-1")
	v.SetDefault("orchestrator_concurrency", 4)
	v.SetDefault("orchestrator_tick_interval", "1s")
	v.SetDefault("orchestrator_max_backoff", "30s")
	v.SetDefault("dispatch_timeout", "30s")
	v.SetDefault("retention_window", "720h")
	v.SetDefault("otel_endpoint", "localhost:4317")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("database_url", "DATABASE_URL")
	v.BindEnv("http_port", "PORT")
	v.BindEnv("orchestrator_id", "ORCHESTRATOR_ID")
	v.BindEnv("orchestrator_concurrency", "ORCHESTRATOR_CONCURRENCY")
	v.BindEnv("orchestrator_tick_interval", "ORCHESTRATOR_TICK_INTERVAL")
	v.BindEnv("orchestrator_max_backoff", "ORCHESTRATOR_MAX_BACKOFF")
	v.BindEnv("dispatch_timeout", "DISPATCH_TIMEOUT")
	v.BindEnv("retention_window", "RETENTION_WINDOW")
	v.BindEnv("otel_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	dbURL := v.GetString("database_url")
	if dbURL == "" {
		return nil, fmt.Errorf("database_url is required (env: DATABASE_URL)")
	}

	tickInterval, err := time.ParseDuration(v.GetString("orchestrator_tick_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid orchestrator_tick_interval: %w", err)
	}
	maxBackoff, err := time.ParseDuration(v.GetString("orchestrator_max_backoff"))
	if err != nil {
		return nil, fmt.Errorf("invalid orchestrator_max_backoff: %w", err)
	}
	dispatchTimeout, err := time.ParseDuration(v.GetString("dispatch_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid dispatch_timeout: %w", err)
	}
	retention, err := time.ParseDuration(v.GetString("retention_window"))
	if err != nil {
		return nil, fmt.Errorf("invalid retention_window: %w", err)
	}

	return &Config{
		DatabaseURL:              dbURL,
		HTTPPort:                 v.GetInt("http_port"),
		OrchestratorID:           v.GetString("orchestrator_id"),
		OrchestratorConcurrency:  v.GetInt("orchestrator_concurrency"),
		OrchestratorTickInterval: tickInterval,
		OrchestratorMaxBackoff:   maxBackoff,
		DispatchTimeout:          dispatchTimeout,
		RetentionWindow:          retention,
		PlatformTokens:           platformTokens(v),
		OTELEndpoint:             v.GetString("otel_endpoint"),
	}, nil
}

// platformTokens collects per-platform credentials from <PLATFORM>_ACCESS_TOKEN
// env vars or a platform_tokens map in the config file. Platforms without a
// token simply get no adapter registered.
func platformTokens(v *viper.Viper) map[string]string {
	platforms := []string{"facebook", "instagram", "twitter", "linkedin", "tiktok", "youtube"}

	tokens := make(map[string]string)
	for k, val := range v.GetStringMapString("platform_tokens") {
		if val != "" {
			tokens[strings.ToLower(k)] = val
		}
	}
	for _, p := range platforms {
		v.BindEnv("token_"+p, strings.ToUpper(p)+"_ACCESS_TOKEN")
		if t := v.GetString("token_" + p); t != "" {
			tokens[p] = t
		}
	}
	return tokens
}
