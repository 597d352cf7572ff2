package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the gateway service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	GraderBaseURL       string
	GraderToken         string
	GraderTimeout       time.Duration
	RedisURL            string
	NATSURL             string
	EventSubject        string
	JWTSecret           string
	ViewCacheTTL        time.Duration
	HintSuggestionLimit int
	OverrideRateLimit   int
	OverrideRateWindow  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PULSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ClassPulse Grading Gateway")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("grader.timeout", "10s")
	v.SetDefault("events.subject", "classpulse.grading.events")
	v.SetDefault("view.cache_ttl", "2m")
	v.SetDefault("hint.suggestion_limit", 3)
	v.SetDefault("override.rate_limit", 30)
	v.SetDefault("override.rate_window", "1m")

	graderTimeout, err := time.ParseDuration(v.GetString("grader.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grader timeout: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("view.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid view cache ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("override.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid override rate window: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		GraderBaseURL:       v.GetString("grader.base_url"),
		GraderToken:         v.GetString("grader.token"),
		GraderTimeout:       graderTimeout,
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		EventSubject:        v.GetString("events.subject"),
		JWTSecret:           v.GetString("jwt.secret"),
		ViewCacheTTL:        cacheTTL,
		HintSuggestionLimit: v.GetInt("hint.suggestion_limit"),
		OverrideRateLimit:   v.GetInt("override.rate_limit"),
		OverrideRateWindow:  rateWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.GraderBaseURL == "" {
		return Config{}, fmt.Errorf("grader base url must be provided")
	}

	if cfg.HintSuggestionLimit <= 0 {
		cfg.HintSuggestionLimit = 3
	}

	return cfg, nil
}
