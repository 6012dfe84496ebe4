package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the wiring layer injects into component
// constructors. Nothing else reads the environment.
type Config struct {
	Port      string
	ServeMode string // "local" binds localhost only, "serverless" binds all interfaces

	JWTSecret   string
	DatabaseURL string

	GeminiAPIKey string
	GeminiModel  string

	// Optional. Empty disables places verification entirely.
	MapsAPIKey string
}

func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Port:         getenv("PORT", "5000"),
		ServeMode:    getenv("SERVE_MODE", "local"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		MapsAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
	}

	for name, v := range map[string]string{
		"JWT_SECRET":     cfg.JWTSecret,
		"DATABASE_URL":   cfg.DatabaseURL,
		"GEMINI_API_KEY": cfg.GeminiAPIKey,
	} {
		if v == "" {
			return nil, fmt.Errorf("missing env var: %s", name)
		}
	}

	if cfg.ServeMode != "local" && cfg.ServeMode != "serverless" {
		return nil, fmt.Errorf("invalid SERVE_MODE %q (want local or serverless)", cfg.ServeMode)
	}

	return cfg, nil
}

// Addr returns the listen address for the configured serve mode.
func (c *Config) Addr() string {
	if c.ServeMode == "serverless" {
		return ":" + c.Port
	}
	return "localhost:" + c.Port
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
