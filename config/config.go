package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultPort         = "3000"
	defaultGeminiModel  = "gemini-2.5-flash-lite"
	defaultLookbackDays = 365
)

// Config struct holds application configuration
type Config struct {
	DatabaseURL  string
	JWTSecret    string
	GeminiAPIKey string
	GeminiModel  string
	Port         string
	// LookbackDays is how much sales history feeds a forecast.
	LookbackDays int
}

// AppConfig holds the application-wide configuration
var AppConfig Config

// Load reads the .env file if present, then the environment.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", defaultGeminiModel),
		Port:         getEnv("PORT", defaultPort),
		LookbackDays: defaultLookbackDays,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is not set")
	}

	if raw := os.Getenv("FORECAST_LOOKBACK_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return Config{}, fmt.Errorf("FORECAST_LOOKBACK_DAYS must be a positive integer, got %q", raw)
		}
		cfg.LookbackDays = days
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
