package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Session  SessionConfig
	Database DatabaseConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type SessionConfig struct {
	StoreBaseURL                      string
	StoreRequestTimeout               time.Duration
	AutoSaveDelay                     time.Duration
	SignificantChangeThresholdPercent float64
	MaxCheckpointsPerDocument         int
	FlushOnSwitchEnabled              bool
	SaveMaxAttempts                   int
	SaveInitialBackoff                time.Duration
}

type DatabaseConfig struct {
	Connection string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Session: SessionConfig{
			StoreBaseURL:                      getEnv("NOTE_STORE_BASE_URL", ""),
			StoreRequestTimeout:               getEnvAsDuration("NOTE_STORE_REQUEST_TIMEOUT_MS", 10*time.Second),
			AutoSaveDelay:                     getEnvAsDuration("AUTO_SAVE_DELAY_MS", 2*time.Second),
			SignificantChangeThresholdPercent: getEnvAsFloat("SIGNIFICANT_CHANGE_THRESHOLD_PERCENT", 5),
			MaxCheckpointsPerDocument:         getEnvAsInt("MAX_CHECKPOINTS_PER_DOCUMENT", 20),
			FlushOnSwitchEnabled:              getEnvAsBool("FLUSH_ON_SWITCH_ENABLED", true),
			SaveMaxAttempts:                   getEnvAsInt("SAVE_MAX_ATTEMPTS", 3),
			SaveInitialBackoff:                getEnvAsDuration("SAVE_INITIAL_BACKOFF_MS", 500*time.Millisecond),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if ms, err := strconv.Atoi(strValue); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
