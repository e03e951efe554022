package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	JWTSecret        string
	MongoURI         string
	DBName           string
	SkipAuth         bool
	Environment      string
	AppId            string
	ArchiveDSN       string // Postgres DSN for the audit warehouse; empty disables the sync
	ReminderCron     string // cron spec for the pending-approval reminder sweep
	ArchiveCron      string // cron spec for the audit warehouse sync
	ReminderAgeHours int    // pending instances older than this get re-notified
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:           getEnv("DB_NAME", "go-formflow"),
		SkipAuth:         getEnv("SKIP_AUTH", "false") == "true",
		Environment:      getEnv("ENVIRONMENT", "development"),
		AppId:            getEnv("APP_ID", "go-formflow"),
		ArchiveDSN:       getEnv("ARCHIVE_DSN", ""),
		ReminderCron:     getEnv("REMINDER_CRON", "0 * * * *"),
		ArchiveCron:      getEnv("ARCHIVE_CRON", "*/15 * * * *"),
		ReminderAgeHours: getEnvInt("REMINDER_AGE_HOURS", 24),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
