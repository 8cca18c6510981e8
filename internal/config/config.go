package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var AppEnv Config

type Config struct {
	MongoURI  string
	DBName    string
	JWTSecret string
	Port      string

	// SweepSpec is the cron expression for the daily expiration check.
	SweepSpec string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	LogMode string
	LogFile string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		zap.S().Infof(".env not loaded: %v", err)
	}
	AppEnv = Config{
		MongoURI:  getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		DBName:    getEnvOrDefault("DB_NAME", "warranty-tracker"),
		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),
		Port:      getEnvOrDefault("PORT", "5000"),
		SweepSpec: getEnvOrDefault("SWEEP_CRON", "0 8 * * *"),
		SMTPHost:  getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:  getIntEnv("SMTP_PORT", 587),
		SMTPUser:  getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:  getEnvOrDefault("SMTP_PASS", ""),
		MailFrom:  getEnvOrDefault("MAIL_FROM", "Warranty Tracker <noreply@warrantytracker.com>"),
		LogMode:   getEnvOrDefault("LOG_MODE", "development"),
		LogFile:   getEnvOrDefault("LOG_FILE", ""),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
