package configs

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	JWTSecret          string
	AuditRetentionDays int
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			logrus.Warn("no .env file found, using system ENV")
		}
	}

	JWTSecret = GetEnv("JWT_SECRET")
	if JWTSecret == "" {
		logrus.Warn("JWT_SECRET is not set")
	}

	AuditRetentionDays = GetEnvInt("AUDIT_RETENTION_DAYS", 365)
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

func GetEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
