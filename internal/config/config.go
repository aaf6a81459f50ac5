package config

import (
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Store backends selectable via STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	StoreBackend string
	DatabaseURL  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Retention counts from a session's last update.
	SessionRetentionHours int
	SweepIntervalMinutes  int

	DefaultVATRate decimal.Decimal
	MatchThreshold float64
	MatchMax       int
}

// Load reads configuration from the environment. Callers load .env first
// (godotenv in the binaries); Load itself only reads os.Getenv.
func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	retention := getEnvInt("SESSION_RETENTION_HOURS", 24)
	sweep := getEnvInt("SWEEP_INTERVAL_MINUTES", 30)
	matchMax := getEnvInt("MATCH_MAX", 10)

	threshold, err := strconv.ParseFloat(getEnv("MATCH_THRESHOLD", "60"), 64)
	if err != nil || threshold < 0 || threshold > 100 {
		threshold = 60
	}

	rate, err := decimal.NewFromString(getEnv("DEFAULT_VAT_RATE", "23"))
	if err != nil || rate.IsNegative() {
		rate = decimal.NewFromInt(23)
	}

	return Config{
		StoreBackend:          getEnv("STORE_BACKEND", BackendMemory),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		SessionRetentionHours: retention,
		SweepIntervalMinutes:  sweep,
		DefaultVATRate:        rate,
		MatchThreshold:        threshold,
		MatchMax:              matchMax,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
