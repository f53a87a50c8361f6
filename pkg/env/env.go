package env

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid int in env, using default", "key", key, "value", raw)
		return fallback
	}
	return value
}

func GetEnvBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("invalid bool in env, using default", "key", key, "value", raw)
		return fallback
	}
	return value
}

// GetEnvDuration accepts Go duration strings, e.g. "30s" or "2m".
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration in env, using default", "key", key, "value", raw)
		return fallback
	}
	return value
}
