package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	DataDir         string
	JWTSecret       string
	RemoteAPIURL    string // empty disables the remote mirror
	FlushDebounce   time.Duration
	CleanupPoll     time.Duration
	MenuExtraPrice  string // per-extra surcharge on MAIN_DISHES, decimal string
	AllowedOrigins  []string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		DataDir:        getEnv("DATA_DIR", "./data"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		RemoteAPIURL:   getEnv("REMOTE_API_URL", ""),
		FlushDebounce:  getDurationMs("FLUSH_DEBOUNCE_MS", 1500),
		CleanupPoll:    getDurationMs("CLEANUP_POLL_MS", 60000),
		MenuExtraPrice: getEnv("MENU_EXTRA_PRICE", "1.00"),
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8081"},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationMs(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return time.Duration(fallback) * time.Millisecond
}
