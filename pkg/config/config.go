package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the engine. Values come from the
// environment, optionally seeded from a .env file; flags in main can
// still override them.
type Config struct {
	ListenAddr   string
	DBDir        string
	StreamURL    string
	PollInterval time.Duration
	Workers      int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found (using environment variables)")
	}

	return &Config{
		ListenAddr:   getEnv("LISTEN_ADDR", ":5000"),
		DBDir:        getEnv("DB_DIR", "kurirxDB"),
		StreamURL:    getEnv("STREAM_URL", ""),
		PollInterval: getEnvDuration("POLL_INTERVAL", 5*time.Second),
		Workers:      getEnvInt("CONSUMER_WORKERS", 4),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
