package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	ServerURL   string // base URL clients use for the HTTP API
	MongoURL    string // optional; builtin problem set when empty
	MongoDB     string
	PostgresDSN string // optional session store backend
	RedisURL    string // optional session store backend
	RedisDB     int
	DataDir     string // file-backed session store location
	RoomTTLMin  int    // idle rooms older than this are swept
}

// Load reads .env when present and falls back to defaults for anything unset.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:        getEnv("PORT", "8080"),
		ServerURL:   getEnv("SERVER_URL", "http://localhost:8080"),
		MongoURL:    getEnv("MONGODB_URL", ""),
		MongoDB:     getEnv("MONGODB_DATABASE", "leetcompete"),
		PostgresDSN: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		DataDir:     getEnv("DATA_DIR", ".leetcompete"),
		RoomTTLMin:  getEnvInt("ROOM_TTL_MIN", 60),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
