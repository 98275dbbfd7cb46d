package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StoreMemory    = "memory"

	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	FirebaseProjectID       string
	PostgresUrl             string
	MongoURI                string
	MongoDatabase           string
	MetricsPort             string
	StoreBackend            string
	AuthMode                string
	JWTSecret               string
	LogLevel                string
	ExtraBannedTerms        string
	TriggerSecret           string
	InlineModeration        bool
	TxMaxAttempts           int
}

// Load reads the configuration from the environment, after merging a .env
// file from the working directory when one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		PostgresUrl:             getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "postapp"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		StoreBackend:            strings.ToLower(getEnv("STORE_BACKEND", StoreFirestore)),
		AuthMode:                strings.ToLower(getEnv("AUTH_MODE", AuthFirebase)),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		ExtraBannedTerms:        getEnv("EXTRA_BANNED_TERMS", ""),
		TriggerSecret:           getEnv("TRIGGER_SECRET", ""),
		InlineModeration:        getEnvBool("INLINE_MODERATION", false),
		TxMaxAttempts:           getEnvInt("TX_MAX_ATTEMPTS", 25),
	}
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
