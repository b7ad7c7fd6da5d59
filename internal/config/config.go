package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// Storage backends accepted in STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendMinio    = "minio"
	BackendDatabase = "database"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	StoreBackend string
	DataDir      string

	PostgresDSN    string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	RedisPassword  string
	CacheTTL       time.Duration
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	SportsDBURL     string
	SportsDBAPIKey  string
	SportsDBTimeout time.Duration

	// DashboardTimeout bounds one dashboard aggregation; events that have
	// not arrived by then are counted as failed sources.
	DashboardTimeout time.Duration

	CORSOrigins []string
}

func Load() *Config {
	cfg := &Config{
		Port:      getenv("PORT", "8080"),
		Env:       getenv("ENV", "development"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),

		StoreBackend: strings.ToLower(getenv("STORE_BACKEND", BackendFile)),
		DataDir:      getenv("DATA_DIR", "./data"),

		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		MongoURI:       getenv("MONGO_URI", ""),
		MongoDB:        getenv("MONGO_DB", "sports_hub"),
		RedisAddr:      getenv("REDIS_ADDR", ""),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		CacheTTL:       getduration("CACHE_TTL", 5*time.Minute),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "sports-hub"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",

		SportsDBURL:     getenv("SPORTSDB_URL", "https://www.thesportsdb.com/api/v1/json"),
		SportsDBAPIKey:  getenv("SPORTSDB_API_KEY", "3"),
		SportsDBTimeout: getduration("SPORTSDB_TIMEOUT", 30*time.Second),

		DashboardTimeout: getduration("DASHBOARD_TIMEOUT", 40*time.Second),

		CORSOrigins: strings.Split(getenv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000"), ","),
	}

	switch cfg.StoreBackend {
	case BackendFile, BackendMinio, BackendDatabase:
	default:
		log.Printf("WARNING: unknown STORE_BACKEND %q, falling back to %q", cfg.StoreBackend, BackendFile)
		cfg.StoreBackend = BackendFile
	}

	return cfg
}

// Production reports whether cookies must be marked Secure.
func (c *Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
