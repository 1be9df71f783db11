package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=restaurant_directory port=5432 sslmode=disable"

type Config struct {
	AppEnv      string
	HTTPPort    string
	DBDriver    string // postgres | sqlite
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	// Upper bounds for multi-row transactions and blob writes
	TxTimeout   time.Duration
	BlobTimeout time.Duration

	// BLOB_BACKEND=s3 stores images in S3, anything else on local disk
	BlobBackend   string
	MediaRoot     string
	MediaURL      string
	S3Bucket      string
	S3Region      string
	CloudFrontURL string

	// Empty RedisAddr keeps the stats cache in process
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminEmail    string
	AdminPassword string
}

// Load reads the process environment (and a .env file if present) for the
// HTTP server.
func Load() *Config {
	cfg := read()

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	return cfg
}

// LoadTool reads the same settings for command line tools, which never sign
// tokens and so do not need JWT_SECRET.
func LoadTool() *Config {
	return read()
}

func read() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		DatabaseDSN:   getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		TxTimeout:     getEnvDuration("DB_TX_TIMEOUT", 10*time.Second),
		BlobTimeout:   getEnvDuration("BLOB_TIMEOUT", 30*time.Second),
		BlobBackend:   getEnv("BLOB_BACKEND", "local"),
		MediaRoot:     getEnv("MEDIA_ROOT", "./media"),
		MediaURL:      getEnv("MEDIA_URL", "/media"),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Region:      getEnv("S3_REGION", getEnv("AWS_REGION", "")),
		CloudFrontURL: getEnv("CLOUDFRONT_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	if cfg.DBDriver == "postgres" && cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN is using the default value, set your own Postgres DSN for production.")
	}
	if cfg.BlobBackend == "s3" && cfg.S3Bucket == "" {
		log.Fatal("[FATAL] BLOB_BACKEND=s3 requires S3_BUCKET")
	}

	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[WARN] %s=%q is not a valid duration, using %s", key, v, def)
		return def
	}
	return d
}
