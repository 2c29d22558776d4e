package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Firebase  FirebaseConfig
	Storage   StorageConfig
	LLM       LLMConfig
	Reminders RemindersConfig
	App       AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string // postgres | memory
	DSN      string
	MaxConns int
	MinConns int
	Migrate  bool
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	EventsChannel string
}

type FirebaseConfig struct {
	CredentialsPath string
	CredentialsJSON string
	ProjectID       string
}

// Enabled reports whether any service-account credentials were supplied.
func (f FirebaseConfig) Enabled() bool {
	return f.CredentialsPath != "" || f.CredentialsJSON != ""
}

type StorageConfig struct {
	Driver   string // local | s3
	Dir      string
	Bucket   string
	Region   string
	Endpoint string
	MaxBytes int64
}

type LLMConfig struct {
	OllamaURL string
	Model     string
	Timeout   time.Duration
	RPS       float64
}

type RemindersConfig struct {
	Schedule string
}

type AppConfig struct {
	Environment    string
	LogLevel       string
	Version        string
	ReportTimezone string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("STORE_DRIVER", "postgres"),
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
			Migrate:  getEnvAsBool("DB_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", ""),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvAsInt("REDIS_DB", 0),
			EventsChannel: getEnv("REDIS_EVENTS_CHANNEL", "atelier:events"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			CredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		},
		Storage: StorageConfig{
			Driver:   getEnv("STORAGE_DRIVER", "local"),
			Dir:      getEnv("UPLOAD_DIR", "uploads"),
			Bucket:   getEnv("S3_BUCKET", ""),
			Region:   getEnv("S3_REGION", "us-east-1"),
			Endpoint: getEnv("S3_ENDPOINT", ""),
			MaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 50<<20)),
		},
		LLM: LLMConfig{
			OllamaURL: getEnv("OLLAMA_URL", ""),
			Model:     getEnv("OLLAMA_MODEL", "llama3.1"),
			Timeout:   getEnvAsDuration("SEARCH_LLM_TIMEOUT", 10*time.Second),
			RPS:       getEnvAsFloat("SEARCH_LLM_RPS", 1),
		},
		Reminders: RemindersConfig{
			Schedule: getEnv("REMINDER_CRON", "0 0 8 * * *"),
		},
		App: AppConfig{
			Environment:    getEnv("APP_ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			ReportTimezone: getEnv("REPORT_TIMEZONE", "America/Sao_Paulo"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("DB_DSN is required when STORE_DRIVER=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case "local":
		if c.Storage.Dir == "" {
			return fmt.Errorf("UPLOAD_DIR is required when STORAGE_DRIVER=local")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if _, err := time.LoadLocation(c.App.ReportTimezone); err != nil {
		return fmt.Errorf("invalid REPORT_TIMEZONE: %w", err)
	}

	return nil
}

// ReportLocation returns the configured report timezone, falling back to UTC.
func (c *Config) ReportLocation() *time.Location {
	loc, err := time.LoadLocation(c.App.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %v", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
