package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the client and its tooling.
type Config struct {
	App        AppConfig
	API        APIConfig
	Storage    StorageConfig
	Redis      RedisConfig
	Schedule   ScheduleConfig
	Logger     LoggerConfig
	StubServer StubServerConfig
}

// AppConfig controls CLI level behavior.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// APIConfig holds backend connection values.
type APIConfig struct {
	BaseURL               string
	RequestTimeoutSeconds int
}

// StorageConfig selects where the credential is persisted.
type StorageConfig struct {
	Backend  string // "file" or "redis"
	FilePath string
}

// RedisConfig holds Redis connection values for the redis storage backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ScheduleConfig shapes the canonical slot grid.
type ScheduleConfig struct {
	DayStart    string
	SlotMinutes int
	SlotCount   int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// StubServerConfig drives the local development backend.
type StubServerConfig struct {
	Host                  string
	Port                  string
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "care-client"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		API: APIConfig{
			BaseURL:               getEnv("API_BASE_URL", "http://127.0.0.1:8080"),
			RequestTimeoutSeconds: getEnvAsInt("API_REQUEST_TIMEOUT_SECONDS", 60),
		},
		Storage: StorageConfig{
			Backend:  getEnv("CREDENTIAL_STORAGE", "file"),
			FilePath: getEnv("CREDENTIAL_FILE", defaultCredentialPath()),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Schedule: ScheduleConfig{
			DayStart:    getEnv("SCHEDULE_DAY_START", "09:00"),
			SlotMinutes: getEnvAsInt("SCHEDULE_SLOT_MINUTES", 30),
			SlotCount:   getEnvAsInt("SCHEDULE_SLOT_COUNT", 16),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		StubServer: StubServerConfig{
			Host:                  getEnv("STUB_HOST", "0.0.0.0"),
			Port:                  getEnv("STUB_PORT", "8080"),
			JWTSecret:             getEnv("STUB_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("STUB_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("STUB_BCRYPT_COST", 12),
		},
	}

	return cfg, nil
}

// RequestTimeout returns the configured request timeout duration.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Addr returns the stub server bind address.
func (s StubServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// AccessTokenTTL returns the stub token lifetime.
func (s StubServerConfig) AccessTokenTTL() time.Duration {
	if s.AccessTokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.AccessTokenTTLMinutes) * time.Minute
}

func defaultCredentialPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".care-client-credential"
	}
	return filepath.Join(home, ".care-client", "credential")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
