package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string

	// RemoteBackend is "rest" for a hosted backend-as-a-service or "sql" for
	// the self-hosted SQLite gateway at DBPath.
	RemoteBackend string
	RemoteURL     string
	RemoteAPIKey  string
	RemoteTimeout time.Duration
	DBPath        string

	// Owner* configure the single account of the sql gateway.
	OwnerID    string
	OwnerEmail string
	OwnerToken string

	FileBackend       string
	StorageBucket     string
	S3AccountID       string
	S3AccessKeyID     string
	S3AccessKeySecret string
	S3Region          string
	S3Endpoint        string
	PublicURL         string
	PhotoPath         string

	LocalStorePath string

	LogLevel  string
	LogFormat string
	LogFile   string

	ClaudeAPIKey string
	ClaudeModel  string

	RateLimitPerMin int
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		RemoteBackend:     getEnv("REMOTE_BACKEND", "sql"),
		RemoteURL:         getEnv("REMOTE_URL", ""),
		RemoteAPIKey:      getEnv("REMOTE_API_KEY", ""),
		RemoteTimeout:     getEnvDuration("REMOTE_TIMEOUT", 10*time.Second),
		DBPath:            getEnv("DB_PATH", "/data/kitchzone.db"),
		OwnerID:           getEnv("OWNER_ID", "owner"),
		OwnerEmail:        getEnv("OWNER_EMAIL", ""),
		OwnerToken:        getEnv("OWNER_TOKEN", ""),
		FileBackend:       getEnv("FILE_BACKEND", "local"),
		StorageBucket:     getEnv("STORAGE_BUCKET", "kitchen-images"),
		S3AccountID:       getEnv("S3_ACCOUNT_ID", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3AccessKeySecret: getEnv("S3_ACCESS_KEY_SECRET", ""),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		PublicURL:         getEnv("PUBLIC_URL", "http://localhost:8080/files"),
		PhotoPath:         getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		LocalStorePath:    getEnv("LOCAL_STORE_PATH", defaultLocalStorePath()),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		LogFile:           getEnv("LOG_FILE", ""),
		ClaudeAPIKey:      getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:       getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MIN", 120),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.RemoteBackend {
	case "rest":
		if c.RemoteURL == "" || c.RemoteAPIKey == "" {
			return errors.New("REMOTE_URL and REMOTE_API_KEY are required for the rest backend")
		}
	case "sql":
	default:
		return fmt.Errorf("unknown REMOTE_BACKEND %q", c.RemoteBackend)
	}

	switch c.FileBackend {
	case "remote":
		if c.RemoteBackend != "rest" {
			return errors.New("FILE_BACKEND=remote requires REMOTE_BACKEND=rest")
		}
	case "s3":
		if c.S3AccessKeyID == "" || c.S3AccessKeySecret == "" {
			return errors.New("S3_ACCESS_KEY_ID and S3_ACCESS_KEY_SECRET are required for the s3 file backend")
		}
	case "local":
	default:
		return fmt.Errorf("unknown FILE_BACKEND %q", c.FileBackend)
	}
	return nil
}

// defaultLocalStorePath keeps the on-device store in the user's config dir.
func defaultLocalStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "kitchzone", "local")
	}
	return filepath.Join(dir, "kitchzone", "local")
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

// getEnvInt falls back to defaultVal when the variable is unset or not a number.
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
