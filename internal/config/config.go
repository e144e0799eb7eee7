package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Env  string `yaml:"env"`
	Port string `yaml:"port"`

	// Database
	DBDriver   string `yaml:"db_driver"`
	SQLitePath string `yaml:"sqlite_path"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode"`

	// Dashboard cache; empty disables it
	RedisURL string `yaml:"redis_url"`

	// Passcode login; an empty hash leaves the API open
	JWTSecret        string        `yaml:"jwt_secret"`
	JWTExpirationDur time.Duration `yaml:"-"`
	PasscodeHash     string        `yaml:"passcode_hash"`

	// Scheduled backups; an empty cron expression disables them
	BackupCron string `yaml:"backup_cron"`
	BackupDir  string `yaml:"backup_dir"`
}

var appConfig *Config

// Load loads configuration from a .env file, an optional YAML file named by
// CONFIG_FILE, and finally environment variables, in increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	config.Env = getEnv("ENV", config.Env, "development")
	config.Port = getEnv("PORT", config.Port, "8080")

	config.DBDriver = getEnv("DB_DRIVER", config.DBDriver, "sqlite")
	config.SQLitePath = getEnv("SQLITE_PATH", config.SQLitePath, "data/tracker.db")
	config.DBHost = getEnv("DB_HOST", config.DBHost, "localhost")
	config.DBPort = getEnv("DB_PORT", config.DBPort, "5432")
	config.DBUser = getEnv("DB_USER", config.DBUser, "tracker")
	config.DBPassword = getEnv("DB_PASSWORD", config.DBPassword, "tracker")
	config.DBName = getEnv("DB_NAME", config.DBName, "tracker")
	config.DBSSLMode = getEnv("DB_SSLMODE", config.DBSSLMode, "disable")

	config.RedisURL = getEnv("REDIS_URL", config.RedisURL, "")

	config.JWTSecret = getEnv("JWT_SECRET", config.JWTSecret, "fallback-secret-key-for-dev-only")
	config.PasscodeHash = getEnv("AUTH_PASSCODE_HASH", config.PasscodeHash, "")

	config.BackupCron = getEnv("BACKUP_CRON", config.BackupCron, "")
	config.BackupDir = getEnv("BACKUP_DIR", config.BackupDir, "data/backups")

	expStr := getEnv("JWT_EXPIRES_IN", "", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use sqlite or postgres)", c.DBDriver)
	}
	if c.DBDriver == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
	}
	if c.PasscodeHash != "" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_PASSCODE_HASH is set")
	}
	return nil
}

// AuthEnabled reports whether API routes require a passcode-issued token.
func (c *Config) AuthEnabled() bool {
	return c.PasscodeHash != ""
}

func loadFile(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Warning: config file %s not found\n", path)
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// getEnv returns the environment variable if set, else the file value, else the default.
func getEnv(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}
