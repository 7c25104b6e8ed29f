package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr               string        `yaml:"addr"`
	Environment        string        `yaml:"environment"`
	LogLevel           string        `yaml:"logLevel"`
	FrontendDir        string        `yaml:"frontendDir"`
	StoreDriver        string        `yaml:"storeDriver"`
	StorePrefix        string        `yaml:"storePrefix"`
	SQLitePath         string        `yaml:"sqlitePath"`
	DatabaseURL        string        `yaml:"databaseUrl"`
	RedisAddr          string        `yaml:"redisAddr"`
	RedisPassword      string        `yaml:"redisPassword"`
	RedisDB            int           `yaml:"redisDb"`
	MemoryQuotaBytes   int64         `yaml:"memoryQuotaBytes"`
	JWTSecret          string        `yaml:"jwtSecret"`
	TokenTTL           time.Duration `yaml:"tokenTtl"`
	DataEncryptionKey  string        `yaml:"dataEncryptionKey"`
	RunSeed            bool          `yaml:"runSeed"`
	SeedAdminPassword  string        `yaml:"seedAdminPassword"`
	SeedMasterPassword string        `yaml:"seedMasterPassword"`
	SessionWarnAfter   time.Duration `yaml:"sessionWarnAfter"`
	SessionTimeout     time.Duration `yaml:"sessionTimeout"`
	MaxBodyBytes       int64         `yaml:"maxBodyBytes"`
	RateLimitPerMinute int           `yaml:"rateLimitPerMinute"`
	MetricsEnabled     bool          `yaml:"metricsEnabled"`
	BackupInterval     time.Duration `yaml:"backupInterval"`
	BackupDir          string        `yaml:"backupDir"`
	BackupS3Bucket     string        `yaml:"backupS3Bucket"`
	BackupS3Prefix     string        `yaml:"backupS3Prefix"`
	AuditRetain        int           `yaml:"auditRetain"`
}

// Defaults returns the built-in settings before any file or environment
// override.
func Defaults() Config {
	return Config{
		Addr:               ":8080",
		Environment:        "development",
		LogLevel:           "info",
		FrontendDir:        "frontend/dist",
		StoreDriver:        "sqlite",
		StorePrefix:        "hrdesk:",
		SQLitePath:         "hrdesk.db",
		RedisAddr:          "localhost:6379",
		MemoryQuotaBytes:   5 << 20,
		TokenTTL:           8 * time.Hour,
		RunSeed:            true,
		SeedAdminPassword:  "1234",
		SeedMasterPassword: "master123",
		SessionWarnAfter:   20 * time.Second,
		SessionTimeout:     30 * time.Second,
		MaxBodyBytes:       16 << 20,
		RateLimitPerMinute: 60,
		MetricsEnabled:     true,
		BackupInterval:     0,
		BackupDir:          "backups",
		BackupS3Prefix:     "hrdesk/",
		AuditRetain:        1000,
	}
}

// Load applies, in order: defaults, the YAML file named by HRDESK_CONFIG,
// then environment variables.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("HRDESK_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	return cfg.withEnv(), nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c Config) withEnv() Config {
	return Config{
		Addr:               getEnv("APP_ADDR", c.Addr),
		Environment:        getEnv("APP_ENV", c.Environment),
		LogLevel:           getEnv("LOG_LEVEL", c.LogLevel),
		FrontendDir:        getEnv("FRONTEND_DIR", c.FrontendDir),
		StoreDriver:        getEnv("STORE_DRIVER", c.StoreDriver),
		StorePrefix:        getEnv("STORE_PREFIX", c.StorePrefix),
		SQLitePath:         getEnv("SQLITE_PATH", c.SQLitePath),
		DatabaseURL:        getEnv("DATABASE_URL", c.DatabaseURL),
		RedisAddr:          getEnv("REDIS_ADDR", c.RedisAddr),
		RedisPassword:      getEnv("REDIS_PASSWORD", c.RedisPassword),
		RedisDB:            getEnvInt("REDIS_DB", c.RedisDB),
		MemoryQuotaBytes:   int64(getEnvInt("MEMORY_QUOTA_BYTES", int(c.MemoryQuotaBytes))),
		JWTSecret:          getEnv("JWT_SECRET", c.JWTSecret),
		TokenTTL:           getEnvDuration("TOKEN_TTL", c.TokenTTL),
		DataEncryptionKey:  getEnv("DATA_ENCRYPTION_KEY", c.DataEncryptionKey),
		RunSeed:            getEnvBool("RUN_SEED", c.RunSeed),
		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", c.SeedAdminPassword),
		SeedMasterPassword: getEnv("SEED_MASTER_PASSWORD", c.SeedMasterPassword),
		SessionWarnAfter:   getEnvDuration("SESSION_WARN_AFTER", c.SessionWarnAfter),
		SessionTimeout:     getEnvDuration("SESSION_TIMEOUT", c.SessionTimeout),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", int(c.MaxBodyBytes))),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", c.MetricsEnabled),
		BackupInterval:     getEnvDuration("BACKUP_INTERVAL", c.BackupInterval),
		BackupDir:          getEnv("BACKUP_DIR", c.BackupDir),
		BackupS3Bucket:     getEnv("BACKUP_S3_BUCKET", c.BackupS3Bucket),
		BackupS3Prefix:     getEnv("BACKUP_S3_PREFIX", c.BackupS3Prefix),
		AuditRetain:        getEnvInt("AUDIT_RETAIN", c.AuditRetain),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	switch strings.ToLower(c.StoreDriver) {
	case "memory", "sqlite", "redis":
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, sqlite, postgres, redis")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if c.RunSeed && (c.SeedAdminPassword == "1234" || c.SeedMasterPassword == "master123") {
			return fmt.Errorf("seed passwords must be changed or RUN_SEED disabled in production")
		}
	}
	if c.SessionTimeout <= 0 || c.SessionWarnAfter <= 0 || c.SessionWarnAfter >= c.SessionTimeout {
		return fmt.Errorf("SESSION_WARN_AFTER must be positive and shorter than SESSION_TIMEOUT")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.BackupInterval < 0 {
		return fmt.Errorf("BACKUP_INTERVAL must not be negative")
	}
	return nil
}
