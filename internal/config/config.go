package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/storyweave/linksync/internal/domain"
)

// WorkerSettings holds the scheduling parameters for one provider worker
type WorkerSettings struct {
	Enabled             bool
	CheckInterval       time.Duration `validate:"gt=0"`
	FullSyncInterval    time.Duration `validate:"gt=0"`
	FullRefetchInterval time.Duration `validate:"gt=0"`
	BatchSize           int           `validate:"gt=0,lte=500"`
}

// Config holds the application configuration
type Config struct {
	Port        int    `validate:"gt=0,lte=65535"`
	LogLevel    string `validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	LogFormat   string `validate:"oneof=json text"`
	Environment string
	ServiceName string
	Version     string

	APIKey string `validate:"required"` // API key protecting the ops/admin surface

	DBUser     string `validate:"required"`
	DBPassword string `validate:"required"`
	DBHost     string `validate:"required"`
	DBPort     string `validate:"required"`
	DBName     string `validate:"required"`

	// Workers is keyed by provider kind
	Workers map[string]WorkerSettings `validate:"dive"`

	// Optional Discord ops notifications; both must be set to enable
	DiscordBotToken     string
	DiscordOpsChannelID string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		ServiceName: getEnv("SERVICE_NAME", "linksync"),
		Version:     getEnv("VERSION", "dev"),
		APIKey:      getEnv("API_KEY", ""),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBName:      getEnv("DB_NAME", "linksync"),

		DiscordBotToken:     getEnv("DISCORD_BOT_TOKEN", ""),
		DiscordOpsChannelID: getEnv("DISCORD_OPS_CHANNEL_ID", ""),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	cfg.Workers = make(map[string]WorkerSettings, len(domain.ProviderKinds))
	for _, kind := range domain.ProviderKinds {
		settings, err := loadWorkerSettings(kind)
		if err != nil {
			return nil, err
		}
		cfg.Workers[kind] = settings
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadWorkerSettings reads one worker's env section, e.g. SYNC_GITHUB_ENABLED
func loadWorkerSettings(kind string) (WorkerSettings, error) {
	prefix := "SYNC_" + strings.ToUpper(kind) + "_"

	settings := WorkerSettings{
		Enabled: getEnvBool(prefix+"ENABLED", true),
	}

	var err error
	if settings.CheckInterval, err = getEnvDuration(prefix+"CHECK_INTERVAL", DefaultCheckInterval); err != nil {
		return settings, err
	}
	if settings.FullSyncInterval, err = getEnvDuration(prefix+"FULL_SYNC_INTERVAL", DefaultFullSyncInterval); err != nil {
		return settings, err
	}
	if settings.FullRefetchInterval, err = getEnvDuration(prefix+"FULL_REFETCH_INTERVAL", DefaultFullRefetchInterval); err != nil {
		return settings, err
	}

	batchStr := getEnv(prefix+"BATCH_SIZE", strconv.Itoa(DefaultBatchSize))
	batch, err := strconv.Atoi(batchStr)
	if err != nil {
		return settings, fmt.Errorf("invalid %sBATCH_SIZE value: %w", prefix, err)
	}
	settings.BatchSize = batch

	return settings, nil
}

// DiscordEnabled reports whether ops notifications are configured
func (c *Config) DiscordEnabled() bool {
	return c.DiscordBotToken != "" && c.DiscordOpsChannelID != ""
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvDuration retrieves a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return parsed, nil
}
