package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Store        StoreConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Server       ServerConfig
	Slack        SlackConfig
	Activity     ActivityConfig
	Surveillance SurveillanceConfig
	Bootstrap    BootstrapConfig
}

// StoreConfig selects the repository backend. The memory driver keeps all
// data in process and is meant for demos and local development.
type StoreConfig struct {
	Driver string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings. When disabled, push signals and
// surveillance state stay in process.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds JWT authentication settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // G117: JWT signing secret config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	CORSOrigins    []string
	RateLimitRPS   int
	RateLimitBurst int
}

// SlackConfig holds the ops broadcast settings. Both fields empty disables it.
type SlackConfig struct {
	BotToken   string
	OpsChannel string
}

// ActivityConfig bounds the activity feed and the owner profile cache.
type ActivityConfig struct {
	Window          time.Duration
	Limit           int
	AlertLimit      int
	ProfileCacheLen int
	ProfileCacheTTL time.Duration
	Settle          time.Duration
}

type SurveillanceConfig struct {
	StateTTL time.Duration
}

// BootstrapConfig provisions the first super admin on startup when Email is set.
type BootstrapConfig struct {
	Email    string
	Password string //nolint:gosec // G117: bootstrap credential config
	Name     string
}

// Load reads configuration from environment variables, after merging a .env
// file (GHOST_ENV_FILE, default ".env") when one exists. Variables already set
// in the environment win over the file.
func Load() (*Config, error) {
	envFile := getEnv("GHOST_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: %s: %w", envFile, err)
	}

	dbPort, err := getEnvInt("GHOST_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("GHOST_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisEnabled, err := getEnvBool("GHOST_REDIS_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("GHOST_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("GHOST_JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshTTL, err := getEnvDuration("GHOST_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("GHOST_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	// Websocket feeds are long-lived; the write timeout applies to plain requests only.
	writeTimeout, err := getEnvDuration("GHOST_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateRPS, err := getEnvInt("GHOST_RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateBurst, err := getEnvInt("GHOST_RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	window, err := getEnvDuration("GHOST_ACTIVITY_WINDOW", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	limit, err := getEnvInt("GHOST_ACTIVITY_LIMIT", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	alertLimit, err := getEnvInt("GHOST_ALERT_LIMIT", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cacheLen, err := getEnvInt("GHOST_PROFILE_CACHE_SIZE", 4096)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cacheTTL, err := getEnvDuration("GHOST_PROFILE_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	settle, err := getEnvDuration("GHOST_ACTIVITY_SETTLE", 250*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	stateTTL, err := getEnvDuration("GHOST_SURVEILLANCE_TTL", 12*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg := &Config{
		Store: StoreConfig{
			Driver: getEnv("GHOST_STORE_DRIVER", DriverPostgres),
		},
		Database: DatabaseConfig{
			Host:     getEnv("GHOST_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("GHOST_DB_USER", "ghostmode"),
			Password: getEnv("GHOST_DB_PASSWORD", ""),
			DBName:   getEnv("GHOST_DB_NAME", "ghostmode_dev"),
			SSLMode:  getEnv("GHOST_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Enabled:  redisEnabled,
			Addr:     getEnv("GHOST_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("GHOST_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:     getEnv("GHOST_JWT_SECRET", ""),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Server: ServerConfig{
			Addr:           getEnv("GHOST_SERVER_ADDR", ":8080"),
			ReadTimeout:    readTimeout,
			WriteTimeout:   writeTimeout,
			CORSOrigins:    getEnvList("GHOST_CORS_ORIGINS", []string{"http://localhost:5173"}),
			RateLimitRPS:   rateRPS,
			RateLimitBurst: rateBurst,
		},
		Slack: SlackConfig{
			BotToken:   getEnv("GHOST_SLACK_BOT_TOKEN", ""),
			OpsChannel: getEnv("GHOST_SLACK_OPS_CHANNEL", ""),
		},
		Activity: ActivityConfig{
			Window:          window,
			Limit:           limit,
			AlertLimit:      alertLimit,
			ProfileCacheLen: cacheLen,
			ProfileCacheTTL: cacheTTL,
			Settle:          settle,
		},
		Surveillance: SurveillanceConfig{
			StateTTL: stateTTL,
		},
		Bootstrap: BootstrapConfig{
			Email:    getEnv("GHOST_BOOTSTRAP_EMAIL", ""),
			Password: getEnv("GHOST_BOOTSTRAP_PASSWORD", ""),
			Name:     getEnv("GHOST_BOOTSTRAP_NAME", "Super Admin"),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("GHOST_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("GHOST_JWT_SECRET must be at least 32 characters")
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.SSLMode == "disable" {
			log.Warn().Msg("GHOST_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("GHOST_DB_PORT must be 1-65535, got %d", c.Database.Port)
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("GHOST_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("GHOST_STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Store.Driver)
	}

	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("GHOST_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("GHOST_JWT_REFRESH_TTL must be positive, got %s", c.JWT.RefreshTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("GHOST_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("GHOST_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RateLimitRPS < 1 || c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("GHOST_RATE_LIMIT_RPS and GHOST_RATE_LIMIT_BURST must be >= 1, got %d/%d",
			c.Server.RateLimitRPS, c.Server.RateLimitBurst)
	}

	if (c.Slack.BotToken == "") != (c.Slack.OpsChannel == "") {
		return errors.New("GHOST_SLACK_BOT_TOKEN and GHOST_SLACK_OPS_CHANNEL must be set together")
	}

	if c.Activity.Window < 0 {
		return fmt.Errorf("GHOST_ACTIVITY_WINDOW must not be negative, got %s", c.Activity.Window)
	}
	if c.Activity.Limit < 1 {
		return fmt.Errorf("GHOST_ACTIVITY_LIMIT must be >= 1, got %d", c.Activity.Limit)
	}
	if c.Activity.AlertLimit < 1 {
		return fmt.Errorf("GHOST_ALERT_LIMIT must be >= 1, got %d", c.Activity.AlertLimit)
	}
	if c.Activity.ProfileCacheLen < 1 {
		return fmt.Errorf("GHOST_PROFILE_CACHE_SIZE must be >= 1, got %d", c.Activity.ProfileCacheLen)
	}
	if c.Activity.ProfileCacheTTL <= 0 {
		return fmt.Errorf("GHOST_PROFILE_CACHE_TTL must be positive, got %s", c.Activity.ProfileCacheTTL)
	}
	if c.Activity.Settle < 0 {
		return fmt.Errorf("GHOST_ACTIVITY_SETTLE must not be negative, got %s", c.Activity.Settle)
	}
	if c.Surveillance.StateTTL < 0 {
		return fmt.Errorf("GHOST_SURVEILLANCE_TTL must not be negative, got %s", c.Surveillance.StateTTL)
	}

	if c.Bootstrap.Email != "" && len(c.Bootstrap.Password) < 8 {
		return errors.New("GHOST_BOOTSTRAP_PASSWORD must be at least 8 characters when GHOST_BOOTSTRAP_EMAIL is set")
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
