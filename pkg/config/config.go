package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Mirror    MirrorConfig
	Dashboard DashboardConfig
	Billing   BillingConfig
	Inventory InventoryConfig
	Staff     StaffConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MirrorConfig tunes how upstream collection changes are applied to the local snapshot.
type MirrorConfig struct {
	ChangeChannel   string
	DebounceWindow  time.Duration
	RefreshInterval time.Duration
	ReloadWorkers   int
	ReloadRetries   int
}

// DashboardConfig governs caching of derived dashboard payloads.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// BillingConfig controls engine inputs that are not part of the mirrored data.
type BillingConfig struct {
	Timezone           string
	StrictClassGroups  bool
	ReconcileTolerance float64
}

type InventoryConfig struct {
	LowStockThreshold int
}

type StaffConfig struct {
	Roles []string
}

// Location resolves the billing timezone, falling back to UTC when unknown.
func (b BillingConfig) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Mirror = MirrorConfig{
		ChangeChannel:   v.GetString("MIRROR_CHANGE_CHANNEL"),
		DebounceWindow:  parseDuration(v.GetString("MIRROR_DEBOUNCE_WINDOW"), time.Second),
		RefreshInterval: parseDuration(v.GetString("MIRROR_REFRESH_INTERVAL"), 30*time.Second),
		ReloadWorkers:   v.GetInt("MIRROR_RELOAD_WORKERS"),
		ReloadRetries:   v.GetInt("MIRROR_RELOAD_RETRIES"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled: v.GetBool("ENABLE_DASHBOARD_CACHE"),
		CacheTTL:     parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Billing = BillingConfig{
		Timezone:           v.GetString("BILLING_TIMEZONE"),
		StrictClassGroups:  v.GetBool("BILLING_STRICT_CLASS_GROUPS"),
		ReconcileTolerance: v.GetFloat64("RECONCILE_TOLERANCE"),
	}

	cfg.Inventory = InventoryConfig{
		LowStockThreshold: v.GetInt("INVENTORY_LOW_STOCK_THRESHOLD"),
	}

	cfg.Staff = StaffConfig{
		Roles: splitAndTrim(v.GetString("STAFF_ROLES")),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_mirror")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MIRROR_CHANGE_CHANNEL", "mirror:changes")
	v.SetDefault("MIRROR_DEBOUNCE_WINDOW", "1s")
	v.SetDefault("MIRROR_REFRESH_INTERVAL", "30s")
	v.SetDefault("MIRROR_RELOAD_WORKERS", 2)
	v.SetDefault("MIRROR_RELOAD_RETRIES", 3)

	v.SetDefault("ENABLE_DASHBOARD_CACHE", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("BILLING_TIMEZONE", "UTC")
	v.SetDefault("BILLING_STRICT_CLASS_GROUPS", false)
	v.SetDefault("RECONCILE_TOLERANCE", 0.01)

	v.SetDefault("INVENTORY_LOW_STOCK_THRESHOLD", 5)
	v.SetDefault("STAFF_ROLES", "Teacher,Admin,Security,Support Staff,Driver")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
