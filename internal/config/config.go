package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Analysis AnalysisConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver         string
	URL            string
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConcurrency int64
}

// DSN returns the URL when set, otherwise a key/value connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type CacheConfig struct {
	Enabled       bool
	Backend       string
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

// AnalysisConfig holds the defaults applied when a request leaves a threshold unset.
type AnalysisConfig struct {
	SlowMovingDays     int
	DeadStockDays      int
	ChurnThresholdDays int
	LeadTimeDays       int
	SafetyStockDays    int
	TrailingSalesDays  int
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
	loadErr  error
)

// Load reads configuration once per process from .env and the environment.
func Load() (*Config, error) {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.New()
		v.AutomaticEnv()
		instance, loadErr = FromViper(v)
	})

	return instance, loadErr
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("DB_DRIVER", "pgx")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "retail")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONCURRENCY", 10)

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 3600)

	v.SetDefault("ANALYSIS_SLOW_MOVING_DAYS", 90)
	v.SetDefault("ANALYSIS_DEAD_STOCK_DAYS", 180)
	v.SetDefault("ANALYSIS_CHURN_THRESHOLD_DAYS", 180)
	v.SetDefault("ANALYSIS_LEAD_TIME_DAYS", 30)
	v.SetDefault("ANALYSIS_SAFETY_STOCK_DAYS", 7)
	v.SetDefault("ANALYSIS_TRAILING_SALES_DAYS", 90)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// FromViper builds and validates a Config from v. Defaults are registered on v first.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:         v.GetString("DB_DRIVER"),
			URL:            v.GetString("DATABASE_URL"),
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			DBName:         v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			MaxConcurrency: v.GetInt64("DB_MAX_CONCURRENCY"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			Backend:       v.GetString("CACHE_BACKEND"),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTLSeconds:    v.GetInt("CACHE_TTL_SECONDS"),
		},
		Analysis: AnalysisConfig{
			SlowMovingDays:     v.GetInt("ANALYSIS_SLOW_MOVING_DAYS"),
			DeadStockDays:      v.GetInt("ANALYSIS_DEAD_STOCK_DAYS"),
			ChurnThresholdDays: v.GetInt("ANALYSIS_CHURN_THRESHOLD_DAYS"),
			LeadTimeDays:       v.GetInt("ANALYSIS_LEAD_TIME_DAYS"),
			SafetyStockDays:    v.GetInt("ANALYSIS_SAFETY_STOCK_DAYS"),
			TrailingSalesDays:  v.GetInt("ANALYSIS_TRAILING_SALES_DAYS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on values the analyses cannot run with.
func (c *Config) Validate() error {
	a := c.Analysis
	switch {
	case a.SlowMovingDays <= 0:
		return fmt.Errorf("ANALYSIS_SLOW_MOVING_DAYS must be positive, got %d", a.SlowMovingDays)
	case a.DeadStockDays < a.SlowMovingDays:
		return fmt.Errorf("ANALYSIS_DEAD_STOCK_DAYS (%d) must be >= ANALYSIS_SLOW_MOVING_DAYS (%d)", a.DeadStockDays, a.SlowMovingDays)
	case a.ChurnThresholdDays <= 0:
		return fmt.Errorf("ANALYSIS_CHURN_THRESHOLD_DAYS must be positive, got %d", a.ChurnThresholdDays)
	case a.LeadTimeDays < 0:
		return fmt.Errorf("ANALYSIS_LEAD_TIME_DAYS must not be negative, got %d", a.LeadTimeDays)
	case a.SafetyStockDays < 0:
		return fmt.Errorf("ANALYSIS_SAFETY_STOCK_DAYS must not be negative, got %d", a.SafetyStockDays)
	case a.TrailingSalesDays <= 0:
		return fmt.Errorf("ANALYSIS_TRAILING_SALES_DAYS must be positive, got %d", a.TrailingSalesDays)
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must not be negative, got %d", c.Cache.TTLSeconds)
	}

	switch c.Database.Driver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be pgx or postgres, got %q", c.Database.Driver)
	}
	return nil
}
