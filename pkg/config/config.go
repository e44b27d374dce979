package config

import (
	"errors"
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

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Timeline     TimelineConfig
	WorkingHours WorkingHoursConfig
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

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TimelineConfig tunes the calendar timeline rendering surface.
type TimelineConfig struct {
	HourHeight     float64
	MinEventHeight float64
	ScrollOffset   float64
	AutoScroll     bool
	CacheEnabled   bool
	CacheTTL       time.Duration
	RefreshSpec    string
}

// WorkingHoursConfig is the legacy static office-hours window, applied only to
// schedules that carry no weekly timeslot rules of their own.
type WorkingHoursConfig struct {
	StartHour int
	EndHour   int
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

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

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Timeline = TimelineConfig{
		HourHeight:     v.GetFloat64("TIMELINE_HOUR_HEIGHT"),
		MinEventHeight: v.GetFloat64("TIMELINE_MIN_EVENT_HEIGHT"),
		ScrollOffset:   v.GetFloat64("TIMELINE_SCROLL_OFFSET"),
		AutoScroll:     v.GetBool("TIMELINE_AUTO_SCROLL"),
		CacheEnabled:   v.GetBool("TIMELINE_CACHE_ENABLED"),
		CacheTTL:       parseDuration(v.GetString("TIMELINE_CACHE_TTL"), 60*time.Second),
		RefreshSpec:    v.GetString("TIMELINE_REFRESH_SPEC"),
	}

	cfg.WorkingHours = WorkingHoursConfig{
		StartHour: v.GetInt("WORKING_HOURS_START"),
		EndHour:   v.GetInt("WORKING_HOURS_END"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "telehealth_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TIMELINE_HOUR_HEIGHT", 72)
	v.SetDefault("TIMELINE_MIN_EVENT_HEIGHT", 32)
	v.SetDefault("TIMELINE_SCROLL_OFFSET", 200)
	v.SetDefault("TIMELINE_AUTO_SCROLL", true)
	v.SetDefault("TIMELINE_CACHE_ENABLED", false)
	v.SetDefault("TIMELINE_CACHE_TTL", "60s")
	v.SetDefault("TIMELINE_REFRESH_SPEC", "@every 1m")

	v.SetDefault("WORKING_HOURS_START", 9)
	v.SetDefault("WORKING_HOURS_END", 17)
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
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
