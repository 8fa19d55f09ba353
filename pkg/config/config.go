package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported ENV values.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the process configuration assembled from the environment and .env.
type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Export    ExportConfig
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
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the lesson timetable generator.
type SchedulerConfig struct {
	Passes                int
	Seed                  int64
	ConstraintCatalogPath string
	LockTTL               time.Duration
	StatsCacheTTL         time.Duration
	GenerateRatePerMinute int
	GenerateBurst         int
	Weights               WeightsConfig
}

// WeightsConfig mirrors the scoring weights; penalties are positive magnitudes.
type WeightsConfig struct {
	Base            float64
	PreferredSlot   float64
	AvoidSlot       float64
	PreferredDay    float64
	AvoidDay        float64
	SameDayLoad     float64
	SpareCapacity   float64
	Midweek         float64
	SpreadViolation float64
	BreakfastBonus  float64
	FruitBonus      float64
	RestBonus       float64
}

// ExportConfig controls timetable document rendering.
type ExportConfig struct {
	PDFTitle string
}

// Load reads .env when present and overlays environment variables.
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		Passes:                v.GetInt("SCHEDULER_PASSES"),
		Seed:                  v.GetInt64("SCHEDULER_SEED"),
		ConstraintCatalogPath: v.GetString("SCHEDULER_CONSTRAINT_CATALOG"),
		LockTTL:               parseDuration(v.GetString("SCHEDULER_LOCK_TTL"), 30*time.Second),
		StatsCacheTTL:         parseDuration(v.GetString("SCHEDULER_STATS_CACHE_TTL"), 10*time.Minute),
		GenerateRatePerMinute: v.GetInt("SCHEDULER_GENERATE_RATE_PER_MINUTE"),
		GenerateBurst:         v.GetInt("SCHEDULER_GENERATE_BURST"),
		Weights: WeightsConfig{
			Base:            v.GetFloat64("SCHEDULER_WEIGHT_BASE"),
			PreferredSlot:   v.GetFloat64("SCHEDULER_WEIGHT_PREFERRED_SLOT"),
			AvoidSlot:       v.GetFloat64("SCHEDULER_WEIGHT_AVOID_SLOT"),
			PreferredDay:    v.GetFloat64("SCHEDULER_WEIGHT_PREFERRED_DAY"),
			AvoidDay:        v.GetFloat64("SCHEDULER_WEIGHT_AVOID_DAY"),
			SameDayLoad:     v.GetFloat64("SCHEDULER_WEIGHT_SAME_DAY_LOAD"),
			SpareCapacity:   v.GetFloat64("SCHEDULER_WEIGHT_SPARE_CAPACITY"),
			Midweek:         v.GetFloat64("SCHEDULER_WEIGHT_MIDWEEK"),
			SpreadViolation: v.GetFloat64("SCHEDULER_WEIGHT_SPREAD_VIOLATION"),
			BreakfastBonus:  v.GetFloat64("SCHEDULER_WEIGHT_BREAKFAST_BONUS"),
			FruitBonus:      v.GetFloat64("SCHEDULER_WEIGHT_FRUIT_BONUS"),
			RestBonus:       v.GetFloat64("SCHEDULER_WEIGHT_REST_BONUS"),
		},
	}

	cfg.Export = ExportConfig{
		PDFTitle: v.GetString("EXPORT_PDF_TITLE"),
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
	v.SetDefault("DB_NAME", "tennis_lessons")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_PASSES", 3)
	v.SetDefault("SCHEDULER_SEED", 0)
	v.SetDefault("SCHEDULER_CONSTRAINT_CATALOG", "")
	v.SetDefault("SCHEDULER_LOCK_TTL", "30s")
	v.SetDefault("SCHEDULER_STATS_CACHE_TTL", "10m")
	v.SetDefault("SCHEDULER_GENERATE_RATE_PER_MINUTE", 30)
	v.SetDefault("SCHEDULER_GENERATE_BURST", 5)

	v.SetDefault("SCHEDULER_WEIGHT_BASE", 1000)
	v.SetDefault("SCHEDULER_WEIGHT_PREFERRED_SLOT", 50)
	v.SetDefault("SCHEDULER_WEIGHT_AVOID_SLOT", 100)
	v.SetDefault("SCHEDULER_WEIGHT_PREFERRED_DAY", 30)
	v.SetDefault("SCHEDULER_WEIGHT_AVOID_DAY", 80)
	v.SetDefault("SCHEDULER_WEIGHT_SAME_DAY_LOAD", 20)
	v.SetDefault("SCHEDULER_WEIGHT_SPARE_CAPACITY", 10)
	v.SetDefault("SCHEDULER_WEIGHT_MIDWEEK", 15)
	v.SetDefault("SCHEDULER_WEIGHT_SPREAD_VIOLATION", 200)
	v.SetDefault("SCHEDULER_WEIGHT_BREAKFAST_BONUS", 5)
	v.SetDefault("SCHEDULER_WEIGHT_FRUIT_BONUS", 3)
	v.SetDefault("SCHEDULER_WEIGHT_REST_BONUS", 0)

	v.SetDefault("EXPORT_PDF_TITLE", "Weekly Tennis Lessons")
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
