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

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	OpenAI   OpenAIConfig
	Scoring  ScoringConfig
	Trends   TrendsConfig
	Analysis AnalysisConfig
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
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// OpenAIConfig holds credentials for the score-enhancement collaborator.
// An empty APIKey selects the no-op enhancer.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ScoringConfig tunes verdict and streak tolerance.
type ScoringConfig struct {
	SameThreshold float64
}

// TrendsConfig governs trend endpoint caching.
type TrendsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	DefaultDays  int
}

// AnalysisConfig controls the nightly analysis runner.
type AnalysisConfig struct {
	Enabled           bool
	TickInterval      time.Duration
	WorkerConcurrency int
	WorkerRetries     int
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

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.OpenAI = OpenAIConfig{
		APIKey:  v.GetString("OPENAI_API_KEY"),
		Model:   v.GetString("OPENAI_MODEL"),
		Timeout: parseDuration(v.GetString("OPENAI_TIMEOUT"), 30*time.Second),
	}

	cfg.Scoring = ScoringConfig{
		SameThreshold: v.GetFloat64("SCORING_SAME_THRESHOLD"),
	}

	cfg.Trends = TrendsConfig{
		CacheEnabled: v.GetBool("ENABLE_TREND_CACHE"),
		CacheTTL:     parseDuration(v.GetString("TREND_CACHE_TTL"), 10*time.Minute),
		DefaultDays:  v.GetInt("TREND_DEFAULT_DAYS"),
	}

	cfg.Analysis = AnalysisConfig{
		Enabled:           v.GetBool("ENABLE_ANALYSIS_RUNNER"),
		TickInterval:      parseDuration(v.GetString("ANALYSIS_TICK_INTERVAL"), time.Minute),
		WorkerConcurrency: v.GetInt("ANALYSIS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("ANALYSIS_WORKER_RETRIES"),
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
	v.SetDefault("DB_NAME", "dayscore")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_TIMEOUT", "30s")

	v.SetDefault("SCORING_SAME_THRESHOLD", 5.0)

	v.SetDefault("ENABLE_TREND_CACHE", false)
	v.SetDefault("TREND_CACHE_TTL", "10m")
	v.SetDefault("TREND_DEFAULT_DAYS", 7)

	v.SetDefault("ENABLE_ANALYSIS_RUNNER", false)
	v.SetDefault("ANALYSIS_TICK_INTERVAL", "1m")
	v.SetDefault("ANALYSIS_WORKER_CONCURRENCY", 1)
	v.SetDefault("ANALYSIS_WORKER_RETRIES", 3)
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
