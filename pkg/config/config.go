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
	CORS     CORSConfig
	Log      LogConfig
	Makeup   MakeupConfig
	Workload WorkloadConfig
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

// MakeupConfig tunes the make-up session core: the scheduling heuristics and
// the remedial code lifecycle. Weights are deployment configuration, not code.
type MakeupConfig struct {
	SuggestionCount int
	HorizonDays     int

	GapWeight        int
	MorningWeight    int
	NoConflictWeight int
	BalanceWeight    int
	ConflictPenalty  int

	PreferredTimes []string

	CodeTTL            time.Duration
	CodeInsertAttempts int
}

// WorkloadConfig governs the faculty workload report.
type WorkloadConfig struct {
	Enabled        bool
	CacheTTL       time.Duration
	OverloadHours  int
	UnderloadHours int
	QueueWorkers   int
	QueueRetries   int
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

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Makeup = MakeupConfig{
		SuggestionCount:    v.GetInt("MAKEUP_SUGGESTION_COUNT"),
		HorizonDays:        v.GetInt("MAKEUP_HORIZON_DAYS"),
		GapWeight:          v.GetInt("MAKEUP_WEIGHT_GAP"),
		MorningWeight:      v.GetInt("MAKEUP_WEIGHT_MORNING"),
		NoConflictWeight:   v.GetInt("MAKEUP_WEIGHT_NO_CONFLICT"),
		BalanceWeight:      v.GetInt("MAKEUP_WEIGHT_DAY_BALANCE"),
		ConflictPenalty:    v.GetInt("MAKEUP_CONFLICT_PENALTY"),
		PreferredTimes:     splitAndTrim(v.GetString("MAKEUP_PREFERRED_TIMES")),
		CodeTTL:            parseDuration(v.GetString("MAKEUP_CODE_TTL"), 30*time.Minute),
		CodeInsertAttempts: v.GetInt("MAKEUP_CODE_INSERT_ATTEMPTS"),
	}

	cfg.Workload = WorkloadConfig{
		Enabled:        v.GetBool("ENABLE_WORKLOADS"),
		CacheTTL:       parseDuration(v.GetString("WORKLOAD_CACHE_TTL"), 10*time.Minute),
		OverloadHours:  v.GetInt("WORKLOAD_OVERLOAD_HOURS"),
		UnderloadHours: v.GetInt("WORKLOAD_UNDERLOAD_HOURS"),
		QueueWorkers:   v.GetInt("WORKLOAD_QUEUE_WORKERS"),
		QueueRetries:   v.GetInt("WORKLOAD_QUEUE_RETRIES"),
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
	v.SetDefault("DB_NAME", "campus_cms")
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

	v.SetDefault("MAKEUP_SUGGESTION_COUNT", 3)
	v.SetDefault("MAKEUP_HORIZON_DAYS", 14)
	v.SetDefault("MAKEUP_WEIGHT_GAP", 30)
	v.SetDefault("MAKEUP_WEIGHT_MORNING", 20)
	v.SetDefault("MAKEUP_WEIGHT_NO_CONFLICT", 40)
	v.SetDefault("MAKEUP_WEIGHT_DAY_BALANCE", 10)
	v.SetDefault("MAKEUP_CONFLICT_PENALTY", 20)
	v.SetDefault("MAKEUP_PREFERRED_TIMES", "08:00,09:00,10:00,11:00,14:00")
	v.SetDefault("MAKEUP_CODE_TTL", "30m")
	v.SetDefault("MAKEUP_CODE_INSERT_ATTEMPTS", 5)

	v.SetDefault("ENABLE_WORKLOADS", true)
	v.SetDefault("WORKLOAD_CACHE_TTL", "10m")
	v.SetDefault("WORKLOAD_OVERLOAD_HOURS", 20)
	v.SetDefault("WORKLOAD_UNDERLOAD_HOURS", 8)
	v.SetDefault("WORKLOAD_QUEUE_WORKERS", 1)
	v.SetDefault("WORKLOAD_QUEUE_RETRIES", 3)
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
