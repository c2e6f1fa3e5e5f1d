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

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	GridSourceFile   = "file"
	GridSourceSheets = "sheets"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Redis  RedisConfig
	CORS   CORSConfig
	Log    LogConfig
	Cache  CacheConfig
	Grid   GridConfig
	Search SearchConfig
	Time   TimeConfig
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

// CacheConfig controls caching of the fetched grid document.
type CacheConfig struct {
	Enabled bool
	Backend string
	TTL     time.Duration
}

// GridConfig selects where the timetable grid is read from.
type GridConfig struct {
	Source          string
	File            string
	SpreadsheetID   string
	APIKey          string
	CredentialsFile string
	Timeout         time.Duration
	// RefreshInterval re-reads the grid in the background; zero disables it.
	RefreshInterval time.Duration
}

// SearchConfig bounds the optimal schedule search per request.
type SearchConfig struct {
	MaxLeaves   int
	Timeout     time.Duration
	ProposalTTL time.Duration
}

// TimeConfig holds the AM/PM convention used for hours without a marker.
type TimeConfig struct {
	MorningFrom int
	MorningTo   int
	AfternoonTo int
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
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

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		Backend: strings.ToLower(v.GetString("CACHE_BACKEND")),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 24*time.Hour),
	}

	cfg.Grid = GridConfig{
		Source:          strings.ToLower(v.GetString("GRID_SOURCE")),
		File:            v.GetString("GRID_FILE"),
		SpreadsheetID:   v.GetString("SHEETS_SPREADSHEET_ID"),
		APIKey:          v.GetString("SHEETS_API_KEY"),
		CredentialsFile: v.GetString("SHEETS_CREDENTIALS_FILE"),
		Timeout:         parseDuration(v.GetString("SHEETS_TIMEOUT"), 30*time.Second),
		RefreshInterval: parseDuration(v.GetString("GRID_REFRESH_INTERVAL"), 0),
	}

	cfg.Search = SearchConfig{
		MaxLeaves:   v.GetInt("SEARCH_MAX_LEAVES"),
		Timeout:     parseDuration(v.GetString("SEARCH_TIMEOUT"), 10*time.Second),
		ProposalTTL: parseDuration(v.GetString("PROPOSAL_TTL"), 30*time.Minute),
	}

	cfg.Time = TimeConfig{
		MorningFrom: v.GetInt("TIME_MORNING_FROM"),
		MorningTo:   v.GetInt("TIME_MORNING_TO"),
		AfternoonTo: v.GetInt("TIME_AFTERNOON_TO"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("CACHE_TTL", "24h")

	v.SetDefault("GRID_SOURCE", GridSourceFile)
	v.SetDefault("GRID_FILE", "./timetable.json")
	v.SetDefault("SHEETS_SPREADSHEET_ID", "")
	v.SetDefault("SHEETS_API_KEY", "")
	v.SetDefault("SHEETS_CREDENTIALS_FILE", "")
	v.SetDefault("SHEETS_TIMEOUT", "30s")
	v.SetDefault("GRID_REFRESH_INTERVAL", "0")

	v.SetDefault("SEARCH_MAX_LEAVES", 200000)
	v.SetDefault("SEARCH_TIMEOUT", "10s")
	v.SetDefault("PROPOSAL_TTL", "30m")

	v.SetDefault("TIME_MORNING_FROM", 8)
	v.SetDefault("TIME_MORNING_TO", 11)
	v.SetDefault("TIME_AFTERNOON_TO", 7)
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory") ||
		strings.Contains(err.Error(), "cannot find the file")
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
