package config

import (
	"errors"
	"io/fs"
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

	CORS       CORSConfig
	Log        LogConfig
	Assessment AssessmentConfig
	Roster     RosterConfig
	Report     ReportConfig
	Metrics    MetricsConfig
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AssessmentConfig tunes the single assessment host boundary.
type AssessmentConfig struct {
	SimulatedLatency time.Duration
}

// RosterConfig bounds roster uploads.
type RosterConfig struct {
	MaxUploadBytes int64
	MaxRows        int
	TopN           int
}

// ReportConfig configures rendered documents.
type ReportConfig struct {
	Title string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
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

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Assessment = AssessmentConfig{
		SimulatedLatency: parseDuration(v.GetString("ASSESSMENT_SIMULATED_LATENCY"), 0),
	}

	maxUpload := v.GetInt64("ROSTER_MAX_UPLOAD_SIZE")
	if maxUpload <= 0 {
		maxUpload = 2 * 1024 * 1024
	}
	maxRows := v.GetInt("ROSTER_MAX_ROWS")
	if maxRows <= 0 {
		maxRows = 5000
	}
	topN := v.GetInt("ROSTER_TOP_N")
	if topN <= 0 {
		topN = 5
	}
	cfg.Roster = RosterConfig{
		MaxUploadBytes: maxUpload,
		MaxRows:        maxRows,
		TopN:           topN,
	}

	cfg.Report = ReportConfig{Title: v.GetString("REPORT_TITLE")}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ASSESSMENT_SIMULATED_LATENCY", "0s")

	v.SetDefault("ROSTER_MAX_UPLOAD_SIZE", 2*1024*1024)
	v.SetDefault("ROSTER_MAX_ROWS", 5000)
	v.SetDefault("ROSTER_TOP_N", 5)

	v.SetDefault("REPORT_TITLE", "Student Anxiety Risk Report")
	v.SetDefault("ENABLE_METRICS", true)
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
