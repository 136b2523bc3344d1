package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort        string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	RequestTimeout    time.Duration
	HTTPClientTimeout time.Duration

	// LanguagePriority is walked in order before falling back to any transcript.
	LanguagePriority []string

	YouTubeBaseURL        string
	YouTubeAcceptLanguage string

	LogLevel  string
	LogFormat string
	LogFile   string

	// AuditDBPath enables the request audit log when non-empty.
	AuditDBPath string
}

var DefaultLanguagePriority = []string{"en", "es", "fr", "de"}

func LoadConfig() *Config {
	return &Config{
		ServerPort:            GetEnv("SERVER_PORT", "8080"),
		ReadTimeout:           getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:          getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:           getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:       getEnvAsDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:        getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
		HTTPClientTimeout:     getEnvAsDuration("HTTP_CLIENT_TIMEOUT", 20*time.Second),
		LanguagePriority:      getEnvAsStringSlice("LANGUAGE_PRIORITY", DefaultLanguagePriority),
		YouTubeBaseURL:        GetEnv("YOUTUBE_BASE_URL", "https://www.youtube.com"),
		YouTubeAcceptLanguage: GetEnv("YOUTUBE_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
		LogLevel:              GetEnv("LOG_LEVEL", "info"),
		LogFormat:             GetEnv("LOG_FORMAT", "text"),
		LogFile:               GetEnv("LOG_FILE", ""),
		AuditDBPath:           GetEnv("AUDIT_DB_PATH", ""),
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return append([]string(nil), defaultValue...)
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Empty list, using default")
		return append([]string(nil), defaultValue...)
	}
	return out
}

func ValidateConfig(cfg *Config) error {
	if cfg.ServerPort == "" {
		return errors.New("server port is required")
	}
	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		return errors.Wrapf(err, "server port %q is not a number", cfg.ServerPort)
	}
	if cfg.ReadTimeout <= 0 {
		return errors.New("read timeout must be greater than 0")
	}
	if cfg.WriteTimeout <= 0 {
		return errors.New("write timeout must be greater than 0")
	}
	if cfg.IdleTimeout <= 0 {
		return errors.New("idle timeout must be greater than 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be greater than 0")
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("request timeout must be greater than 0")
	}
	if cfg.HTTPClientTimeout <= 0 {
		return errors.New("http client timeout must be greater than 0")
	}
	if len(cfg.LanguagePriority) == 0 {
		return errors.New("language priority must not be empty")
	}
	if cfg.YouTubeBaseURL == "" {
		return errors.New("youtube base url is required")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return errors.Errorf("log format must be text or json, got %q", cfg.LogFormat)
	}
	return nil
}
