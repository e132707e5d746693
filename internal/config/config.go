package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents runtime configuration sourced from environment variables.
type Config struct {
	ListenAddr       string
	AllowedOrigins   []string
	EnablePrometheus bool
	EnablePprof      bool
	LogLevel         slog.Level
	MaxUploadBytes   int64
	Environment      string
	SentryDSN        string
	Session          SessionConfig
	Charts           ChartConfig
	WS               WebsocketConfig
}

// SessionConfig bounds the in-memory document store.
type SessionConfig struct {
	TTL        time.Duration
	MaxEntries int
}

// ChartConfig sets the default size of rendered chart images.
type ChartConfig struct {
	Width  int
	Height int
}

// WebsocketConfig captures tunables for WebSocket handling.
type WebsocketConfig struct {
	MaxClients   int
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
}

// Load parses configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:       ":8080",
		AllowedOrigins:   []string{"*"},
		EnablePrometheus: false,
		EnablePprof:      false,
		LogLevel:         slog.LevelInfo,
		MaxUploadBytes:   64 << 20,
		Environment:      "development",
		Session: SessionConfig{
			TTL:        30 * time.Minute,
			MaxEntries: 64,
		},
		Charts: ChartConfig{
			Width:  1024,
			Height: 400,
		},
		WS: WebsocketConfig{
			MaxClients:   256,
			WriteTimeout: 3 * time.Second,
			ReadTimeout:  30 * time.Second,
		},
	}

	if value := strings.TrimSpace(os.Getenv("APP_LISTEN_ADDR")); value != "" {
		cfg.ListenAddr = value
	}

	if value := strings.TrimSpace(os.Getenv("APP_ALLOWED_ORIGINS")); value != "" {
		origins := splitAndTrim(value, ",")
		if len(origins) == 0 {
			return Config{}, fmt.Errorf("APP_ALLOWED_ORIGINS must not be empty")
		}
		cfg.AllowedOrigins = origins
	}

	if value := strings.TrimSpace(os.Getenv("APP_ENABLE_PROMETHEUS")); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_ENABLE_PROMETHEUS: %w", err)
		}
		cfg.EnablePrometheus = enabled
	}

	if value := strings.TrimSpace(os.Getenv("APP_ENABLE_PPROF")); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_ENABLE_PPROF: %w", err)
		}
		cfg.EnablePprof = enabled
	}

	if value := strings.TrimSpace(os.Getenv("APP_LOG_LEVEL")); value != "" {
		level, err := parseLogLevel(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	if value := strings.TrimSpace(os.Getenv("APP_MAX_UPLOAD_BYTES")); value != "" {
		limit, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_MAX_UPLOAD_BYTES: %w", err)
		}
		if limit <= 0 {
			return Config{}, fmt.Errorf("APP_MAX_UPLOAD_BYTES must be > 0")
		}
		cfg.MaxUploadBytes = limit
	}

	if value := strings.TrimSpace(os.Getenv("APP_ENVIRONMENT")); value != "" {
		cfg.Environment = value
	}

	if value := strings.TrimSpace(os.Getenv("APP_SENTRY_DSN")); value != "" {
		cfg.SentryDSN = value
	}

	if value := strings.TrimSpace(os.Getenv("APP_SESSION_TTL")); value != "" {
		ttl, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_SESSION_TTL: %w", err)
		}
		if ttl <= 0 {
			return Config{}, fmt.Errorf("APP_SESSION_TTL must be > 0")
		}
		cfg.Session.TTL = ttl
	}

	if value := strings.TrimSpace(os.Getenv("APP_SESSION_MAX")); value != "" {
		maxEntries, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_SESSION_MAX: %w", err)
		}
		if maxEntries <= 0 {
			return Config{}, fmt.Errorf("APP_SESSION_MAX must be > 0")
		}
		cfg.Session.MaxEntries = maxEntries
	}

	if value := strings.TrimSpace(os.Getenv("APP_CHART_WIDTH")); value != "" {
		width, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_CHART_WIDTH: %w", err)
		}
		if width <= 0 {
			return Config{}, fmt.Errorf("APP_CHART_WIDTH must be > 0")
		}
		cfg.Charts.Width = width
	}

	if value := strings.TrimSpace(os.Getenv("APP_CHART_HEIGHT")); value != "" {
		height, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_CHART_HEIGHT: %w", err)
		}
		if height <= 0 {
			return Config{}, fmt.Errorf("APP_CHART_HEIGHT must be > 0")
		}
		cfg.Charts.Height = height
	}

	if value := strings.TrimSpace(os.Getenv("APP_WS_MAX_CLIENTS")); value != "" {
		maxClients, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_WS_MAX_CLIENTS: %w", err)
		}
		if maxClients <= 0 {
			return Config{}, fmt.Errorf("APP_WS_MAX_CLIENTS must be > 0")
		}
		cfg.WS.MaxClients = maxClients
	}

	if value := strings.TrimSpace(os.Getenv("APP_WS_WRITE_TIMEOUT")); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_WS_WRITE_TIMEOUT: %w", err)
		}
		if timeout <= 0 {
			return Config{}, fmt.Errorf("APP_WS_WRITE_TIMEOUT must be > 0")
		}
		cfg.WS.WriteTimeout = timeout
	}

	if value := strings.TrimSpace(os.Getenv("APP_WS_READ_TIMEOUT")); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_WS_READ_TIMEOUT: %w", err)
		}
		if timeout <= 0 {
			return Config{}, fmt.Errorf("APP_WS_READ_TIMEOUT must be > 0")
		}
		cfg.WS.ReadTimeout = timeout
	}

	return cfg, nil
}

func splitAndTrim(value, sep string) []string {
	raw := strings.Split(value, sep)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseLogLevel(input string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level %q", input)
	}
}
