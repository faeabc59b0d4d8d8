// Package config provides configuration management for the videoprep server.
// Configuration is loaded from environment variables (optionally seeded from a
// .env file) with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Default values
	DefaultPort           = 3005
	DefaultBind           = "127.0.0.1"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "auto"
	DefaultDataDir        = ".videoprep"
	DefaultFFmpegPath     = "ffmpeg"
	DefaultFFprobePath    = "ffprobe"
	DefaultMaxUploadBytes = 500 * 1024 * 1024 // 500 MiB

	DefaultRetentionTTL      = 3600 // seconds
	DefaultRetentionInterval = 1800 // seconds

	DefaultLogMaxSizeMB  = 50
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 14

	// Environment variable names
	EnvPort              = "VIDEOPREP_PORT"
	EnvBind              = "VIDEOPREP_BIND"
	EnvLogLevel          = "VIDEOPREP_LOG_LEVEL"
	EnvLogFormat         = "VIDEOPREP_LOG_FORMAT"
	EnvLogFile           = "VIDEOPREP_LOG_FILE"
	EnvDataDir           = "VIDEOPREP_DATA_DIR"
	EnvFFmpegPath        = "VIDEOPREP_FFMPEG_PATH"
	EnvFFprobePath       = "VIDEOPREP_FFPROBE_PATH"
	EnvMaxUploadBytes    = "VIDEOPREP_MAX_UPLOAD_BYTES"
	EnvRetentionTTL      = "VIDEOPREP_RETENTION_TTL"
	EnvRetentionInterval = "VIDEOPREP_RETENTION_INTERVAL"
	EnvTranscodeTimeout  = "VIDEOPREP_TRANSCODE_TIMEOUT"
	EnvAllowedOrigins    = "VIDEOPREP_ALLOWED_ORIGINS"

	// Database filename
	DBFilename = "videoprep.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	Addr() string
	LogLevel() string
	LogFormat() string
	LogFile() string
	DataDir() string
	DBPath() string
	UploadDir() string
	ThumbnailDir() string
	LockDir() string
	FFmpegPath() string
	FFprobePath() string
	MaxUploadBytes() int64
	RetentionTTL() time.Duration
	RetentionInterval() time.Duration
	TranscodeTimeout() time.Duration
	AllowedOrigins() []string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port           int
	bind           string
	logLevel       string
	logFormat      string
	logFile        string
	dataDir        string
	ffmpegPath     string
	ffprobePath    string
	maxUploadBytes int64

	retentionTTL      int
	retentionInterval int
	transcodeTimeout  int

	allowedOrigins []string
}

// New creates a new EnvConfig with defaults and environment variable overrides.
// A .env file in the working directory is loaded first; variables already set
// in the process environment take precedence over it.
func New() (*EnvConfig, error) {
	_ = godotenv.Load()

	cfg := &EnvConfig{
		port:              DefaultPort,
		bind:              DefaultBind,
		logLevel:          DefaultLogLevel,
		logFormat:         DefaultLogFormat,
		dataDir:           defaultDataDir(),
		ffmpegPath:        DefaultFFmpegPath,
		ffprobePath:       DefaultFFprobePath,
		maxUploadBytes:    DefaultMaxUploadBytes,
		retentionTTL:      DefaultRetentionTTL,
		retentionInterval: DefaultRetentionInterval,
		allowedOrigins:    []string{"*"},
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if b := strings.TrimSpace(os.Getenv(EnvBind)); b != "" {
		cfg.bind = b
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if lf := os.Getenv(EnvLogFormat); lf != "" {
		switch strings.ToLower(lf) {
		case "json", "text", "auto":
			cfg.logFormat = strings.ToLower(lf)
		default:
			return nil, fmt.Errorf("invalid %s: must be json, text or auto", EnvLogFormat)
		}
	}

	cfg.logFile = os.Getenv(EnvLogFile)

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if fp := os.Getenv(EnvFFmpegPath); fp != "" {
		cfg.ffmpegPath = fp
	}
	if fp := os.Getenv(EnvFFprobePath); fp != "" {
		cfg.ffprobePath = fp
	}

	if mb := os.Getenv(EnvMaxUploadBytes); mb != "" {
		n, err := strconv.ParseInt(mb, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvMaxUploadBytes, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("invalid %s: must be positive", EnvMaxUploadBytes)
		}
		cfg.maxUploadBytes = n
	}

	var err error
	if cfg.retentionTTL, err = secondsFromEnv(EnvRetentionTTL, cfg.retentionTTL, 1); err != nil {
		return nil, err
	}
	if cfg.retentionInterval, err = secondsFromEnv(EnvRetentionInterval, cfg.retentionInterval, 1); err != nil {
		return nil, err
	}
	if cfg.transcodeTimeout, err = secondsFromEnv(EnvTranscodeTimeout, 0, 0); err != nil {
		return nil, err
	}

	if ao := os.Getenv(EnvAllowedOrigins); ao != "" {
		var origins []string
		for _, o := range strings.Split(ao, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.allowedOrigins = origins
		}
	}

	return cfg, nil
}

func secondsFromEnv(key string, fallback, min int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < min {
		return 0, fmt.Errorf("invalid %s: must be at least %d", key, min)
	}
	return n, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// Addr returns the host:port the HTTP server listens on
func (c *EnvConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.bind, c.port)
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// LogFormat returns json, text or auto
func (c *EnvConfig) LogFormat() string {
	return c.logFormat
}

// LogFile returns the rotating log file path, empty when file logging is off
func (c *EnvConfig) LogFile() string {
	return c.logFile
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// UploadDir returns the directory stored clips are written to
func (c *EnvConfig) UploadDir() string {
	return filepath.Join(c.dataDir, "uploads")
}

// ThumbnailDir returns the directory extracted thumbnails are written to
func (c *EnvConfig) ThumbnailDir() string {
	return filepath.Join(c.dataDir, "thumbnails")
}

// LockDir returns the directory holding per-destination export locks
func (c *EnvConfig) LockDir() string {
	return filepath.Join(c.dataDir, "locks")
}

func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

func (c *EnvConfig) FFprobePath() string {
	return c.ffprobePath
}

// MaxUploadBytes returns the hard size ceiling for a single upload
func (c *EnvConfig) MaxUploadBytes() int64 {
	return c.maxUploadBytes
}

func (c *EnvConfig) RetentionTTL() time.Duration {
	return time.Duration(c.retentionTTL) * time.Second
}

func (c *EnvConfig) RetentionInterval() time.Duration {
	return time.Duration(c.retentionInterval) * time.Second
}

// TranscodeTimeout returns the per-item encoder timeout; zero means none.
func (c *EnvConfig) TranscodeTimeout() time.Duration {
	return time.Duration(c.transcodeTimeout) * time.Second
}

func (c *EnvConfig) AllowedOrigins() []string {
	out := make([]string, len(c.allowedOrigins))
	copy(out, c.allowedOrigins)
	return out
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
