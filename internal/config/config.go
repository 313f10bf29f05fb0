package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kulaginds/aniplay/internal/logging"
	"github.com/kulaginds/aniplay/internal/timing"
)

// globalConfig stores the configuration loaded with command-line overrides
var (
	globalConfig *Config
	configMutex  sync.Mutex
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Playback PlaybackConfig `json:"playback"`
	Security SecurityConfig `json:"security"`
	Logging  LoggingConfig  `json:"logging"`
}

// LoadOptions holds command-line override options. Zero values leave the
// environment or default in place.
type LoadOptions struct {
	Host        string
	Port        string
	LogLevel    string
	MediaDir    string
	TimingTable string
	FallbackFPS float64
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host         string        `json:"host" env:"SERVER_HOST" default:"0.0.0.0"`
	Port         string        `json:"port" env:"SERVER_PORT" default:"8080"`
	ReadTimeout  time.Duration `json:"readTimeout" env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `json:"writeTimeout" env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `json:"idleTimeout" env:"SERVER_IDLE_TIMEOUT" default:"120s"`
}

// PlaybackConfig holds decoding and pacing configuration
type PlaybackConfig struct {
	MediaDir           string  `json:"mediaDir" env:"MEDIA_DIR" default:"."`
	TimingTable        string  `json:"timingTable" env:"TIMING_TABLE" default:""`
	FallbackFPS        float64 `json:"fallbackFps" env:"FALLBACK_FPS" default:"0"`
	FallbackAudioDelay int     `json:"fallbackAudioDelay" env:"FALLBACK_AUDIO_DELAY" default:"0"`
	AudioSampleRate    int     `json:"audioSampleRate" env:"AUDIO_SAMPLE_RATE" default:"22050"`
	Realtime           bool    `json:"realtime" env:"REALTIME" default:"true"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string `json:"allowedOrigins" env:"ALLOWED_ORIGINS" default:""`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `json:"level" env:"LOG_LEVEL" default:"info"`
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	return LoadWithOverrides(LoadOptions{})
}

// LoadWithOverrides loads configuration with command-line overrides
func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	config := &Config{}

	// Server config
	config.Server.Host = getOverrideOrEnv(opts.Host, "SERVER_HOST", "0.0.0.0")
	config.Server.Port = getOverrideOrEnv(opts.Port, "SERVER_PORT", "8080")
	config.Server.ReadTimeout = getDurationWithDefault("SERVER_READ_TIMEOUT", 30*time.Second)
	config.Server.WriteTimeout = getDurationWithDefault("SERVER_WRITE_TIMEOUT", 30*time.Second)
	config.Server.IdleTimeout = getDurationWithDefault("SERVER_IDLE_TIMEOUT", 120*time.Second)

	// Playback config
	config.Playback.MediaDir = getOverrideOrEnv(opts.MediaDir, "MEDIA_DIR", ".")
	config.Playback.TimingTable = getOverrideOrEnv(opts.TimingTable, "TIMING_TABLE", "")
	config.Playback.FallbackFPS = getFloatWithDefault("FALLBACK_FPS", 0)
	if opts.FallbackFPS != 0 {
		config.Playback.FallbackFPS = opts.FallbackFPS
	}
	config.Playback.FallbackAudioDelay = getIntWithDefault("FALLBACK_AUDIO_DELAY", 0)
	config.Playback.AudioSampleRate = getIntWithDefault("AUDIO_SAMPLE_RATE", 22050)
	config.Playback.Realtime = getBoolWithDefault("REALTIME", true)

	// Security config
	config.Security.AllowedOrigins = getStringSliceWithDefault("ALLOWED_ORIGINS", []string{})

	// Logging config
	config.Logging.Level = getOverrideOrEnv(opts.LogLevel, "LOG_LEVEL", "info")

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = config
	configMutex.Unlock()

	return config, nil
}

// GetGlobalConfig returns the most recently loaded configuration
func GetGlobalConfig() *Config {
	configMutex.Lock()
	defer configMutex.Unlock()
	return globalConfig
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}

	if c.Playback.MediaDir == "" {
		return fmt.Errorf("media directory cannot be empty")
	}

	if c.Playback.FallbackFPS < 0 {
		return fmt.Errorf("fallback fps cannot be negative")
	}

	if c.Playback.FallbackAudioDelay < 0 {
		return fmt.Errorf("fallback audio delay cannot be negative")
	}

	if c.Playback.AudioSampleRate <= 0 {
		return fmt.Errorf("audio sample rate must be positive")
	}

	if c.Playback.TimingTable != "" {
		if _, err := os.Stat(c.Playback.TimingTable); os.IsNotExist(err) {
			return fmt.Errorf("timing table does not exist: %s", c.Playback.TimingTable)
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// Timing builds the frame rate table: the configured file or the embedded
// one, plus the fallback rate when FallbackFPS is set.
func (c PlaybackConfig) Timing() (*timing.Table, error) {
	table := timing.Default()
	if c.TimingTable != "" {
		var err error
		if table, err = timing.LoadFile(c.TimingTable); err != nil {
			return nil, err
		}
	}

	if c.FallbackFPS > 0 {
		table = table.WithFallback(timing.Rate{FPS: c.FallbackFPS, AudioDelay: c.FallbackAudioDelay})
	}

	return table, nil
}

// Helper functions for environment variable parsing
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceWithDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return splitString(value, ",")
	}
	return defaultValue
}

// getOverrideOrEnv returns command-line override value, env value, or default
func getOverrideOrEnv(override, envKey, defaultValue string) string {
	if override != "" {
		return override
	}
	return getEnvWithDefault(envKey, defaultValue)
}

func splitString(s, sep string) []string {
	var result []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
