// Package config provides configuration management for Forest.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/xvierd/forest-cli/internal/domain"
)

// EnvPrefix is the prefix for environment overrides, e.g. FOREST_SESSION_DURATION.
const EnvPrefix = "FOREST"

// Platform classes accepted by platform.class.
const (
	PlatformAuto    = "auto"
	PlatformMobile  = "mobile"
	PlatformDesktop = "desktop"
)

// Config holds all configuration for the Forest application.
type Config struct {
	Session       SessionConfig      `mapstructure:"session"`
	Platform      PlatformConfig     `mapstructure:"platform"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Journal       JournalConfig      `mapstructure:"journal"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// SessionConfig holds focus session timings.
type SessionConfig struct {
	Duration          Duration `mapstructure:"duration"`
	WitherGrace       Duration `mapstructure:"wither_grace"`
	InterruptionGrace Duration `mapstructure:"interruption_grace"`
	SuccessNotice     Duration `mapstructure:"success_notice"`
}

// PlatformConfig holds platform capability settings.
type PlatformConfig struct {
	Class    string `mapstructure:"class"`
	WakeLock bool   `mapstructure:"wake_lock"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// JournalConfig holds attempt journal settings.
type JournalConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Session: SessionConfig{
			Duration:          Duration(25 * time.Minute),
			WitherGrace:       Duration(3 * time.Second),
			InterruptionGrace: 0,
			SuccessNotice:     Duration(3 * time.Second),
		},
		Platform: PlatformConfig{
			Class:    PlatformAuto,
			WakeLock: true,
		},
		Notifications: NotificationConfig{
			Enabled: true,
		},
		Journal: JournalConfig{
			DSN: ":memory:",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads the configuration from path, or from the default location when
// path is empty. A missing file is created with the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Save(path, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to path.
func Save(path string, cfg *Config) error {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.Set("session.duration", cfg.Session.Duration.String())
	v.Set("session.wither_grace", cfg.Session.WitherGrace.String())
	v.Set("session.interruption_grace", cfg.Session.InterruptionGrace.String())
	v.Set("session.success_notice", cfg.Session.SuccessNotice.String())
	v.Set("platform.class", cfg.Platform.Class)
	v.Set("platform.wake_lock", cfg.Platform.WakeLock)
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	v.Set("journal.dsn", cfg.Journal.DSN)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.file", cfg.Logging.File)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GetConfigPath returns the path to the default config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".forest", "config.toml"), nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("session.duration", defaults.Session.Duration.String())
	v.SetDefault("session.wither_grace", defaults.Session.WitherGrace.String())
	v.SetDefault("session.interruption_grace", defaults.Session.InterruptionGrace.String())
	v.SetDefault("session.success_notice", defaults.Session.SuccessNotice.String())
	v.SetDefault("platform.class", defaults.Platform.Class)
	v.SetDefault("platform.wake_lock", defaults.Platform.WakeLock)
	v.SetDefault("notifications.enabled", defaults.Notifications.Enabled)
	v.SetDefault("journal.dsn", defaults.Journal.DSN)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.file", defaults.Logging.File)
}

// ToSessionConfig converts the session timings to whole seconds and
// validates them.
func (c *Config) ToSessionConfig() (domain.SessionConfig, error) {
	if time.Duration(c.Session.Duration) < time.Second {
		return domain.SessionConfig{}, fmt.Errorf("session.duration must be at least 1s, got %s: %w",
			c.Session.Duration, domain.ErrInvalidConfig)
	}

	graces := []struct {
		key   string
		value Duration
	}{
		{"session.wither_grace", c.Session.WitherGrace},
		{"session.interruption_grace", c.Session.InterruptionGrace},
		{"session.success_notice", c.Session.SuccessNotice},
	}
	for _, g := range graces {
		if g.value < 0 {
			return domain.SessionConfig{}, fmt.Errorf("%s must not be negative, got %s: %w",
				g.key, g.value, domain.ErrInvalidConfig)
		}
	}

	sc := domain.SessionConfig{
		DurationSeconds:          seconds(c.Session.Duration),
		WitherGraceSeconds:       seconds(c.Session.WitherGrace),
		InterruptionGraceSeconds: seconds(c.Session.InterruptionGrace),
		SuccessNoticeSeconds:     seconds(c.Session.SuccessNotice),
	}
	if err := sc.Validate(); err != nil {
		return domain.SessionConfig{}, err
	}
	return sc, nil
}

// PlatformClass returns the normalized platform class.
func (c *Config) PlatformClass() (string, error) {
	class := strings.ToLower(strings.TrimSpace(c.Platform.Class))
	switch class {
	case "", PlatformAuto:
		return PlatformAuto, nil
	case PlatformMobile, PlatformDesktop:
		return class, nil
	default:
		return "", fmt.Errorf("platform.class must be auto, mobile or desktop, got %q: %w",
			c.Platform.Class, domain.ErrInvalidConfig)
	}
}

// LogLevel parses logging.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Logging.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level %q: %w", c.Logging.Level, domain.ErrInvalidConfig)
	}
	return level, nil
}

func seconds(d Duration) int {
	return int(time.Duration(d) / time.Second)
}
