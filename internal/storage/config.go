package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Lin-Jiong-HDU/execguard/internal/core/confirm"
	"github.com/Lin-Jiong-HDU/execguard/internal/core/security"
	"github.com/Lin-Jiong-HDU/execguard/internal/observe"
	"github.com/spf13/viper"
)

const (
	ConfigFileName = "config"
	ConfigFileType = "yaml"
	GuardDirName   = ".execguard"
	EnvPrefix      = "EXECGUARD"
)

// Signal source names.
const (
	SourceTUI   = "tui"
	SourceLine  = "line"
	SourceEvdev = "evdev"
	SourceNone  = "none"
)

// Config holds the application configuration
type Config struct {
	Policy  security.Policy `mapstructure:"policy"`
	Confirm ConfirmConfig   `mapstructure:"confirm"`
	Signal  SignalConfig    `mapstructure:"signal"`
	Exec    ExecConfig      `mapstructure:"exec"`
	Log     LogConfig       `mapstructure:"log"`
}

// ConfirmConfig holds confirmation settings
type ConfirmConfig struct {
	TimeoutMS int    `mapstructure:"timeout_ms"`
	Busy      string `mapstructure:"busy"`
}

// Timeout returns the confirmation deadline.
func (c ConfirmConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// SignalConfig selects where confirmation signals come from
type SignalConfig struct {
	Source       string `mapstructure:"source"`
	Device       string `mapstructure:"device"`
	ConfirmCodes []int  `mapstructure:"confirm_codes"`
	RejectCodes  []int  `mapstructure:"reject_codes"`
}

// ExecConfig holds command execution settings
type ExecConfig struct {
	Timeout int `mapstructure:"timeout"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Buffer int    `mapstructure:"buffer"`
}

// GetConfigDir returns the execguard config directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, GuardDirName), nil
}

// LoadConfig loads the configuration from path. An empty path reads
// config.yaml from the config directory; a missing file there is not an
// error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		configDir, err := GetConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileType)
		v.AddConfigPath(configDir)

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			// Config not found, defaults apply
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	policy := security.DefaultPolicy()
	return &Config{
		Policy: *policy,
		Confirm: ConfirmConfig{
			TimeoutMS: int(confirm.DefaultTimeout / time.Millisecond),
			Busy:      string(confirm.BusyQueue),
		},
		Signal: SignalConfig{
			Source:       SourceTUI,
			Device:       "/dev/input/event0",
			ConfirmCodes: []int{115},
			RejectCodes:  []int{114},
		},
		Exec: ExecConfig{Timeout: 30},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Buffer: 64,
		},
	}
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	// Policy defaults
	v.SetDefault("policy.dangerous_commands", def.Policy.DangerousCommands)
	v.SetDefault("policy.protected_targets", def.Policy.ProtectedTargets)

	// Confirmation defaults
	v.SetDefault("confirm.timeout_ms", def.Confirm.TimeoutMS)
	v.SetDefault("confirm.busy", def.Confirm.Busy)

	// Signal defaults
	v.SetDefault("signal.source", def.Signal.Source)
	v.SetDefault("signal.device", def.Signal.Device)
	v.SetDefault("signal.confirm_codes", def.Signal.ConfirmCodes)
	v.SetDefault("signal.reject_codes", def.Signal.RejectCodes)

	v.SetDefault("exec.timeout", def.Exec.Timeout)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.buffer", def.Log.Buffer)
}

// Validate checks the configuration for values the guard cannot run with
func (c *Config) Validate() error {
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	if c.Confirm.TimeoutMS <= 0 {
		return fmt.Errorf("confirm.timeout_ms must be > 0, got %d", c.Confirm.TimeoutMS)
	}
	if _, err := confirm.ParseBusyPolicy(c.Confirm.Busy); err != nil {
		return fmt.Errorf("confirm.busy: %w", err)
	}

	switch c.Signal.Source {
	case SourceTUI, SourceLine, SourceEvdev, SourceNone:
	default:
		return fmt.Errorf("signal.source: unknown source %q", c.Signal.Source)
	}
	for _, code := range append(append([]int{}, c.Signal.ConfirmCodes...), c.Signal.RejectCodes...) {
		if code < 0 || code > 0xffff {
			return fmt.Errorf("signal: key code %d out of range", code)
		}
	}

	if c.Exec.Timeout <= 0 {
		return fmt.Errorf("exec.timeout must be > 0, got %d", c.Exec.Timeout)
	}
	if _, err := observe.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// SaveConfig saves cfg to config.yaml in the config directory
func SaveConfig(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return SaveConfigAs(cfg, filepath.Join(configDir, ConfigFileName+"."+ConfigFileType))
}

// SaveConfigAs saves cfg to path
func SaveConfigAs(cfg *Config, path string) error {
	// Create config directory if not exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	v.Set("policy.dangerous_commands", cfg.Policy.DangerousCommands)
	v.Set("policy.protected_targets", cfg.Policy.ProtectedTargets)

	v.Set("confirm.timeout_ms", cfg.Confirm.TimeoutMS)
	v.Set("confirm.busy", cfg.Confirm.Busy)

	v.Set("signal.source", cfg.Signal.Source)
	v.Set("signal.device", cfg.Signal.Device)
	v.Set("signal.confirm_codes", cfg.Signal.ConfirmCodes)
	v.Set("signal.reject_codes", cfg.Signal.RejectCodes)

	v.Set("exec.timeout", cfg.Exec.Timeout)

	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.buffer", cfg.Log.Buffer)

	return v.WriteConfigAs(path)
}
