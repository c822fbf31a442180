// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"firestige.xyz/layerspy/internal/core"
)

// Config represents the top-level configuration.
// Maps to the `layerspy:` root key in YAML.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Capture CaptureConfig `mapstructure:"capture"`
	Output  OutputConfig  `mapstructure:"output"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level"`   // trace / debug / info / warn / error
	Pattern string           `mapstructure:"pattern"` // %time %level %field %msg %caller %func %goroutine %n
	Time    string           `mapstructure:"time"`    // Go reference layout
	File    FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

// ─── Capture ───

// Live capture engines.
const (
	EnginePcap     = "pcap"
	EngineAFPacket = "afpacket"
)

// CaptureConfig contains packet source settings.
type CaptureConfig struct {
	Engine       string        `mapstructure:"engine"` // pcap / afpacket
	Interface    string        `mapstructure:"interface"`
	BufferSizeMB int           `mapstructure:"buffer_size_mb"` // afpacket ring size
	SnapLen      int           `mapstructure:"snap_len"`
	Promiscuous  bool          `mapstructure:"promiscuous"`
	Timeout      time.Duration `mapstructure:"timeout"` // read timeout, e.g. "500ms"
	Filter       string        `mapstructure:"filter"`  // "tcp and port 80"
	Count        int           `mapstructure:"count"`   // 0 = unlimited
}

// ─── Output ───

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// OutputConfig controls how decoded packets are printed.
type OutputConfig struct {
	Format  string `mapstructure:"format"` // text / json / yaml
	Hexdump bool   `mapstructure:"hexdump"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `layerspy: ...`.
type configRoot struct {
	Layerspy Config `mapstructure:"layerspy"`
}

// Load loads configuration from file. An empty path yields the defaults,
// still subject to environment overrides.
// The YAML file uses `layerspy:` as root key; env vars use the LAYERSPY_ prefix (e.g., LAYERSPY_LOG_LEVEL).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Key "layerspy.log.level" maps to env "LAYERSPY_LOG_LEVEL" via the replacer
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	hooks := viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())
	if err := v.Unmarshal(&root, hooks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Layerspy

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use "layerspy." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("layerspy.log.level", "info")
	v.SetDefault("layerspy.log.pattern", "%time [%level] %field %msg%n")
	v.SetDefault("layerspy.log.time", "2006-01-02 15:04:05.000")
	v.SetDefault("layerspy.log.file.enabled", false)
	v.SetDefault("layerspy.log.file.path", "/var/log/layerspy/layerspy.log")
	v.SetDefault("layerspy.log.file.rotation.max_size_mb", 100)
	v.SetDefault("layerspy.log.file.rotation.max_age_days", 30)
	v.SetDefault("layerspy.log.file.rotation.max_backups", 5)
	v.SetDefault("layerspy.log.file.rotation.compress", true)

	// Capture defaults
	v.SetDefault("layerspy.capture.engine", EnginePcap)
	v.SetDefault("layerspy.capture.interface", "eth0")
	v.SetDefault("layerspy.capture.buffer_size_mb", 8)
	v.SetDefault("layerspy.capture.snap_len", 65535)
	v.SetDefault("layerspy.capture.promiscuous", true)
	v.SetDefault("layerspy.capture.timeout", "500ms")
	v.SetDefault("layerspy.capture.filter", "")
	v.SetDefault("layerspy.capture.count", 0)

	// Output defaults
	v.SetDefault("layerspy.output.format", FormatText)
	v.SetDefault("layerspy.output.hexdump", false)

	// Metrics defaults
	v.SetDefault("layerspy.metrics.enabled", false)
	v.SetDefault("layerspy.metrics.listen", ":9091")
	v.SetDefault("layerspy.metrics.path", "/metrics")
}

var validLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}

// ValidateAndApplyDefaults validates configuration and normalizes values.
// Every validation error wraps core.ErrConfigInvalid.
func (cfg *Config) ValidateAndApplyDefaults() error {
	// ── Log ──
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if !validLevels[cfg.Log.Level] {
		return invalid("log level: %s (must be trace/debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.File.Enabled && cfg.Log.File.Path == "" {
		return invalid("log.file.path is required when log.file.enabled=true")
	}

	// ── Capture ──
	cfg.Capture.Engine = strings.ToLower(cfg.Capture.Engine)
	if cfg.Capture.Engine != EnginePcap && cfg.Capture.Engine != EngineAFPacket {
		return invalid("capture.engine: %s (must be pcap/afpacket)", cfg.Capture.Engine)
	}
	if cfg.Capture.BufferSizeMB <= 0 {
		cfg.Capture.BufferSizeMB = 8
	}
	if cfg.Capture.SnapLen <= 0 {
		cfg.Capture.SnapLen = 65535
	}
	if cfg.Capture.Timeout < 0 {
		return invalid("capture.timeout must not be negative, got %s", cfg.Capture.Timeout)
	}
	if cfg.Capture.Count < 0 {
		return invalid("capture.count must not be negative, got %d", cfg.Capture.Count)
	}
	cfg.Capture.Filter = strings.TrimSpace(cfg.Capture.Filter)

	// ── Output ──
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	if err := ValidateFormat(cfg.Output.Format); err != nil {
		return err
	}

	// ── Metrics ──
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Listen == "" {
			return invalid("metrics.listen is required when metrics.enabled=true")
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			return invalid("metrics.path must start with '/', got %q", cfg.Metrics.Path)
		}
	}

	return nil
}

// ValidateFormat checks an output format name.
func ValidateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	default:
		return invalid("output format: %s (must be text/json/yaml)", format)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{core.ErrConfigInvalid}, args...)...)
}
