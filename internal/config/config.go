/*
Package config loads the settings shared by the demo and benchmark tools and
builds their logger.

Values are layered, later layers winning:
  - built-in defaults (Default)
  - an optional YAML file
  - STOPDEMO_* environment variables
  - command-line flags, applied by the caller

Nothing here is fatal. An unreadable file, a bad environment value, or an
out-of-range setting is reported as a warning and the default is kept.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/randomizedcoder/go-stop-token/internal/console"
	"github.com/randomizedcoder/go-stop-token/internal/queue"
	"github.com/randomizedcoder/go-stop-token/internal/tick"
)

// Sentinel errors wrapped by the warnings Load and Validate return.
var (
	ErrInvalidPoolSize = errors.New("config: pool size must be a positive integer")
	ErrInvalidValue    = errors.New("config: invalid value")
	ErrConfigFile      = errors.New("config: unusable config file")
)

// Config holds every tunable of the demo programs.
type Config struct {
	LogLevel string `yaml:"log_level"` // debug shows progress dots (default: "info")
	NoColor  bool   `yaml:"no_color"`  // plain output without ANSI colour (default: false)

	// Pool demo
	PoolSize      int    `yaml:"pool_size"`      // consumers (default: 4)
	Producers     int    `yaml:"producers"`      // 0 pushes directly, >0 feeds through the intake ring (default: 0)
	QueueBackend  string `yaml:"queue_backend"`  // fifo, channel or ring (default: "fifo")
	QueueCapacity int    `yaml:"queue_capacity"` // bounded backends only (default: 1024)
	IntakeTicker  string `yaml:"intake_ticker"`  // std, batch or atomic (default: "atomic")

	// TimeScale multiplies every demo delay; 0.01 runs a demo 100x faster (default: 1.0)
	TimeScale float64 `yaml:"time_scale"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		PoolSize:      4,
		QueueBackend:  queue.BackendFIFO,
		QueueCapacity: 1024,
		IntakeTicker:  tick.KindAtomic,
		TimeScale:     1.0,
	}
}

// Load returns the defaults overlaid with the file at path (if path is not
// empty) and then the environment, validated. Every problem found along the
// way is returned as a warning.
func Load(path string) (*Config, []error) {
	cfg := Default()
	var warnings []error

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			warnings = append(warnings, err)
		}
	}
	warnings = append(warnings, cfg.ApplyEnv()...)
	warnings = append(warnings, cfg.Validate()...)
	return cfg, warnings
}

// LoadFile overlays the YAML document at path. Keys absent from the file
// keep their current values. On error cfg is unchanged.
func (c *Config) LoadFile(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigFile, err)
	}

	next := *c
	if err := yaml.Unmarshal(buf, &next); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConfigFile, path, err)
	}
	*c = next
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel     = "STOPDEMO_LOG_LEVEL"
	EnvNoColor      = "STOPDEMO_NO_COLOR"
	EnvPoolSize     = "STOPDEMO_POOL_SIZE"
	EnvProducers    = "STOPDEMO_PRODUCERS"
	EnvQueueBackend = "STOPDEMO_QUEUE_BACKEND"
	EnvTimeScale    = "STOPDEMO_TIME_SCALE"
)

// ApplyEnv overlays the STOPDEMO_* environment variables. Values that do not
// parse are skipped and reported.
func (c *Config) ApplyEnv() []error {
	var warnings []error

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvNoColor); v != "" {
		c.NoColor = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv(EnvPoolSize); v != "" {
		if n, err := ParsePoolSize(v); err == nil {
			c.PoolSize = n
		} else {
			warnings = append(warnings, fmt.Errorf("%s: %w", EnvPoolSize, err))
		}
	}
	if v := os.Getenv(EnvProducers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Producers = n
		} else {
			warnings = append(warnings, fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvProducers, v))
		}
	}
	if v := os.Getenv(EnvQueueBackend); v != "" {
		c.QueueBackend = v
	}
	if v := os.Getenv(EnvTimeScale); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.TimeScale = f
		} else {
			warnings = append(warnings, fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvTimeScale, v))
		}
	}
	return warnings
}

// Validate replaces every out-of-range setting with its default and reports
// each replacement.
func (c *Config) Validate() []error {
	def := Default()
	var warnings []error
	invalid := func(name string, got any) {
		warnings = append(warnings, fmt.Errorf("%w: %s=%v, using default", ErrInvalidValue, name, got))
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		invalid("log_level", c.LogLevel)
		c.LogLevel = def.LogLevel
	}
	if c.PoolSize <= 0 {
		warnings = append(warnings, fmt.Errorf("%w: got %d, using %d", ErrInvalidPoolSize, c.PoolSize, def.PoolSize))
		c.PoolSize = def.PoolSize
	}
	if c.Producers < 0 {
		invalid("producers", c.Producers)
		c.Producers = def.Producers
	}
	if _, err := queue.New[int](c.QueueBackend, 1); err != nil {
		invalid("queue_backend", c.QueueBackend)
		c.QueueBackend = def.QueueBackend
	}
	if c.QueueCapacity <= 0 {
		invalid("queue_capacity", c.QueueCapacity)
		c.QueueCapacity = def.QueueCapacity
	}
	if c.IntakeTicker != "" && !slices.Contains(tick.Kinds, c.IntakeTicker) {
		invalid("intake_ticker", c.IntakeTicker)
		c.IntakeTicker = def.IntakeTicker
	}
	if c.TimeScale <= 0 {
		invalid("time_scale", c.TimeScale)
		c.TimeScale = def.TimeScale
	}
	return warnings
}

// ParsePoolSize parses a pool size argument. Only positive base-10 integers
// are accepted.
func ParsePoolSize(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPoolSize, s)
	}
	return n, nil
}

// Scale applies TimeScale to d.
func (c *Config) Scale(d time.Duration) time.Duration {
	return time.Duration(float64(d) * c.TimeScale)
}

// Fields returns the settings as log fields.
func (c *Config) Fields() logrus.Fields {
	return logrus.Fields{
		"logLevel":      c.LogLevel,
		"noColor":       c.NoColor,
		"poolSize":      c.PoolSize,
		"producers":     c.Producers,
		"queueBackend":  c.QueueBackend,
		"queueCapacity": c.QueueCapacity,
		"intakeTicker":  c.IntakeTicker,
		"timeScale":     c.TimeScale,
	}
}

// NewLogger builds the console logger for cfg: stdout, coloured
// "<name>: <msg>" lines, level from cfg.LogLevel.
func NewLogger(cfg *Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	ApplyLogging(logger, cfg)
	return logger
}

// ApplyLogging reconfigures an existing logger, for when flags change the
// settings after the logger was built.
func ApplyLogging(logger *logrus.Logger, cfg *Config) {
	logger.SetFormatter(&console.Formatter{DisableColors: cfg.NoColor})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// Report logs each warning against the main log name.
func Report(logger *logrus.Logger, warnings []error) {
	entry := logger.WithFields(console.Fields(console.DefaultName, console.Red))
	for _, w := range warnings {
		entry.Warn(w.Error())
	}
}
