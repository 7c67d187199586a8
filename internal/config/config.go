// Package config loads server settings from .env files, the environment and
// an optional JSON file of orientation table overrides.
//
// Environment variables (all optional):
//
//	SCAN_HIGHLIGHTS_RESIZE_MODE     cover | contain | stretch (default cover)
//	SCAN_HIGHLIGHTS_PLATFORM        ios | android (default android)
//	SCAN_HIGHLIGHTS_FUZZY_DISTANCE  tap tolerance in display units (default 15)
//	SCAN_HIGHLIGHTS_FRAME_RATE      expected camera fps, informational (default 30)
//	SCAN_HIGHLIGHTS_AXIS_TABLE      path to a JSON table override file
//	SCAN_HIGHLIGHTS_LOG_LEVEL       debug | info | warn | error (default info)
//	SCAN_HIGHLIGHTS_FEED_URL        websocket URL of a detector to read frames from
//	SCAN_HIGHLIGHTS_LISTEN          address to accept detector websockets on
package config

import (
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/ironsheep/scan-highlights/internal/hittest"
	"github.com/ironsheep/scan-highlights/internal/logging"
	"github.com/ironsheep/scan-highlights/internal/transform"
)

// Environment variable names.
const (
	EnvResizeMode    = "SCAN_HIGHLIGHTS_RESIZE_MODE"
	EnvPlatform      = "SCAN_HIGHLIGHTS_PLATFORM"
	EnvFuzzyDistance = "SCAN_HIGHLIGHTS_FUZZY_DISTANCE"
	EnvFrameRate     = "SCAN_HIGHLIGHTS_FRAME_RATE"
	EnvAxisTable     = "SCAN_HIGHLIGHTS_AXIS_TABLE"
	EnvLogLevel      = "SCAN_HIGHLIGHTS_LOG_LEVEL"
	EnvFeedURL       = "SCAN_HIGHLIGHTS_FEED_URL"
	EnvListen        = "SCAN_HIGHLIGHTS_LISTEN"
)

// DefaultFrameRate is the assumed camera rate.
const DefaultFrameRate = 30.0

// Config holds the resolved settings.
type Config struct {
	ResizeMode    transform.ResizeMode
	Platform      transform.Platform
	FuzzyDistance float64
	FrameRateHint float64
	AxisTablePath string
	LogLevel      string
	FeedURL       string
	ListenAddr    string

	// Tables start as the built-in defaults; LoadTables merges overrides.
	AxisTable   transform.AxisTable
	LayoutTable transform.LayoutTable
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ResizeMode:    transform.DefaultResizeMode,
		Platform:      transform.DefaultPlatform,
		FuzzyDistance: hittest.DefaultFuzzyDistance,
		FrameRateHint: DefaultFrameRate,
		LogLevel:      "info",
		AxisTable:     transform.DefaultAxisTable(),
		LayoutTable:   transform.DefaultLayoutTable(),
	}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads envFiles (missing files are ignored) into the process
// environment, then builds the config from it. Variables already set in the
// environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return nil, errors.Wrapf(err, "load %s", path)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a config from the defaults overlaid with environment values
// and validates it. Every problem found is reported, not just the first.
func FromEnv(lookup LookupFunc) (*Config, error) {
	cfg := Default()
	var errs error

	if v, ok := lookup(EnvResizeMode); ok {
		mode, err := transform.ParseResizeMode(v)
		errs = multierr.Append(errs, errors.Wrap(err, EnvResizeMode))
		cfg.ResizeMode = mode
	}
	if v, ok := lookup(EnvPlatform); ok {
		p, err := transform.ParsePlatform(v)
		errs = multierr.Append(errs, errors.Wrap(err, EnvPlatform))
		cfg.Platform = p
	}
	if v, ok := lookup(EnvFuzzyDistance); ok {
		f, err := strconv.ParseFloat(v, 64)
		errs = multierr.Append(errs, errors.Wrap(err, EnvFuzzyDistance))
		cfg.FuzzyDistance = f
	}
	if v, ok := lookup(EnvFrameRate); ok {
		f, err := strconv.ParseFloat(v, 64)
		errs = multierr.Append(errs, errors.Wrap(err, EnvFrameRate))
		cfg.FrameRateHint = f
	}
	if v, ok := lookup(EnvAxisTable); ok {
		cfg.AxisTablePath = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvFeedURL); ok {
		cfg.FeedURL = v
	}
	if v, ok := lookup(EnvListen); ok {
		cfg.ListenAddr = v
	}

	if errs != nil {
		return nil, errs
	}
	if err := cfg.LoadTables(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings and reports every problem found.
func (c *Config) Validate() error {
	var errs error
	if _, err := transform.ParseResizeMode(string(c.ResizeMode)); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := transform.ParsePlatform(string(c.Platform)); err != nil {
		errs = multierr.Append(errs, err)
	}
	if math.IsNaN(c.FuzzyDistance) || c.FuzzyDistance < 0 {
		errs = multierr.Append(errs, errors.Errorf("fuzzy distance must be >= 0, got %g", c.FuzzyDistance))
	}
	if math.IsNaN(c.FrameRateHint) || c.FrameRateHint < 0 {
		errs = multierr.Append(errs, errors.Errorf("frame rate must be >= 0, got %g", c.FrameRateHint))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// LoadTables merges the override file at AxisTablePath, if any, into the
// tables.
func (c *Config) LoadTables() error {
	if c.AxisTablePath == "" {
		return nil
	}
	data, err := os.ReadFile(c.AxisTablePath)
	if err != nil {
		return errors.Wrap(err, "read axis table")
	}
	axis, layout, err := ParseTables(data, c.AxisTable, c.LayoutTable)
	if err != nil {
		return errors.Wrapf(err, "parse %s", c.AxisTablePath)
	}
	c.AxisTable, c.LayoutTable = axis, layout
	return nil
}
