package utils

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Limits on user-chosen settings. These are front end policy; the grid itself accepts any positive size.
const (
	MinSize         = 1
	MaxSize         = 24
	MinAdvanceSteps = 1
	MaxAdvanceSteps = 10
	MinInterval     = 50 * time.Millisecond
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the configuration for the game
type Config struct {
	Size           int           `json:"size"`
	AdvanceSteps   int           `json:"advance_steps"`
	Interval       time.Duration `json:"interval"`
	UseParallel    bool          `json:"use_parallel"`
	Workers        int           `json:"workers"`
	MaxGenerations int           `json:"max_generations"`
	Pattern        string        `json:"pattern"`
	RandomDensity  float64       `json:"random_density"`
	Seed           int64         `json:"seed"`
	Headless       bool          `json:"headless"`
	LogFile        string        `json:"log_file"`
	LogLevel       string        `json:"log_level"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Size:           12,
		AdvanceSteps:   1,
		Interval:       500 * time.Millisecond,
		UseParallel:    false,
		Workers:        0, // one per CPU
		MaxGenerations: 0, // unlimited
		Pattern:        "",
		RandomDensity:  0.25,
		Seed:           1,
		Headless:       false,
		LogFile:        "",
		LogLevel:       "info",
	}
}

// LoadConfig loads configuration from JSON file
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	return config, nil
}

// UnmarshalJSON reads interval as a duration string such as "250ms", or as a number of milliseconds
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	aux := struct {
		*plain
		Interval json.RawMessage `json:"interval"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Interval) == 0 || string(aux.Interval) == "null" {
		return nil
	}

	interval, err := parseInterval(aux.Interval)
	if err != nil {
		return err
	}
	c.Interval = interval
	return nil
}

// MarshalJSON writes interval as a duration string
func (c Config) MarshalJSON() ([]byte, error) {
	type plain Config
	return json.Marshal(struct {
		plain
		Interval string `json:"interval"`
	}{plain: plain(c), Interval: c.Interval.String()})
}

func parseInterval(raw json.RawMessage) (time.Duration, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		d, err := time.ParseDuration(text)
		return d, errors.Wrapf(err, "[parseInterval] interval %q", text)
	}

	var millis float64
	if err := json.Unmarshal(raw, &millis); err != nil {
		return 0, errors.Wrapf(err, "[parseInterval] interval %s is neither a duration nor milliseconds", raw)
	}
	return time.Duration(millis * float64(time.Millisecond)), nil
}

// Bind registers command line overrides for every field, using the current values as defaults
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Size, "size", c.Size, "grid size (rows and columns)")
	fs.IntVar(&c.AdvanceSteps, "advance", c.AdvanceSteps, "generations computed by one advance")
	fs.DurationVar(&c.Interval, "interval", c.Interval, "delay between generations during continuous play, e.g. 250ms")
	fs.BoolVar(&c.UseParallel, "parallel", c.UseParallel, "compute generations with a worker per row band")
	fs.IntVar(&c.Workers, "workers", c.Workers, "parallel workers, 0 for one per CPU")
	fs.IntVar(&c.MaxGenerations, "generations", c.MaxGenerations, "stop headless play after this many generations, 0 for no limit")
	fs.StringVar(&c.Pattern, "pattern", c.Pattern, "initial pattern: glider, blinker, toad, random or empty")
	fs.Float64Var(&c.RandomDensity, "density", c.RandomDensity, "share of live cells for the random pattern")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for the random pattern")
	fs.BoolVar(&c.Headless, "headless", c.Headless, "print generations instead of running the interactive terminal")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "write logs to this file")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn or error")
}

// Validate checks the settings a user can change against the front end limits
func (c Config) Validate() error {
	switch {
	case c.Size < MinSize || c.Size > MaxSize:
		return errors.Wrapf(ErrInvalidConfig, "size %d outside [%d, %d]", c.Size, MinSize, MaxSize)
	case c.AdvanceSteps < MinAdvanceSteps || c.AdvanceSteps > MaxAdvanceSteps:
		return errors.Wrapf(ErrInvalidConfig, "advance steps %d outside [%d, %d]", c.AdvanceSteps, MinAdvanceSteps, MaxAdvanceSteps)
	case c.Interval < MinInterval:
		return errors.Wrapf(ErrInvalidConfig, "interval %s below %s", c.Interval, MinInterval)
	case c.Workers < 0:
		return errors.Wrapf(ErrInvalidConfig, "workers %d is negative", c.Workers)
	case c.MaxGenerations < 0:
		return errors.Wrapf(ErrInvalidConfig, "max generations %d is negative", c.MaxGenerations)
	case c.RandomDensity < 0 || c.RandomDensity > 1:
		return errors.Wrapf(ErrInvalidConfig, "random density %v outside [0, 1]", c.RandomDensity)
	}
	return nil
}
