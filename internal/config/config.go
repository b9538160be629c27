package config

import (
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"

	"github.com/weedbox/rollingfile"
)

// FrequencyNone disables the time based trigger
const FrequencyNone = "none"

// Config is the configuration loaded from file/env.
type Config struct {
	Folder        string            `toml:"folder"`
	Prefix        string            `toml:"prefix"`
	Frequency     string            `toml:"frequency"`
	MaxSize       datasize.ByteSize `toml:"max_size"`
	MaxFiles      int               `toml:"max_files"`
	BufferSize    datasize.ByteSize `toml:"buffer_size"`
	FlushInterval Duration          `toml:"flush_interval"`
	Log           LogConfig         `toml:"log"`
	Statsd        StatsdConfig      `toml:"statsd"`
}

// LogConfig configures the command's own logger, not the files it writes.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// StatsdConfig configures optional metrics. An empty Address disables them.
type StatsdConfig struct {
	Address string  `toml:"address"`
	Prefix  string  `toml:"prefix"`
	Rate    float32 `toml:"rate"`
}

// Duration is a time.Duration read from strings like "1s" or "500ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Folder:        "./logs",
		Prefix:        "app.log",
		Frequency:     rollingfile.Daily.String(),
		MaxFiles:      9,
		FlushInterval: Duration(time.Second),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Statsd: StatsdConfig{
			Prefix: "rollingfile",
			Rate:   1,
		},
	}
}

// Load reads configuration from a TOML file on top of the defaults. If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "decode config %s", path)
	}
	return cfg, nil
}

// Validate checks the fields a writer cannot start without.
func (c Config) Validate() error {
	if c.Folder == "" {
		return errors.New("folder must not be empty")
	}
	if c.Prefix == "" {
		return errors.New("prefix must not be empty")
	}
	if strings.ContainsAny(c.Prefix, `/\`) {
		return errors.Errorf("prefix %q must not contain a path separator", c.Prefix)
	}
	if c.MaxFiles < 0 {
		return errors.Errorf("max_files must not be negative, got %d", c.MaxFiles)
	}
	if _, _, err := c.frequency(); err != nil {
		return err
	}
	return nil
}

// frequency parses Frequency; ok is false when the time trigger is disabled.
func (c Config) frequency() (rollingfile.Frequency, bool, error) {
	if c.Frequency == "" || strings.EqualFold(c.Frequency, FrequencyNone) {
		return 0, false, nil
	}
	f, err := rollingfile.ParseFrequency(c.Frequency)
	if err != nil {
		return 0, false, errors.Wrap(err, "frequency")
	}
	return f, true, nil
}

// WriterConfig returns the file layout for rollingfile.New.
func (c Config) WriterConfig() rollingfile.Config {
	return rollingfile.Config{
		Folder:     c.Folder,
		Prefix:     c.Prefix,
		MaxFiles:   c.MaxFiles,
		BufferSize: int(c.BufferSize.Bytes()),
	}
}

// Condition builds a new rollover condition from the configuration.
func (c Config) Condition() (*rollingfile.BasicCondition, error) {
	cond := rollingfile.NewBasicCondition()
	if err := c.ApplyTo(cond); err != nil {
		return nil, err
	}
	return cond, nil
}

// ApplyTo reconfigures an existing condition in place. The condition is left
// untouched when the configuration is invalid.
func (c Config) ApplyTo(cond *rollingfile.BasicCondition) error {
	f, ok, err := c.frequency()
	if err != nil {
		return err
	}

	if ok {
		cond.WithFrequency(f)
	} else {
		cond.WithoutFrequency()
	}

	if c.MaxSize > 0 {
		cond.WithMaxSize(c.MaxSize.Bytes())
	} else {
		cond.WithoutMaxSize()
	}
	return nil
}
