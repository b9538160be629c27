package config

import (
	"os"
	"strconv"
	"time"

	"github.com/c2h5oh/datasize"
)

// FromEnv overlays ROLLINGFILE_* environment variables onto cfg. Values
// that fail to parse are ignored.
func FromEnv(cfg *Config) {
	if v := os.Getenv("ROLLINGFILE_FOLDER"); v != "" {
		cfg.Folder = v
	}
	if v := os.Getenv("ROLLINGFILE_PREFIX"); v != "" {
		cfg.Prefix = v
	}
	if v := os.Getenv("ROLLINGFILE_FREQUENCY"); v != "" {
		cfg.Frequency = v
	}
	if v := os.Getenv("ROLLINGFILE_MAX_SIZE"); v != "" {
		var size datasize.ByteSize
		if err := size.UnmarshalText([]byte(v)); err == nil {
			cfg.MaxSize = size
		}
	}
	if v := os.Getenv("ROLLINGFILE_MAX_FILES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFiles = n
		}
	}
	if v := os.Getenv("ROLLINGFILE_BUFFER_SIZE"); v != "" {
		var size datasize.ByteSize
		if err := size.UnmarshalText([]byte(v)); err == nil {
			cfg.BufferSize = size
		}
	}
	if v := os.Getenv("ROLLINGFILE_FLUSH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.FlushInterval = Duration(d)
		}
	}
	if v := os.Getenv("ROLLINGFILE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ROLLINGFILE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("ROLLINGFILE_STATSD_ADDRESS"); v != "" {
		cfg.Statsd.Address = v
	}
	if v := os.Getenv("ROLLINGFILE_STATSD_PREFIX"); v != "" {
		cfg.Statsd.Prefix = v
	}
}
