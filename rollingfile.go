// Package rollingfile provides a file writer that rolls over to a new file
// when a date/time boundary or size limit is reached.
//
// Files written for folder "log" and prefix "app.log" look like:
//
//	log/app.log                   symlink to the file currently being written
//	log/app.log.20240520.010101   dated files, oldest pruned past MaxFiles
package rollingfile

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFrequency is returned when a frequency name cannot be parsed
var ErrInvalidFrequency = errors.New("invalid rollover frequency")

// Condition decides whether the current file should be rolled over before
// the next write.
type Condition interface {
	// ShouldRollover is called once per write with the write timestamp and the
	// size of the current file. Implementations may keep state between calls.
	ShouldRollover(now time.Time, size uint64) bool
}

// ConditionFunc adapts a plain function to the Condition interface
type ConditionFunc func(now time.Time, size uint64) bool

// ShouldRollover calls f(now, size)
func (f ConditionFunc) ShouldRollover(now time.Time, size uint64) bool {
	return f(now, size)
}

// Frequency is how often a time based rollover happens
type Frequency int

const (
	// Daily rolls over when the local date changes
	Daily Frequency = iota + 1

	// Hourly rolls over when the local date or hour changes
	Hourly

	// Minutely rolls over when the local date, hour or minute changes
	Minutely
)

// Bucket truncates t to the start of the day, hour or minute containing it,
// in local time. Two timestamps belong in the same file when their buckets
// are equal.
func (f Frequency) Bucket(t time.Time) time.Time {
	t = t.Local()
	switch f {
	case Daily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	case Hourly:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.Local)
	case Minutely:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.Local)
	default:
		return t
	}
}

func (f Frequency) String() string {
	switch f {
	case Daily:
		return "daily"
	case Hourly:
		return "hourly"
	case Minutely:
		return "minutely"
	default:
		return fmt.Sprintf("Frequency(%d)", int(f))
	}
}

// ParseFrequency parses "daily", "hourly" or "minutely" (case insensitive)
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return Daily, nil
	case "hourly", "hour":
		return Hourly, nil
	case "minutely", "minute":
		return Minutely, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *Frequency) UnmarshalText(text []byte) error {
	parsed, err := ParseFrequency(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (f Frequency) MarshalText() ([]byte, error) {
	switch f {
	case Daily, Hourly, Minutely:
		return []byte(f.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidFrequency, int(f))
}
