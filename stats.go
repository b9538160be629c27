package rollingfile

import (
	"github.com/cactus/go-statsd-client/v5/statsd"
	"github.com/sirupsen/logrus"
)

// Stat names reported through WithStatter
const (
	StatRollovers        = "rollovers"
	StatRolloverFailures = "rollover_failures"
	StatPrunedFiles      = "pruned_files"
	StatPruneFailures    = "prune_failures"
	StatBytesWritten     = "bytes_written"
)

// StatSender is the part of statsd.Statter the writer reports to
type StatSender interface {
	Inc(stat string, value int64, rate float32, tags ...statsd.Tag) error
}

// statsReporter sends counters at a fixed rate and logs reporting failures
// instead of returning them.
type statsReporter struct {
	sender StatSender
	rate   float32
	log    logrus.FieldLogger
}

func (s *statsReporter) incrBy(stat string, value int64) {
	if s == nil || s.sender == nil {
		return
	}
	if err := s.sender.Inc(stat, value, s.rate); err != nil {
		s.log.WithError(err).WithField("stat", stat).Error("Failed to report IncrBy")
	}
}
