package pipe

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/weedbox/rollingfile"
	"github.com/weedbox/rollingfile/internal/config"
)

const lineBuffer = 256

// Options for Run
type Options struct {
	Config config.Config

	// ConfigPath is watched and reloaded on change when not empty
	ConfigPath string

	// Reload builds the configuration after ConfigPath changes. The default
	// loads the file and overlays ROLLINGFILE_* variables; callers with more
	// layers, like command-line flags, supply their own.
	Reload func() (config.Config, error)

	Input  io.Reader
	Logger logrus.FieldLogger

	// Optional collaborators passed through to the writer
	Fs      afero.Fs
	Statter rollingfile.StatSender
	Clock   func() time.Time
}

// Run writes every line of opts.Input through a rolling writer until the
// input ends or ctx is cancelled. The writer is flushed and closed on return.
//
// On cancellation the input is closed when it implements io.Closer, which
// stops the goroutine reading it. Any other reader keeps that goroutine
// blocked until its next Read returns.
func Run(ctx context.Context, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	log := opts.Logger

	if err := opts.Config.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	cond, err := opts.Config.Condition()
	if err != nil {
		return err
	}

	writerOpts := []rollingfile.Option{rollingfile.WithLogger(log)}
	if opts.Fs != nil {
		writerOpts = append(writerOpts, rollingfile.WithFs(opts.Fs))
	}
	if opts.Statter != nil {
		writerOpts = append(writerOpts, rollingfile.WithStatter(opts.Statter, opts.Config.Statsd.Rate))
	}
	if opts.Clock != nil {
		writerOpts = append(writerOpts, rollingfile.WithClock(opts.Clock))
	}

	w, err := rollingfile.New(opts.Config.WriterConfig(), cond, writerOpts...)
	if err != nil {
		return errors.Wrapf(err, "open rolling writer in %s", opts.Config.Folder)
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.WithError(err).Error("Failed to close rolling writer")
		}
	}()

	log.WithFields(logrus.Fields{
		"folder":    opts.Config.Folder,
		"prefix":    opts.Config.Prefix,
		"frequency": opts.Config.Frequency,
		"max_size":  opts.Config.MaxSize.HumanReadable(),
		"max_files": opts.Config.MaxFiles,
	}).Info("Writing input to rolling files")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan []byte, lineBuffer)
	readErr := make(chan error, 1)
	go readLines(ctx, opts.Input, lines, readErr)

	var reloads <-chan config.Config
	if opts.ConfigPath != "" {
		reload := opts.Reload
		if reload == nil {
			reload = fileReloader(opts.ConfigPath)
		}
		ch, err := watchConfig(ctx, opts.ConfigPath, reload, log)
		if err != nil {
			return err
		}
		reloads = ch
	}

	var flushes <-chan time.Time
	if interval := time.Duration(opts.Config.FlushInterval); interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		flushes = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			if closer, ok := opts.Input.(io.Closer); ok {
				if err := closer.Close(); err != nil {
					log.WithError(err).Warn("Failed to close input")
				}
			}
			drain(w, lines, log)
			return nil

		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			// A failed write is reported and the stream keeps going
			if _, err := w.Write(line); err != nil {
				log.WithError(err).Error("Failed to write line")
			}

		case <-flushes:
			if err := w.Flush(); err != nil {
				log.WithError(err).Warn("Failed to flush rolling writer")
			}

		case cfg := <-reloads:
			if err := cfg.ApplyTo(w.Condition()); err != nil {
				log.WithError(err).Warn("Ignoring invalid config reload")
				continue
			}
			log.WithFields(logrus.Fields{
				"frequency": cfg.Frequency,
				"max_size":  cfg.MaxSize.HumanReadable(),
			}).Info("Reloaded rollover condition")
		}
	}
}

// drain writes the lines already read before shutdown
func drain(w io.Writer, lines <-chan []byte, log logrus.FieldLogger) {
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			if _, err := w.Write(line); err != nil {
				log.WithError(err).Error("Failed to write line")
			}
		default:
			return
		}
	}
}

// readLines sends each line of r, newline included, until EOF or an error.
// The error, nil at EOF, is sent on errc before lines is closed.
func readLines(ctx context.Context, r io.Reader, lines chan<- []byte, errc chan<- error) {
	defer close(lines)

	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			select {
			case lines <- line:
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		if err == io.EOF {
			errc <- nil
			return
		}
		if err != nil {
			errc <- errors.Wrap(err, "read input")
			return
		}
	}
}
