package rollingfile

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	// DefaultBufferSize is the write buffer size used when Config.BufferSize is 0
	DefaultBufferSize = 8 * 1024

	// timestampLayout is the suffix appended to the prefix of every dated file
	timestampLayout = "20060102.150405"
)

// ErrWriterMissing is returned when a write finds no open file after the
// open step. It indicates a bug, not an environmental failure.
var ErrWriterMissing = errors.New("unexpected condition: writer is missing")

// Config contains the file layout of a Writer
type Config struct {
	// Folder holding the files. It must already exist.
	Folder string

	// Prefix of every file name. The symlink to the current file is named
	// exactly Prefix.
	Prefix string

	// MaxFiles is how many dated files are kept after a rollover
	MaxFiles int

	// BufferSize of the write buffer (default: DefaultBufferSize)
	BufferSize int
}

type options struct {
	fs     afero.Fs
	logger logrus.FieldLogger
	clock  func() time.Time
	sender StatSender
	rate   float32
}

// Option configures the collaborators of a Writer
type Option func(*options)

// WithFs performs all file operations on fs instead of the OS filesystem.
// The symlink to the current file is only maintained when fs implements
// afero.Symlinker.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithLogger sets the logger used for rollover and retention warnings.
// The default logs to stderr.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the time source used by Write and by New for the first file
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithStatter reports rollover, retention and byte counters to sender
func WithStatter(sender StatSender, rate float32) Option {
	return func(o *options) {
		o.sender = sender
		o.rate = rate
	}
}

// Writer writes to a dated file and rolls over to a new one whenever its
// Condition asks for it. A Writer is not safe for concurrent use.
type Writer[C Condition] struct {
	config    Config
	condition C

	fs    afero.Fs
	log   logrus.FieldLogger
	clock func() time.Time
	stats *statsReporter

	// Size in bytes of the open file
	size uint64

	// Open file, nil when none is open
	file   afero.File
	writer *fileBuffer
	path   string
}

// BasicWriter is a Writer driven by a BasicCondition
type BasicWriter = Writer[*BasicCondition]

// New creates a Writer and opens its first file. The folder must already
// exist; the error from opening the first file is returned unchanged.
func New[C Condition](config Config, condition C, opts ...Option) (*Writer[C], error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	if o.logger == nil {
		// logrus.New writes to stderr; never into the files this writer owns
		o.logger = logrus.New()
	}
	if o.clock == nil {
		o.clock = time.Now
	}

	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBufferSize
	}
	if config.MaxFiles < 0 {
		config.MaxFiles = 0
	}

	log := o.logger.WithFields(logrus.Fields{
		"folder": config.Folder,
		"prefix": config.Prefix,
	})

	w := &Writer[C]{
		config:    config,
		condition: condition,
		fs:        o.fs,
		log:       log,
		clock:     o.clock,
		stats: &statsReporter{
			sender: o.sender,
			rate:   o.rate,
			log:    log,
		},
	}

	// Fail if we can't open the first file
	if err := w.openIfNeeded(w.clock()); err != nil {
		return nil, err
	}

	return w, nil
}

// Condition returns the rollover condition owned by the writer. With a
// pointer condition the result can be reconfigured between writes.
func (w *Writer[C]) Condition() C {
	return w.condition
}

// Folder returns the folder the writer writes to
func (w *Writer[C]) Folder() string {
	return w.config.Folder
}

// Prefix returns the file name prefix
func (w *Writer[C]) Prefix() string {
	return w.config.Prefix
}

// Size returns the number of bytes in the open file
func (w *Writer[C]) Size() uint64 {
	return w.size
}

// CurrentFile returns the path of the open file, or "" when none is open
func (w *Writer[C]) CurrentFile() string {
	if w.file == nil {
		return ""
	}
	return w.path
}

// Write writes p at the current time of the writer's clock
func (w *Writer[C]) Write(p []byte) (int, error) {
	return w.WriteWithTime(p, w.clock())
}

// WriteWithTime writes p using now to evaluate the rollover condition and
// to name a new file. A failed rollover is logged and the write still goes
// to whatever file is open.
func (w *Writer[C]) WriteWithTime(p []byte, now time.Time) (int, error) {
	if w.condition.ShouldRollover(now, w.size) {
		if err := w.Rollover(now); err != nil {
			w.stats.incrBy(StatRolloverFailures, 1)
			w.log.WithError(err).Warn("Failed to roll over file")
		}
	}

	if err := w.openIfNeeded(now); err != nil {
		return 0, err
	}

	if w.writer == nil {
		return 0, ErrWriterMissing
	}

	// A straight-through write can fail part way; count what was taken
	n, err := w.writer.Write(p)
	if n > 0 {
		w.size = saturatingAdd(w.size, uint64(n))
		w.stats.incrBy(StatBytesWritten, int64(n))
	}
	return n, err
}

// Rollover flushes and closes the current file, then opens the file for
// now. A flush failure aborts the rollover and leaves the current file open
// with the unwritten bytes still buffered; the next write retries them.
func (w *Writer[C]) Rollover(now time.Time) error {
	// Everything must be flushed before the file is closed
	if err := w.Flush(); err != nil {
		return err
	}

	w.closeFile()
	w.size = 0

	if err := w.openIfNeeded(now); err != nil {
		return err
	}

	w.stats.incrBy(StatRollovers, 1)
	return nil
}

// Flush writes buffered data to the open file. It does nothing when no file
// is open.
func (w *Writer[C]) Flush() error {
	if w.writer == nil {
		return nil
	}
	return w.writer.Flush()
}

// Sync flushes buffered data and commits the open file to stable storage
func (w *Writer[C]) Sync() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

// Close flushes and closes the open file. A later write opens a file again.
// Bytes that could not be flushed are dropped with the handle.
func (w *Writer[C]) Close() error {
	if w.file == nil {
		return nil
	}

	flushErr := w.writer.Flush()
	closeErr := w.file.Close()
	w.file = nil
	w.writer = nil
	w.path = ""

	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// closeFile drops the handle of the current file. The file itself stays.
func (w *Writer[C]) closeFile() {
	if w.file == nil {
		return
	}
	if err := w.file.Close(); err != nil {
		w.log.WithError(err).WithField("file", w.path).Warn("Failed to close file")
	}
	w.file = nil
	w.writer = nil
	w.path = ""
}

// fileName generates the dated file name for now
func (w *Writer[C]) fileName(now time.Time) string {
	return fmt.Sprintf("%s.%s", w.config.Prefix, now.Local().Format(timestampLayout))
}

// openIfNeeded opens the file for now unless one is already open. An
// existing file of the same name is appended to and its size is kept.
func (w *Writer[C]) openIfNeeded(now time.Time) error {
	if w.file != nil {
		return nil
	}

	name := w.fileName(now)
	fullPath := filepath.Join(w.config.Folder, name)

	file, err := w.fs.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	w.file = file
	w.writer = newFileBuffer(file, w.config.BufferSize)
	w.path = fullPath

	w.updatePointer(name)

	w.size = 0
	if info, err := file.Stat(); err == nil && info.Size() > 0 {
		w.size = uint64(info.Size())
	}

	w.prune(name)
	return nil
}

func saturatingAdd(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return math.MaxUint64
}
