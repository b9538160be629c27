package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/cactus/go-statsd-client/v5/statsd"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weedbox/rollingfile"
	"github.com/weedbox/rollingfile/internal/config"
	"github.com/weedbox/rollingfile/internal/pipe"
)

const timestampFormat = "2006-01-02T15:04:05.000000Z-0700"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollingfile",
		Short: "Write stdin to rolling files",
		Long: "rollingfile copies standard input into dated files, rolling over on a time boundary\n" +
			"and/or a size limit, pruning old files and keeping a symlink named after the prefix\n" +
			"pointed at the current file.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         run,
	}

	flags := cmd.Flags()
	flags.String("config", os.Getenv("ROLLINGFILE_CONFIG"), "TOML config file, reloaded on change")
	flags.String("folder", "", "Folder for the files (must exist)")
	flags.String("prefix", "", "File name prefix and name of the symlink to the current file")
	flags.String("frequency", "", "Time based rollover: daily|hourly|minutely|none")
	flags.String("max-size", "", "Size based rollover, e.g. 64MB (0 disables)")
	flags.Int("max-files", 0, "Number of dated files to keep")
	flags.String("buffer-size", "", "Write buffer size, e.g. 8KB")
	flags.Duration("flush-interval", 0, "Flush buffered data at this interval (0 disables)")
	flags.String("log-level", "", "Log level: debug|info|warn|error")
	flags.String("log-format", "", "Log format: text|json")
	flags.String("statsd", "", "statsd address for rollover metrics")

	return cmd
}

// loadConfig layers defaults, the config file, ROLLINGFILE_* variables and
// explicitly set flags, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	config.FromEnv(&cfg)

	if flags.Changed("folder") {
		cfg.Folder, _ = flags.GetString("folder")
	}
	if flags.Changed("prefix") {
		cfg.Prefix, _ = flags.GetString("prefix")
	}
	if flags.Changed("frequency") {
		cfg.Frequency, _ = flags.GetString("frequency")
	}
	if flags.Changed("max-size") {
		v, _ := flags.GetString("max-size")
		if err := cfg.MaxSize.UnmarshalText([]byte(v)); err != nil {
			return config.Config{}, "", errors.Wrapf(err, "invalid --max-size %q", v)
		}
	}
	if flags.Changed("max-files") {
		cfg.MaxFiles, _ = flags.GetInt("max-files")
	}
	if flags.Changed("buffer-size") {
		v, _ := flags.GetString("buffer-size")
		var size datasize.ByteSize
		if err := size.UnmarshalText([]byte(v)); err != nil {
			return config.Config{}, "", errors.Wrapf(err, "invalid --buffer-size %q", v)
		}
		cfg.BufferSize = size
	}
	if flags.Changed("flush-interval") {
		d, _ := flags.GetDuration("flush-interval")
		cfg.FlushInterval = config.Duration(d)
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("statsd") {
		cfg.Statsd.Address, _ = flags.GetString("statsd")
	}

	return cfg, path, nil
}

// reloader rebuilds the configuration after the config file changes, with
// the same layering as startup so flags keep overriding the file.
func reloader(cmd *cobra.Command) func() (config.Config, error) {
	return func() (config.Config, error) {
		cfg, _, err := loadConfig(cmd)
		return cfg, err
	}
}

// newLogger builds the command's own logger on stderr.
func newLogger(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.Out = out

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	logger.Level = level

	switch cfg.Format {
	case "json":
		logger.Formatter = &logrus.JSONFormatter{TimestampFormat: timestampFormat}
	case "text", "":
		logger.Formatter = &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat}
	default:
		return nil, errors.Errorf("unknown log format %q; use text|json", cfg.Format)
	}
	return logger, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	input := cmd.InOrStdin()
	if f, ok := input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logger.Warn("Reading from a terminal; end input with Ctrl-D")
	}

	var statter rollingfile.StatSender
	if cfg.Statsd.Address != "" {
		client, err := statsd.NewClientWithConfig(&statsd.ClientConfig{
			Address:       cfg.Statsd.Address,
			Prefix:        cfg.Statsd.Prefix,
			UseBuffered:   true,
			FlushInterval: time.Second,
		})
		if err != nil {
			return errors.Wrap(err, "statsd client")
		}
		defer client.Close()
		statter = client
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return pipe.Run(ctx, pipe.Options{
		Config:     cfg,
		ConfigPath: path,
		Reload:     reloader(cmd),
		Input:      input,
		Logger:     logger,
		Statter:    statter,
	})
}
