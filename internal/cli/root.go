// Package cli provides the command-line interface for filemerger.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/tickmerge/internal/config"
	"github.com/rickgao/tickmerge/internal/version"
)

// ErrUsage marks invalid command-line input. The usage text has already
// been printed when it is returned.
var ErrUsage = errors.New("invalid usage")

// options holds the raw flag values.
type options struct {
	configPath   string
	workers      int
	memory       config.ByteSize
	directory    string
	pollInterval time.Duration
	warmUp       time.Duration
	logLevel     string
	logFile      string
	once         bool
	statusPort   int
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	return (&options{}).command()
}

// command builds the root command with its flags bound to o.
func (o *options) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filemerger -t JOBS -m MEMORY -d DIRECTORY",
		Short: "Merge per-symbol trade files into one time-ordered file",
		Long: `filemerger repeatedly pairs the trade files in a directory and merges each
pair into a time-ordered intermediate file, using a pool of workers with a
bounded memory allowance each. When a single merged file remains it is renamed
to MultiplexedFile.txt.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.buildConfig(cmd)
			if err != nil {
				return usageError(cmd, err)
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.SetFlagErrorFunc(usageError)

	f := cmd.Flags()
	f.IntVarP(&o.workers, "job", "t", 0, "number of merge workers")
	f.VarP(&o.memory, "memory", "m", "memory allowance per merge, in bytes or with a unit (64MB)")
	f.StringVarP(&o.directory, "directory", "d", "", "directory holding the input files")
	f.StringVar(&o.configPath, "config", "", "optional YAML config file")
	f.DurationVar(&o.pollInterval, "poll-interval", 0, "delay between rounds (default 5s)")
	f.DurationVar(&o.warmUp, "warm-up", 0, "delay before the first round (default 1s)")
	f.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error (default info)")
	f.StringVar(&o.logFile, "log-file", "", "also write JSON logs to this file")
	f.BoolVar(&o.once, "once", false, "exit after the final file is produced")
	f.IntVar(&o.statusPort, "status-port", 0, "serve /health, /metrics and /events on this port")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

// usageError prints err followed by the usage text.
func usageError(cmd *cobra.Command, err error) error {
	cmd.PrintErrln("Error:", err)
	_ = cmd.Usage()
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// buildConfig loads the optional config file and applies flag overrides.
func (o *options) buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("job") {
		cfg.Merge.Workers = o.workers
	}
	if f.Changed("memory") {
		cfg.Merge.MemoryBytes = o.memory
	}
	if f.Changed("directory") {
		cfg.Merge.Directory = o.directory
	}
	if f.Changed("poll-interval") {
		cfg.Merge.PollInterval = o.pollInterval
	}
	if f.Changed("warm-up") {
		cfg.Merge.WarmUp = o.warmUp
	}
	if f.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if f.Changed("log-file") {
		cfg.Logging.File = o.logFile
	}
	if f.Changed("once") {
		cfg.Merge.ExitOnConverge = o.once
	}
	if f.Changed("status-port") {
		cfg.Status.Enabled = o.statusPort > 0
		cfg.Status.Port = o.statusPort
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}
