package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/busy/internal/version"
	"github.com/arthur-debert/busy/pkg/config"
	"github.com/arthur-debert/busy/pkg/errors"
	"github.com/arthur-debert/busy/pkg/logging"
	"github.com/arthur-debert/busy/pkg/runner"
	"github.com/arthur-debert/busy/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// rootOptions is shared by every subcommand
type rootOptions struct {
	verbosity  int
	configPath string
	format     string

	cfg *config.Config
}

// outputFormat resolves --format over output.format
func (o *rootOptions) outputFormat(cmd *cobra.Command) (ui.Format, error) {
	name := o.cfg.Output.Format
	if cmd.Flags().Changed("format") {
		name = o.format
	}
	return ui.ParseFormat(name)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "busy",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			verbosity := opts.verbosity
			if verbosity == 0 {
				verbosity = cfg.Log.Verbosity
			}
			logging.SetupLoggerWithOutput(verbosity, cmd.ErrOrStderr())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, "no command specified")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "auto", MsgFlagFormat)

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		parallel    int
		failFast    bool
		withMetrics bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "run JOB...",
		Short: MsgRunShort,
		Long:  MsgRunLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *opts.cfg
			if cmd.Flags().Changed("parallel") {
				cfg.Run.MaxParallel = parallel
			}
			if cmd.Flags().Changed("fail-fast") {
				cfg.Run.FailFast = failFast
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Metrics.Enabled = withMetrics
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Metrics.Addr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			format, err := opts.outputFormat(cmd)
			if err != nil {
				return err
			}

			jobs, err := runner.ParseJobs(args)
			if err != nil {
				return err
			}

			return runJobs(cmd, &cfg, format, jobs)
		},
	}

	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, MsgFlagParallel)
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, MsgFlagFailFast)
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, MsgFlagMetrics)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", MsgFlagMetricsAddr)

	return cmd
}

func runJobs(cmd *cobra.Command, cfg *config.Config, format ui.Format, jobs []runner.Job) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	serveCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	serveErr, err := a.start(serveCtx)
	if err != nil {
		return err
	}

	r := runner.New(a.reg, runner.Options{
		MaxParallel: cfg.Run.MaxParallel,
		FailFast:    cfg.Run.FailFast,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	})
	results, runErr := r.Run(ctx, jobs)

	stopServer()
	if err := <-serveErr; err != nil {
		log.Warn().Err(err).Msg("Metrics server stopped with an error")
	}

	rows := make([]ui.SummaryRow, 0, len(results))
	for _, res := range results {
		row := ui.SummaryRow{
			Name:     res.Job.Name,
			Command:  res.Job.String(),
			Duration: res.Duration,
		}
		if res.Err != nil {
			row.Error = errors.Reason(res.Err)
		}
		rows = append(rows, row)
	}
	if err := ui.RenderSummary(cmd.OutOrStdout(), rows, format); err != nil {
		return err
	}

	return runErr
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Encode(opts.cfg, encoding)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&encoding, "output", "o", "toml", MsgFlagEncoding)
	return cmd
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: MsgStatusShort,
		Long:  MsgStatusLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = opts.cfg.Metrics.Addr
			}
			format, err := opts.outputFormat(cmd)
			if err != nil {
				return err
			}

			status, err := fetchStatus(cmdContext(cmd), addr)
			if err != nil {
				return err
			}
			return ui.RenderStatus(cmd.OutOrStdout(), status, format)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", MsgFlagStatusAddr)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		// logging and config are not needed to print the version
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
