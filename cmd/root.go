// Package cmd provides the root command and CLI setup for py3ify.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mouse-blink/py3ify/internal/adapter"
	"github.com/mouse-blink/py3ify/internal/config"
	"github.com/mouse-blink/py3ify/internal/controller"
	"github.com/mouse-blink/py3ify/internal/domain"
	"github.com/mouse-blink/py3ify/internal/domain/fixers"
	m "github.com/mouse-blink/py3ify/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore

// workflow is built per command from the loaded config unless a test has
// already put one here.
var workflow domain.Workflow

var logger = zap.NewNop()

var configFlag string
var verboseFlag bool
var reportsOutputDirFlag string

func init() {
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewReportStore()
}

const rootLongDescription = `py3ify rewrites Python 2 sources as Python 3.

Each file is parsed into a lossless syntax tree, the enabled fixers rewrite
the matching nodes, and the tree is printed back. Untouched code keeps its
exact formatting and comments.

Paths may be files or directories. Directories are scanned recursively for
*.py files; use --exclude with doublestar globs to skip some of them.

Without --write the converted code is only reported, never saved.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:          "py3ify [paths...]",
		Short:        "Python 2 to 3 source converter",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger(verboseFlag)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}

			return runConvert(cmd, opts, args)
		},
	}

	cmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default: .py3ify.yaml, .py3ify.yml or .py3ify.toml in the working directory)")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&reportsOutputDirFlag, "reports", "", "reports directory (default: "+config.DefaultReportsDir+")")
	addConvertFlags(cmd, opts)

	return cmd
}

// Execute runs the root command. An interrupt cancels the running batch.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()
	_ = logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

func setupLogger(verbose bool) error {
	l, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	logger = l

	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

	return cfg.Build()
}

// loadConfig reads --config, or the first config file found in the working
// directory, or falls back to the defaults.
func loadConfig() (config.Config, error) {
	path := configFlag
	if path == "" {
		path = config.Discover(".")
	}

	cfg := config.Default()

	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}

		cfg = loaded
		logger.Debug("config loaded", zap.String("path", path))
	}

	if reportsOutputDirFlag != "" {
		cfg.Cache.Dir = reportsOutputDirFlag
	}

	return cfg, nil
}

// newDriver builds the engine for cfg, restricted to cfg.Fixers when set.
func newDriver(cfg config.Config) (*domain.Driver, error) {
	registry, err := fixers.Default()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(registry); err != nil {
		return nil, err
	}

	if len(cfg.Fixers) > 0 {
		registry, err = registry.Select(cfg.Fixers)
		if err != nil {
			return nil, fmt.Errorf("select fixers: %w", err)
		}
	}

	return domain.NewDriver(registry,
		domain.WithMaxPasses(cfg.MaxPasses),
		domain.WithLogger(logger),
		domain.WithLexerOptions(cfg.LexerOptions()...),
	), nil
}

// getWorkflow validates cfg and wires a workflow around its engine.
func getWorkflow(cmd *cobra.Command, cfg config.Config) (domain.Workflow, error) {
	driver, err := newDriver(cfg)
	if err != nil {
		return nil, err
	}

	if workflow != nil {
		return workflow, nil
	}

	ui := controller.NewUI(cmd, controller.IsTTY(cmd.OutOrStdout()))

	return domain.NewWorkflow(fsAdapter, reportStore, ui, driver, domain.WithWorkflowLogger(logger)), nil
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
