package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mouse-blink/py3ify/internal/config"
	"github.com/mouse-blink/py3ify/internal/domain"
	m "github.com/mouse-blink/py3ify/internal/model"
)

const convertLongDescription = `Convert every Python source under the given paths.

Results are stored in the reports directory and reused on the next run as
long as the file, the target and the fixer set are unchanged. Use --no-cache
to force a fresh conversion.

The command exits with a non-zero status when any file fails to convert.`

type convertOptions struct {
	target    string
	write     bool
	diff      bool
	noCache   bool
	parallel  int
	maxPasses int
	timeout   time.Duration
	fixers    []string
	exclude   []string
}

func addConvertFlags(cmd *cobra.Command, o *convertOptions) {
	cmd.Flags().StringVarP(&o.target, "target", "t", domain.DefaultTarget, "target language version; anything outside 3.x leaves sources unchanged")
	cmd.Flags().BoolVarP(&o.write, "write", "w", false, "rewrite converted files in place")
	cmd.Flags().BoolVarP(&o.diff, "diff", "d", false, "show a unified diff for every converted file")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "ignore stored reports; fresh results are still saved")
	cmd.Flags().IntVarP(&o.parallel, "parallel", "p", 1, "number of parallel workers")
	cmd.Flags().IntVar(&o.maxPasses, "max-passes", 0, "fixed-point pass budget per file (default from config)")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "time limit per file, 0 for none (default from config)")
	cmd.Flags().StringSliceVarP(&o.fixers, "fix", "f", nil, "run only these fixers and their dependencies (can be repeated)")
	cmd.Flags().StringArrayVarP(&o.exclude, "exclude", "x", nil, "exclude files matching a doublestar glob (can be repeated)")
}

// apply overrides cfg with every flag given on the command line.
func (o *convertOptions) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("target") {
		cfg.Target = o.target
	}

	if flags.Changed("parallel") {
		cfg.Parallel = o.parallel
	}

	if flags.Changed("max-passes") {
		cfg.MaxPasses = o.maxPasses
	}

	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}

	if flags.Changed("fix") {
		cfg.Fixers = o.fixers
	}

	cfg.Exclude = append(cfg.Exclude, o.exclude...)
}

// convertCmd represents the convert command.
var convertCmd = newConvertCmd()

func newConvertCmd() *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [paths...]",
		Short: "Convert Python 2 sources to Python 3",
		Long:  convertLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, args)
		},
	}
	addConvertFlags(cmd, opts)

	return cmd
}

func runConvert(cmd *cobra.Command, opts *convertOptions, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts.apply(cmd.Flags(), &cfg)

	wf, err := getWorkflow(cmd, cfg)
	if err != nil {
		return err
	}

	_, err = wf.Convert(cmd.Context(), domain.ConvertArgs{
		Paths:    parsePaths(args),
		Exclude:  cfg.Exclude,
		Target:   cfg.Target,
		Parallel: cfg.Parallel,
		Timeout:  cfg.Timeout,
		Write:    opts.write,
		Diff:     opts.diff,
		UseCache: cfg.Cache.Enabled && !opts.noCache,
		Reports:  m.Path(cfg.ReportsDir()),
	})

	return err
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
