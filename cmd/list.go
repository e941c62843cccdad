package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mouse-blink/py3ify/internal/domain"
	m "github.com/mouse-blink/py3ify/internal/model"
)

const listLongDescription = `List the Python sources found under the given paths.

Each file is marked cached when a stored report still matches its content,
the target and the fixer set, or pending when the next convert run has to
process it again.`

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	var target string

	var exclude []string

	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List source files and their cache state",
		Long:  listLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("target") {
				cfg.Target = target
			}

			wf, err := getWorkflow(cmd, cfg)
			if err != nil {
				return err
			}

			return wf.List(domain.ListArgs{
				Paths:   parsePaths(args),
				Exclude: append(cfg.Exclude, exclude...),
				Target:  cfg.Target,
				Reports: m.Path(cfg.ReportsDir()),
			})
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", domain.DefaultTarget, "target language version the cache is checked against")
	cmd.Flags().StringArrayVarP(&exclude, "exclude", "x", nil, "exclude files matching a doublestar glob (can be repeated)")

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
