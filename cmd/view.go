package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mouse-blink/py3ify/internal/domain"
	m "github.com/mouse-blink/py3ify/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View previously generated conversion reports",
		Long:  "View previously generated conversion reports from a reports directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			wf, err := getWorkflow(cmd, cfg)
			if err != nil {
				return err
			}

			return wf.View(domain.ViewArgs{Reports: m.Path(cfg.Cache.Dir)})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
