package cmd

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mouse-blink/py3ify/internal/domain/fixers"
	"github.com/mouse-blink/py3ify/internal/fixer"
)

// fixersCmd represents the fixers command.
var fixersCmd = newFixersCmd()

func newFixersCmd() *cobra.Command {
	var patterns bool

	cmd := &cobra.Command{
		Use:   "fixers",
		Short: "List the available fixers in execution order",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := fixers.Default()
			if err != nil {
				return err
			}

			entries, err := registry.Fixers()
			if err != nil {
				return err
			}

			renderFixers(cmd, entries, patterns)

			return nil
		},
	}
	cmd.Flags().BoolVar(&patterns, "patterns", false, "include the match pattern of every fixer")

	return cmd
}

func renderFixers(cmd *cobra.Command, entries []*fixer.Entry, patterns bool) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())

	header := []string{"#", "Fixer", "Priority", "Depends On"}
	if patterns {
		header = append(header, "Pattern")
	}

	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	for i, e := range entries {
		deps := "-"
		if len(e.DependsOn) > 0 {
			deps = strings.Join(e.DependsOn, ", ")
		}

		row := []string{strconv.Itoa(i + 1), e.Name, strconv.Itoa(e.Priority), deps}
		if patterns {
			row = append(row, strings.Join(strings.Fields(e.Pattern), " "))
		}

		table.Append(row)
	}

	table.Render()
}

func init() {
	rootCmd.AddCommand(fixersCmd)
}
