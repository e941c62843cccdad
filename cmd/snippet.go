package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/py3ify/internal/adapter"
	"github.com/mouse-blink/py3ify/internal/domain"
)

const snippetLongDescription = `Convert a single snippet of Python 2 code.

The code is taken from the argument, or from standard input when no argument
is given. With --literal the input is a Python string literal (quotes and
escapes included) that is decoded before conversion. With --json the result
is printed as {"ok": true, "code": ...} or {"ok": false, "error": ...}.`

type snippetOptions struct {
	target  string
	fixers  []string
	literal bool
	json    bool
}

// snippetCmd represents the snippet command.
var snippetCmd = newSnippetCmd()

func newSnippetCmd() *cobra.Command {
	opts := &snippetOptions{}

	cmd := &cobra.Command{
		Use:   "snippet [code]",
		Short: "Convert a single code snippet",
		Long:  snippetLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnippet(cmd, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.target, "target", "t", domain.DefaultTarget, "target language version")
	cmd.Flags().StringSliceVarP(&opts.fixers, "fix", "f", nil, "run only these fixers and their dependencies (can be repeated)")
	cmd.Flags().BoolVar(&opts.literal, "literal", false, "decode the input as a Python string literal first")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")

	return cmd
}

func runSnippet(cmd *cobra.Command, opts *snippetOptions, args []string) error {
	source, err := readSnippet(cmd, args)
	if err != nil {
		return err
	}

	if opts.literal {
		source, err = adapter.DecodeLiteral(source)
		if err != nil {
			return fmt.Errorf("decode literal: %w", err)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("target") {
		cfg.Target = opts.target
	}

	if cmd.Flags().Changed("fix") {
		cfg.Fixers = opts.fixers
	}

	driver, err := newDriver(cfg)
	if err != nil {
		return err
	}

	result := domain.NewConverter(driver).Convert(cmd.Context(), source, cfg.Target)

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	}

	if !result.OK {
		return errors.New(result.Error)
	}

	_, err = io.WriteString(cmd.OutOrStdout(), result.Code)

	return err
}

func readSnippet(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}

	return string(data), nil
}

func init() {
	rootCmd.AddCommand(snippetCmd)
}
