package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"almanac/internal/config"
	"almanac/internal/tablesplit"
)

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var tableFlag string
	var outFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a JSON table into one file per entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			tablePath, err := config.ExpandPath(strings.TrimSpace(tableFlag))
			if err != nil {
				return fmt.Errorf("resolve table path: %w", err)
			}

			outDir := strings.TrimSuffix(tablePath, filepath.Ext(tablePath))
			if strings.TrimSpace(outFlag) != "" {
				if outDir, err = config.ExpandPath(outFlag); err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
			}

			result, err := tablesplit.Run(tablesplit.Options{
				TablePath: tablePath,
				OutDir:    outDir,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Split %s into %d entities under %s\n", result.Category, len(result.Files), outDir)
			for _, warning := range result.Warnings {
				fmt.Fprintf(out, "Warning: %s\n", warning)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tableFlag, "table", "", "Keyed JSON table to split")
	cmd.Flags().StringVar(&outFlag, "out", "", "Destination directory (default: table path minus extension)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the split result as JSON")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}
