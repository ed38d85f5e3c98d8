package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"almanac/internal/config"
	"almanac/internal/extract"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var sourceFlag string
	var outFlag string
	var wrapFlag bool
	var noWrapFlag bool
	var noSnapshotFlag bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Mirror, index, and snapshot the game-data sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			if wrapFlag && noWrapFlag {
				return errors.New("--wrap and --no-wrap are mutually exclusive")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err = applyPathOverrides(cfg, sourceFlag, outFlag)
			if err != nil {
				return err
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			opts := extract.Options{
				Config:       cfg,
				SkipSnapshot: noSnapshotFlag,
				Logger:       logger,
			}
			if cmd.Flags().Changed("wrap") {
				opts.Wrap = &wrapFlag
			}
			if noWrapFlag {
				wrap := false
				opts.Wrap = &wrap
			}

			summary, err := extract.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s complete in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
			rows := make([][]string, 0, len(summary.Categories))
			for _, category := range summary.Categories {
				rows = append(rows, []string{category.Name, strconv.Itoa(category.Count)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Category", "Files"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			if summary.SnapshotPath != "" {
				fmt.Fprintf(out, "Snapshot: %s\n", summary.SnapshotPath)
			}
			if len(summary.Warnings) > 0 {
				fmt.Fprintf(out, "Warnings: %d\n", len(summary.Warnings))
				for _, warning := range summary.Warnings {
					fmt.Fprintf(out, "  %s\n", warning)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "source", "", "Override the game-data source root")
	cmd.Flags().StringVar(&outFlag, "out", "", "Override the output root")
	cmd.Flags().BoolVar(&wrapFlag, "wrap", false, "Wrap story text as JSON documents")
	cmd.Flags().BoolVar(&noWrapFlag, "no-wrap", false, "Skip story JSON wrapping even if configured")
	cmd.Flags().BoolVar(&noSnapshotFlag, "no-snapshot", false, "Publish latest/ without writing a dated release")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the run summary as JSON")
	return cmd
}

// applyPathOverrides returns a copy of cfg with flag-supplied roots swapped
// in, so the shared command context config stays untouched.
func applyPathOverrides(cfg *config.Config, source, out string) (*config.Config, error) {
	source = strings.TrimSpace(source)
	out = strings.TrimSpace(out)
	if source == "" && out == "" {
		return cfg, nil
	}

	clone := *cfg
	if source != "" {
		expanded, err := config.ExpandPath(source)
		if err != nil {
			return nil, fmt.Errorf("resolve source root: %w", err)
		}
		clone.Paths.SourceDir = expanded
		clone.Paths.ExcelDir = ""
		clone.Paths.StoryDir = ""
	}
	if out != "" {
		expanded, err := config.ExpandPath(out)
		if err != nil {
			return nil, fmt.Errorf("resolve output root: %w", err)
		}
		clone.Paths.OutDir = expanded
	}
	if err := clone.EnsureDirectories(); err != nil {
		return nil, err
	}
	return &clone, nil
}
