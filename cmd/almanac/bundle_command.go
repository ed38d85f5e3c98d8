package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"almanac/internal/bundle"
	"almanac/internal/config"
)

func newBundleCommand(ctx *commandContext) *cobra.Command {
	var storyRootFlag string
	var excelRootFlag string
	var outFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Build JSONL knowledge bundles from the published tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			storyRoot := filepath.Join(cfg.LatestDir(), "story_json")
			if strings.TrimSpace(storyRootFlag) != "" {
				if storyRoot, err = config.ExpandPath(storyRootFlag); err != nil {
					return fmt.Errorf("resolve story root: %w", err)
				}
			}
			excelRoot := filepath.Join(cfg.LatestDir(), "excel")
			if strings.TrimSpace(excelRootFlag) != "" {
				if excelRoot, err = config.ExpandPath(excelRootFlag); err != nil {
					return fmt.Errorf("resolve excel root: %w", err)
				}
			}
			outDir := cfg.Bundle.OutDir
			if strings.TrimSpace(outFlag) != "" {
				if outDir, err = config.ExpandPath(outFlag); err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
			}

			summary, err := bundle.Run(bundle.Options{
				StoryRoot:       storyRoot,
				ExcelRoot:       excelRoot,
				OutDir:          outDir,
				BaseURL:         cfg.Bundle.BaseURL,
				SizeMB:          cfg.Bundle.SizeMB,
				ExcelChunkChars: cfg.Bundle.ExcelChunkChars,
				MaxStory:        cfg.Bundle.MaxStory,
				MaxExcel:        cfg.Bundle.MaxExcel,
				Logger:          logger,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d records across %d bundles to %s\n", summary.Records, summary.Bundles, outDir)
			for _, warning := range summary.Warnings {
				fmt.Fprintf(out, "Warning: %s\n", warning)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storyRootFlag, "story-root", "", "Override the wrapped story tree to bundle")
	cmd.Flags().StringVar(&excelRootFlag, "excel-root", "", "Override the table tree to bundle")
	cmd.Flags().StringVar(&outFlag, "out", "", "Override the bundle output directory")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the bundle summary as JSON")
	return cmd
}
