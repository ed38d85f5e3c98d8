package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"almanac/internal/config"
	"almanac/internal/imagescan"
)

func newScanImagesCommand(ctx *commandContext) *cobra.Command {
	var imagesFlag string
	var manifestFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scan-images",
		Short: "Update the image manifest from the image directory",
		Long: "Scans the image directory, groups files by inferred subject, and merges\n" +
			"the result into the manifest. Hand-curated tags and entries are never\n" +
			"removed; the merge only adds.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			imagesDir := cfg.Images.Dir
			if strings.TrimSpace(imagesFlag) != "" {
				if imagesDir, err = config.ExpandPath(imagesFlag); err != nil {
					return fmt.Errorf("resolve image directory: %w", err)
				}
			}
			manifestPath := cfg.Images.Manifest
			if strings.TrimSpace(manifestFlag) != "" {
				if manifestPath, err = config.ExpandPath(manifestFlag); err != nil {
					return fmt.Errorf("resolve manifest path: %w", err)
				}
			}

			existing, err := imagescan.Load(manifestPath)
			if err != nil {
				return fmt.Errorf("load manifest: %w", err)
			}

			result, err := imagescan.Scan(imagescan.Options{
				Dir:        imagesDir,
				Extensions: cfg.Images.Extensions,
				TagTokens:  cfg.Images.TagTokens,
				Logger:     logger,
			})
			if err != nil {
				return fmt.Errorf("scan images: %w", err)
			}

			merged := imagescan.Merge(existing, result.Manifest)
			if err := imagescan.Write(manifestPath, merged); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}

			if jsonOutput {
				return writeJSON(cmd, struct {
					Manifest string   `json:"manifest"`
					Subjects int      `json:"subjects"`
					Scanned  int      `json:"scanned"`
					Warnings []string `json:"warnings,omitempty"`
				}{manifestPath, len(merged), len(result.Manifest), result.Warnings})
			}

			rows := make([][]string, 0, len(merged))
			slugs := make([]string, 0, len(merged))
			for slug := range merged {
				slugs = append(slugs, slug)
			}
			sort.Strings(slugs)
			for _, slug := range slugs {
				entry := merged[slug]
				rows = append(rows, []string{
					slug,
					strconv.Itoa(len(entry.Files)),
					strings.Join(entry.Tags, ", "),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Subject", "Files", "Tags"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "Wrote %d subjects to %s\n", len(merged), manifestPath)
			for _, warning := range result.Warnings {
				fmt.Fprintf(out, "Warning: %s\n", warning)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&imagesFlag, "images", "", "Override the image directory")
	cmd.Flags().StringVar(&manifestFlag, "manifest", "", "Override the manifest path")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the scan summary as JSON")
	return cmd
}
