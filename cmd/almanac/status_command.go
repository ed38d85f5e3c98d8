package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"almanac/internal/index"
	"almanac/internal/preflight"
	"almanac/internal/snapshot"
)

type statusReport struct {
	GeneratedAt string             `json:"generated_at,omitempty"`
	Categories  map[string]int     `json:"categories,omitempty"`
	Snapshots   []string           `json:"snapshots"`
	Preflight   []preflight.Result `json:"preflight"`
	Published   bool               `json:"published"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the published tree, snapshots, and source health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			report := statusReport{
				Categories: map[string]int{},
				Snapshots:  []string{},
			}

			root, err := index.ReadRoot(cfg.LatestDir())
			switch {
			case err == nil:
				report.Published = true
				report.GeneratedAt = root.GeneratedAt
				for name, ref := range root.Categories {
					report.Categories[name] = ref.Count
				}
			case os.IsNotExist(err):
				// Nothing published yet.
			default:
				return fmt.Errorf("read root index: %w", err)
			}

			snapshots, err := snapshot.List(cfg.ReleaseDir())
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}
			if snapshots != nil {
				report.Snapshots = snapshots
			}

			report.Preflight = preflight.RunAll(cfg)

			if jsonOutput {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Published tree", colorize) {
				fmt.Fprintln(out, line)
			}
			if report.Published {
				fmt.Fprintf(out, "Generated at: %s\n", report.GeneratedAt)
				names := make([]string, 0, len(report.Categories))
				for name := range report.Categories {
					names = append(names, name)
				}
				sort.Strings(names)
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					rows = append(rows, []string{name, strconv.Itoa(report.Categories[name])})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Category", "Files"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
			} else {
				fmt.Fprintln(out, "No published tree yet; run `almanac extract`")
			}

			for _, line := range renderSectionHeader("Snapshots", colorize) {
				fmt.Fprintln(out, line)
			}
			if len(report.Snapshots) == 0 {
				fmt.Fprintln(out, "No snapshots")
			} else {
				for _, date := range report.Snapshots {
					fmt.Fprintf(out, "  %s\n", date)
				}
			}

			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, check := range report.Preflight {
				kind := statusOK
				if !check.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the status report as JSON")
	return cmd
}
