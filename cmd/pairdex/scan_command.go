package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"pairdex/internal/scanner"
)

type scanFailureView struct {
	Path     string `json:"path"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error"`
}

type scanSummaryView struct {
	RunID        string            `json:"run_id,omitempty"`
	Root         string            `json:"root"`
	Directories  int               `json:"directories"`
	Failed       int               `json:"failed"`
	Partial      int               `json:"partial"`
	Contents     int               `json:"contents"`
	Matched      int               `json:"matched"`
	Unmatched    int               `json:"unmatched"`
	OtherImages  int               `json:"other_images"`
	MethodCounts map[string]int    `json:"method_counts"`
	DurationMS   int64             `json:"duration_ms"`
	Failures     []scanFailureView `json:"failures"`
}

func summaryView(summary scanner.Summary) scanSummaryView {
	view := scanSummaryView{
		RunID:        summary.RunID,
		Root:         summary.Root,
		Directories:  summary.Directories,
		Failed:       summary.Failed,
		Partial:      summary.Partial,
		Contents:     summary.Contents,
		Matched:      summary.Matched,
		Unmatched:    summary.Unmatched,
		OtherImages:  summary.OtherImages,
		MethodCounts: methodNames(summary.MethodCounts),
		DurationMS:   summary.Duration.Milliseconds(),
		Failures:     make([]scanFailureView, 0, len(summary.Failures)),
	}
	for _, f := range summary.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		view.Failures = append(view.Failures, scanFailureView{Path: f.Path, Attempts: f.Attempts, Error: msg})
	}
	return view
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Pair and index every directory under a tree",
		Long: `Walk the tree rooted at dir (default: paths.work_dir or the current
directory), pair content files with preview images in every directory, and
write each directory's index file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			root, err := cfg.ScanRoot(arg)
			if err != nil {
				return fmt.Errorf("resolve scan root: %w", err)
			}

			cat := ctx.openCatalog()
			if cat != nil {
				defer cat.Close()
			}
			s, err := ctx.newScanner(cat)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(commandContextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, scanErr := s.Scan(runCtx, root)
			if scanErr != nil && summary.Root == "" {
				return scanErr
			}
			if jsonOutput {
				if err := writeJSON(cmd, summaryView(summary)); err != nil {
					return err
				}
			} else {
				printScanSummary(cmd.OutOrStdout(), summary)
			}
			if scanErr != nil {
				return fmt.Errorf("scan interrupted: %w", scanErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the batch summary as JSON")
	return cmd
}

func commandContextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printScanSummary(out io.Writer, summary scanner.Summary) {
	color := shouldColorize(out)
	for _, line := range renderSectionHeader("Scan "+summary.Root, color) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderKeyValues([][2]string{
		{"Directories indexed", fmt.Sprintf("%d", summary.Directories)},
		{"Directories failed", fmt.Sprintf("%d", summary.Failed)},
		{"Partial listings", fmt.Sprintf("%d", summary.Partial)},
		{"Content files", fmt.Sprintf("%d", summary.Contents)},
		{"Matched", fmt.Sprintf("%d", summary.Matched)},
		{"Without preview", fmt.Sprintf("%d", summary.Unmatched)},
		{"Other images", fmt.Sprintf("%d", summary.OtherImages)},
		{"Duration", summary.Duration.Round(1e6).String()},
	}))

	if rows := methodRows(methodNames(summary.MethodCounts)); len(rows) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"Method", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
	}

	if len(summary.Failures) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, colorize("Failed directories:", ansiRed, color))
		for _, f := range summary.Failures {
			msg := "unknown error"
			if f.Err != nil {
				msg = strings.TrimSpace(f.Err.Error())
			}
			fmt.Fprintf(out, "  %s: %s\n", f.Path, msg)
		}
	}
}
