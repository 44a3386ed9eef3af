package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pairdex/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOutput  bool
		fromCatalog bool
		showAll     bool
	)

	cmd := &cobra.Command{
		Use:   "report [dir]",
		Short: "Summarize pairing effectiveness across a tree",
		Long: `Read every index file under dir and compare classic matches with externally
recorded AI matches. With --catalog the report is built from the scan catalog
instead of the index files; AI matches are then unavailable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			root, err := cfg.ScanRoot(arg)
			if err != nil {
				return fmt.Errorf("resolve report root: %w", err)
			}

			var rep report.Report
			if fromCatalog {
				cat := ctx.openCatalog()
				if cat == nil {
					return errors.New("scan catalog unavailable")
				}
				defer cat.Close()
				dirs, err := cat.Directories(commandContextOrBackground(cmd), root)
				if err != nil {
					return fmt.Errorf("read catalog: %w", err)
				}
				rep = report.FromCatalog(root, dirs)
			} else {
				rep, err = report.Analyze(root, cfg.Scan.IndexFilename, logger)
				if err != nil {
					return err
				}
			}
			if rep.Total.FoldersAnalyzed == 0 {
				return fmt.Errorf("%w under %s", report.ErrNoRecords, root)
			}

			if jsonOutput {
				return writeJSON(cmd, rep)
			}
			printReport(cmd.OutOrStdout(), rep, showAll)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the full report as JSON")
	cmd.Flags().BoolVar(&fromCatalog, "catalog", false, "Build the report from the scan catalog")
	cmd.Flags().BoolVar(&showAll, "all", false, "List every folder, not only those where AI and classic matches differ")
	return cmd
}

func printReport(out io.Writer, rep report.Report, showAll bool) {
	color := shouldColorize(out)
	folders := rep.Folders
	if !showAll {
		folders = rep.Differences()
	}

	if len(folders) > 0 {
		rows := make([][]string, 0, len(folders))
		for _, f := range folders {
			rows = append(rows, []string{
				f.Path,
				strconv.Itoa(f.ClassicMatches),
				strconv.Itoa(f.AIMatches),
				strconv.Itoa(f.FilesWithoutPreview),
				strconv.Itoa(f.OtherImages),
				percent(f.ClassicEffectiveness),
				percent(f.AIEffectiveness),
				signedPercent(f.ImprovementPercent),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Folder", "Classic", "AI", "No preview", "Other images", "Classic %", "AI %", "Change"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
		))
		fmt.Fprintln(out)
		for _, f := range folders {
			if len(f.AIUnmatched) == 0 {
				continue
			}
			fmt.Fprintf(out, "%s: AI matches with no record entry: %s\n", f.Path, strings.Join(f.AIUnmatched, ", "))
		}
	} else if !showAll {
		fmt.Fprintln(out, "No folders where AI and classic matches differ")
		fmt.Fprintln(out)
	}

	for _, line := range renderSectionHeader("Totals", color) {
		fmt.Fprintln(out, line)
	}
	t := rep.Total
	fmt.Fprintln(out, renderKeyValues([][2]string{
		{"Folders analyzed", strconv.Itoa(t.FoldersAnalyzed)},
		{"Folders skipped", strconv.Itoa(t.FoldersSkipped)},
		{"Classic matches", strconv.Itoa(t.ClassicMatches)},
		{"AI matches", strconv.Itoa(t.AIMatches)},
		{"Files without preview", strconv.Itoa(t.FilesWithoutPreview)},
		{"Other images", strconv.Itoa(t.OtherImages)},
		{"Classic effectiveness", percent(t.ClassicEffectiveness)},
		{"AI effectiveness", percent(t.AIEffectiveness)},
		{"Improvement", signedPercent(t.ImprovementPercent)},
	}))
	if rows := methodRows(t.MethodCounts); len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Method", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
	}
}
