package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pairdex/internal/pairing"
)

type matchView struct {
	Content string  `json:"content"`
	Preview string  `json:"preview,omitempty"`
	Method  string  `json:"method"`
	Score   float64 `json:"score"`
}

type matchReportView struct {
	Path        string      `json:"path"`
	Partial     bool        `json:"partial"`
	Pairs       []matchView `json:"pairs"`
	OtherImages []string    `json:"other_images"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "match [dir]",
		Short: "Show how a directory would be paired without writing its index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			dir, err := cfg.ScanRoot(arg)
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
			}
			s, err := ctx.newScanner(nil)
			if err != nil {
				return err
			}

			listing, result, err := s.Inspect(commandContextOrBackground(cmd), dir)
			if err != nil {
				return err
			}

			view := matchReportView{
				Path:        listing.Path,
				Partial:     listing.Partial,
				Pairs:       make([]matchView, 0, len(result.Pairs)),
				OtherImages: make([]string, 0, len(result.Unmatched)),
			}
			for _, p := range result.Pairs {
				view.Pairs = append(view.Pairs, matchView{
					Content: p.Content,
					Preview: p.PreviewName(),
					Method:  string(p.Method),
					Score:   p.Score,
				})
			}
			for _, c := range result.Unmatched {
				if c.IsImage {
					view.OtherImages = append(view.OtherImages, c.Name)
				}
			}

			if jsonOutput {
				return writeJSON(cmd, view)
			}
			printMatches(cmd, view, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output pairings as JSON")
	return cmd
}

func printMatches(cmd *cobra.Command, view matchReportView, result pairing.Result) {
	out := cmd.OutOrStdout()
	color := shouldColorize(out)
	if len(view.Pairs) == 0 {
		fmt.Fprintf(out, "No content files in %s\n", view.Path)
	} else {
		rows := make([][]string, 0, len(result.Pairs))
		for _, p := range result.Pairs {
			preview := p.PreviewName()
			if preview == "" {
				preview = "-"
			}
			rows = append(rows, []string{
				p.Content,
				preview,
				colorize(string(p.Method), methodColor(p.Method), color),
				strconv.FormatFloat(p.Score, 'f', 2, 64),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Content", "Preview", "Method", "Score"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
		))
	}
	if len(view.OtherImages) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Unpaired images:")
		for _, name := range view.OtherImages {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}
	if view.Partial {
		fmt.Fprintln(out, colorize("Listing was cut short by the folder timeout", ansiYellow, color))
	}
}
