package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pairdex/internal/index"
	"pairdex/internal/metrics"
)

func newRescanCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "rescan <dir>",
		Short: "Re-pair a single directory and rewrite its index",
		Long: `Rebuild the index file of one directory with a freshly loaded set of
learned pairs. Subdirectories are not visited.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := cfg.ScanRoot(args[0])
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
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

			metrics.RescansTotal.WithLabelValues("manual").Inc()
			outcome, err := s.ScanDirectory(runCtx, dir)
			if err != nil {
				return fmt.Errorf("rescan %s: %w", dir, err)
			}

			matched := len(outcome.Result.Matched())
			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"path":          outcome.Path,
					"index":         index.Path(outcome.Path, s.IndexFilename()),
					"contents":      len(outcome.Result.Pairs),
					"matched":       matched,
					"unmatched":     len(outcome.Result.Pairs) - matched,
					"other_images":  len(outcome.Result.Unmatched),
					"partial":       outcome.Partial,
					"method_counts": methodNames(outcome.Result.MethodCounts()),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rewrote %s\n", index.Path(outcome.Path, s.IndexFilename()))
			fmt.Fprintf(out, "Matched %d of %d content files; %d other images\n",
				matched, len(outcome.Result.Pairs), len(outcome.Result.Unmatched))
			if outcome.Partial {
				fmt.Fprintln(out, "Listing was cut short by the folder timeout")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the directory outcome as JSON")
	return cmd
}
