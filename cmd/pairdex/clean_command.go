package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pairdex/internal/index"
	"pairdex/internal/logging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "clean [dir]",
		Short: "Delete every index file under a tree",
		Args:  cobra.MaximumNArgs(1),
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
				return fmt.Errorf("resolve clean root: %w", err)
			}

			out := cmd.OutOrStdout()
			if !assumeYes {
				fmt.Fprintf(out, "Delete every %s under %s? [y/N] ", cfg.Scan.IndexFilename, root)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
			}

			result, err := index.Remove(root, cfg.Scan.IndexFilename)
			if err != nil {
				return fmt.Errorf("clean %s: %w", root, err)
			}
			for _, removeErr := range result.Errors {
				logging.WarnWithContext(logger, "index file not removed", "clean_remove_failed",
					logging.Error(removeErr),
					logging.String(logging.FieldImpact, "stale record stays on disk"),
				)
			}
			fmt.Fprintf(out, "Removed %d index files", result.Removed)
			if result.Failed > 0 {
				fmt.Fprintf(out, " (%d failed)", result.Failed)
			}
			fmt.Fprintln(out)
			if result.Failed > 0 {
				return fmt.Errorf("%d index files could not be removed", result.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
