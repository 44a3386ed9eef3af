package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pairdex/internal/learned"
)

func newLearnedCommand(ctx *commandContext) *cobra.Command {
	learnedCmd := &cobra.Command{
		Use:   "learned",
		Short: "Inspect and edit confirmed pairs",
	}

	learnedCmd.AddCommand(newLearnedListCommand(ctx))
	learnedCmd.AddCommand(newLearnedPatternsCommand(ctx))
	learnedCmd.AddCommand(newLearnedForgetCommand(ctx))

	return learnedCmd
}

type learnedPairView struct {
	Content     string `json:"content"`
	Preview     string `json:"preview"`
	ConfirmedAt string `json:"confirmed_at,omitempty"`
}

func newLearnedListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List effective learned pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.learnedStore()
			if err != nil {
				return err
			}
			pairs := store.Load()

			views := make([]learnedPairView, 0, len(pairs))
			for _, p := range pairs {
				view := learnedPairView{Content: p.ContentBasename, Preview: p.PreviewBasename}
				if !p.ConfirmedAt.IsZero() {
					view.ConfirmedAt = p.ConfirmedAt.Local().Format("2006-01-02 15:04")
				}
				views = append(views, view)
			}
			if jsonOutput {
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintf(out, "No learned pairs in %s\n", store.Path())
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				confirmed := v.ConfirmedAt
				if confirmed == "" {
					confirmed = "-"
				}
				rows = append(rows, []string{v.Content, v.Preview, confirmed})
			}
			fmt.Fprintln(out, renderTable([]string{"Content", "Preview", "Confirmed"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output pairs as JSON")
	return cmd
}

func newLearnedPatternsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Show naming patterns derived from learned pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.learnedStore()
			if err != nil {
				return err
			}
			patterns := learned.DerivePatterns(store.Load())
			if jsonOutput {
				if patterns == nil {
					patterns = []learned.Pattern{}
				}
				return writeJSON(cmd, patterns)
			}

			out := cmd.OutOrStdout()
			if len(patterns) == 0 {
				fmt.Fprintln(out, "No patterns derived from learned pairs")
				return nil
			}
			color := shouldColorize(out)
			floor := cfg.Matching.AcceptanceFloor
			rows := make([][]string, 0, len(patterns))
			for _, p := range patterns {
				accepted := yesNo(p.Accepted(floor))
				if p.Accepted(floor) {
					accepted = colorize(accepted, ansiGreen, color)
				}
				rows = append(rows, []string{
					p.Shape,
					fmt.Sprintf("%d/%d", p.Count, p.Total),
					percent(p.Confidence * 100),
					accepted,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Shape", "Support", "Confidence", "Used"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "Acceptance floor: %s\n", percent(floor*100))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output patterns as JSON")
	return cmd
}

func newLearnedForgetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <content>",
		Short: "Remove every learned pair for a content basename",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.learnedStore()
			if err != nil {
				return err
			}
			content := strings.TrimSpace(args[0])
			removed, err := store.Forget(commandContextOrBackground(cmd), content)
			if err != nil {
				return fmt.Errorf("forget learned pair: %w", err)
			}
			out := cmd.OutOrStdout()
			if !removed {
				fmt.Fprintf(out, "No learned pair for %s\n", content)
				return nil
			}
			fmt.Fprintf(out, "Forgot %s\n", content)
			return nil
		},
	}
}
