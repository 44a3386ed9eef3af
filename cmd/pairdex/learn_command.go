package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pairdex/internal/config"
	"pairdex/internal/index"
	"pairdex/internal/learned"
	"pairdex/internal/metrics"
	"pairdex/internal/textutil"
)

const (
	extraContentPath = "archivePath"
	extraPreviewPath = "imagePath"
)

func newLearnCommand(ctx *commandContext) *cobra.Command {
	var (
		raw    bool
		rescan bool
	)

	cmd := &cobra.Command{
		Use:   "learn <content> <preview>",
		Short: "Confirm that a preview belongs to a content file",
		Long: `Record a confirmed pairing in the learned pairs file. File extensions are
stripped from both names unless --raw is given; the confirmation applies to
every directory on the next scan.

When an argument names an existing file its absolute path is stored with the
pair, and the content file's directory is rescanned right away unless
--rescan=false is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.learnedStore()
			if err != nil {
				return err
			}
			contentPath, contentExists := existingFile(args[0])
			previewPath, previewExists := existingFile(args[1])

			pair := learned.Pair{
				ContentBasename: learnName(args[0], raw),
				PreviewBasename: learnName(args[1], raw),
			}
			if contentExists || previewExists {
				pair.Extra = make(map[string]json.RawMessage, 2)
				if contentExists {
					pair.Extra[extraContentPath] = mustJSONString(contentPath)
				}
				if previewExists {
					pair.Extra[extraPreviewPath] = mustJSONString(previewPath)
				}
			}

			runCtx := commandContextOrBackground(cmd)
			if err := store.Append(runCtx, pair); err != nil {
				return fmt.Errorf("record learned pair: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Learned %s -> %s\n", pair.ContentBasename, pair.PreviewBasename)

			if !rescan || !contentExists {
				return nil
			}
			cat := ctx.openCatalog()
			if cat != nil {
				defer cat.Close()
			}
			s, err := ctx.newScanner(cat)
			if err != nil {
				return err
			}
			dir := filepath.Dir(contentPath)
			metrics.RescansTotal.WithLabelValues("learn").Inc()
			outcome, err := s.ScanDirectory(runCtx, dir)
			if err != nil {
				return fmt.Errorf("rescan %s: %w", dir, err)
			}
			fmt.Fprintf(out, "Rewrote %s (%d of %d content files matched)\n",
				index.Path(dir, s.IndexFilename()), len(outcome.Result.Matched()), len(outcome.Result.Pairs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Store names exactly as given, without stripping extensions")
	cmd.Flags().BoolVar(&rescan, "rescan", true, "Rescan the content file's directory when <content> is an existing file")
	return cmd
}

func learnName(name string, raw bool) string {
	name = strings.TrimSpace(name)
	if raw {
		return filepath.Base(name)
	}
	return textutil.Basename(name)
}

// existingFile resolves arg to an absolute path when it names a regular file.
func existingFile(arg string) (string, bool) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", false
	}
	path, err := config.ExpandPath(arg)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

func mustJSONString(s string) json.RawMessage {
	data, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage(`""`)
	}
	return data
}
