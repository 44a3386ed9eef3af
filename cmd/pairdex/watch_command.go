package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"pairdex/internal/logging"
	"pairdex/internal/metrics"
	"pairdex/internal/watcher"
)

const watchLockName = "pairdex-watch.lock"

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		serveMetrics bool
		metricsBind  string
		initialScan  bool
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Rescan directories as their contents change",
		Long: `Watch the tree rooted at dir and rewrite a directory's index once its
contents settle. Only one watch may run per log directory.`,
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
				return fmt.Errorf("resolve watch root: %w", err)
			}

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, watchLockName))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire watch lock: %w", err)
			}
			if !ok {
				return errors.New("another pairdex watch instance is already running")
			}
			defer func() {
				_ = lock.Unlock()
			}()

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

			if serveMetrics {
				bind := strings.TrimSpace(metricsBind)
				if bind == "" {
					bind = cfg.Watch.MetricsBind
				}
				if _, err := metrics.Serve(runCtx, bind, logger); err != nil {
					return err
				}
			}

			w, err := watcher.New(logger, watcher.Options{
				Debounce:      cfg.WatchDebounce(),
				IndexFilename: cfg.Scan.IndexFilename,
				FollowHidden:  cfg.Scan.FollowHidden,
			}, func(ctx context.Context, dir string) error {
				_, err := s.ScanDirectory(ctx, dir)
				return err
			})
			if err != nil {
				return err
			}
			defer w.Close()
			if err := w.Watch(root); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if initialScan {
				summary, err := s.Scan(runCtx, root)
				if err != nil && summary.Root == "" {
					return err
				}
				if err == nil {
					printScanSummary(out, summary)
				}
			}

			fmt.Fprintf(out, "Watching %s (%d directories); press Ctrl+C to stop\n", root, len(w.WatchedDirs()))
			if err := w.Run(runCtx); err != nil {
				return err
			}
			logger.Info("watch stopped", logging.String("root", root))
			return nil
		},
	}

	cmd.Flags().BoolVar(&serveMetrics, "metrics", false, "Serve Prometheus metrics while watching")
	cmd.Flags().StringVar(&metricsBind, "metrics-bind", "", "Metrics listen address (default watch.metrics_bind)")
	cmd.Flags().BoolVar(&initialScan, "initial-scan", true, "Scan the whole tree before watching")
	return cmd
}
