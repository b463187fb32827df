package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"credmerge/internal/config"
	"credmerge/internal/ingest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Merge now, then merge again whenever new capture files settle",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.dryRun {
				return errors.New("--dry-run cannot be combined with watch")
			}
			debounce, err := config.DebounceOf(a.cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, cleanup := a.newRunner(cmd.OutOrStdout())
			defer cleanup()

			opts := a.options()
			mergeNow := func() {
				if _, err := runner.Run(opts); err != nil && !errors.Is(err, ingest.ErrNoInput) {
					a.logger.Error("merge failed", zap.Error(err))
				}
			}

			// a missing logs dir is fatal here, not on later runs
			if _, err := runner.Run(opts); err != nil && !errors.Is(err, ingest.ErrNoInput) {
				if errors.Is(err, ingest.ErrConfiguration) {
					return err
				}
				a.logger.Error("merge failed", zap.Error(err))
			}

			d := ingest.NewDirDiscoverer(opts.LogsDir, a.cfg.Input.Extension, a.cfg.Input.SortFiles, opts.OutputPath)
			w := ingest.NewWatcher(d, debounce, a.logger)
			if err := w.Run(ctx, mergeNow); err != nil {
				return err
			}
			a.logger.Info("watch stopped")
			return nil
		},
	}
}
