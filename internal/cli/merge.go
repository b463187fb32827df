package cli

import (
	"io"

	"credmerge/internal/audit"
	"credmerge/internal/metrics"
	"credmerge/internal/notify"
	"credmerge/internal/pipeline"
	"credmerge/internal/redaction"
	"credmerge/internal/report"
	"credmerge/internal/state"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) options() pipeline.Options {
	return pipeline.Options{
		LogsDir:    a.cfg.Input.LogsDir,
		OutputPath: a.cfg.Output.Path,
		DateLayout: a.cfg.Archive.DateLayout,
		DryRun:     a.dryRun,
		NoArchive:  !a.cfg.Archive.Enabled,
	}
}

// newRunner builds a runner with every configured report sink. The returned
// func releases the sinks.
func (a *app) newRunner(out io.Writer) (*pipeline.Runner, func()) {
	cfg := a.cfg
	runner := pipeline.NewRunner(a.options(), cfg.Input.Extension, cfg.Input.SortFiles, a.logger)

	var sinks report.Multi
	if cfg.Output.Format == "json" {
		sinks = append(sinks, report.NewJSONReporter(out))
	} else {
		sinks = append(sinks, report.NewConsoleReporter(out, a.showNew, redaction.NewRedactor(cfg.Redaction.Rules)))
	}

	// dry runs leave no trace outside stdout
	cleanup := func() {}
	if !a.dryRun {
		if cfg.Output.AuditLogPath != "" {
			sinks = append(sinks, audit.NewLogger(cfg.Output.AuditLogPath))
		}
		if cfg.Output.HistoryDBPath != "" {
			store, err := state.NewStore(cfg.Output.HistoryDBPath)
			if err != nil {
				a.logger.Warn("run history disabled", zap.String("db", cfg.Output.HistoryDBPath), zap.Error(err))
			} else {
				sinks = append(sinks, store)
				cleanup = func() { store.Close() }
			}
		}
		if cfg.Output.MetricsTextfile != "" {
			sinks = append(sinks, metrics.NewRecorder(cfg.Output.MetricsTextfile))
		}
		if cfg.Notify.WebhookURL != "" {
			sinks = append(sinks, notify.NewWebhook(cfg.Notify.WebhookURL))
		}
	}

	runner.Reporter = sinks
	return runner, cleanup
}

func (a *app) runOnce(cmd *cobra.Command) error {
	runner, cleanup := a.newRunner(cmd.OutOrStdout())
	defer cleanup()

	_, err := runner.Run(a.options())
	return err
}
