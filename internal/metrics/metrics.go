// Package metrics exposes run counters in the Prometheus text format through
// a node_exporter textfile.
package metrics

import (
	"credmerge/internal/types"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder rewrites the textfile after each run.
//
// The _total counters only accumulate within one process (a watch session);
// a one-shot invocation starts them at zero, so scrapes of successive
// one-shot runs see counter resets. The credmerge_last_run_* gauges carry
// the values of the most recent run and are the ones to alert on there.
type Recorder struct {
	registry *prometheus.Registry
	path     string

	Scanned         prometheus.Counter
	UniqueNew       prometheus.Counter
	MachineNew      prometheus.Counter
	Archived        prometheus.Counter
	ArchiveFailures prometheus.Counter
	Runs            *prometheus.CounterVec
	OutputRecords   prometheus.Gauge
	LastRun         prometheus.Gauge

	LastScanned         prometheus.Gauge
	LastUniqueNew       prometheus.Gauge
	LastMachineNew      prometheus.Gauge
	LastArchived        prometheus.Gauge
	LastArchiveFailures prometheus.Gauge
	LastSuccess         prometheus.Gauge
}

// NewRecorder creates a recorder writing to path.
func NewRecorder(path string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		path:     path,
		Scanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credmerge_lines_scanned_total",
			Help: "Capture lines parsed across runs.",
		}),
		UniqueNew: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credmerge_unique_new_total",
			Help: "Records added to the consolidated output.",
		}),
		MachineNew: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credmerge_machine_accounts_new_total",
			Help: "Added records whose identity is a machine account.",
		}),
		Archived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credmerge_files_archived_total",
			Help: "Capture files moved to a dated archive directory.",
		}),
		ArchiveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credmerge_archive_failures_total",
			Help: "Capture files that could not be archived.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credmerge_runs_total",
			Help: "Runs by outcome.",
		}, []string{"outcome"}),
		OutputRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "credmerge_output_records",
			Help: "Records in the consolidated output after the last commit.",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "credmerge_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
		LastScanned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "credmerge_last_run_lines_scanned",
			Help: "Capture lines parsed by the last run.",
		}),
		LastUniqueNew: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "credmerge_last_run_unique_new",
			Help: "Records added by the last run.",
		}),
		LastMachineNew: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "credmerge_last_run_machine_accounts_new",
			Help: "Machine-account records added by the last run.",
		}),
		LastArchived: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "credmerge_last_run_files_archived",
			Help: "Capture files archived by the last run.",
		}),
		LastArchiveFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "credmerge_last_run_archive_failures",
			Help: "Capture files the last run could not archive.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "credmerge_last_run_success",
			Help: "1 if the last run committed its output, 0 otherwise.",
		}),
	}
	r.registry.MustRegister(r.Scanned, r.UniqueNew, r.MachineNew, r.Archived,
		r.ArchiveFailures, r.Runs, r.OutputRecords, r.LastRun,
		r.LastScanned, r.LastUniqueNew, r.LastMachineNew, r.LastArchived,
		r.LastArchiveFailures, r.LastSuccess)
	return r
}

// Observe folds a run report into the counters.
func (r *Recorder) Observe(rep *types.RunReport) {
	r.Runs.WithLabelValues(string(rep.Outcome)).Inc()
	r.LastRun.Set(float64(rep.FinishedAt.Unix()))
	if rep.Outcome != types.OutcomeCommitted {
		r.LastSuccess.Set(0)
		r.LastScanned.Set(0)
		r.LastUniqueNew.Set(0)
		r.LastMachineNew.Set(0)
		r.LastArchived.Set(0)
		r.LastArchiveFailures.Set(0)
		return
	}
	r.LastSuccess.Set(1)
	r.LastScanned.Set(float64(rep.TotalScanned))
	r.LastUniqueNew.Set(float64(rep.UniqueNew))
	r.LastMachineNew.Set(float64(rep.MachineAccountNew))
	r.LastArchived.Set(float64(rep.Archived))
	r.LastArchiveFailures.Set(float64(len(rep.ArchiveFailures)))
	r.Scanned.Add(float64(rep.TotalScanned))
	r.UniqueNew.Add(float64(rep.UniqueNew))
	r.MachineNew.Add(float64(rep.MachineAccountNew))
	r.Archived.Add(float64(rep.Archived))
	r.ArchiveFailures.Add(float64(len(rep.ArchiveFailures)))
	r.OutputRecords.Set(float64(rep.OutputRecords))
}

// Report implements report.Reporter.
func (r *Recorder) Report(rep *types.RunReport) error {
	r.Observe(rep)
	if r.path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(r.path, r.registry)
}
