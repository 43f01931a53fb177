// Package metrics records the outcome of the last backup and restore run in
// Prometheus text format, for the node exporter textfile collector.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kebairia/mongosnap/internal/errors"
)

// Operation labels.
const (
	OperationBackup  = "backup"
	OperationRestore = "restore"
)

// Recorder holds the gauges of one process. Each operation is written to its
// own file so a restore does not overwrite the last backup's values.
type Recorder struct {
	dir      string
	registry *prometheus.Registry

	success   *prometheus.GaugeVec
	duration  *prometheus.GaugeVec
	timestamp *prometheus.GaugeVec
	exitCode  *prometheus.GaugeVec
	sizeBytes *prometheus.GaugeVec
}

// New creates a Recorder writing into dir. An empty dir disables output.
func New(dir string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		dir:      dir,
		registry: reg,
		success: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mongosnap_last_run_success",
			Help: "1 if the last run of the operation succeeded, 0 otherwise",
		}, []string{"operation"}),
		duration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mongosnap_last_run_duration_seconds",
			Help: "Wall time of the last external dump or restore",
		}, []string{"operation"}),
		timestamp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mongosnap_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}, []string{"operation"}),
		exitCode: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mongosnap_last_run_exit_code",
			Help: "Exit code of the external tool in the last run",
		}, []string{"operation"}),
		sizeBytes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mongosnap_last_backup_size_bytes",
			Help: "Size on disk of the last successful backup",
		}, []string{"operation"}),
	}
}

// Observe records one finished run.
func (r *Recorder) Observe(operation string, exitCode int, d time.Duration, err error) {
	ok := 0.0
	if err == nil {
		ok = 1
	}
	r.success.WithLabelValues(operation).Set(ok)
	r.duration.WithLabelValues(operation).Set(d.Seconds())
	r.timestamp.WithLabelValues(operation).Set(float64(time.Now().Unix()))
	r.exitCode.WithLabelValues(operation).Set(float64(exitCode))
}

// ObserveSize records the size of the produced backup.
func (r *Recorder) ObserveSize(operation string, bytes int64) {
	r.sizeBytes.WithLabelValues(operation).Set(float64(bytes))
}

// Flush writes <dir>/mongosnap_<operation>.prom. It is a no-op without dir.
func (r *Recorder) Flush(operation string) error {
	if r.dir == "" {
		return nil
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create metrics dir %s", r.dir)
	}
	path := filepath.Join(r.dir, "mongosnap_"+operation+".prom")
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(err, "write metrics %s", path)
	}
	return nil
}
