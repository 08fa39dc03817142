// Package metrics records operational metrics of cleaning runs behind a
// small backend interface, so the pipeline does not depend on a specific
// metrics system. Concrete backends live in the prompush (Prometheus
// Pushgateway) and datadog subpackages.
package metrics

import "time"

// Metric names emitted by Recorder.
const (
	StepTotal    = "etl_step_total"
	StepDuration = "etl_step_duration_seconds"
	RecordsTotal = "etl_records_total"
	FilesTotal   = "etl_files_total"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)       {}
func (Nop) ObserveHistogram(string, float64, Labels) {}
func (Nop) Flush() error                             { return nil }

// Recorder emits the pipeline metrics of one job to a backend.
type Recorder struct {
	backend Backend
	job     string
}

// NewRecorder returns a Recorder for job. A nil backend records nothing.
func NewRecorder(b Backend, job string) *Recorder {
	if b == nil {
		b = Nop{}
	}
	return &Recorder{backend: b, job: job}
}

// RecordStep counts one execution of a pipeline step and observes its
// duration, labeled with success or failure.
func (r *Recorder) RecordStep(step string, err error, d time.Duration) {
	lbls := Labels{"job": r.job, "step": step, "status": status(err)}
	r.backend.IncCounter(StepTotal, 1, lbls)
	r.backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows adds delta rows of the given kind. Typical kinds:
//   - "loaded"
//   - "skipped"
//   - "duplicates_removed"
//   - "missing_dropped"
//   - "outliers_removed"
//   - "written"
func (r *Recorder) RecordRows(kind string, delta int) {
	if delta <= 0 {
		return
	}
	r.backend.IncCounter(RecordsTotal, float64(delta), Labels{"job": r.job, "kind": kind})
}

// RecordFile counts one processed input file of a batch run.
func (r *Recorder) RecordFile(err error) {
	r.backend.IncCounter(FilesTotal, 1, Labels{"job": r.job, "status": status(err)})
}

// Flush delegates to the backend.
func (r *Recorder) Flush() error { return r.backend.Flush() }

func status(err error) string {
	if err != nil {
		return statusFailure
	}
	return statusSuccess
}
