package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SchedulerMetrics captures background-job health signals.
type SchedulerMetrics struct {
	jobRuns     *prometheus.CounterVec
	jobErrors   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	rowsSwept   *prometheus.CounterVec
}

var (
	schedulerOnce sync.Once
	schedulerInst *SchedulerMetrics
)

// Scheduler returns the process-wide scheduler metrics.
func Scheduler() *SchedulerMetrics {
	schedulerOnce.Do(func() {
		schedulerInst = &SchedulerMetrics{
			jobRuns: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "coachdesk_scheduler_job_runs_total",
				Help: "Scheduler job executions by job name.",
			}, []string{"job"}),
			jobErrors: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "coachdesk_scheduler_job_errors_total",
				Help: "Scheduler job failures by job name.",
			}, []string{"job"}),
			jobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "coachdesk_scheduler_job_duration_seconds",
				Help:    "Scheduler job duration by job name.",
				Buckets: prometheus.DefBuckets,
			}, []string{"job"}),
			rowsSwept: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "coachdesk_scheduler_rows_swept_total",
				Help: "Rows updated by sweep jobs, by job name.",
			}, []string{"job"}),
		}
	})
	return schedulerInst
}

func (m *SchedulerMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) IncJobError(job string) {
	if m == nil {
		return
	}
	m.jobErrors.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) ObserveJobDuration(job string, seconds float64) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(seconds)
}

func (m *SchedulerMetrics) AddRowsSwept(job string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsSwept.WithLabelValues(job).Add(float64(n))
}
