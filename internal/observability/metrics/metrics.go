// Package metrics exposes the engine's prometheus instruments.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SyncMetrics captures sync scheduler health signals.
type SyncMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	repairs  prometheus.Counter
	deduped  prometheus.Counter
}

var (
	syncOnce sync.Once
	syncInst *SyncMetrics
)

// Sync returns the process-wide sync metrics, registering them on
// first use.
func Sync() *SyncMetrics {
	syncOnce.Do(func() {
		syncInst = newSyncMetrics(prometheus.DefaultRegisterer)
	})
	return syncInst
}

// ResetSyncMetricsForTest clears the singleton so tests can swap the
// default registry.
func ResetSyncMetricsForTest() {
	syncOnce = sync.Once{}
	syncInst = nil
}

func newSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	factory := promauto.With(reg)
	return &SyncMetrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cobranca_sync_runs_total",
			Help: "Sync attempts by direction and outcome.",
		}, []string{"direction", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cobranca_sync_duration_seconds",
			Help:    "Wall time of sync runs by direction.",
			Buckets: prometheus.DefBuckets,
		}, []string{"direction"}),
		repairs: factory.NewCounter(prometheus.CounterOpts{
			Name: "cobranca_repair_fixes_total",
			Help: "Records fixed by integrity repair passes.",
		}),
		deduped: factory.NewCounter(prometheus.CounterOpts{
			Name: "cobranca_merge_payments_deduped_total",
			Help: "Payments collapsed as duplicates during merges.",
		}),
	}
}

func (m *SyncMetrics) IncRun(direction, outcome string) {
	m.runs.WithLabelValues(direction, outcome).Inc()
}

func (m *SyncMetrics) ObserveDuration(direction string, d time.Duration) {
	m.duration.WithLabelValues(direction).Observe(d.Seconds())
}

func (m *SyncMetrics) AddRepairs(n int) {
	if n > 0 {
		m.repairs.Add(float64(n))
	}
}

func (m *SyncMetrics) AddDeduped(n int) {
	if n > 0 {
		m.deduped.Add(float64(n))
	}
}
