package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "igdocs"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	runDuration    prom.Histogram
	importDuration *prom.HistogramVec
	importOutcomes *prom.CounterVec
	documents      *prom.CounterVec
	placeholders   *prom.CounterVec
	cloneDuration  *prom.HistogramVec
	concurrency    prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of complete import runs",
			Buckets:   prom.DefBuckets,
		}),
		importDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Duration of a single version import",
			Buckets:   prom.DefBuckets,
		}, []string{"version"}),
		importOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "import_outcomes_total",
			Help:      "Version imports by outcome",
		}, []string{"version", "outcome"}),
		documents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Markdown documents processed",
		}, []string{"version"}),
		placeholders: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "placeholder_replacements_total",
			Help:      "Payloads rewritten by the version placeholder pass",
		}, []string{"version"}),
		cloneDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "clone_duration_seconds",
			Help:      "Duration of repository clone or update operations",
			Buckets:   prom.DefBuckets,
		}, []string{"version", "result"}),
		concurrency: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "import_concurrency",
			Help:      "Configured number of versions imported in parallel",
		}),
	}
	reg.MustRegister(pr.runDuration, pr.importDuration, pr.importOutcomes, pr.documents, pr.placeholders, pr.cloneDuration, pr.concurrency)
	return pr
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveImportDuration(version string, d time.Duration) {
	p.importDuration.WithLabelValues(version).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncImportOutcome(version string, outcome OutcomeLabel) {
	p.importOutcomes.WithLabelValues(version, string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddDocuments(version string, n int) {
	p.documents.WithLabelValues(version).Add(float64(n))
}

func (p *PrometheusRecorder) AddPlaceholders(version string, n int) {
	p.placeholders.WithLabelValues(version).Add(float64(n))
}

func (p *PrometheusRecorder) ObserveCloneDuration(version string, d time.Duration, result CloneResultLabel) {
	p.cloneDuration.WithLabelValues(version, string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetConcurrency(n int) {
	p.concurrency.Set(float64(n))
}
