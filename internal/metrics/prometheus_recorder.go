package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "ggd_docs"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg         *prom.Registry
	folders     prom.Counter
	skipped     *prom.CounterVec
	records     prom.Counter
	pages       *prom.CounterVec
	runDuration prom.Gauge
	lastRun     prom.Gauge
}

// NewPrometheusRecorder constructs and registers the run metrics. A nil
// registry creates a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		folders: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "folders_processed_total",
			Help:      "Recipe folders handed to the aggregator",
		}),
		skipped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "folders_skipped_total",
			Help:      "Recipe folders that produced no records, by reason",
		}, []string{"reason"}),
		records: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records collected for the index page",
		}),
		pages: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Rendered pages by kind and whether they were written",
		}, []string{"kind", "result"}),
		runDuration: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last generation run",
		}),
		lastRun: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last generation run finished",
		}),
	}
	reg.MustRegister(pr.folders, pr.skipped, pr.records, pr.pages, pr.runDuration, pr.lastRun)
	return pr
}

func (p *PrometheusRecorder) IncFolder() {
	if p == nil {
		return
	}
	p.folders.Inc()
}

func (p *PrometheusRecorder) IncSkipped(reason SkipReason) {
	if p == nil {
		return
	}
	p.skipped.WithLabelValues(string(reason)).Inc()
}

func (p *PrometheusRecorder) AddRecords(n int) {
	if p == nil {
		return
	}
	p.records.Add(float64(n))
}

func (p *PrometheusRecorder) IncPage(kind string, written bool) {
	if p == nil {
		return
	}
	res := "unchanged"
	if written {
		res = "written"
	}
	p.pages.WithLabelValues(kind, res).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Set(d.Seconds())
	p.lastRun.SetToCurrentTime()
}

// WriteTextfile dumps the registry in the node_exporter textfile format
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
