// Package observability provides the run metrics and tracing spans of an
// analysis. Metrics live in a per-run registry that can be exported as a
// node_exporter textfile; spans go to the global OpenTelemetry provider.
package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values.
const (
	ResultMatched = "matched"
	ResultDropped = "dropped"

	StatusSuccess = "success"
	StatusFailure = "failure"

	MediaSticker = "sticker"
	MediaAudio   = "audio"
)

// Metrics holds all Prometheus metrics for one analysis run.
type Metrics struct {
	registry *prometheus.Registry

	LinesTotal           *prometheus.CounterVec
	SectionSeconds       *prometheus.HistogramVec
	ClassificationsTotal *prometheus.CounterVec
	ClassifierFailures   *prometheus.CounterVec
	MediaFilesTotal      *prometheus.CounterVec
	ReportBytes          prometheus.Gauge
	RunDurationSeconds   prometheus.Gauge
}

// NewMetrics creates the metrics in a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		LinesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversa_transcript_lines_total",
				Help: "Transcript lines read, by parse result",
			},
			[]string{"result"},
		),
		SectionSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conversa_section_seconds",
				Help:    "Time spent computing each report section",
				Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
			},
			[]string{"section"},
		),
		ClassificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversa_classifications_total",
				Help: "Classifier calls, by metric and status",
			},
			[]string{"metric", "status"},
		),
		ClassifierFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversa_classifier_failures_total",
				Help: "Failed classifier calls, by metric and reason",
			},
			[]string{"metric", "reason"},
		),
		MediaFilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversa_media_files_total",
				Help: "Attachment files examined, by kind and status",
			},
			[]string{"kind", "status"},
		),
		ReportBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "conversa_report_bytes",
				Help: "Size of the written report",
			},
		),
		RunDurationSeconds: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "conversa_run_duration_seconds",
				Help: "Wall time of the analysis run",
			},
		),
	}
}

// Registry returns the run's registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordLines counts matched and dropped transcript lines.
func (m *Metrics) RecordLines(matched, dropped int) {
	m.LinesTotal.WithLabelValues(ResultMatched).Add(float64(matched))
	m.LinesTotal.WithLabelValues(ResultDropped).Add(float64(dropped))
}

// RecordSection observes the time one section took.
func (m *Metrics) RecordSection(section string, seconds float64) {
	m.SectionSeconds.WithLabelValues(section).Observe(seconds)
}

// RecordClassifications counts classifier successes and failures.
func (m *Metrics) RecordClassifications(metric string, succeeded, failed int) {
	m.ClassificationsTotal.WithLabelValues(metric, StatusSuccess).Add(float64(succeeded))
	m.ClassificationsTotal.WithLabelValues(metric, StatusFailure).Add(float64(failed))
}

// RecordClassifierFailure counts one failed classifier call.
func (m *Metrics) RecordClassifierFailure(metric, reason string) {
	m.ClassifierFailures.WithLabelValues(metric, reason).Inc()
}

// RecordMedia counts scanned attachment files.
func (m *Metrics) RecordMedia(kind string, ok, failed int) {
	m.MediaFilesTotal.WithLabelValues(kind, StatusSuccess).Add(float64(ok))
	m.MediaFilesTotal.WithLabelValues(kind, StatusFailure).Add(float64(failed))
}

// WriteTextfile writes the registry in the Prometheus text format to path,
// atomically, for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
