// Package metrics records Prometheus metrics for scans, sidecar activity,
// page resolution and commands.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/goliatone/go-flatcms/internal/tree"
)

// Recorder owns the collectors of one registry. It satisfies the observer
// interfaces of the tree, metadata and content packages.
type Recorder struct {
	registry *prometheus.Registry

	scansTotal      *prometheus.CounterVec
	scanDuration    prometheus.Histogram
	treeDirectories prometheus.Gauge
	treeFiles       prometheus.Gauge

	sidecarsCreated     *prometheus.CounterVec
	sidecarParseFailure *prometheus.CounterVec

	pagesResolved   *prometheus.CounterVec
	resolveDuration prometheus.Histogram
	embeddedPages   prometheus.Histogram

	commandsTotal *prometheus.CounterVec
}

// New registers the collectors on a fresh registry under namespace.
func New(namespace string) *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		scansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tree_scans_total",
				Help:      "Total number of content tree scans",
			},
			[]string{"status"},
		),
		scanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tree_scan_duration_seconds",
				Help:      "Time to scan the content tree",
				Buckets:   prometheus.DefBuckets,
			},
		),
		treeDirectories: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tree_directories",
				Help:      "Number of directories in the last scanned tree",
			},
		),
		treeFiles: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tree_files",
				Help:      "Number of file stems in the last scanned tree",
			},
		),
		sidecarsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sidecars_created_total",
				Help:      "Total number of sidecars synthesized and written",
			},
			[]string{"kind"},
		),
		sidecarParseFailure: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sidecar_parse_failures_total",
				Help:      "Total number of sidecars that failed to parse",
			},
			[]string{"kind"},
		),
		pagesResolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_resolved_total",
				Help:      "Total number of page resolutions",
			},
			[]string{"status"},
		),
		resolveDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "page_resolve_duration_seconds",
				Help:      "Time to resolve a page including its content list",
				Buckets:   prometheus.DefBuckets,
			},
		),
		embeddedPages: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "page_embedded_pages",
				Help:      "Number of pages embedded by a resolved page",
				Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
			},
		),
		commandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of executed commands",
			},
			[]string{"command", "status"},
		),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ScanCompleted records a tree scan.
func (r *Recorder) ScanCompleted(_ string, elapsed time.Duration, stats tree.Stats, err error) {
	r.scansTotal.WithLabelValues(status(err)).Inc()
	r.scanDuration.Observe(elapsed.Seconds())
	if err == nil {
		r.treeDirectories.Set(float64(stats.Directories))
		r.treeFiles.Set(float64(stats.Files))
	}
}

// SidecarCreated records a synthesized sidecar.
func (r *Recorder) SidecarCreated(kind string) {
	r.sidecarsCreated.WithLabelValues(kind).Inc()
}

// SidecarParseFailed records a sidecar replaced by its default.
func (r *Recorder) SidecarParseFailed(kind string) {
	r.sidecarParseFailure.WithLabelValues(kind).Inc()
}

// PageResolved records a top level page resolution.
func (r *Recorder) PageResolved(elapsed time.Duration, embedded int, err error) {
	r.pagesResolved.WithLabelValues(status(err)).Inc()
	r.resolveDuration.Observe(elapsed.Seconds())
	if err == nil {
		r.embeddedPages.Observe(float64(embedded))
	}
}

// CommandExecuted records a command outcome.
func (r *Recorder) CommandExecuted(command string, err error) {
	r.commandsTotal.WithLabelValues(command, status(err)).Inc()
}

// WriteText writes every metric family in the Prometheus text format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
