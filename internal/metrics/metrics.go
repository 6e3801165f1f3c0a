// Package metrics records validation counters for Prometheus, exported
// through the node_exporter textfile collector.
package metrics

import (
	"context"
	"time"

	"github.com/patuh/patuh/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "patuh"

// Verdict label values
const (
	VerdictCompliant    = "compliant"
	VerdictNonCompliant = "non_compliant"
	VerdictError        = "error"
)

// Collector owns a private registry with the patuh metric families.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	validationsTotal   *prometheus.CounterVec
	findingsTotal      *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec
	gateEvaluations    *prometheus.CounterVec
	catalogInfo        *prometheus.GaugeVec
}

// New creates and registers the metric families.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total validations by validator and verdict",
			},
			[]string{"validator", "verdict"},
		),
		findingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "findings_total",
				Help:      "Total findings by category and severity",
			},
			[]string{"category", "severity"},
		),
		validationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_duration_seconds",
				Help:      "Duration of a single validation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
			},
			[]string{"validator"},
		),
		gateEvaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gate_evaluations_total",
				Help:      "Release gate evaluations by gate and outcome",
			},
			[]string{"gate", "status"},
		),
		catalogInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_info",
				Help:      "Active rule catalog version (always 1)",
			},
			[]string{"version"},
		),
	}

	c.registry.MustRegister(
		c.validationsTotal,
		c.findingsTotal,
		c.validationDuration,
		c.gateEvaluations,
		c.catalogInfo,
	)
	return c
}

// Registry for exposition and tests
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveValidation records a verdict, its findings and how long it took.
func (c *Collector) ObserveValidation(res *models.ValidationResult, d time.Duration) {
	if c == nil || res == nil {
		return
	}
	verdict := VerdictNonCompliant
	if res.IsCompliant {
		verdict = VerdictCompliant
	}
	c.validationsTotal.WithLabelValues(res.Validator, verdict).Inc()
	c.validationDuration.WithLabelValues(res.Validator).Observe(d.Seconds())
	for _, f := range res.Findings {
		c.findingsTotal.WithLabelValues(f.Category, f.Severity.String()).Inc()
	}
}

// ObserveError records a submission that could not be validated.
func (c *Collector) ObserveError(validator string) {
	if c == nil {
		return
	}
	c.validationsTotal.WithLabelValues(validator, VerdictError).Inc()
}

// ObserveGate records a release gate outcome.
func (c *Collector) ObserveGate(gate, status string) {
	if c == nil {
		return
	}
	c.gateEvaluations.WithLabelValues(gate, status).Inc()
}

// SetCatalog marks version as the only active catalog.
func (c *Collector) SetCatalog(version string) {
	if c == nil {
		return
	}
	c.catalogInfo.Reset()
	c.catalogInfo.WithLabelValues(version).Set(1)
}

// WriteTextfile writes the registry in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}

type contextKey struct{}

// WithCollector stores c in ctx.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// From returns the collector in ctx, or nil.
func From(ctx context.Context) *Collector {
	c, _ := ctx.Value(contextKey{}).(*Collector)
	return c
}
