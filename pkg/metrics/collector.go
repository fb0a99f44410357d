// Package metrics records resource manager operations for prometheus.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yi-nology/easy_fm/pkg/errs"
)

const Namespace = "easyfm"

// Operation names used as label values.
const (
	OpUpload   = "upload"
	OpDownload = "download"
	OpDelete   = "delete"
	OpResolve  = "resolve"
)

// Collector owns a private registry so several collectors can live in one
// process, which the tests rely on.
type Collector struct {
	registry *prometheus.Registry

	operationCounter  *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	errorCounter      *prometheus.CounterVec
}

// NewCollector creates a collector with every metric registered.
func NewCollector() (*Collector, error) {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operationCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of file operations",
		}, []string{"operation", "status"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of file operations including the backend call",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		errorCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Failed file operations by error class",
		}, []string{"operation", "type"}),
	}

	for _, collector := range []prometheus.Collector{c.operationCounter, c.operationDuration, c.errorCounter} {
		if err := c.registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return c, nil
}

// Track records one operation that started at start. errp is read when
// Track runs, so it is meant to be deferred with the address of a named
// error result. A nil collector records nothing.
func (c *Collector) Track(operation string, start time.Time, errp *error) {
	if c == nil {
		return
	}
	var err error
	if errp != nil {
		err = *errp
	}

	status := "success"
	if err != nil {
		status = "error"
		c.errorCounter.With(prometheus.Labels{
			"operation": operation,
			"type":      Class(err),
		}).Inc()
	}
	c.operationCounter.With(prometheus.Labels{
		"operation": operation,
		"status":    status,
	}).Inc()
	c.operationDuration.With(prometheus.Labels{
		"operation": operation,
	}).Observe(time.Since(start).Seconds())
}

// Handler serves the collector's registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Class names the error class of err for the type label.
func Class(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errs.ErrNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrAmbiguous):
		return "ambiguous"
	case errors.Is(err, errs.ErrConfig):
		return "config"
	case errors.Is(err, errs.ErrFile):
		return "file"
	case errors.Is(err, errs.ErrOperationFailed):
		return "operation_failed"
	default:
		return "internal"
	}
}
