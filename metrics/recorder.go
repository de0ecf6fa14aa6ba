// SPDX-License-Identifier: MIT

// Package metrics exports kernel call statistics as Prometheus collectors.
//
// Collectors (namespace "sscha", subsystem "kernel"):
//
//	sscha_kernel_duration_seconds{kernel,strategy}  histogram
//	sscha_kernel_configurations_total{kernel}       counter
//	sscha_kernel_failures_total{kernel,reason}      counter
//
// A Recorder registers on the caller's Registerer only; it never touches
// prometheus.DefaultRegisterer.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eliheady/python-sscha/kernel"
)

const (
	namespace = "sscha"
	subsystem = "kernel"
)

// ErrRegistration is returned when a collector cannot be registered.
var ErrRegistration = errors.New("metrics: collector registration failed")

// DefaultBuckets spans 100µs to ~100s, enough for a kernel call on anything
// from a toy ensemble to a large supercell.
var DefaultBuckets = prometheus.ExponentialBuckets(1e-4, 4, 11)

// Recorder implements kernel.Recorder on Prometheus collectors.
type Recorder struct {
	duration *prometheus.HistogramVec
	configs  *prometheus.CounterVec
	failures *prometheus.CounterVec
}

var _ kernel.Recorder = (*Recorder)(nil)

// New creates the collectors and registers them on reg.
// buckets may be nil for DefaultBuckets.
// Errors: ErrRegistration (wrapping the registry error).
func New(reg prometheus.Registerer, buckets []float64) (*Recorder, error) {
	if reg == nil {
		return nil, fmt.Errorf("New: nil registerer: %w", ErrRegistration)
	}
	if buckets == nil {
		buckets = DefaultBuckets
	}
	r := &Recorder{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_seconds",
			Help:      "Wall time of successful kernel calls, including the collective.",
			Buckets:   buckets,
		}, []string{"kernel", "strategy"}),
		configs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "configurations_total",
			Help:      "Ensemble configurations reduced by successful kernel calls.",
		}, []string{"kernel"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "failures_total",
			Help:      "Failed kernel calls by reason.",
		}, []string{"kernel", "reason"}),
	}
	for _, c := range []prometheus.Collector{r.duration, r.configs, r.failures} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("New: %w: %w", ErrRegistration, err)
		}
	}

	return r, nil
}

// KernelDone implements kernel.Recorder.
func (r *Recorder) KernelDone(k, strategy string, elapsed time.Duration, configs int) {
	r.duration.WithLabelValues(k, strategy).Observe(elapsed.Seconds())
	r.configs.WithLabelValues(k).Add(float64(configs))
}

// KernelFailed implements kernel.Recorder.
func (r *Recorder) KernelFailed(k, _, reason string) {
	r.failures.WithLabelValues(k, reason).Inc()
}

// Histogram returns the duration collector.
func (r *Recorder) Histogram() *prometheus.HistogramVec { return r.duration }

// Configurations returns the processed-configurations counter.
func (r *Recorder) Configurations() *prometheus.CounterVec { return r.configs }

// Failures returns the failure counter.
func (r *Recorder) Failures() *prometheus.CounterVec { return r.failures }
