// Package metrics exposes viewer counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "neuroview"

// Metrics holds the viewer collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	Loads          *prometheus.CounterVec
	DecodeDuration prometheus.Histogram
	IndexRebuilds  prometheus.Counter
	HitTests       *prometheus.CounterVec
	VisibleRegions prometheus.Gauge
	ActiveFades    prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "region_loads_total",
			Help:      "Region loads by result.",
		}, []string{"result"}),
		DecodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "region_decode_seconds",
			Help:      "Time to fetch and decode a region model.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		IndexRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raycast_index_rebuilds_total",
			Help:      "Hit-test index rebuilds.",
		}),
		HitTests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hit_tests_total",
			Help:      "Hit-tests by result.",
		}, []string{"result"}),
		VisibleRegions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visible_regions",
			Help:      "Regions currently in the visibility set.",
		}),
		ActiveFades: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_fades",
			Help:      "Running fade transitions.",
		}),
	}
	m.Registry.MustRegister(
		m.Loads,
		m.DecodeDuration,
		m.IndexRebuilds,
		m.HitTests,
		m.VisibleRegions,
		m.ActiveFades,
	)
	return m
}

// LoadFinished records a load outcome.
func (m *Metrics) LoadFinished(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Loads.WithLabelValues("error").Inc()
		return
	}
	m.Loads.WithLabelValues("ok").Inc()
}

// ObserveDecode records a decode duration.
func (m *Metrics) ObserveDecode(d time.Duration) {
	if m == nil {
		return
	}
	m.DecodeDuration.Observe(d.Seconds())
}

// HitTest records a hit-test outcome.
func (m *Metrics) HitTest(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.HitTests.WithLabelValues("hit").Inc()
		return
	}
	m.HitTests.WithLabelValues("miss").Inc()
}

// SetRebuilds advances the rebuild counter to total.
func (m *Metrics) SetRebuilds(total, seen int) {
	if m == nil || total <= seen {
		return
	}
	m.IndexRebuilds.Add(float64(total - seen))
}

// SetState records per-frame gauges.
func (m *Metrics) SetState(visible, fades int) {
	if m == nil {
		return
	}
	m.VisibleRegions.Set(float64(visible))
	m.ActiveFades.Set(float64(fades))
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve listens on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
