// Package metrics — Prometheus-метрики конфигуратора.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder struct {
	gatherer prometheus.Gatherer

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	selections    *prometheus.CounterVec
	warnings      *prometheus.CounterVec
	saves         *prometheus.CounterVec
	saveDuration  prometheus.Histogram
	shareLookups  *prometheus.CounterVec
	arChecks      *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// New регистрирует метрики в reg. nil — отдельный реестр (удобно в тестах).
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Recorder{
		gatherer: reg,
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "configurator_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "configurator_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		selections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "configurator_selections_total",
				Help: "Selections made per step",
			},
			[]string{"step"},
		),
		warnings: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "configurator_warnings_total",
				Help: "Non-fatal warnings returned to clients",
			},
			[]string{"code"},
		),
		saves: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "configurator_saves_total",
				Help: "Configuration save attempts",
			},
			[]string{"status"},
		),
		saveDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "configurator_save_duration_seconds",
				Help:    "Time taken to persist a configuration",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
		),
		shareLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "configurator_share_lookups_total",
				Help: "Share token lookups",
			},
			[]string{"status"},
		),
		arChecks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "configurator_ar_checks_total",
				Help: "AR availability checks",
			},
			[]string{"available"},
		),
		notifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "configurator_notifications_total",
				Help: "Manager notifications sent",
			},
			[]string{"status"},
		),
	}
}

// Handler отдаёт /metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveHTTP(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (r *Recorder) Selection(step string) {
	if r == nil {
		return
	}
	r.selections.WithLabelValues(step).Inc()
}

func (r *Recorder) Warning(code string) {
	if r == nil {
		return
	}
	r.warnings.WithLabelValues(code).Inc()
}

// Save: status = created | replayed | failed.
func (r *Recorder) Save(status string, d time.Duration) {
	if r == nil {
		return
	}
	r.saves.WithLabelValues(status).Inc()
	r.saveDuration.Observe(d.Seconds())
}

func (r *Recorder) ShareLookup(found bool) {
	if r == nil {
		return
	}
	status := "found"
	if !found {
		status = "not_found"
	}
	r.shareLookups.WithLabelValues(status).Inc()
}

func (r *Recorder) ARCheck(available bool) {
	if r == nil {
		return
	}
	r.arChecks.WithLabelValues(strconv.FormatBool(available)).Inc()
}

func (r *Recorder) Notification(ok bool) {
	if r == nil {
		return
	}
	status := "sent"
	if !ok {
		status = "failed"
	}
	r.notifications.WithLabelValues(status).Inc()
}
