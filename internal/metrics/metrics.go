// Package metrics — счётчики Prometheus для конвейера загрузки.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Статусы загрузки для метки status.
const (
	StatusOK         = "ok"
	StatusBadRequest = "bad_request"
	StatusNoSpace    = "no_space"
	StatusError      = "error"
)

// Metrics собирает метрики загрузок. Нулевой указатель допустим: все методы
// тогда ничего не делают.
type Metrics struct {
	UploadsTotal   *prometheus.CounterVec
	UploadBytes    *prometheus.CounterVec
	UploadDuration *prometheus.HistogramVec
	InFlight       prometheus.Gauge
	SpooledParts   prometheus.Counter
	Deletes        prometheus.Counter

	gatherer prometheus.Gatherer
}

// New регистрирует метрики в reg. Если reg == nil, создаётся собственный
// реестр с коллекторами процесса и Go-рантайма.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "media_uploads_total",
				Help: "Upload requests by outcome and media type",
			},
			[]string{"status", "media_type"},
		),
		UploadBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "media_upload_bytes_total",
				Help: "Payload bytes persisted by media type",
			},
			[]string{"media_type"},
		),
		UploadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "media_upload_duration_seconds",
				Help:    "Upload handling time in seconds",
				Buckets: prometheus.ExponentialBuckets(0.005, 4, 9),
			},
			[]string{"status"},
		),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "media_uploads_in_flight",
			Help: "Uploads currently being processed",
		}),
		SpooledParts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "media_spooled_parts_total",
			Help: "File parts written to temporary spool files",
		}),
		Deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "media_deletes_total",
			Help: "Media records removed",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.UploadsTotal,
		m.UploadBytes,
		m.UploadDuration,
		m.InFlight,
		m.SpooledParts,
		m.Deletes,
	)
	return m
}

// UploadStarted увеличивает счётчик активных загрузок и возвращает функцию,
// фиксирующую результат.
func (m *Metrics) UploadStarted() func(status, kind string, bytes int64) {
	if m == nil {
		return func(string, string, int64) {}
	}
	start := time.Now()
	m.InFlight.Inc()
	return func(status, kind string, bytes int64) {
		m.InFlight.Dec()
		if kind == "" {
			kind = "unknown"
		}
		m.UploadsTotal.WithLabelValues(status, kind).Inc()
		m.UploadDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
		if status == StatusOK && bytes > 0 {
			m.UploadBytes.WithLabelValues(kind).Add(float64(bytes))
		}
	}
}

func (m *Metrics) PartSpooled() {
	if m == nil {
		return
	}
	m.SpooledParts.Inc()
}

func (m *Metrics) Deleted() {
	if m == nil {
		return
	}
	m.Deletes.Inc()
}

// Handler отдаёт метрики в текстовом формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
