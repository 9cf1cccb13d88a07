// Package metrics Prometheus sayaçlarını ve /metrics uç noktasını sağlar.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medwaste"

type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	collectionsCreated   *prometheus.CounterVec
	weighIns             *prometheus.CounterVec
	collectionsCancelled prometheus.Counter
	issuesReported       *prometheus.CounterVec
	issuesResolved       prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP istek sayısı.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP istek süresi.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		collectionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collections_created_total",
			Help:      "Oluşturulan atık toplama kayıtları.",
		}, []string{"waste_type"}),
		weighIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weigh_ins_total",
			Help:      "Tamamlanan tartımlar.",
		}, []string{"mode"}),
		collectionsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collections_cancelled_total",
			Help:      "İptal edilen toplamalar.",
		}),
		issuesReported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_reported_total",
			Help:      "Bildirilen uygunsuzluklar.",
		}, []string{"category"}),
		issuesResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_resolved_total",
			Help:      "Çözülen uygunsuzluklar.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.latency,
		m.collectionsCreated,
		m.weighIns,
		m.collectionsCancelled,
		m.issuesReported,
		m.issuesResolved,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware istekleri rota şablonuna göre sayar; id içeren yollar tek seri olur.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if s, ok := err.(interface{ Status() int }); ok {
				status = s.Status()
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler /metrics için.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) CollectionCreated(wasteTypeCode string) {
	m.collectionsCreated.WithLabelValues(wasteTypeCode).Inc()
}

func (m *Metrics) WeighIn(manual bool) {
	mode := "scale"
	if manual {
		mode = "manual"
	}
	m.weighIns.WithLabelValues(mode).Inc()
}

func (m *Metrics) CollectionCancelled() { m.collectionsCancelled.Inc() }

func (m *Metrics) IssueReported(category string) {
	m.issuesReported.WithLabelValues(category).Inc()
}

func (m *Metrics) IssueResolved() { m.issuesResolved.Inc() }
