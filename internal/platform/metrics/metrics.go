// Package metrics exposes Prometheus instruments for the workflow engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors registered by New.
type Metrics struct {
	registry *prometheus.Registry

	transitionsTotal   *prometheus.CounterVec
	bulkItemsTotal     *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	eventsDropped      prometheus.Counter
	httpDuration       *prometheus.HistogramVec
}

// New creates the collectors and registers them, plus the Go runtime collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "koperasi",
				Name:      "workflow_transitions_total",
				Help:      "Committed workflow transitions by workflow type and action.",
			},
			[]string{"workflow", "action"},
		),
		bulkItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "koperasi",
				Name:      "workflow_bulk_items_total",
				Help:      "Items processed through bulk approval by outcome.",
			},
			[]string{"workflow", "outcome"},
		),
		notificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "koperasi",
				Name:      "notifications_total",
				Help:      "Notification deliveries by event kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		eventsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "koperasi",
				Name:      "notification_events_dropped_total",
				Help:      "Workflow events dropped because the notification queue was full.",
			},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "koperasi",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
	m.registry.MustRegister(
		m.transitionsTotal,
		m.bulkItemsTotal,
		m.notificationsTotal,
		m.eventsDropped,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) TransitionCommitted(workflow, action string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(workflow, action).Inc()
}

func (m *Metrics) BulkItem(workflow string, ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failed"
	}
	m.bulkItemsTotal.WithLabelValues(workflow, outcome).Inc()
}

func (m *Metrics) NotificationSent(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.notificationsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.eventsDropped.Inc()
}

// Middleware records request latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
