package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type ServerMetrics struct {
	registry  *prometheus.Registry
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	OrdersCreated        *prometheus.CounterVec
	PaymentsConfirmed    prometheus.Counter
	DuplicateWebhooks    prometheus.Counter
	NotificationFailures *prometheus.CounterVec
	CartClamped          prometheus.Counter
}

// NewServerMetrics 每個實例一個 registry, 測試可以重複建立
func NewServerMetrics(service string) *ServerMetrics {
	reg := prometheus.NewRegistry()
	m := &ServerMetrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "orders_created_total",
			Help:      "Orders persisted by checkout.",
		}, []string{"payment_method"}),
		PaymentsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "payments_confirmed_total",
			Help:      "Orders transitioned to paid by a payment callback.",
		}),
		DuplicateWebhooks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "payment_callbacks_duplicate_total",
			Help:      "Payment callbacks for orders that were already paid.",
		}),
		NotificationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "notification_failures_total",
			Help:      "Best-effort notifications that failed.",
		}, []string{"kind"}),
		CartClamped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: service,
			Name:      "cart_quantity_clamped_total",
			Help:      "Cart mutations reduced to available stock.",
		}),
	}
	reg.MustRegister(
		m.Requests, m.LatencyMS,
		m.OrdersCreated, m.PaymentsConfirmed, m.DuplicateWebhooks,
		m.NotificationFailures, m.CartClamped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// 以下方法允許 nil receiver, 未啟用 metrics 時直接略過

func (m *ServerMetrics) OrderCreated(paymentMethod string) {
	if m == nil {
		return
	}
	m.OrdersCreated.WithLabelValues(paymentMethod).Inc()
}

func (m *ServerMetrics) PaymentConfirmed() {
	if m == nil {
		return
	}
	m.PaymentsConfirmed.Inc()
}

func (m *ServerMetrics) DuplicateWebhook() {
	if m == nil {
		return
	}
	m.DuplicateWebhooks.Inc()
}

func (m *ServerMetrics) NotificationFailed(kind string) {
	if m == nil {
		return
	}
	m.NotificationFailures.WithLabelValues(kind).Inc()
}

func (m *ServerMetrics) Clamped() {
	if m == nil {
		return
	}
	m.CartClamped.Inc()
}
