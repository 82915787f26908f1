package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/shop-cart/internal/cart"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopcart"

type Metrics struct {
	CartActions  *prometheus.CounterVec
	OpenSessions prometheus.Gauge
	Requests     *prometheus.CounterVec
	LatencyMS    *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		CartActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "actions_total",
			Help:      "Cart actions dispatched, by kind and result.",
		}, []string{"action", "result"}),
		OpenSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "open",
			Help:      "Cart sessions currently held in memory.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"route"}),
		gatherer: reg,
	}

	reg.MustRegister(m.CartActions, m.OpenSessions, m.Requests, m.LatencyMS)
	return m
}

// ObserveAction implements cart.Recorder.
func (m *Metrics) ObserveAction(kind string, err error) {
	m.CartActions.WithLabelValues(kind, actionResult(err)).Inc()
}

// SetOpenSessions implements session.Gauge.
func (m *Metrics) SetOpenSessions(n int) {
	m.OpenSessions.Set(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Microseconds()) / 1000)
	})
}

func actionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, cart.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, cart.ErrLineItemNotFound):
		return "item_not_found"
	case errors.Is(err, cart.ErrQuantityOverflow):
		return "quantity_overflow"
	default:
		return "error"
	}
}
