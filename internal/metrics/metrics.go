package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ticketSales = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ticketoffice",
		Name:      "ticket_sales_total",
		Help:      "Ticket sale attempts by outcome.",
	}, []string{"outcome"})

	ticketCancellations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ticketoffice",
		Name:      "ticket_cancellations_total",
		Help:      "Ticket cancellation attempts by outcome.",
	}, []string{"outcome"})

	ticketsUsed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ticketoffice",
		Name:      "tickets_marked_used_total",
		Help:      "Tickets moved to USED by the usage sweeper.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ticketoffice",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Outcome is "ok" for success, otherwise the error kind.
func outcome(kind string) string {
	if kind == "" {
		return "ok"
	}
	return kind
}

func ObserveSale(kind string) {
	ticketSales.WithLabelValues(outcome(kind)).Inc()
}

func ObserveCancellation(kind string) {
	ticketCancellations.WithLabelValues(outcome(kind)).Inc()
}

func AddTicketsUsed(n int64) {
	if n > 0 {
		ticketsUsed.Add(float64(n))
	}
}

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
