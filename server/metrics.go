package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	exchanges *prometheus.CounterVec
}

// newMetrics uses a private registry so several servers can live in one process.
func newMetrics(serviceName string) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "proxy_http_requests_total",
				Help:        "Total number of HTTP requests to the token exchange proxy",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"route", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "proxy_http_request_duration_seconds",
				Help:        "Histogram of token exchange proxy latency",
				ConstLabels: prometheus.Labels{"service": serviceName},
				Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route"},
		),
		exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "proxy_token_exchanges_total",
				Help:        "Upstream token exchanges by operation and outcome",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"operation", "outcome"},
		),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.exchanges,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
