package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "The total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "The HTTP request latencies in seconds",
		},
		[]string{"method", "endpoint"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
}

// GetRequestsTotal returns the requests total metric for middleware use
func GetRequestsTotal() *prometheus.CounterVec {
	return requestsTotal
}

// GetRequestDuration returns the request duration metric for middleware use
func GetRequestDuration() *prometheus.HistogramVec {
	return requestDuration
}

// LogMetricsInitialization logs that metrics have been initialized
func (s *Server) LogMetricsInitialization() {
	if s.logger != nil {
		s.logger.Info("Prometheus metrics initialized and registered")
		s.logger.WithFields(map[string]interface{}{
			"http_requests_total":          "Counter for HTTP requests by method, endpoint, status",
			"http_request_duration":        "Histogram for HTTP request duration by method, endpoint",
			"captcha_recognitions_total":   "Counter for recognitions by captcha type and outcome",
			"captcha_cache_lookups_total":  "Counter for result cache lookups by outcome",
			"captcha_recognition_duration": "Histogram for recognition duration by captcha type",
			"metrics_endpoint":             "/metrics",
		}).Debug("Available Prometheus metrics")
	}
}

// metricsEndpoint serves the Prometheus scrape handler.
func (s *Server) metricsEndpoint(c echo.Context) error {
	promhttp.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}
