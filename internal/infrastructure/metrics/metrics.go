package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
)

var (
	recognitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "captcha_recognitions_total",
			Help: "The total number of recognition requests by type and outcome",
		},
		[]string{"captcha_type", "outcome"},
	)

	recognitionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "captcha_recognition_duration_seconds",
			Help: "Recognition latencies in seconds by captcha type",
		},
		[]string{"captcha_type"},
	)

	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "captcha_cache_lookups_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(recognitionsTotal)
	prometheus.MustRegister(recognitionDuration)
	prometheus.MustRegister(cacheLookupsTotal)
}

// Recorder implements ports.RecognitionMetrics on the package's Prometheus
// collectors.
type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) ObserveRecognition(t captcha.ChallengeType, outcome string, seconds float64) {
	recognitionsTotal.WithLabelValues(t.String(), outcome).Inc()
	recognitionDuration.WithLabelValues(t.String()).Observe(seconds)
}

func (r *Recorder) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}
