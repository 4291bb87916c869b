package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline outcome labels.
const (
	OutcomeDone     = "done"
	OutcomeFailed   = "failed"
	OutcomeConflict = "conflict"
)

// Metrics holds the service collectors. A nil *Metrics is a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	transcriptionsStarted  *prometheus.CounterVec
	transcriptionsFinished *prometheus.CounterVec
	transcriptionDuration  *prometheus.HistogramVec
	completions            *prometheus.CounterVec
	completionTokens       prometheus.Counter
	wsConnections          prometheus.Gauge
}

// New registers the service metrics on reg. gatherer backs Handler and may
// be nil when reg is not also a Gatherer.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		gatherer: gatherer,
		transcriptionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transcriptions_started_total",
			Help: "Transcription runs started, by source.",
		}, []string{"source"}),
		transcriptionsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transcriptions_finished_total",
			Help: "Transcription runs finished, by outcome.",
		}, []string{"outcome"}),
		transcriptionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transcription_duration_seconds",
			Help:    "Duration of transcription runs in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"source"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_completions_total",
			Help: "AI completion requests, by result.",
		}, []string{"result"}),
		completionTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ai_completion_tokens_total",
			Help: "Tokens reported by the completion provider.",
		}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ws_connections",
			Help: "Open realtime websocket connections.",
		}),
	}
	reg.MustRegister(
		m.transcriptionsStarted,
		m.transcriptionsFinished,
		m.transcriptionDuration,
		m.completions,
		m.completionTokens,
		m.wsConnections,
	)
	return m
}

// NewRegistry returns Metrics on a fresh registry with the Go and process
// collectors attached.
func NewRegistry() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return New(reg, reg)
}

// TranscriptionStarted counts a run for source ("pdf" or "image").
func (m *Metrics) TranscriptionStarted(source string) {
	if m == nil {
		return
	}
	m.transcriptionsStarted.WithLabelValues(label(source)).Inc()
}

// TranscriptionFinished counts the outcome and records the run duration.
func (m *Metrics) TranscriptionFinished(source, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.transcriptionsFinished.WithLabelValues(label(outcome)).Inc()
	m.transcriptionDuration.WithLabelValues(label(source)).Observe(d.Seconds())
}

// CompletionRequested counts a completion attempt and its tokens.
func (m *Metrics) CompletionRequested(ok bool, tokens int) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.completions.WithLabelValues(result).Inc()
	if tokens > 0 {
		m.completionTokens.Add(float64(tokens))
	}
}

// ConnectionOpened increments the websocket gauge.
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.wsConnections.Inc()
}

// ConnectionClosed decrements the websocket gauge.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.wsConnections.Dec()
}

// Handler exposes metrics in Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	if m == nil || m.gatherer == nil {
		return func(c *gin.Context) { c.Status(http.StatusNotFound) }
	}
	return gin.WrapH(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
