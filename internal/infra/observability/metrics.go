package observability

import (
	"time"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Fallback reasons.
const (
	FallbackNoGenerator = "no_generator"
	FallbackError       = "generation_error"
)

// Metrics holds all Prometheus metrics for the chat BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	turns              *prometheus.CounterVec
	fallbacks          *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	generationErrors   *prometheus.CounterVec
	tokensUsed         *prometheus.CounterVec
	activeSessions     prometheus.Gauge
	evictedSessions    prometheus.Counter
	quoteForms         *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		turns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cargochat_turns_total",
				Help: "Chat turns processed, by resolved intent and reply source.",
			},
			[]string{"intent", "source"},
		),
		fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cargochat_fallback_responses_total",
				Help: "Turns answered with the canned reply instead of generated text.",
			},
			[]string{"reason"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cargochat_generation_duration_seconds",
				Help:    "Latency of calls to the text-generation endpoint.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		generationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cargochat_generation_errors_total",
				Help: "Failed calls to the text-generation endpoint.",
			},
			[]string{"provider"},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cargochat_llm_tokens_total",
				Help: "Total LLM tokens consumed.",
			},
			[]string{"type"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cargochat_active_sessions",
				Help: "Sessions currently held in memory.",
			},
		),
		evictedSessions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cargochat_evicted_sessions_total",
				Help: "Sessions removed by the inactivity sweep.",
			},
		),
		quoteForms: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cargochat_quote_forms_total",
				Help: "Quote form lifecycle events.",
			},
			[]string{"event"},
		),
	}
}

// RecordTurn counts one answered message.
func (m *Metrics) RecordTurn(intent, source string) {
	m.turns.WithLabelValues(intent, source).Inc()
}

// IncrFallback counts a canned-reply substitution.
func (m *Metrics) IncrFallback(reason string) {
	m.fallbacks.WithLabelValues(reason).Inc()
}

// RecordGeneration records the latency of one generation call.
func (m *Metrics) RecordGeneration(provider string, d time.Duration, err error) {
	m.generationDuration.WithLabelValues(provider).Observe(d.Seconds())
	if err != nil {
		m.generationErrors.WithLabelValues(provider).Inc()
	}
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(prompt, completion int) {
	m.tokensUsed.WithLabelValues("prompt").Add(float64(prompt))
	m.tokensUsed.WithLabelValues("completion").Add(float64(completion))
}

// SetActiveSessions updates the session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// AddEvicted counts swept sessions.
func (m *Metrics) AddEvicted(n int) {
	m.evictedSessions.Add(float64(n))
}

// IncrQuoteForm counts a quote form event: started, completed, cancelled.
func (m *Metrics) IncrQuoteForm(event string) {
	m.quoteForms.WithLabelValues(event).Inc()
}

// Snapshot returns the cumulative counters as the JSON served by
// GET /api/chat/metrics.
func (m *Metrics) Snapshot() *domain.ChatMetrics {
	byIntent := map[string]int64{}
	var total, fallbacks, genErrors float64

	for _, mf := range m.gather() {
		switch mf.GetName() {
		case "cargochat_turns_total":
			for _, metric := range mf.GetMetric() {
				v := metric.GetCounter().GetValue()
				total += v
				for _, lp := range metric.GetLabel() {
					if lp.GetName() == "intent" {
						byIntent[lp.GetValue()] += int64(v)
					}
				}
			}
		case "cargochat_fallback_responses_total":
			for _, metric := range mf.GetMetric() {
				fallbacks += metric.GetCounter().GetValue()
			}
		case "cargochat_generation_errors_total":
			for _, metric := range mf.GetMetric() {
				genErrors += metric.GetCounter().GetValue()
			}
		}
	}

	fallbackRate := float64(0)
	if total > 0 {
		fallbackRate = fallbacks / total
	}

	return &domain.ChatMetrics{
		TotalTurns:       int64(total),
		TurnsByIntent:    byIntent,
		FallbackRate:     fallbackRate,
		GenerationErrors: int64(genErrors),
		PromptTokens:     int64(getCounterValue(m.tokensUsed, "prompt")),
		CompletionTokens: int64(getCounterValue(m.tokensUsed, "completion")),
		ActiveSessions:   int64(getGaugeValue(m.activeSessions)),
		EvictedSessions:  int64(getCounterValue(m.evictedSessions)),
		Period:           "all_time",
	}
}

func (m *Metrics) gather() []*dto.MetricFamily {
	mfs, err := m.Registry.Gather()
	if err != nil {
		return nil
	}
	return mfs
}

// getCounterValue extracts the current value of a counter. For a CounterVec
// the single label value selects the child.
func getCounterValue(c prometheus.Collector, label ...string) float64 {
	var metric prometheus.Metric
	switch v := c.(type) {
	case *prometheus.CounterVec:
		metric = v.WithLabelValues(label...)
	case prometheus.Counter:
		metric = v
	default:
		return 0
	}
	out := &dto.Metric{}
	if err := metric.Write(out); err != nil {
		return 0
	}
	if out.Counter != nil && out.Counter.Value != nil {
		return *out.Counter.Value
	}
	return 0
}

func getGaugeValue(g prometheus.Gauge) float64 {
	out := &dto.Metric{}
	if err := g.Write(out); err != nil {
		return 0
	}
	return out.GetGauge().GetValue()
}
