package service

import (
	"context"
	"strconv"

	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/llm"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports use-case, resolver and LLM call telemetry to Prometheus.
// It is a UseCaseObserver, an llm.Observer and a resolve hook at once.
type Metrics struct {
	useCases    *prometheus.CounterVec
	useCaseTime *prometheus.HistogramVec
	resolves    *prometheus.CounterVec
	llmCalls    *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	chatIntents *prometheus.CounterVec
}

// NewMetrics registers every collector on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		useCases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskpilot",
			Name:      "use_case_total",
			Help:      "Service use cases executed, by name and outcome.",
		}, []string{"use_case", "success"}),
		useCaseTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "taskpilot",
			Name:      "use_case_duration_seconds",
			Help:      "Service use case latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"use_case"}),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskpilot",
			Name:      "resolver_commands_total",
			Help:      "Commands resolved, by the resolver that produced them.",
		}, []string{"source"}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskpilot",
			Name:      "llm_calls_total",
			Help:      "LLM calls, by provider and error code.",
		}, []string{"provider", "error_code"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "taskpilot",
			Name:      "llm_call_duration_seconds",
			Help:      "LLM call latency including retries.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
		chatIntents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskpilot",
			Name:      "chat_intents_total",
			Help:      "Chat messages by resolved intent and execution state.",
		}, []string{"intent", "state"}),
	}
	reg.MustRegister(m.useCases, m.useCaseTime, m.resolves, m.llmCalls, m.llmLatency, m.chatIntents)
	return m
}

func (m *Metrics) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	m.useCases.WithLabelValues(event.Name, strconv.FormatBool(event.Success)).Inc()
	m.useCaseTime.WithLabelValues(event.Name).Observe(event.Duration.Seconds())

	intent, _ := event.Fields["intent"].(intelligence.IntentKind)
	state, _ := event.Fields["state"].(intelligence.ExecutionState)
	if intent != "" && state != "" {
		m.chatIntents.WithLabelValues(string(intent), string(state)).Inc()
	}
}

// OnCallComplete implements llm.Observer.
func (m *Metrics) OnCallComplete(event llm.LLMCallEvent) {
	code := event.ErrorCode
	if event.Success {
		code = "OK"
	}
	m.llmCalls.WithLabelValues(string(event.Provider), code).Inc()
	m.llmLatency.WithLabelValues(string(event.Provider)).Observe(float64(event.LatencyMs) / 1000)
}

// ObserveResolve matches intelligence.WithResolveHook.
func (m *Metrics) ObserveResolve(source intelligence.ResolverSource, _ error) {
	m.resolves.WithLabelValues(string(source)).Inc()
}
