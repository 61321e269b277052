package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce              sync.Once
	httpDurationHistogram     *prometheus.HistogramVec
	operationCounter          *prometheus.CounterVec
	publishRetryCounter       prometheus.Counter
	publishExhaustedCounter   prometheus.Counter
	invariantViolationCounter *prometheus.CounterVec
	idempotencyCounter        *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		operationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger operation outcomes",
		}, []string{"type", "outcome"})

		publishRetryCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "event_publish_retries_total",
			Help: "Event publication attempts that failed and were retried",
		})

		publishExhaustedCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "event_publish_exhausted_total",
			Help: "Event publications that failed on every attempt",
		})

		invariantViolationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_invariant_violations_total",
			Help: "Accounts found violating a balance invariant at rest",
		}, []string{"invariant"})

		idempotencyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_events_total",
			Help: "Idempotency middleware outcomes",
		}, []string{"outcome"})

		prometheus.MustRegister(
			httpDurationHistogram,
			operationCounter,
			publishRetryCounter,
			publishExhaustedCounter,
			invariantViolationCounter,
			idempotencyCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// IncrementOperation records one orchestrated flow outcome, e.g.
// ("debit", "completed") or ("transfer", "replayed").
func IncrementOperation(opType, outcome string) {
	if operationCounter == nil {
		return
	}
	operationCounter.WithLabelValues(opType, outcome).Inc()
}

func IncrementPublishRetry() {
	if publishRetryCounter == nil {
		return
	}
	publishRetryCounter.Inc()
}

func IncrementPublishExhausted() {
	if publishExhaustedCounter == nil {
		return
	}
	publishExhaustedCounter.Inc()
}

func IncrementInvariantViolation(invariant string) {
	if invariantViolationCounter == nil {
		return
	}
	invariantViolationCounter.WithLabelValues(invariant).Inc()
}

func IncrementIdempotencyEvent(outcome string) {
	if idempotencyCounter == nil {
		return
	}
	idempotencyCounter.WithLabelValues(outcome).Inc()
}
