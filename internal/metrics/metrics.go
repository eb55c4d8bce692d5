// Package metrics registers the swapscout Prometheus collectors:
//
//	swapscout_market_provider_calls_total{provider,operation,outcome}
//	swapscout_quote_fetches_total{swapper,outcome}
//	swapscout_quote_stale_discarded_total{swapper}
//	swapscout_quote_events_total{actionable}
//
// plus go_* and process_* runtime metrics. Handler serves them for /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "swapscout"

// Provider call outcomes.
const (
	OutcomeHit   = "hit"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

var (
	once           sync.Once
	registry       *prometheus.Registry
	providerCalls  *prometheus.CounterVec
	quoteFetches   *prometheus.CounterVec
	staleDiscarded *prometheus.CounterVec
	quoteEvents    *prometheus.CounterVec
)

// Init creates and registers the collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		providerCalls = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "market",
				Name:      "provider_calls_total",
				Help:      "Market data provider calls by provider, operation and outcome.",
			},
			[]string{"provider", "operation", "outcome"},
		)
		quoteFetches = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "quote",
				Name:      "fetches_total",
				Help:      "Swapper quote fetches by swapper and outcome.",
			},
			[]string{"swapper", "outcome"},
		)
		staleDiscarded = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "quote",
				Name:      "stale_discarded_total",
				Help:      "Quote responses dropped because a newer fetch for the swapper had started.",
			},
			[]string{"swapper"},
		)
		quoteEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "quote",
				Name:      "events_total",
				Help:      "Quotes-received telemetry events emitted.",
			},
			[]string{"actionable"},
		)

		registry.MustRegister(
			providerCalls,
			quoteFetches,
			staleDiscarded,
			quoteEvents,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ProviderCall records one market data provider call.
func ProviderCall(provider, operation, outcome string) {
	if providerCalls != nil {
		providerCalls.WithLabelValues(provider, operation, outcome).Inc()
	}
}

// QuoteFetch records one swapper fetch result.
func QuoteFetch(swapper, outcome string) {
	if quoteFetches != nil {
		quoteFetches.WithLabelValues(swapper, outcome).Inc()
	}
}

// StaleQuoteDiscarded records a superseded response that was ignored.
func StaleQuoteDiscarded(swapper string) {
	if staleDiscarded != nil {
		staleDiscarded.WithLabelValues(swapper).Inc()
	}
}

// QuoteEvent records an emitted quotes-received event.
func QuoteEvent(actionable bool) {
	if quoteEvents != nil {
		quoteEvents.WithLabelValues(strconv.FormatBool(actionable)).Inc()
	}
}
