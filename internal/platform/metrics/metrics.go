package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the proxy.
type Metrics struct {
	registry                *prometheus.Registry
	requestsTotal           prometheus.Counter
	errorsTotal             prometheus.Counter
	playlistsRewrittenTotal prometheus.Counter
	tokensIssuedTotal       prometheus.Counter
	tokensExpiredTotal      prometheus.Counter
	segmentsRelayedTotal    prometheus.Counter
	upstreamErrorsTotal     prometheus.Counter
	activeTokens            prometheus.Gauge
}

// New creates and registers the proxy metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hls_proxy_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hls_proxy_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		playlistsRewrittenTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hls_proxy_playlists_rewritten_total",
			Help: "Total number of upstream playlists fetched and rewritten",
		}),
		tokensIssuedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hls_proxy_tokens_issued_total",
			Help: "Total number of segment tokens issued",
		}),
		tokensExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hls_proxy_tokens_expired_total",
			Help: "Total number of expired tokens removed by the sweeper",
		}),
		segmentsRelayedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hls_proxy_segments_relayed_total",
			Help: "Total number of segments streamed to completion",
		}),
		upstreamErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hls_proxy_upstream_errors_total",
			Help: "Total number of failed upstream playlist or segment fetches",
		}),
		activeTokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hls_proxy_active_tokens",
			Help: "Number of tokens currently held, including expired ones not yet swept",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.playlistsRewrittenTotal,
		m.tokensIssuedTotal,
		m.tokensExpiredTotal,
		m.segmentsRelayedTotal,
		m.upstreamErrorsTotal,
		m.activeTokens,
	)
	return m
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncPlaylistsRewritten increments the rewritten playlists counter.
func (m *Metrics) IncPlaylistsRewritten() {
	m.playlistsRewrittenTotal.Inc()
}

// AddTokensIssued adds n to the issued tokens counter.
func (m *Metrics) AddTokensIssued(n int) {
	if n > 0 {
		m.tokensIssuedTotal.Add(float64(n))
	}
}

// AddTokensExpired adds n to the expired tokens counter.
func (m *Metrics) AddTokensExpired(n int) {
	if n > 0 {
		m.tokensExpiredTotal.Add(float64(n))
	}
}

// IncSegmentsRelayed increments the relayed segments counter.
func (m *Metrics) IncSegmentsRelayed() {
	m.segmentsRelayedTotal.Inc()
}

// IncUpstreamErrors increments the upstream failure counter.
func (m *Metrics) IncUpstreamErrors() {
	m.upstreamErrorsTotal.Inc()
}

// SetActiveTokens sets the active tokens gauge.
func (m *Metrics) SetActiveTokens(n int) {
	m.activeTokens.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. active tokens).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		h.ServeHTTP(w, r)
	})
}
