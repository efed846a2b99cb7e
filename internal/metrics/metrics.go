package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Verify outcomes
const (
	OutcomeSuccess          = "success"
	OutcomeInvalidRequest   = "invalid_request"
	OutcomeInvalidChallenge = "invalid_challenge"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeError            = "error"
)

// Metrics holds the service collectors
type Metrics struct {
	NoncesIssued   prometheus.Counter
	VerifyOutcome  *prometheus.CounterVec
	Logouts        prometheus.Counter
	HandlerSeconds *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		NoncesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "walletauth_nonces_issued_total",
			Help: "Total number of issued challenge nonces",
		}),
		VerifyOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "walletauth_verify_outcome_total",
			Help: "Verify outcomes by result",
		}, []string{"outcome"}),
		Logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "walletauth_logouts_total",
			Help: "Total number of destroyed sessions",
		}),
		HandlerSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "walletauth_handler_seconds",
			Help:    "Time spent handling HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.NoncesIssued,
		m.VerifyOutcome,
		m.Logouts,
		m.HandlerSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
