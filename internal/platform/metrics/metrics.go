package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	RegistrationOutcomes *prometheus.CounterVec
	AccountCallDuration  *prometheus.HistogramVec
	AlertsIssued         *prometheus.CounterVec
	SubmitsJoined        prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New creates and registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_registration_outcomes_total",
			Help: "Registration submit outcomes by terminal state",
		}, []string{"outcome"}),
		AccountCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signup_account_register_duration_seconds",
			Help:    "Latency of account service register calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"result"}),
		AlertsIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_alerts_issued_total",
			Help: "Alerts issued to browser sessions by kind",
		}, []string{"kind"}),
		SubmitsJoined: factory.NewCounter(prometheus.CounterOpts{
			Name: "signup_submits_joined_total",
			Help: "Duplicate submits that joined an in-flight register call",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signup_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// IncRegistrationOutcome counts a terminal submit state.
func (m *Metrics) IncRegistrationOutcome(outcome string) {
	if m == nil {
		return
	}
	m.RegistrationOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveAccountCall records the latency of one register call.
func (m *Metrics) ObserveAccountCall(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.AccountCallDuration.WithLabelValues(result).Observe(d.Seconds())
}

// IncAlert counts an issued alert.
func (m *Metrics) IncAlert(kind string) {
	if m == nil {
		return
	}
	m.AlertsIssued.WithLabelValues(kind).Inc()
}

// IncSubmitsJoined counts a submit that shared an in-flight call.
func (m *Metrics) IncSubmitsJoined() {
	if m == nil {
		return
	}
	m.SubmitsJoined.Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
