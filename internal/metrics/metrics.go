// Package metrics exposes Prometheus instrumentation for the paywall.
// All Observe methods are safe to call on a nil *Metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the paywall.
type Metrics struct {
	// Payment flow
	PaymentsInitiatedTotal *prometheus.CounterVec
	PaymentOutcomesTotal   *prometheus.CounterVec
	PollAttempts           *prometheus.HistogramVec
	BypassesTotal          *prometheus.CounterVec
	ConfigErrorsTotal      *prometheus.CounterVec
	ActiveDialogs          prometheus.Gauge

	// Gateway
	GatewayRequestDuration *prometheus.HistogramVec
	GatewayErrorsTotal     *prometheus.CounterVec

	// Callbacks and reconciliation
	CallbacksReceivedTotal *prometheus.CounterVec
	SweeperReconciledTotal *prometheus.CounterVec

	// Rate limiting
	RateLimitHitsTotal *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		PaymentsInitiatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpw_payments_initiated_total",
				Help: "STK push payments sent to the gateway",
			},
			[]string{"service_type", "action_type"},
		),
		PaymentOutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpw_payment_outcomes_total",
				Help: "Terminal poll outcomes (success, failed, timeout)",
			},
			[]string{"outcome"},
		),
		PollAttempts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mpw_poll_attempts",
				Help:    "Number of callback polls before a terminal outcome",
				Buckets: []float64{1, 2, 5, 10, 20, 30, 40},
			},
			[]string{"outcome"},
		),
		BypassesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpw_payment_bypasses_total",
				Help: "Dialogs that succeeded without charging, by reason",
			},
			[]string{"reason"},
		),
		ConfigErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpw_pricing_missing_total",
				Help: "Payment decisions blocked by missing pricing",
			},
			[]string{"service_type"},
		),
		ActiveDialogs: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mpw_active_dialogs",
				Help: "Dialogs currently open",
			},
		),
		GatewayRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mpw_gateway_request_duration_seconds",
				Help:    "Latency of STK push trigger calls",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"result"},
		),
		GatewayErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpw_gateway_errors_total",
				Help: "STK push trigger failures by error code",
			},
			[]string{"code"},
		),
		CallbacksReceivedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpw_callbacks_received_total",
				Help: "Gateway callbacks ingested",
			},
			[]string{"result"},
		),
		SweeperReconciledTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpw_sweeper_reconciled_total",
				Help: "Pending transactions settled out of band",
			},
			[]string{"status"},
		),
		RateLimitHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpw_rate_limit_hits_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"group"},
		),
	}
}

// ObserveInitiated records an STK push sent to the gateway.
func (m *Metrics) ObserveInitiated(serviceType, actionType string) {
	if m == nil {
		return
	}
	m.PaymentsInitiatedTotal.WithLabelValues(serviceType, actionType).Inc()
}

// ObserveOutcome records how a poll run ended.
func (m *Metrics) ObserveOutcome(outcome string, attempts int) {
	if m == nil {
		return
	}
	m.PaymentOutcomesTotal.WithLabelValues(outcome).Inc()
	m.PollAttempts.WithLabelValues(outcome).Observe(float64(attempts))
}

func (m *Metrics) ObserveBypass(reason string) {
	if m == nil {
		return
	}
	m.BypassesTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObservePricingMissing(serviceType string) {
	if m == nil {
		return
	}
	m.ConfigErrorsTotal.WithLabelValues(serviceType).Inc()
}

// DialogOpened and DialogClosed track the open dialog gauge.
func (m *Metrics) DialogOpened() {
	if m == nil {
		return
	}
	m.ActiveDialogs.Inc()
}

func (m *Metrics) DialogClosed() {
	if m == nil {
		return
	}
	m.ActiveDialogs.Dec()
}

// ObserveGatewayCall records one trigger call. code is empty on success.
func (m *Metrics) ObserveGatewayCall(duration time.Duration, code string) {
	if m == nil {
		return
	}
	result := "ok"
	if code != "" {
		result = "error"
		m.GatewayErrorsTotal.WithLabelValues(code).Inc()
	}
	m.GatewayRequestDuration.WithLabelValues(result).Observe(duration.Seconds())
}

func (m *Metrics) ObserveCallback(result string) {
	if m == nil {
		return
	}
	m.CallbacksReceivedTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSweep(status string) {
	if m == nil {
		return
	}
	m.SweeperReconciledTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveRateLimit(group string) {
	if m == nil {
		return
	}
	m.RateLimitHitsTotal.WithLabelValues(group).Inc()
}
