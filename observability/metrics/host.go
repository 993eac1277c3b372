package metrics

import (
	"math/big"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"olympuspro/core/events"
	"olympuspro/core/types"
)

// HostMetrics records contract call outcomes and the bond activity carried in
// committed events.
type HostMetrics struct {
	calls       *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	events      *prometheus.CounterVec
	deposited   *prometheus.CounterVec
	paidOut     *prometheus.CounterVec
	redeemed    *prometheus.CounterVec
	adjustments *prometheus.CounterVec
}

var (
	hostOnce     sync.Once
	hostRegistry *HostMetrics
)

// Host returns the process-wide host metrics, registering them on first use.
func Host() *HostMetrics {
	hostOnce.Do(func() {
		hostRegistry = newHostMetrics()
		prometheus.MustRegister(hostRegistry.collectors()...)
	})
	return hostRegistry
}

// NewHostMetrics returns collectors registered on reg instead of the default
// registry.
func NewHostMetrics(reg prometheus.Registerer) *HostMetrics {
	m := newHostMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

func newHostMetrics() *HostMetrics {
	return &HostMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "olympuspro",
			Subsystem: "host",
			Name:      "calls_total",
			Help:      "Top-level contract calls by entry point and outcome.",
		}, []string{"entry", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "olympuspro",
			Subsystem: "host",
			Name:      "call_duration_seconds",
			Help:      "Latency of top-level contract calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entry"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "olympuspro",
			Subsystem: "host",
			Name:      "events_total",
			Help:      "Committed events by type.",
		}, []string{"type"}),
		deposited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "olympuspro",
			Subsystem: "bond",
			Name:      "principal_deposited_total",
			Help:      "Principal received by bonds in base units.",
		}, []string{"bond"}),
		paidOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "olympuspro",
			Subsystem: "bond",
			Name:      "payout_issued_total",
			Help:      "Payout owed to depositors in base units.",
		}, []string{"bond"}),
		redeemed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "olympuspro",
			Subsystem: "bond",
			Name:      "payout_redeemed_total",
			Help:      "Vested payout released to depositors in base units.",
		}, []string{"bond"}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "olympuspro",
			Subsystem: "bond",
			Name:      "control_variable_adjustments_total",
			Help:      "Adjustment ticks applied to the control variable.",
		}, []string{"bond"}),
	}
}

func (m *HostMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.calls, m.latency, m.events, m.deposited, m.paidOut, m.redeemed, m.adjustments}
}

// ObserveCall records the outcome of one top-level call.
func (m *HostMetrics) ObserveCall(entry string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	if entry == "" {
		entry = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.calls.WithLabelValues(entry, outcome).Inc()
	m.latency.WithLabelValues(entry).Observe(elapsed.Seconds())
}

// ObserveEvents folds committed events into the bond counters.
func (m *HostMetrics) ObserveEvents(evs []types.Event) {
	if m == nil {
		return
	}
	for _, ev := range evs {
		m.events.WithLabelValues(ev.Type).Inc()
		bond := ev.Attributes["bond"]
		switch ev.Type {
		case events.TypeBondDeposited:
			addAmount(m.deposited, bond, ev.Attributes["deposit"])
			addAmount(m.paidOut, bond, ev.Attributes["payout"])
		case events.TypeBondRedeemed:
			addAmount(m.redeemed, bond, ev.Attributes["payout"])
		case events.TypeControlVariableAdjusted:
			m.adjustments.WithLabelValues(bond).Inc()
		}
	}
}

func addAmount(vec *prometheus.CounterVec, bond, raw string) {
	amount, ok := new(big.Float).SetString(raw)
	if !ok || amount.Sign() < 0 {
		return
	}
	value, _ := amount.Float64()
	vec.WithLabelValues(bond).Add(value)
}
