package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"olympuspro/core/events"
	"olympuspro/core/types"
)

func TestObserveCall(t *testing.T) {
	m := NewHostMetrics(prometheus.NewRegistry())
	m.ObserveCall("execute", nil, time.Millisecond)
	m.ObserveCall("execute", errors.New("bond too small"), time.Millisecond)
	m.ObserveCall("", nil, time.Millisecond)

	if got := testutil.ToFloat64(m.calls.WithLabelValues("execute", "success")); got != 1 {
		t.Fatalf("success calls = %v", got)
	}
	if got := testutil.ToFloat64(m.calls.WithLabelValues("execute", "error")); got != 1 {
		t.Fatalf("error calls = %v", got)
	}
	if got := testutil.ToFloat64(m.calls.WithLabelValues("unknown", "success")); got != 1 {
		t.Fatalf("unknown calls = %v", got)
	}
}

func TestObserveEventsFoldsBondActivity(t *testing.T) {
	m := NewHostMetrics(prometheus.NewRegistry())
	m.ObserveEvents([]types.Event{
		{Type: events.TypeBondDeposited, Attributes: map[string]string{"bond": "b1", "deposit": "250000", "payout": "15894"}},
		{Type: events.TypeBondRedeemed, Attributes: map[string]string{"bond": "b1", "payout": "7947"}},
		{Type: events.TypeControlVariableAdjusted, Attributes: map[string]string{"bond": "b1"}},
		{Type: "wasm", Attributes: map[string]string{"action": "deposit"}},
		{Type: events.TypeBondDeposited, Attributes: map[string]string{"bond": "b1", "deposit": "garbage"}},
	})

	checks := []struct {
		vec  *prometheus.CounterVec
		want float64
	}{
		{m.deposited, 250000},
		{m.paidOut, 15894},
		{m.redeemed, 7947},
		{m.adjustments, 1},
	}
	for _, c := range checks {
		if got := testutil.ToFloat64(c.vec.WithLabelValues("b1")); got != c.want {
			t.Fatalf("got %v, want %v", got, c.want)
		}
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues(events.TypeBondDeposited)); got != 2 {
		t.Fatalf("deposit events = %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *HostMetrics
	m.ObserveCall("execute", nil, time.Second)
	m.ObserveEvents([]types.Event{{Type: "wasm"}})
}
