package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// counterValue は指定ラベルを持つカウンタの値を返す。見つからない場合は-1を返す。
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return -1
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

func TestNewCollector_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	_ = NewCollector(reg)
}

// TestRecordSubscriptionOutcomes は結果ラベルごとにカウンタが増加することを検証する。
func TestRecordSubscriptionOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSubscriptionAccepted()
	c.RecordSubscriptionAccepted()
	c.RecordSubscriptionRejected("name")
	c.RecordSubscriptionRejected("email")
	c.RecordSubscriptionRejected("email")
	c.RecordSubscriptionFailed("duplicate_email")

	tests := []struct {
		labels map[string]string
		want   float64
	}{
		{labels: map[string]string{"outcome": OutcomeAccepted, "reason": ""}, want: 2},
		{labels: map[string]string{"outcome": OutcomeRejected, "reason": "name"}, want: 1},
		{labels: map[string]string{"outcome": OutcomeRejected, "reason": "email"}, want: 2},
		{labels: map[string]string{"outcome": OutcomeFailed, "reason": "duplicate_email"}, want: 1},
	}

	for _, tt := range tests {
		got := counterValue(t, reg, "newsletter_subscriptions_total", tt.labels)
		if got != tt.want {
			t.Errorf("newsletter_subscriptions_total%v = %v, want %v", tt.labels, got, tt.want)
		}
	}
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はHTTPステータスカウンタがラベル付きで増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(400)

	if got := counterValue(t, reg, "newsletter_http_status_total", map[string]string{"status_code": "200"}); got != 2 {
		t.Errorf("status_code=200 = %v, want 2", got)
	}
	if got := counterValue(t, reg, "newsletter_http_status_total", map[string]string{"status_code": "400"}); got != 1 {
		t.Errorf("status_code=400 = %v, want 1", got)
	}
}

func TestNopCollector_DoesNotPanic(t *testing.T) {
	var c MetricsCollector = NopCollector{}
	c.RecordSubscriptionAccepted()
	c.RecordSubscriptionRejected("name")
	c.RecordSubscriptionFailed("storage")
	c.RecordHTTPStatus(500)
}
