package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)

	metrics.ObserveSplitDuration("success", 120*time.Millisecond)
	metrics.IncSplit("success")
	metrics.IncSplit("aborted")
	metrics.IncSession("completed")
	metrics.IncPlanEvent("resumed")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_splits_total", "outcome", "success"); err != nil {
		t.Fatalf("fetch splits: %v", err)
	} else if got != 1 {
		t.Fatalf("expected splits success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_splits_total", "outcome", "aborted"); err != nil {
		t.Fatalf("fetch aborted splits: %v", err)
	} else if got != 1 {
		t.Fatalf("expected splits aborted=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_sessions_total", "outcome", "completed"); err != nil {
		t.Fatalf("fetch sessions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected sessions completed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_plan_events_total", "event", "resumed"); err != nil {
		t.Fatalf("fetch plan events: %v", err)
	} else if got != 1 {
		t.Fatalf("expected plan resumed=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "checkout_split_duration_seconds", "outcome", "success"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCheckoutMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewCheckoutMetrics(nil)
	metrics.IncSplit("success")
	metrics.IncSession("completed")
	metrics.IncPlanEvent("discarded")
	metrics.ObserveSplitDuration("success", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
