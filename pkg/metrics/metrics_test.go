package metrics

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodPost, "/users", http.StatusCreated, 120*time.Millisecond)
	m.Observe(http.MethodPost, "/users", http.StatusCreated, 80*time.Millisecond)
	m.Observe(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "/users", "status": "201"}); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 requests, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "unknown", "status": "404"}); err != nil {
		t.Fatalf("fetch unknown route: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unmatched route to be labelled unknown, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", map[string]string{"route": "/users"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0.19 || got >= 0.21 {
		t.Fatalf("expected duration sum ~0.2, got %f", got)
	}
}

func TestRegistrationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistrationMetrics(reg)
	m.IncRegistered("sms")
	m.IncFailure(ReasonDuplicate)
	m.IncFailure(ReasonDuplicate)
	m.IncFailure("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "user_registrations_total", map[string]string{"notification": "sms"}); err != nil || got != 1 {
		t.Fatalf("expected one sms registration, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "user_registration_failures_total", map[string]string{"reason": ReasonDuplicate}); err != nil || got != 2 {
		t.Fatalf("expected two duplicate failures, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "user_registration_failures_total", map[string]string{"reason": "unknown"}); err != nil || got != 1 {
		t.Fatalf("expected one unknown failure, got %f err=%v", got, err)
	}
}

func TestRegistrationNotificationLabelsStayBounded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistrationMetrics(reg)
	for i := 0; i < 50; i++ {
		m.IncRegistered(fmt.Sprintf("junk-%d", i))
	}
	m.IncRegistered("email")
	m.IncRegistered(" SMS ")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	mf := findMetricFamily(mfs, "user_registrations_total")
	if mf == nil {
		t.Fatalf("user_registrations_total not exported")
	}
	if got := len(mf.GetMetric()); got != 3 {
		t.Fatalf("expected 3 series (email, sms, other), got %d", got)
	}
	if got, err := fetchCounterValue(mfs, "user_registrations_total", map[string]string{"notification": NotificationOther}); err != nil || got != 50 {
		t.Fatalf("expected 50 other registrations, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "user_registrations_total", map[string]string{"notification": "sms"}); err != nil || got != 1 {
		t.Fatalf("expected sms to be normalized, got %f err=%v", got, err)
	}
}

func TestNilRegistererAndNilReceiverAreNoops(t *testing.T) {
	NewHTTPMetrics(nil).Observe(http.MethodGet, "/", http.StatusOK, time.Second)
	NewRegistrationMetrics(nil).IncRegistered("email")

	var m *RegistrationMetrics
	m.IncFailure(ReasonStore)
	var h *HTTPMetrics
	h.Observe(http.MethodGet, "/", http.StatusOK, time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
