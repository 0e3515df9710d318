package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func counterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, m := range mf.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == label && l.GetValue() == value {
				return m.GetCounter().GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg, reg)

	m.ObserveRequest("/create", "POST", 200, 30*time.Millisecond)
	m.ObserveRequest("/create", "POST", 200, 10*time.Millisecond)
	m.ObserveRequest("", "GET", 404, time.Millisecond)
	m.ExchangeCreated("merchant-a")
	m.AuthFailure("invalid_key")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := counterValue(mfs, "exchangeapi_requests_total", "route", "/create")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = counterValue(mfs, "exchangeapi_requests_total", "route", "unknown")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = counterValue(mfs, "exchangeapi_exchanges_created_total", MerchantLabel, "merchant-a")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = counterValue(mfs, "exchangeapi_auth_failures_total", "reason", "invalid_key")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	hist := findFamily(mfs, "exchangeapi_request_duration_seconds")
	require.NotNil(t, hist)
	assert.NotEmpty(t, hist.GetMetric())
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("/list", "GET", 200, time.Millisecond)
	m.ExchangeCreated("x")
	m.AuthFailure("x")
	assert.Nil(t, m.Registry())
}

func TestNewIncludesRuntimeCollectors(t *testing.T) {
	m := New()
	mfs, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotNil(t, findFamily(mfs, "go_goroutines"))
}

func TestFilterByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg, reg)
	m.ExchangeCreated("merchant-a")
	m.ExchangeCreated("merchant-b")
	m.AuthFailure("invalid_key")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	filtered := FilterByLabel(mfs, MerchantLabel, "merchant-a")
	created := findFamily(filtered, "exchangeapi_exchanges_created_total")
	require.NotNil(t, created)
	require.Len(t, created.GetMetric(), 1)
	assert.Equal(t, "merchant-a", created.GetMetric()[0].GetLabel()[0].GetValue())
	assert.NotNil(t, findFamily(filtered, "exchangeapi_auth_failures_total"))

	none := FilterByLabel(mfs, MerchantLabel, "merchant-z")
	assert.Nil(t, findFamily(none, "exchangeapi_exchanges_created_total"))
	assert.NotNil(t, findFamily(none, "exchangeapi_auth_failures_total"))
}
