// Package testing provides helpers for asserting OpenTelemetry metrics in
// unit tests without an external collector.
//
// Usage:
//
//	mp := obstesting.NewTestMeterProvider()
//	mp.Install(t)
//
//	// Run code that records metrics
//
//	rm := mp.Collect(t)
//	obstesting.AssertCounter(t, rm, "bidzu.credential.refreshes", 1,
//	    attribute.String("outcome", "success"))
package testing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const metricNotFoundErrMsg = "metric %s not found"

// TestMeterProvider wraps the SDK MeterProvider and manual reader for testing.
type TestMeterProvider struct {
	*sdkmetric.MeterProvider
	Reader *sdkmetric.ManualReader
}

// NewTestMeterProvider creates a MeterProvider with a manual reader, so
// metrics are collected on demand instead of exported periodically.
func NewTestMeterProvider() *TestMeterProvider {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
	)

	return &TestMeterProvider{
		MeterProvider: provider,
		Reader:        reader,
	}
}

// Install makes the provider global for the duration of the test.
func (tmp *TestMeterProvider) Install(t *testing.T) {
	t.Helper()
	otel.SetMeterProvider(tmp)
	t.Cleanup(func() {
		_ = tmp.Shutdown(context.Background())
	})
}

// Collect reads all metrics from the provider.
func (tmp *TestMeterProvider) Collect(t *testing.T) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	err := tmp.Reader.Collect(context.Background(), &rm)
	require.NoError(t, err, "failed to collect metrics")
	return rm
}

// FindMetric finds a metric by name. Returns nil if not found.
func FindMetric(rm metricdata.ResourceMetrics, metricName string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == metricName {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// CounterValue sums the points of an int64 counter whose attributes include all of attrs.
func CounterValue(rm metricdata.ResourceMetrics, metricName string, attrs ...attribute.KeyValue) (int64, error) {
	m := FindMetric(rm, metricName)
	if m == nil {
		return 0, fmt.Errorf(metricNotFoundErrMsg, metricName)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		return 0, fmt.Errorf("metric %s is not an int64 Sum", metricName)
	}

	var total int64
	for _, dp := range sum.DataPoints {
		if hasAttributes(dp.Attributes, attrs) {
			total += dp.Value
		}
	}
	return total, nil
}

// HistogramCount totals the observations of a float64 histogram whose
// attributes include all of attrs.
func HistogramCount(rm metricdata.ResourceMetrics, metricName string, attrs ...attribute.KeyValue) (uint64, error) {
	m := FindMetric(rm, metricName)
	if m == nil {
		return 0, fmt.Errorf(metricNotFoundErrMsg, metricName)
	}
	hist, ok := m.Data.(metricdata.Histogram[float64])
	if !ok {
		return 0, fmt.Errorf("metric %s is not a float64 Histogram", metricName)
	}

	var total uint64
	for _, dp := range hist.DataPoints {
		if hasAttributes(dp.Attributes, attrs) {
			total += dp.Count
		}
	}
	return total, nil
}

// AssertCounter asserts the value of a counter, restricted to points carrying attrs.
func AssertCounter(t *testing.T, rm metricdata.ResourceMetrics, metricName string, expected int64, attrs ...attribute.KeyValue) {
	t.Helper()
	got, err := CounterValue(rm, metricName, attrs...)
	require.NoError(t, err)
	assert.Equal(t, expected, got, "metric %s value mismatch", metricName)
}

// AssertHistogramCount asserts how many observations a histogram recorded.
func AssertHistogramCount(t *testing.T, rm metricdata.ResourceMetrics, metricName string, expected uint64, attrs ...attribute.KeyValue) {
	t.Helper()
	got, err := HistogramCount(rm, metricName, attrs...)
	require.NoError(t, err)
	assert.Equal(t, expected, got, "metric %s count mismatch", metricName)
}

// AssertMetricExists asserts that a metric with the given name exists.
func AssertMetricExists(t *testing.T, rm metricdata.ResourceMetrics, metricName string) {
	t.Helper()
	require.NotNil(t, FindMetric(rm, metricName), metricNotFoundErrMsg, metricName)
}

func hasAttributes(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		v, ok := set.Value(kv.Key)
		if !ok || v != kv.Value {
			return false
		}
	}
	return true
}
