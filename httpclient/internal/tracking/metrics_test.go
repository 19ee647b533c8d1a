package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	obstesting "github.com/Bidzuweb/Bidzu-Final/observability/testing"
)

func setupTestMeterProvider(t *testing.T) *obstesting.TestMeterProvider {
	t.Helper()
	ResetForTesting()

	mp := obstesting.NewTestMeterProvider()
	mp.Install(t)
	t.Cleanup(ResetForTesting)
	return mp
}

func TestRecordAttempt(t *testing.T) {
	mp := setupTestMeterProvider(t)

	RecordAttempt(context.Background(), "GET", 401, 0, 20*time.Millisecond, "")
	RecordAttempt(context.Background(), "GET", 0, 1, 5*time.Millisecond, "network")

	rm := mp.Collect(t)
	obstesting.AssertHistogramCount(t, rm, metricRequestDuration, 2, attribute.String(attrHTTPRequestMethod, "GET"))
	obstesting.AssertHistogramCount(t, rm, metricRequestDuration, 1,
		attribute.String(attrErrorType, "401"),
		attribute.Int(attrHTTPResponseStatus, 401),
	)
	obstesting.AssertHistogramCount(t, rm, metricRequestDuration, 1,
		attribute.String(attrErrorType, "network"),
		attribute.Int(attrAttempt, 1),
	)

	hist, ok := obstesting.FindMetric(rm, metricRequestDuration).Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	for _, dp := range hist.DataPoints {
		if v, _ := dp.Attributes.Value(attrErrorType); v.AsString() == "network" {
			_, hasStatus := dp.Attributes.Value(attrHTTPResponseStatus)
			assert.False(t, hasStatus, "transport failures carry no status")
		}
	}
	assert.True(t, IsInitialized())
}

func TestRecordRefreshAndAuthFailure(t *testing.T) {
	mp := setupTestMeterProvider(t)

	RecordRefresh(context.Background(), "success")
	RecordRefresh(context.Background(), "success")
	RecordRefresh(context.Background(), "skipped")
	RecordAuthFailure(context.Background(), "no identity")

	rm := mp.Collect(t)
	obstesting.AssertCounter(t, rm, metricRefreshes, 2, attribute.String(attrOutcome, "success"))
	obstesting.AssertCounter(t, rm, metricRefreshes, 1, attribute.String(attrOutcome, "skipped"))
	obstesting.AssertCounter(t, rm, metricAuthFailures, 1, attribute.String(attrReason, "no identity"))
}

func TestResetForTesting(t *testing.T) {
	setupTestMeterProvider(t)

	RecordRefresh(context.Background(), "success")
	assert.True(t, IsInitialized())

	ResetForTesting()
	assert.False(t, IsInitialized())
}
