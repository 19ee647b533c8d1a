// Package tracking records OpenTelemetry metrics for the backend client.
package tracking

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	clientMeterName = "bidzu/httpclient"

	metricRequestDuration = "http.client.request.duration" // Histogram in seconds
	metricRefreshes       = "bidzu.credential.refreshes"   // Counter
	metricAuthFailures    = "bidzu.auth.failures"          // Counter

	attrHTTPRequestMethod  = "http.request.method"
	attrHTTPResponseStatus = "http.response.status_code"
	attrErrorType          = "error.type"
	attrAttempt            = "bidzu.attempt"
	attrOutcome            = "bidzu.refresh.outcome"
	attrReason             = "bidzu.auth.reason"
)

var durationBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5, 7.5, 10,
}

var (
	clientMeter   metric.Meter
	meterOnce     sync.Once
	meterInitMu   sync.Mutex
	metricsInited bool

	durationHistogram  metric.Float64Histogram
	refreshCounter     metric.Int64Counter
	authFailureCounter metric.Int64Counter
)

// logMetricError reports instrument creation failures without failing requests.
func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize client metric %s: %v\n", metricName, err)
	}
}

func initClientMeter() {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()

	if clientMeter != nil {
		return
	}

	clientMeter = otel.Meter(clientMeterName)

	var err error
	durationHistogram, err = clientMeter.Float64Histogram(
		metricRequestDuration,
		metric.WithDescription("Duration of backend request attempts"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	logMetricError(metricRequestDuration, err)

	refreshCounter, err = clientMeter.Int64Counter(
		metricRefreshes,
		metric.WithDescription("Credential refreshes by outcome"),
		metric.WithUnit("{refresh}"),
	)
	logMetricError(metricRefreshes, err)

	authFailureCounter, err = clientMeter.Int64Counter(
		metricAuthFailures,
		metric.WithDescription("Forced logouts by reason"),
		metric.WithUnit("{failure}"),
	)
	logMetricError(metricAuthFailures, err)

	metricsInited = true
}

func ensureInitialized() {
	meterOnce.Do(initClientMeter)
}

// RecordAttempt records one network attempt. status is 0 when no response arrived.
func RecordAttempt(ctx context.Context, method string, status, attempt int, duration time.Duration, errorType string) {
	ensureInitialized()
	if durationHistogram == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrHTTPRequestMethod, method),
		attribute.Int(attrAttempt, attempt),
	}
	if status > 0 {
		attrs = append(attrs, attribute.Int(attrHTTPResponseStatus, status))
	}
	if errorType == "" && status >= 400 {
		errorType = strconv.Itoa(status)
	}
	if errorType != "" {
		attrs = append(attrs, attribute.String(attrErrorType, errorType))
	}
	durationHistogram.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordRefresh counts a credential refresh with its outcome (success, skipped, failed).
func RecordRefresh(ctx context.Context, outcome string) {
	ensureInitialized()
	if refreshCounter != nil {
		refreshCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, outcome)))
	}
}

// RecordAuthFailure counts a forced logout.
func RecordAuthFailure(ctx context.Context, reason string) {
	ensureInitialized()
	if authFailureCounter != nil {
		authFailureCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
	}
}

// IsInitialized returns true if client metrics have been initialized.
func IsInitialized() bool {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()
	return metricsInited
}

// ResetForTesting resets the metric state. Tests only.
func ResetForTesting() {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()

	clientMeter = nil
	durationHistogram = nil
	refreshCounter = nil
	authFailureCounter = nil
	metricsInited = false
	meterOnce = sync.Once{}
}
