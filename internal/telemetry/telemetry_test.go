package telemetry_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ups/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "WARN", "error", "bogus"} {
		logger, err := telemetry.NewLogger(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}
}

func TestNewLogger_LogsWithContext(t *testing.T) {
	logger, err := telemetry.NewLogger("debug")
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		logger.Ctx(context.Background()).Error("carrier unreachable")
		logger.Ctx(context.Background()).Debug("rate request sent")
	})
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)

	m.RecordRequest("computeShippingRate", "ups", "success", 0.2)
	m.RecordRequest("computeShippingRate", "ups", "success", 0.1)
	m.RecordError("ups", "carrier_request")
	m.RecordLabel("ups")

	assert.Equal(t, 2.0, counterValue(t, reg, "ups_requests_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "ups_carrier_errors_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "ups_labels_generated_total"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		total := 0.0
		for _, metric := range f.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		return total
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.NewMetrics(prometheus.NewRegistry())
		telemetry.NewMetrics(prometheus.NewRegistry())
	})
}

func TestInitTracer(t *testing.T) {
	ctx := context.Background()
	tracer, shutdown, err := telemetry.InitTracer(ctx, "http://127.0.0.1:4318", "test", "0.0.1",
		attribute.String("store.driver", "sqlite"))
	require.NoError(t, err)
	require.NotNil(t, tracer)

	_, span := tracer.Start(ctx, "op")
	span.End()

	assert.NotNil(t, shutdown)
}
