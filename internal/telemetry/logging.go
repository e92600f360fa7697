// Package telemetry wires logging, tracing and metrics.
package telemetry

import (
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a JSON zap logger that also records log entries on the
// active span. Unknown levels fall back to info.
func NewLogger(level string, fields ...zap.Field) (*otelzap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.Encoding = "json"
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zapLogger, err := config.Build(zap.AddCallerSkip(1), zap.Fields(fields...))
	if err != nil {
		return nil, err
	}

	return otelzap.New(zapLogger,
		otelzap.WithMinLevel(zapLevel),
		otelzap.WithErrorStatusLevel(zap.ErrorLevel),
	), nil
}
