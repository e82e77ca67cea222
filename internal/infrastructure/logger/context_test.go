package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	retrieved := FromContext(ctx)
	assert.Equal(t, logger, retrieved)
}

func TestFromContext_NotFound(t *testing.T) {
	ctx := context.Background()
	retrieved := FromContext(ctx)
	// should return a no-op logger, never nil
	require.NotNil(t, retrieved)
}

func TestWithRequestID(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	requestID := "req-123"

	newCtx, newLogger := WithRequestID(ctx, logger, requestID)

	assert.NotNil(t, newLogger)
	assert.Equal(t, requestID, GetRequestID(newCtx))
	assert.Equal(t, newLogger, FromContext(newCtx))
}

func TestWithTenantID(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	tenantID := "tenant-456"

	newCtx, newLogger := WithTenantID(ctx, logger, tenantID)

	assert.NotNil(t, newLogger)
	assert.Equal(t, tenantID, GetTenantID(newCtx))
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGetTenantID_NotFound(t *testing.T) {
	assert.Empty(t, GetTenantID(context.Background()))
}

func TestContextChaining(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	ctx, logger = WithRequestID(ctx, logger, "req-1")
	ctx, _ = WithTenantID(ctx, logger, "tenant-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "tenant-1", GetTenantID(ctx))
}

func TestContextKeys(t *testing.T) {
	assert.NotEqual(t, LoggerKey, RequestIDKey)
	assert.NotEqual(t, LoggerKey, TenantIDKey)
	assert.NotEqual(t, RequestIDKey, TenantIDKey)
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
	retrieved := FromContext(ctx)
	require.NotNil(t, retrieved)
}

func TestL_EnrichesWithContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx := context.Background()
	ctx = WithContext(ctx, logger)
	ctx = context.WithValue(ctx, RequestIDKey, "req-9")
	ctx = context.WithValue(ctx, TenantIDKey, "tenant-9")

	L(ctx).Info("shipment created")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "shipment created", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "tenant-9", fields["tenant_id"])
}

func TestL_NoLoggerDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		L(context.Background()).Info("nothing to see")
	})
}

func TestContextLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	cl := WithLogger(context.Background(), logger).With(zap.String("awb", "AWB555"))
	cl.Warn("tracking stalled")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "AWB555", logs.All()[0].ContextMap()["awb"])
}

func TestContextLogger_Zap(t *testing.T) {
	logger := zap.NewNop()
	cl := WithLogger(context.Background(), logger)
	assert.NotNil(t, cl.Zap())
}
