package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacs/tenantkit/pkg/logger"
	"github.com/openacs/tenantkit/pkg/requestid"
	"github.com/openacs/tenantkit/pkg/tenant"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf))

	log.Info("hello", slog.String("k", "v"))

	entry := logLine(t, &buf)
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "v", entry["k"])

	buf.Reset()
	log.Debug("hidden")
	assert.Empty(t, buf.Bytes(), "debug should be below the default level")
}

func TestNew_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithTextFormatter())

	log.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_InvalidFormatPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}

func TestNew_StaticAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithAttr(slog.String("service", "acs-api")),
	)

	log.Info("hello")
	assert.Equal(t, "acs-api", logLine(t, &buf)["service"])
}

func TestContextExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithContextExtractors(
			tenant.LoggerExtractor(),
			requestid.LoggerExtractor(),
			nil, // must be tolerated
		),
	)

	tenantID := uuid.New()
	ctx := tenant.WithTenant(context.Background(), &tenant.Tenant{ID: tenantID, Active: true})
	ctx = requestid.WithContext(ctx, "req-7")

	log.InfoContext(ctx, "scoped work")

	entry := logLine(t, &buf)
	assert.Equal(t, tenantID.String(), entry["tenant_id"])
	assert.Equal(t, "req-7", entry["request_id"])

	buf.Reset()
	log.Info("unscoped work")
	entry = logLine(t, &buf)
	assert.NotContains(t, entry, "tenant_id")
	assert.NotContains(t, entry, "request_id")
}

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	assert.Equal(t, "error", logger.Error(errors.New("x")).Key)

	assert.Equal(t, slog.Attr{}, logger.TenantID(nil))
	assert.Equal(t, "tenant_id", logger.TenantID("t1").Key)

	assert.Equal(t, slog.Attr{}, logger.Errors(nil, nil))
	assert.Equal(t, "errors", logger.Errors(errors.New("a"), nil, errors.New("b")).Key)

	assert.Equal(t, "violation", logger.Violation("token_scope").Key)
	assert.Equal(t, "component", logger.Component("pipeline").Key)
}
