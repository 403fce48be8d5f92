// Package logger provides a context-aware factory around log/slog with
// functional options, attribute helpers, and transparent injection of
// context values into every record.
//
// New builds a *slog.Logger whose handler is wrapped with
// LogHandlerDecorator: each registered ContextExtractor runs per log call and
// appends its attribute when the context carries a value. Wiring the tenant,
// request-id, and client-ip extractors gives every log line of a request the
// full isolation context without touching call sites:
//
//	log := logger.New(
//	    logger.WithProduction("acs-api"),
//	    logger.WithContextExtractors(
//	        tenant.LoggerExtractor(),
//	        requestid.LoggerExtractor(),
//	        clientip.LoggerExtractor(),
//	    ),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "device registered", logger.DeviceID(id))
//
// Attribute helpers (Error, TenantID, UserID, ...) keep key names consistent
// across the codebase and return empty attributes for nil values so callers
// can skip nil checks.
package logger
