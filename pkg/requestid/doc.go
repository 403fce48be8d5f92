// Package requestid provides HTTP middleware and context helpers for request
// correlation identifiers.
//
// Middleware reuses a valid client-supplied X-Request-ID or generates a UUID,
// stores it in the request context, and echoes it in the response header.
// LoggerExtractor injects the id into slog records so every log line of a
// request carries the same correlation id. Invalid client ids are silently
// replaced, never rejected.
package requestid
