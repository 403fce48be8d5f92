// Package violation records and reports tenant-boundary violations.
//
// Any component that detects a mismatch between the ambient tenant and a
// stored tenant association (session, token, user, entity) reports it here.
// Records are append-only audit evidence: the package exposes no mutation
// or deletion path.
//
// A report fans out three ways:
//
//  1. Storage - memory, PostgreSQL or OpenSearch, optionally behind an
//     async buffer that degrades to synchronous writes on overflow
//  2. Logging - a dedicated security slog channel, falling back to the
//     default logger so a violation is never silently dropped
//  3. Alerting - optional webhook delivery, fire-and-forget, with failures
//     logged but never propagated to the request or job that reported
//
// The requester only ever sees a generic error; the expected and actual
// tenant ids stay in the server-side record.
//
//	reporter := violation.NewReporter(storage,
//		violation.WithSecurityLogger(securityLog),
//		violation.WithAlerter(alerter, violation.SeverityWarning),
//	)
//
//	reporter.Report(ctx, violation.KindCrossTenantAccessAttempt,
//		"authenticated user's tenant differs from resolved tenant",
//		violation.WithExpectedTenant(userTenant),
//		violation.WithActualTenant(requestTenant),
//		violation.WithPath(r.URL.Path),
//	)
package violation
