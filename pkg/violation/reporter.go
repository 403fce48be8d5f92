package violation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openacs/tenantkit/pkg/tenant"
)

// contextExtractor pulls a string value out of request context.
type contextExtractor func(context.Context) (string, bool)

// Alerter delivers a violation to an external channel (webhook, pager).
// Delivery is best-effort: failures are logged, never propagated.
type Alerter interface {
	Alert(ctx context.Context, record Record) error
}

// Reporter records tenant-boundary violations.
//
// Every report is written to storage and logged on the security channel;
// when the security channel is unavailable the default logger is used so a
// violation is never silently dropped. Alerting runs fire-and-forget and
// cannot affect the outcome of the request or job that detected the
// violation.
type Reporter struct {
	storage            Storage
	securityLog        *slog.Logger
	fallbackLog        *slog.Logger
	alerter            Alerter
	alertMinSeverity   Severity
	alertTimeout       time.Duration
	userIDExtractor    contextExtractor
	sessionIDExtractor contextExtractor
	ipExtractor        contextExtractor
	userAgentExtractor contextExtractor
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithSecurityLogger routes violation logs to a dedicated security channel.
func WithSecurityLogger(logger *slog.Logger) ReporterOption {
	return func(r *Reporter) { r.securityLog = logger }
}

// WithFallbackLogger sets the logger used when the security channel is nil.
func WithFallbackLogger(logger *slog.Logger) ReporterOption {
	return func(r *Reporter) { r.fallbackLog = logger }
}

// WithAlerter enables external alerting for violations at or above minSeverity.
func WithAlerter(alerter Alerter, minSeverity Severity) ReporterOption {
	return func(r *Reporter) {
		r.alerter = alerter
		r.alertMinSeverity = minSeverity
	}
}

// WithAlertTimeout bounds each alert delivery attempt.
func WithAlertTimeout(timeout time.Duration) ReporterOption {
	return func(r *Reporter) {
		if timeout > 0 {
			r.alertTimeout = timeout
		}
	}
}

// WithUserIDExtractor fills Actor.UserID from context.
func WithUserIDExtractor(fn func(context.Context) (string, bool)) ReporterOption {
	return func(r *Reporter) { r.userIDExtractor = fn }
}

// WithSessionIDExtractor fills Actor.SessionID from context.
func WithSessionIDExtractor(fn func(context.Context) (string, bool)) ReporterOption {
	return func(r *Reporter) { r.sessionIDExtractor = fn }
}

// WithIPExtractor fills Actor.IP from context.
func WithIPExtractor(fn func(context.Context) (string, bool)) ReporterOption {
	return func(r *Reporter) { r.ipExtractor = fn }
}

// WithUserAgentExtractor fills Actor.UserAgent from context.
func WithUserAgentExtractor(fn func(context.Context) (string, bool)) ReporterOption {
	return func(r *Reporter) { r.userAgentExtractor = fn }
}

// NewReporter creates a Reporter over the given storage.
func NewReporter(storage Storage, opts ...ReporterOption) *Reporter {
	if storage == nil {
		panic("violation: storage cannot be nil")
	}

	r := &Reporter{
		storage:          storage,
		fallbackLog:      slog.Default(),
		alertMinSeverity: SeverityWarning,
		alertTimeout:     10 * time.Second,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NewReporterFromConfig creates a Reporter wired per the security
// settings: when an alert webhook URL is configured, records at or
// above the configured severity are delivered there, signed when a
// signing secret is set. Additional options are applied after the
// config.
func NewReporterFromConfig(storage Storage, cfg tenant.SecurityConfig, opts ...ReporterOption) *Reporter {
	var configOpts []ReporterOption
	if cfg.AlertWebhookURL != "" {
		alerter := NewWebhookAlerter(nil, cfg.AlertWebhookURL, cfg.AlertSigningSecret)
		configOpts = append(configOpts, WithAlerter(alerter, ParseSeverity(cfg.AlertMinSeverity)))
	}

	return NewReporter(storage, append(configOpts, opts...)...)
}

// RecordOption customizes a reported record.
type RecordOption func(*Record)

// WithSeverity overrides the severity (default: defaultSeverity of the kind).
func WithSeverity(severity Severity) RecordOption {
	return func(r *Record) { r.Severity = severity }
}

// WithExpectedTenant sets the tenant the access should have stayed within.
func WithExpectedTenant(id uuid.UUID) RecordOption {
	return func(r *Record) { r.ExpectedTenant = id.String() }
}

// WithActualTenant sets the tenant the access actually targeted.
func WithActualTenant(id uuid.UUID) RecordOption {
	return func(r *Record) { r.ActualTenant = id.String() }
}

// WithPath records the request path that triggered the violation.
func WithPath(path string) RecordOption {
	return func(r *Record) { r.Path = path }
}

// WithActorUserID overrides the actor user id extracted from context.
func WithActorUserID(id string) RecordOption {
	return func(r *Record) { r.Actor.UserID = id }
}

// WithMetadata attaches an arbitrary key/value to the record.
func WithMetadata(key string, value any) RecordOption {
	return func(r *Record) {
		if r.Metadata == nil {
			r.Metadata = make(map[string]any)
		}
		r.Metadata[key] = value
	}
}

// Report records a violation. It never returns an error: recording is a
// side channel and must not alter the outcome of the request or job that
// detected the violation. Storage failures surface through the fallback
// logger instead.
func (r *Reporter) Report(ctx context.Context, kind Kind, description string, opts ...RecordOption) {
	record := Record{
		ID:          uuid.New(),
		Kind:        kind,
		Severity:    defaultSeverity(kind),
		Description: description,
		CreatedAt:   time.Now(),
	}
	record.Actor = r.actorFromContext(ctx)

	for _, opt := range opts {
		opt(&record)
	}

	r.log(ctx, record)

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger().ErrorContext(ctx, "failed to persist violation record",
			slog.String("record_id", record.ID.String()),
			slog.String("kind", string(record.Kind)),
			slog.String("error", err.Error()))
	}

	if r.alerter != nil && record.Severity.AtLeast(r.alertMinSeverity) {
		// Fire and forget: alert delivery must not block the caller.
		go r.alert(record)
	}
}

// Query exposes the underlying storage for audit review tooling.
func (r *Reporter) Query(ctx context.Context, criteria Criteria) ([]Record, error) {
	return r.storage.Query(ctx, criteria)
}

func (r *Reporter) actorFromContext(ctx context.Context) Actor {
	var actor Actor
	if r.userIDExtractor != nil {
		if v, ok := r.userIDExtractor(ctx); ok {
			actor.UserID = v
		}
	}
	if r.sessionIDExtractor != nil {
		if v, ok := r.sessionIDExtractor(ctx); ok {
			actor.SessionID = v
		}
	}
	if r.ipExtractor != nil {
		if v, ok := r.ipExtractor(ctx); ok {
			actor.IP = v
		}
	}
	if r.userAgentExtractor != nil {
		if v, ok := r.userAgentExtractor(ctx); ok {
			actor.UserAgent = v
		}
	}
	return actor
}

func (r *Reporter) logger() *slog.Logger {
	if r.securityLog != nil {
		return r.securityLog
	}
	return r.fallbackLog
}

func (r *Reporter) log(ctx context.Context, record Record) {
	r.logger().WarnContext(ctx, "tenant boundary violation",
		slog.String("record_id", record.ID.String()),
		slog.String("kind", string(record.Kind)),
		slog.String("severity", string(record.Severity)),
		slog.String("description", record.Description),
		slog.String("expected_tenant", record.ExpectedTenant),
		slog.String("actual_tenant", record.ActualTenant),
		slog.String("actor_user_id", record.Actor.UserID),
		slog.String("actor_ip", record.Actor.IP),
		slog.String("path", record.Path))
}

func (r *Reporter) alert(record Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.alertTimeout)
	defer cancel()

	if err := r.alerter.Alert(ctx, record); err != nil {
		r.logger().Error("violation alert delivery failed",
			slog.String("record_id", record.ID.String()),
			slog.String("kind", string(record.Kind)),
			slog.String("error", err.Error()))
	}
}

// defaultSeverity grades each kind; callers can override per report.
func defaultSeverity(kind Kind) Severity {
	switch kind {
	case KindCrossTenantAccessAttempt, KindTokenScopeViolation, KindSessionHijackSuspected:
		return SeverityCritical
	case KindCrossTenantSessionAccess, KindTokenUserMismatch:
		return SeverityError
	case KindTenantNotFound, KindNullTenantSessionRejected:
		return SeverityWarning
	case KindUnscopedAccess:
		return SeverityInfo
	default:
		return SeverityWarning
	}
}
