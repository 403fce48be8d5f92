package tenant

import "time"

// Config holds tenancy enforcement settings loaded from the environment.
type Config struct {
	// Enabled is the master switch for tenant discovery and isolation.
	Enabled bool `env:"TENANT_ENABLED" envDefault:"true"`

	// EnforceIsolation activates query scoping, session tenant checks and
	// token binding validation. Disable only for single-tenant deployments.
	EnforceIsolation bool `env:"TENANT_ENFORCE_ISOLATION" envDefault:"true"`

	// RequireTenant fails requests closed when discovery resolves nothing
	// on a non-public route.
	RequireTenant bool `env:"TENANT_REQUIRE_TENANT" envDefault:"true"`

	// RequireSessionTenant rejects sessions whose stored tenant id is null
	// while the request resolved one (strict mode for legacy sessions).
	RequireSessionTenant bool `env:"TENANT_REQUIRE_SESSION_TENANT" envDefault:"false"`

	// PublicRoutes lists path patterns that bypass discovery entirely.
	// Patterns ending in "/*" match the whole subtree.
	PublicRoutes []string `env:"TENANT_PUBLIC_ROUTES" envSeparator:"," envDefault:"/healthz,/livez,/readyz"`

	// Header is the discovery header name.
	Header string `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"`

	// Suffix is the base domain stripped by subdomain discovery
	// (e.g. ".acs.example.com").
	Suffix string `env:"TENANT_DOMAIN_SUFFIX"`

	// CacheTTL bounds how long resolved tenant records are reused;
	// it also bounds how long a deactivated tenant can keep resolving.
	CacheTTL time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`

	// Security covers violation alerting.
	Security SecurityConfig `envPrefix:"TENANT_SECURITY_"`
}

// SecurityConfig configures violation alert delivery.
type SecurityConfig struct {
	// AlertWebhookURL receives violation alerts when set.
	AlertWebhookURL string `env:"ALERT_WEBHOOK_URL"`

	// AlertSigningSecret signs alert payloads when set.
	AlertSigningSecret string `env:"ALERT_SIGNING_SECRET"`

	// AlertMinSeverity is the lowest severity that triggers an alert.
	AlertMinSeverity string `env:"ALERT_MIN_SEVERITY" envDefault:"warning"`
}
