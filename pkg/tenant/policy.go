package tenant

import (
	"fmt"
	"slices"

	"github.com/openacs/tenantkit/pkg/config"
)

// RoutePolicy is the YAML policy file declaring routes that bypass
// tenant discovery. Keeping the list in a reviewable file rather than
// scattered route annotations makes the public surface auditable.
//
//	public_routes:
//	  - /healthz
//	  - /acs/inform
//	  - /.well-known/*
type RoutePolicy struct {
	PublicRoutes []string `yaml:"public_routes"`
}

// LoadRoutePolicy reads a route policy file and merges it with the
// environment-configured public routes. Duplicates are dropped.
func LoadRoutePolicy(path string, cfg Config) ([]string, error) {
	var policy RoutePolicy
	if err := config.LoadFile(path, &policy); err != nil {
		return nil, fmt.Errorf("load route policy: %w", err)
	}

	routes := slices.Clone(cfg.PublicRoutes)
	for _, route := range policy.PublicRoutes {
		if route == "" || slices.Contains(routes, route) {
			continue
		}
		routes = append(routes, route)
	}
	return routes, nil
}
