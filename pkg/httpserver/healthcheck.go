package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/openacs/tenantkit/pkg/logger"
)

// HealthCheckHandler returns an HTTP handler usable as both a liveness and a
// readiness probe.
//
//   - Liveness: with no dependency checks the handler returns 200 OK with
//     body "ALIVE".
//   - Readiness: with one or more dependency checks (typically the
//     Healthcheck funcs from pkg/pg, pkg/redis, pkg/mongo and
//     pkg/opensearch) each check is executed; if all succeed the handler
//     returns 200 OK with body "READY", otherwise 500 with "NOT_READY".
func HealthCheckHandler(ctx context.Context, log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ALIVE"))
			return
		}

		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "Readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}
