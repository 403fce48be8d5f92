// Package httpserver provides a lightweight wrapper around net/http that adds
// graceful shutdown, configurable server timeouts, health-check handlers, and
// structured logging via slog.
//
// It hosts both faces of the platform: the CWMP/USP session endpoints that
// CPEs connect to and the operator-facing admin API. Graceful shutdown
// matters here because a device session interrupted mid-inform retries on its
// own schedule; draining in-flight requests avoids spurious retry storms
// during deploys.
//
// The core type is Server which wraps *http.Server and adds:
//
//   - Graceful Shutdown: Run blocks until the context is cancelled or an
//     interrupt/TERM signal is received, then shuts the server down using
//     http.Server.Shutdown with a configurable deadline.
//
//   - Functional Options: construction through New or NewFromConfig with
//     Option helpers such as WithAddr, WithIdleTimeout and WithLogger.
//
//   - Hooks: WithStartHook and WithStopHook run side-effects around the
//     server lifecycle, e.g. announcing the ACS URL or flushing the
//     violation reporter.
//
//   - Health Checks: HealthCheckHandler returns an http.HandlerFunc that can
//     be mounted as both liveness and readiness probes, aggregating the
//     Healthcheck funcs exposed by the datastore packages.
//
// # Usage
//
//	import (
//		"context"
//		"log/slog"
//		"time"
//
//		"github.com/go-chi/chi/v5"
//
//		"github.com/openacs/tenantkit/pkg/httpserver"
//		"github.com/openacs/tenantkit/pkg/pg"
//	)
//
//	func main() {
//		r := chi.NewRouter()
//		r.Get("/healthz", httpserver.HealthCheckHandler(context.Background(), slog.Default()))
//		r.Get("/readyz", httpserver.HealthCheckHandler(context.Background(), slog.Default(), pg.Healthcheck(pool)))
//
//		srv := httpserver.New(
//			httpserver.WithAddr(":8080"),
//			httpserver.WithShutdownTimeout(10*time.Second),
//		)
//
//		if err := srv.Run(context.Background(), r); err != nil {
//			slog.Error("server stopped", "err", err)
//		}
//	}
//
// # Errors
//
// Run wraps all listen errors with ErrStart, while Shutdown wraps underlying
// shutdown errors with ErrShutdown. Use errors.Is to distinguish them.
package httpserver
