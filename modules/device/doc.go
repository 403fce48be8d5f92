// Package device is the CPE inventory module and the reference consumer
// of the tenant-scoping stack: every read and write goes through a
// scope.Repository, registration enforces the tenant's MaxDevices quota,
// and the chi router is meant to be mounted behind the isolation
// pipeline so handlers always run with a tenant bound.
//
// Storage backends: scope.MemoryStorage for tests and single-process
// deployments, PGStorage for PostgreSQL (unique serial numbers per
// tenant are enforced by the schema).
//
// Usage:
//
//	storage := device.NewPGStorage(pool)
//	repo := scope.NewRepository[*device.Device](storage, scope.WithReporter[*device.Device](reporter))
//	svc := device.NewService(repo, log)
//
//	r := chi.NewRouter()
//	r.Use(pipeline.Middleware)
//	r.Mount("/api", device.Router(svc))
package device
