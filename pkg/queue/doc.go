// Package queue provides a repository-agnostic task queue whose tasks carry
// the tenant binding of the request that enqueued them.
//
// Two components interact only through small repository interfaces:
//
//   - Enqueuer adds tasks to the queue, stamping each with the ambient
//     tenant id from the enqueue context
//   - Worker claims pending tasks and dispatches them to a registered
//     Handler inside a context rebuilt from the task's own tenant stamp
//
// The stamp-and-restore cycle is what keeps background work inside tenant
// boundaries: a handler that uses scoped repositories sees exactly the tenant
// the originating request was bound to, regardless of which worker goroutine
// picks the task up or what it processed before. Tasks enqueued outside any
// tenant context run unbound.
//
// # Usage
//
//	type SyncFirmwarePayload struct {
//	    DeviceID uuid.UUID
//	}
//
//	e, err := queue.NewEnqueuer(repo)
//	if err != nil {
//	    return err
//	}
//
//	// Inside a request handler: the task inherits the request's tenant.
//	err = e.Enqueue(r.Context(), SyncFirmwarePayload{DeviceID: id})
//
//	// Platform maintenance: explicitly unbound.
//	err = e.Enqueue(ctx, PruneExpiredPayload{}, queue.WithoutTenantStamp())
//
// On the worker side:
//
//	w, err := queue.NewWorker(repo,
//	    queue.WithTenantProvider(tenants),
//	    queue.WithMaxConcurrentTasks(4),
//	)
//	if err != nil {
//	    return err
//	}
//	_ = w.RegisterHandler(queue.NewTaskHandler(func(ctx context.Context, p SyncFirmwarePayload) error {
//	    // devices is a scope.Repository; it reads the tenant from ctx.
//	    dev, err := devices.Get(ctx, p.DeviceID)
//	    ...
//	}))
//
// Failed tasks are retried with backoff up to MaxRetries, then moved to a
// dead letter queue together with their tenant stamp. Package-level sentinel
// errors (ErrInvalidPriority, ErrNoHandlers, ...) can be checked with
// errors.Is.
package queue
