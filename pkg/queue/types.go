package queue

import (
	"time"

	"github.com/google/uuid"
)

// DefaultQueueName is the queue used when no queue is specified.
const DefaultQueueName = "default"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Priority represents task priority (0-100, higher is more important).
type Priority int8

const (
	PriorityMin     Priority = 0
	PriorityLow     Priority = 25
	PriorityMedium  Priority = 50
	PriorityHigh    Priority = 75
	PriorityMax     Priority = 100
	PriorityDefault Priority = PriorityMedium
)

// Valid reports whether the priority is within the accepted range.
func (p Priority) Valid() bool {
	return p >= PriorityMin && p <= PriorityMax
}

// Task is a unit of background work.
//
// TenantID records which tenant the task was enqueued on behalf of. The worker
// rebinds that tenant into the handler context before execution, so scoped
// repositories inside the handler see the same isolation boundary the
// originating request did. Tasks enqueued outside any tenant context carry nil
// and run unbound.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Queue       string     `json:"queue"`
	TaskName    string     `json:"task_name"`
	TenantID    *uuid.UUID `json:"tenant_id,omitempty"`
	Payload     []byte     `json:"payload,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	RetryCount  int8       `json:"retry_count"`
	MaxRetries  int8       `json:"max_retries"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
	LockedBy    *uuid.UUID `json:"locked_by,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TasksDlq is a dead-lettered task kept for manual inspection and requeue.
type TasksDlq struct {
	ID         uuid.UUID  `json:"id"`
	TaskID     uuid.UUID  `json:"task_id"`
	Queue      string     `json:"queue"`
	TaskName   string     `json:"task_name"`
	TenantID   *uuid.UUID `json:"tenant_id,omitempty"`
	Payload    []byte     `json:"payload,omitempty"`
	Priority   Priority   `json:"priority"`
	Error      string     `json:"error"`
	RetryCount int8       `json:"retry_count"`
	FailedAt   time.Time  `json:"failed_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
