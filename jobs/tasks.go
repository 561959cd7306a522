package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/trainhub/trainhub/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditRecord persists a single audit entry.
	TaskAuditRecord = "audit:record"
	// TaskAuditPrune deletes audit entries older than the retention window.
	TaskAuditPrune = "audit:prune"
)

// AuditPrunePayload configures a prune run. A zero Retention falls back to
// the job default.
type AuditPrunePayload struct {
	Retention time.Duration `json:"retention"`
}

// NewAuditRecordTask wraps an audit entry in an Asynq task.
func NewAuditRecordTask(entry shared.AuditLog) (*asynq.Task, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("jobs: encode audit entry: %w", err)
	}
	return asynq.NewTask(TaskAuditRecord, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// NewAuditPruneTask constructs the retention task.
func NewAuditPruneTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(AuditPrunePayload{Retention: retention})
	if err != nil {
		return nil, fmt.Errorf("jobs: encode prune payload: %w", err)
	}
	return asynq.NewTask(TaskAuditPrune, data, asynq.Queue(QueueDefault)), nil
}
