package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/trainhub/trainhub/internal/jobs"
	"github.com/trainhub/trainhub/internal/shared"
)

// AuditStore persists and prunes audit entries.
type AuditStore interface {
	Record(ctx context.Context, entry shared.AuditLog) error
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// AuditJob handles the audit record and prune tasks.
type AuditJob struct {
	Store            AuditStore
	Logger           *slog.Logger
	Metrics          *jobmetrics.Metrics
	DefaultRetention time.Duration
}

// NewAuditJob initialises the audit handlers.
func NewAuditJob(store AuditStore, retention time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditJob {
	return &AuditJob{Store: store, Logger: logger, Metrics: metrics, DefaultRetention: retention}
}

// HandleRecord persists the entry carried by a TaskAuditRecord task.
func (j *AuditJob) HandleRecord(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Store == nil {
		return errors.New("audit record: handler not configured")
	}
	tracker := j.Metrics.Track(TaskAuditRecord)
	defer func() { err = tracker.End(err) }()

	var entry shared.AuditLog
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		return fmt.Errorf("audit record: decode: %v: %w", err, asynq.SkipRetry)
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("audit record: %v: %w", err, asynq.SkipRetry)
	}
	if err := j.Store.Record(ctx, entry); err != nil {
		j.logger().Error("audit record failed", slog.String("entity", entry.Entity), slog.Any("error", err))
		return err
	}
	return nil
}

// HandlePrune deletes entries older than the requested retention.
func (j *AuditJob) HandlePrune(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Store == nil {
		return errors.New("audit prune: handler not configured")
	}
	tracker := j.Metrics.Track(TaskAuditPrune)
	defer func() { err = tracker.End(err) }()

	var payload AuditPrunePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("audit prune: decode: %v: %w", err, asynq.SkipRetry)
		}
	}
	retention := payload.Retention
	if retention <= 0 {
		retention = j.DefaultRetention
	}
	if retention <= 0 {
		return fmt.Errorf("audit prune: retention not configured: %w", asynq.SkipRetry)
	}
	deleted, err := j.Store.Prune(ctx, retention)
	if err != nil {
		j.logger().Error("audit prune failed", slog.Any("error", err))
		return err
	}
	j.Metrics.AddPrunedAuditLogs(deleted)
	j.logger().Info("audit prune completed", slog.Int64("deleted", deleted), slog.Duration("retention", retention))
	return nil
}

func (j *AuditJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
