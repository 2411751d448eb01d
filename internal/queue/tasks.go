package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fdv-chatbot-platform/internal/documents"
	"fdv-chatbot-platform/internal/logger"
	"fdv-chatbot-platform/models"

	"github.com/hibiken/asynq"
)

const (
	TaskRebuildVendor = "index:rebuild"
	TaskRebuildAll    = "index:rebuild_all"

	QueueCritical = "critical"
	QueueDefault  = "default"
)

// ErrRebuildPending is returned when a rebuild of the same vendor is
// already queued.
var ErrRebuildPending = errors.New("rebuild already queued")

type RebuildPayload struct {
	Vendor string `json:"vendor"`
}

// Task creators
func NewRebuildTask(vendor string) (*asynq.Task, error) {
	if err := documents.ValidateName(vendor); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(RebuildPayload{Vendor: vendor})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskRebuildVendor,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Minute),
		asynq.Queue(QueueCritical),
		asynq.Unique(30*time.Minute),
	), nil
}

func NewRebuildAllTask() *asynq.Task {
	return asynq.NewTask(
		TaskRebuildAll,
		nil,
		asynq.MaxRetry(1),
		asynq.Timeout(2*time.Hour),
		asynq.Queue(QueueDefault),
		asynq.Unique(time.Hour),
	)
}

// Rebuilder is the part of the indexer the worker needs.
type Rebuilder interface {
	BuildAllForVendor(ctx context.Context, vendor string) (models.RebuildReport, error)
	BuildAll(ctx context.Context) ([]models.RebuildReport, error)
}

// Task handlers
type TaskProcessor struct {
	indexer Rebuilder
}

func NewTaskProcessor(indexer Rebuilder) *TaskProcessor {
	return &TaskProcessor{indexer: indexer}
}

// Register adds the processor's handlers to mux.
func (p *TaskProcessor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskRebuildVendor, p.RebuildVendor)
	mux.HandleFunc(TaskRebuildAll, p.RebuildAll)
}

func (p *TaskProcessor) RebuildVendor(ctx context.Context, t *asynq.Task) error {
	var payload RebuildPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logger.Info("Rebuilding vendor index", "vendor", payload.Vendor)
	report, err := p.indexer.BuildAllForVendor(ctx, payload.Vendor)
	if err != nil {
		if errors.Is(err, documents.ErrVendorNotFound) || errors.Is(err, documents.ErrInvalidName) {
			return fmt.Errorf("rebuild %s: %v: %w", payload.Vendor, err, asynq.SkipRetry)
		}
		return err
	}

	logger.Info("Vendor index rebuilt",
		"vendor", report.Vendor,
		"documents", report.Documents,
		"chunks", report.Chunks,
		"removed", report.Removed,
		"duration", report.Duration.String(),
	)
	return nil
}

func (p *TaskProcessor) RebuildAll(ctx context.Context, _ *asynq.Task) error {
	reports, err := p.indexer.BuildAll(ctx)
	logger.Info("Scheduled rebuild finished", "vendors", len(reports))
	return err
}

// Enqueuer is the subset of *asynq.Client used to schedule work.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueueRebuild queues a vendor rebuild for the worker.
func EnqueueRebuild(ctx context.Context, client Enqueuer, vendor string) (models.RebuildAccepted, error) {
	task, err := NewRebuildTask(vendor)
	if err != nil {
		return models.RebuildAccepted{}, err
	}
	info, err := client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return models.RebuildAccepted{}, ErrRebuildPending
		}
		return models.RebuildAccepted{}, fmt.Errorf("enqueue rebuild: %w", err)
	}
	return models.RebuildAccepted{Vendor: vendor, TaskID: info.ID, Queue: info.Queue}, nil
}
