package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Joshburn99/NexSpace-sub001/internal/dto"
	appErrors "github.com/Joshburn99/NexSpace-sub001/pkg/errors"
	"github.com/Joshburn99/NexSpace-sub001/pkg/jobs"
)

// Queue job types handled by GenerationWorker.
const (
	JobGenerateAll      = "generate_all"
	JobGenerateTemplate = "generate_template"
)

// GenerateAllPayload parameterises a queued sweep.
type GenerateAllPayload struct {
	HorizonDays int
}

// GenerateTemplatePayload parameterises a queued single-template generation.
type GenerateTemplatePayload struct {
	TemplateID string
	Start      time.Time
	End        time.Time
}

type generationEngine interface {
	Generate(ctx context.Context, templateID string, start, end time.Time, opts dto.GenerateOptions) (*dto.GenerationResult, error)
	GenerateAll(ctx context.Context, horizonDays int) (*dto.GenerationSweepSummary, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// GenerationWorker bridges queue jobs to the generation engine.
type GenerationWorker struct {
	engine generationEngine
	logger *zap.Logger
}

// NewGenerationWorker constructs a worker.
func NewGenerationWorker(engine generationEngine, logger *zap.Logger) *GenerationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationWorker{engine: engine, logger: logger}
}

// Handle processes a queue job. Errors are returned only for failures worth retrying.
func (w *GenerationWorker) Handle(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case JobGenerateAll:
		payload, _ := job.Payload.(GenerateAllPayload)
		summary, err := w.engine.GenerateAll(ctx, payload.HorizonDays)
		if err != nil {
			return err
		}
		w.logger.Info("queued sweep finished",
			zap.String("job_id", job.ID),
			zap.Int("processed", summary.Processed),
			zap.Int("created", summary.Created),
			zap.Int("failed", len(summary.Errors)),
		)
		return nil
	case JobGenerateTemplate:
		payload, ok := job.Payload.(GenerateTemplatePayload)
		if !ok || payload.TemplateID == "" {
			w.logger.Error("generate_template job without template", zap.String("job_id", job.ID))
			return nil
		}
		result, err := w.engine.Generate(ctx, payload.TemplateID, payload.Start, payload.End, dto.DefaultGenerateOptions())
		if err != nil {
			if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrConfiguration.Code {
				w.logger.Warn("template not generatable, dropping job", zap.String("job_id", job.ID), zap.Error(err))
				return nil
			}
			return err
		}
		w.logger.Info("queued template generation finished", zap.String("job_id", job.ID), zap.String("template_id", payload.TemplateID), zap.Int("created", result.CreatedCount))
		return nil
	default:
		w.logger.Error("unknown generation job type", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
}

// GenerationDispatcher queues generation work for the worker pool.
type GenerationDispatcher struct {
	queue jobEnqueuer
}

// NewGenerationDispatcher constructs a dispatcher.
func NewGenerationDispatcher(queue jobEnqueuer) *GenerationDispatcher {
	return &GenerationDispatcher{queue: queue}
}

// EnqueueSweep queues a generate-all run and returns its job ID.
func (d *GenerationDispatcher) EnqueueSweep(horizonDays int) (string, error) {
	id := uuid.NewString()
	if err := d.queue.Enqueue(jobs.Job{ID: id, Type: JobGenerateAll, Payload: GenerateAllPayload{HorizonDays: horizonDays}}); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrTooManyRequests.Code, appErrors.ErrTooManyRequests.Status, fmt.Sprintf("could not queue %s", JobGenerateAll))
	}
	return id, nil
}

// EnqueueTemplate queues generation of one template over [start, end].
func (d *GenerationDispatcher) EnqueueTemplate(templateID string, start, end time.Time) (string, error) {
	id := uuid.NewString()
	payload := GenerateTemplatePayload{TemplateID: templateID, Start: start, End: end}
	if err := d.queue.Enqueue(jobs.Job{ID: id, Type: JobGenerateTemplate, Payload: payload}); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrTooManyRequests.Code, appErrors.ErrTooManyRequests.Status, fmt.Sprintf("could not queue %s", JobGenerateTemplate))
	}
	return id, nil
}
