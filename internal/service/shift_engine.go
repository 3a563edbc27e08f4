package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Joshburn99/NexSpace-sub001/internal/models"
	"github.com/Joshburn99/NexSpace-sub001/pkg/events"
)

// unifiedFeedCachePattern matches every cached unified feed entry.
const unifiedFeedCachePattern = "unified-shifts*"

type shiftTemplateRepository interface {
	FindByID(ctx context.Context, id string) (*models.ShiftTemplate, error)
	List(ctx context.Context, filter models.ShiftTemplateFilter) ([]models.ShiftTemplate, error)
	ListActive(ctx context.Context) ([]models.ShiftTemplate, error)
	Create(ctx context.Context, tpl *models.ShiftTemplate) error
	Update(ctx context.Context, tpl *models.ShiftTemplate) error
	IncrementGeneratedCount(ctx context.Context, exec sqlx.ExtContext, id string, delta int) error
	SetGeneratedCount(ctx context.Context, id string, count int) error
}

type generatedShiftRepository interface {
	ListExistingDates(ctx context.Context, exec sqlx.ExtContext, templateID string, position int, start, end time.Time) ([]time.Time, error)
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, shifts []models.GeneratedShift) ([]models.GeneratedShift, error)
	DeleteRegenerable(ctx context.Context, templateID string, today time.Time) (int, error)
	ListByTemplate(ctx context.Context, templateID string) ([]models.GeneratedShift, error)
	ListAll(ctx context.Context) ([]models.GeneratedShift, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int, error)
	UpdateTimes(ctx context.Context, id int64, startTime, endTime string) error
	CountByTemplate(ctx context.Context, templateID string) (int, error)
}

type manualShiftRepository interface {
	ListAll(ctx context.Context) ([]models.ManualShift, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// ShiftEngineConfig governs the recurring-shift engine.
type ShiftEngineConfig struct {
	Location           *time.Location
	DefaultHorizonDays int
	BatchSize          int
	MaxRangeDays       int
	ColdStartEnabled   bool
	FeedCacheTTL       time.Duration
}

func (c ShiftEngineConfig) withDefaults() ShiftEngineConfig {
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.DefaultHorizonDays <= 0 {
		c.DefaultHorizonDays = 30
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.MaxRangeDays <= 0 {
		c.MaxRangeDays = 366
	}
	return c
}

// engineHooks fans a completed mutation out to metrics, the feed cache and the event bus.
type engineHooks struct {
	metrics   *MetricsService
	cache     *CacheService
	publisher events.Publisher
	logger    *zap.Logger
}

func newEngineHooks(metrics *MetricsService, cache *CacheService, publisher events.Publisher, logger *zap.Logger) engineHooks {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return engineHooks{metrics: metrics, cache: cache, publisher: publisher, logger: logger}
}

func (h engineHooks) shiftsChanged(ctx context.Context, routingKey string, payload interface{}) {
	h.cache.Invalidate(ctx, unifiedFeedCachePattern)
	if err := h.publisher.Publish(ctx, routingKey, payload); err != nil {
		h.logger.Warn("publish shift event failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

// today returns the calendar date of now in loc, as midnight UTC.
func today(now func() time.Time, loc *time.Location) time.Time {
	y, m, d := now().In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
