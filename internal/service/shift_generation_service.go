package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Joshburn99/NexSpace-sub001/internal/dto"
	"github.com/Joshburn99/NexSpace-sub001/internal/models"
	appErrors "github.com/Joshburn99/NexSpace-sub001/pkg/errors"
	"github.com/Joshburn99/NexSpace-sub001/pkg/events"
)

// ShiftGenerationService expands templates into dated shift instances.
type ShiftGenerationService struct {
	templates shiftTemplateRepository
	shifts    generatedShiftRepository
	tx        txProvider
	hooks     engineHooks
	logger    *zap.Logger
	cfg       ShiftEngineConfig
	now       func() time.Time
}

// NewShiftGenerationService wires generation dependencies. tx may be nil, in which case each
// statement runs on its own.
func NewShiftGenerationService(
	templates shiftTemplateRepository,
	shifts generatedShiftRepository,
	tx txProvider,
	metrics *MetricsService,
	cache *CacheService,
	publisher events.Publisher,
	logger *zap.Logger,
	cfg ShiftEngineConfig,
) *ShiftGenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftGenerationService{
		templates: templates,
		shifts:    shifts,
		tx:        tx,
		hooks:     newEngineHooks(metrics, cache, publisher, logger),
		logger:    logger,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
	}
}

// WithClock overrides the time source.
func (s *ShiftGenerationService) WithClock(now func() time.Time) *ShiftGenerationService {
	if now != nil {
		s.now = now
	}
	return s
}

// Today returns the engine's current calendar date.
func (s *ShiftGenerationService) Today() time.Time {
	return today(s.now, s.cfg.Location)
}

// HorizonFor resolves the generation horizon for a template.
func (s *ShiftGenerationService) HorizonFor(tpl *models.ShiftTemplate, horizonDays int) int {
	switch {
	case horizonDays > 0:
		return horizonDays
	case tpl != nil && tpl.DaysInAdvance > 0:
		return tpl.DaysInAdvance
	default:
		return s.cfg.DefaultHorizonDays
	}
}

// Generate creates the missing instances of a template for every matching date in [start, end].
func (s *ShiftGenerationService) Generate(ctx context.Context, templateID string, start, end time.Time, opts dto.GenerateOptions) (*dto.GenerationResult, error) {
	start, end = calendarDay(start), calendarDay(end)
	if days := int(end.Sub(start).Hours() / 24); days > s.cfg.MaxRangeDays {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date range of %d days exceeds the %d day limit", days, s.cfg.MaxRangeDays))
	}

	tpl, err := s.loadGeneratable(ctx, templateID)
	if err != nil {
		return nil, err
	}

	result, err := s.generateForTemplate(ctx, tpl, start, end, opts)
	if err != nil {
		return nil, err
	}
	s.generated(ctx, result)
	return result, nil
}

// GenerateAll runs generation for every active template over [today, today+horizon].
// A non-positive horizonDays uses each template's own horizon. One template failing does
// not stop the sweep.
func (s *ShiftGenerationService) GenerateAll(ctx context.Context, horizonDays int) (*dto.GenerationSweepSummary, error) {
	started := time.Now()
	templates, err := s.templates.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list active shift templates")
	}

	day := s.Today()
	summary := &dto.GenerationSweepSummary{Errors: []dto.SweepError{}}
	for i := range templates {
		tpl := &templates[i]
		summary.Processed++

		end := day.AddDate(0, 0, s.HorizonFor(tpl, horizonDays))
		result, genErr := s.generateForTemplate(ctx, tpl, day, end, dto.DefaultGenerateOptions())
		if genErr != nil {
			s.logger.Warn("template generation failed", zap.String("template_id", tpl.ID), zap.Error(genErr))
			summary.Errors = append(summary.Errors, dto.SweepError{TemplateID: tpl.ID, Message: genErr.Error()})
			continue
		}
		summary.Succeeded++
		summary.Created += result.CreatedCount
		s.generated(ctx, result)
	}

	s.hooks.metrics.ObserveSweep(time.Since(started), len(summary.Errors))
	s.logger.Info("shift generation sweep finished",
		zap.Int("processed", summary.Processed),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("created", summary.Created),
		zap.Int("failed", len(summary.Errors)),
		zap.Duration("duration", time.Since(started)),
	)
	return summary, nil
}

// GetShiftsToGenerate lists, per active template, the dates within the horizon that miss at least one position.
func (s *ShiftGenerationService) GetShiftsToGenerate(ctx context.Context, horizonDays int) ([]dto.TemplateGap, error) {
	templates, err := s.templates.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list active shift templates")
	}

	day := s.Today()
	gaps := make([]dto.TemplateGap, 0)
	for i := range templates {
		tpl := &templates[i]
		end := day.AddDate(0, 0, s.HorizonFor(tpl, horizonDays))
		dates := ExpandRecurrence(tpl.Weekdays(), day, end)
		if len(dates) == 0 {
			continue
		}
		existing, err := s.existingSlots(ctx, nil, tpl, day, end)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load existing generated shifts")
		}

		var missing []string
		for _, d := range dates {
			for pos := 0; pos < tpl.MinStaff; pos++ {
				if _, ok := existing[models.NewShiftSlotKey(tpl.ID, d, pos)]; !ok {
					missing = append(missing, d.Format(models.DateLayout))
					break
				}
			}
		}
		if len(missing) > 0 {
			gaps = append(gaps, dto.TemplateGap{Template: *tpl, MissingDates: missing})
		}
	}
	return gaps, nil
}

// ResyncGeneratedCount sets a template's generated counter to its live instance count.
func (s *ShiftGenerationService) ResyncGeneratedCount(ctx context.Context, templateID string) (int, error) {
	if _, err := s.templates.FindByID(ctx, templateID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "shift template not found")
		}
		return 0, appErrors.Internal(err, "failed to load shift template")
	}
	count, err := s.shifts.CountByTemplate(ctx, templateID)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to count generated shifts")
	}
	if err := s.templates.SetGeneratedCount(ctx, templateID, count); err != nil {
		return 0, appErrors.Internal(err, "failed to update generated shifts count")
	}
	s.logger.Info("generated shifts count resynced", zap.String("template_id", templateID), zap.Int("count", count))
	return count, nil
}

func (s *ShiftGenerationService) loadGeneratable(ctx context.Context, templateID string) (*models.ShiftTemplate, error) {
	tpl, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("shift template %s not found", templateID))
		}
		return nil, appErrors.Internal(err, "failed to load shift template")
	}
	if !tpl.IsActive {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("shift template %s is inactive", templateID))
	}
	return tpl, nil
}

func (s *ShiftGenerationService) generateForTemplate(ctx context.Context, tpl *models.ShiftTemplate, start, end time.Time, opts dto.GenerateOptions) (*dto.GenerationResult, error) {
	dates := ExpandRecurrence(tpl.Weekdays(), start, end)
	result := &dto.GenerationResult{
		TemplateID: tpl.ID,
		Created:    []models.GeneratedShift{},
		Dates:      make([]string, 0, len(dates)),
	}
	for _, d := range dates {
		result.Dates = append(result.Dates, d.Format(models.DateLayout))
	}
	if len(dates) == 0 || tpl.MinStaff <= 0 {
		return result, nil
	}

	err := s.withTx(ctx, func(exec sqlx.ExtContext) error {
		var existing map[models.ShiftSlotKey]struct{}
		if opts.SkipExisting {
			var err error
			if existing, err = s.existingSlots(ctx, exec, tpl, start, end); err != nil {
				return appErrors.Internal(err, "failed to load existing generated shifts")
			}
		}

		candidates := make([]models.GeneratedShift, 0, len(dates)*tpl.MinStaff)
		for _, d := range dates {
			for pos := 0; pos < tpl.MinStaff; pos++ {
				if _, ok := existing[models.NewShiftSlotKey(tpl.ID, d, pos)]; ok {
					result.Skipped++
					continue
				}
				candidates = append(candidates, snapshotShift(tpl, d, pos))
			}
		}

		for offset := 0; offset < len(candidates); offset += s.cfg.BatchSize {
			limit := offset + s.cfg.BatchSize
			if limit > len(candidates) {
				limit = len(candidates)
			}
			batch := candidates[offset:limit]
			inserted, err := s.shifts.InsertBatch(ctx, exec, batch)
			if err != nil {
				return appErrors.Internal(err, "failed to insert generated shifts")
			}
			result.Skipped += len(batch) - len(inserted)
			result.Created = append(result.Created, inserted...)
		}
		result.CreatedCount = len(result.Created)

		if result.CreatedCount > 0 {
			if err := s.templates.IncrementGeneratedCount(ctx, exec, tpl.ID, result.CreatedCount); err != nil {
				return appErrors.Internal(err, "failed to update generated shifts count")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("template expanded",
		zap.String("template_id", tpl.ID),
		zap.Int("dates", len(dates)),
		zap.Int("created", result.CreatedCount),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// existingSlots loads the occupied slot keys in [start, end], one query per position.
func (s *ShiftGenerationService) existingSlots(ctx context.Context, exec sqlx.ExtContext, tpl *models.ShiftTemplate, start, end time.Time) (map[models.ShiftSlotKey]struct{}, error) {
	existing := make(map[models.ShiftSlotKey]struct{})
	for pos := 0; pos < tpl.MinStaff; pos++ {
		dates, err := s.shifts.ListExistingDates(ctx, exec, tpl.ID, pos, start, end)
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			existing[models.NewShiftSlotKey(tpl.ID, d, pos)] = struct{}{}
		}
	}
	return existing, nil
}

func (s *ShiftGenerationService) withTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error {
	if s.tx == nil {
		return fn(nil)
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Internal(err, "failed to begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Internal(err, "failed to commit generation transaction")
	}
	return nil
}

func (s *ShiftGenerationService) generated(ctx context.Context, result *dto.GenerationResult) {
	s.hooks.metrics.RecordGeneration(result.CreatedCount, result.Skipped)
	if result.CreatedCount == 0 {
		return
	}
	s.hooks.shiftsChanged(ctx, events.ShiftsGenerated, map[string]interface{}{
		"templateId": result.TemplateID,
		"created":    result.CreatedCount,
		"skipped":    result.Skipped,
	})
}

func snapshotShift(tpl *models.ShiftTemplate, day time.Time, position int) models.GeneratedShift {
	return models.GeneratedShift{
		TemplateID:    tpl.ID,
		ShiftDate:     day,
		ShiftPosition: position,
		Title:         tpl.ShiftTitle(),
		Department:    tpl.Department,
		Specialty:     tpl.Specialty,
		FacilityID:    tpl.FacilityID,
		FacilityName:  tpl.FacilityName,
		StartTime:     tpl.StartTime,
		EndTime:       tpl.EndTime,
		HourlyRate:    tpl.HourlyRate,
		Status:        models.ShiftStatusOpen,
	}
}
