package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Joshburn99/NexSpace-sub001/internal/dto"
	"github.com/Joshburn99/NexSpace-sub001/internal/models"
	appErrors "github.com/Joshburn99/NexSpace-sub001/pkg/errors"
)

const unifiedFeedCacheKey = "unified-shifts:all"

type generatedShiftReader interface {
	ListAll(ctx context.Context) ([]models.GeneratedShift, error)
}

type shiftSweeper interface {
	GenerateAll(ctx context.Context, horizonDays int) (*dto.GenerationSweepSummary, error)
}

// UnifiedShiftService merges generated and manual shifts into one facility-scoped feed.
type UnifiedShiftService struct {
	generated generatedShiftReader
	manual    manualShiftRepository
	sweeper   shiftSweeper
	cache     *CacheService
	logger    *zap.Logger
	cfg       ShiftEngineConfig
}

// NewUnifiedShiftService constructs the aggregator. sweeper may be nil to disable cold start.
func NewUnifiedShiftService(generated generatedShiftReader, manual manualShiftRepository, sweeper shiftSweeper, cache *CacheService, logger *zap.Logger, cfg ShiftEngineConfig) *UnifiedShiftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnifiedShiftService{
		generated: generated,
		manual:    manual,
		sweeper:   sweeper,
		cache:     cache,
		logger:    logger,
		cfg:       cfg.withDefaults(),
	}
}

type mergedFeed struct {
	Shifts   []models.UnifiedShift
	Degraded bool
	Warnings []string
}

// GetUnifiedShifts returns every shift the viewer may see, ordered by date then start time.
// If one source fails the other is still returned and the feed is flagged as degraded.
func (s *UnifiedShiftService) GetUnifiedShifts(ctx context.Context, viewer models.Viewer, query dto.UnifiedShiftQuery) (*dto.UnifiedShiftFeed, error) {
	var (
		merged mergedFeed
		cached []models.UnifiedShift
	)
	hit := s.cache.Get(ctx, unifiedFeedCacheKey, &cached)
	if hit {
		merged.Shifts = cached
	} else {
		var err error
		if merged, err = s.load(ctx); err != nil {
			return nil, err
		}
		if !merged.Degraded {
			s.cache.Set(ctx, unifiedFeedCacheKey, merged.Shifts, s.cfg.FeedCacheTTL)
		}
	}

	feed := &dto.UnifiedShiftFeed{
		Shifts:   filterUnified(merged.Shifts, viewer, query),
		Degraded: merged.Degraded,
		Warnings: merged.Warnings,
		Cached:   hit,
	}
	return feed, nil
}

func (s *UnifiedShiftService) load(ctx context.Context) (mergedFeed, error) {
	var (
		wg        sync.WaitGroup
		generated []models.GeneratedShift
		manual    []models.ManualShift
		genErr    error
		manErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		generated, genErr = s.generated.ListAll(ctx)
	}()
	go func() {
		defer wg.Done()
		manual, manErr = s.manual.ListAll(ctx)
	}()
	wg.Wait()

	if genErr == nil && len(generated) == 0 && s.cfg.ColdStartEnabled && s.sweeper != nil {
		generated, genErr = s.coldStart(ctx)
	}

	var out mergedFeed
	if genErr != nil && manErr != nil {
		s.logger.Error("unified feed sources unavailable", zap.NamedError("generated_error", genErr), zap.NamedError("manual_error", manErr))
		return out, appErrors.Internal(fmt.Errorf("generated: %v; manual: %w", genErr, manErr), "failed to load shifts")
	}
	if genErr != nil {
		s.logger.Warn("generated shifts unavailable, serving manual shifts only", zap.Error(genErr))
		out.Degraded = true
		out.Warnings = append(out.Warnings, "generated shifts are temporarily unavailable")
	}
	if manErr != nil {
		s.logger.Warn("manual shifts unavailable, serving generated shifts only", zap.Error(manErr))
		out.Degraded = true
		out.Warnings = append(out.Warnings, "manual shifts are temporarily unavailable")
	}

	out.Shifts = make([]models.UnifiedShift, 0, len(generated)+len(manual))
	for i := range generated {
		out.Shifts = append(out.Shifts, projectGenerated(&generated[i]))
	}
	for i := range manual {
		out.Shifts = append(out.Shifts, projectManual(&manual[i]))
	}
	sort.SliceStable(out.Shifts, func(i, j int) bool {
		if out.Shifts[i].Date != out.Shifts[j].Date {
			return out.Shifts[i].Date < out.Shifts[j].Date
		}
		return out.Shifts[i].StartTime < out.Shifts[j].StartTime
	})
	return out, nil
}

func (s *UnifiedShiftService) coldStart(ctx context.Context) ([]models.GeneratedShift, error) {
	summary, err := s.sweeper.GenerateAll(ctx, 0)
	if err != nil {
		s.logger.Warn("cold start generation failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info("cold start generation completed", zap.Int("created", summary.Created), zap.Int("templates", summary.Processed))
	return s.generated.ListAll(ctx)
}

func filterUnified(shifts []models.UnifiedShift, viewer models.Viewer, query dto.UnifiedShiftQuery) []models.UnifiedShift {
	var from, to string
	if query.From != nil {
		from = query.From.Format(models.DateLayout)
	}
	if query.To != nil {
		to = query.To.Format(models.DateLayout)
	}
	out := make([]models.UnifiedShift, 0, len(shifts))
	for _, shift := range shifts {
		if !viewer.CanSeeFacility(shift.FacilityID) {
			continue
		}
		if query.FacilityID != "" && shift.FacilityID != query.FacilityID {
			continue
		}
		if query.Status != "" && shift.Status != query.Status {
			continue
		}
		if from != "" && shift.Date < from {
			continue
		}
		if to != "" && shift.Date > to {
			continue
		}
		out = append(out, shift)
	}
	return out
}

func projectGenerated(shift *models.GeneratedShift) models.UnifiedShift {
	templateID := shift.TemplateID
	position := shift.ShiftPosition
	return models.UnifiedShift{
		ID:               fmt.Sprintf("%s-%d", models.ShiftSourceGenerated, shift.ID),
		SourceID:         shift.ID,
		Source:           models.ShiftSourceGenerated,
		TemplateID:       &templateID,
		ShiftPosition:    &position,
		Date:             shift.ShiftDate.Format(models.DateLayout),
		StartTime:        shift.StartTime,
		EndTime:          shift.EndTime,
		Title:            shift.Title,
		Department:       shift.Department,
		Specialty:        shift.Specialty,
		FacilityID:       shift.FacilityID,
		FacilityName:     shift.FacilityName,
		HourlyRate:       shift.HourlyRate,
		RequiredStaff:    1,
		Status:           shift.Status,
		AssignedStaffIDs: staffIDs(shift.AssignedStaffIDs),
	}
}

func projectManual(shift *models.ManualShift) models.UnifiedShift {
	return models.UnifiedShift{
		ID:               fmt.Sprintf("%s-%d", models.ShiftSourceManual, shift.ID),
		SourceID:         shift.ID,
		Source:           models.ShiftSourceManual,
		Date:             shift.ShiftDate.Format(models.DateLayout),
		StartTime:        shift.StartTime,
		EndTime:          shift.EndTime,
		Title:            shift.Title,
		Department:       shift.Department,
		Specialty:        shift.Specialty,
		FacilityID:       shift.FacilityID,
		FacilityName:     shift.FacilityName,
		HourlyRate:       shift.HourlyRate,
		RequiredStaff:    shift.RequiredStaff,
		Status:           shift.Status,
		AssignedStaffIDs: staffIDs(shift.AssignedStaffIDs),
	}
}

func staffIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
