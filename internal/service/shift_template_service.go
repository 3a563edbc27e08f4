package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Joshburn99/NexSpace-sub001/internal/dto"
	"github.com/Joshburn99/NexSpace-sub001/internal/models"
	appErrors "github.com/Joshburn99/NexSpace-sub001/pkg/errors"
	"github.com/Joshburn99/NexSpace-sub001/pkg/events"
)

type shiftGenerator interface {
	Generate(ctx context.Context, templateID string, start, end time.Time, opts dto.GenerateOptions) (*dto.GenerationResult, error)
	HorizonFor(tpl *models.ShiftTemplate, horizonDays int) int
	Today() time.Time
}

// ShiftTemplateService manages templates and keeps their future instances aligned with edits.
type ShiftTemplateService struct {
	templates shiftTemplateRepository
	shifts    generatedShiftRepository
	generator shiftGenerator
	validator *validator.Validate
	hooks     engineHooks
	logger    *zap.Logger
}

// NewShiftTemplateService constructs the template service.
func NewShiftTemplateService(
	templates shiftTemplateRepository,
	shifts generatedShiftRepository,
	generator shiftGenerator,
	validate *validator.Validate,
	cache *CacheService,
	publisher events.Publisher,
	logger *zap.Logger,
) *ShiftTemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftTemplateService{
		templates: templates,
		shifts:    shifts,
		generator: generator,
		validator: validate,
		hooks:     newEngineHooks(nil, cache, publisher, logger),
		logger:    logger,
	}
}

// Get returns a template by ID.
func (s *ShiftTemplateService) Get(ctx context.Context, id string) (*models.ShiftTemplate, error) {
	tpl, err := s.templates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift template not found")
		}
		return nil, appErrors.Internal(err, "failed to load shift template")
	}
	return tpl, nil
}

// List returns templates visible to the viewer.
func (s *ShiftTemplateService) List(ctx context.Context, viewer models.Viewer, query dto.ShiftTemplateQuery) ([]models.ShiftTemplate, error) {
	filter := models.ShiftTemplateFilter{Active: query.Active}
	switch {
	case query.FacilityID != "":
		if !viewer.CanSeeFacility(query.FacilityID) {
			return []models.ShiftTemplate{}, nil
		}
		filter.FacilityIDs = []string{query.FacilityID}
	case !viewer.Role.IsGlobal():
		if len(viewer.FacilityIDs) == 0 {
			return []models.ShiftTemplate{}, nil
		}
		filter.FacilityIDs = viewer.FacilityIDs
	}
	templates, err := s.templates.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list shift templates")
	}
	if templates == nil {
		templates = []models.ShiftTemplate{}
	}
	return templates, nil
}

// Create validates and stores a template, then generates its first horizon when active.
func (s *ShiftTemplateService) Create(ctx context.Context, req dto.CreateShiftTemplateRequest) (*dto.TemplateCreateResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift template payload")
	}
	tpl := &models.ShiftTemplate{
		Name:          req.Name,
		FacilityID:    req.FacilityID,
		Department:    req.Department,
		Specialty:     req.Specialty,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		DaysOfWeek:    toInt64Array(req.DaysOfWeek),
		MinStaff:      req.MinStaff,
		MaxStaff:      req.MaxStaff,
		HourlyRate:    req.HourlyRate,
		DaysInAdvance: req.DaysInAdvance,
		IsActive:      true,
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}
	if tpl.Name == "" {
		tpl.Name = tpl.ShiftTitle()
	}
	if err := validateTemplate(tpl); err != nil {
		return nil, err
	}
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, appErrors.Internal(err, "failed to create shift template")
	}
	s.logger.Info("shift template created", zap.String("template_id", tpl.ID), zap.String("facility_id", tpl.FacilityID))
	if stored, err := s.templates.FindByID(ctx, tpl.ID); err == nil {
		tpl = stored
	}

	result := &dto.TemplateCreateResult{Template: tpl}
	if !tpl.IsActive {
		return result, nil
	}
	day := s.generator.Today()
	generation, err := s.generator.Generate(ctx, tpl.ID, day, day.AddDate(0, 0, s.generator.HorizonFor(tpl, 0)), dto.DefaultGenerateOptions())
	if err != nil {
		s.logger.Warn("initial generation failed", zap.String("template_id", tpl.ID), zap.Error(err))
		return result, nil
	}
	result.Generation = generation
	return result, nil
}

// UpdateTemplate applies edits. With regenerateFuture it deletes the template's open, unassigned
// instances from today on and, when the template is active, regenerates its horizon. Failures
// after the edit is saved are reported in the regeneration summary.
func (s *ShiftTemplateService) UpdateTemplate(ctx context.Context, id string, req dto.UpdateShiftTemplateRequest, regenerateFuture bool) (*dto.TemplateUpdateResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift template payload")
	}
	tpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyTemplateUpdate(tpl, req)
	if err := validateTemplate(tpl); err != nil {
		return nil, err
	}
	if err := s.templates.Update(ctx, tpl); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift template not found")
		}
		return nil, appErrors.Internal(err, "failed to update shift template")
	}
	s.logger.Info("shift template updated", zap.String("template_id", tpl.ID), zap.Bool("regenerate_future", regenerateFuture))

	result := &dto.TemplateUpdateResult{Template: tpl}
	if !regenerateFuture {
		s.hooks.cache.Invalidate(ctx, unifiedFeedCachePattern)
		return result, nil
	}

	summary := &dto.RegenerationSummary{}
	result.Regeneration = summary
	day := s.generator.Today()

	deleted, err := s.shifts.DeleteRegenerable(ctx, tpl.ID, day)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("delete future shifts: %v", err))
		s.logger.Warn("regeneration delete failed", zap.String("template_id", tpl.ID), zap.Error(err))
		return result, nil
	}
	summary.Deleted = deleted

	if tpl.IsActive {
		generation, err := s.generator.Generate(ctx, tpl.ID, day, day.AddDate(0, 0, s.generator.HorizonFor(tpl, 0)), dto.DefaultGenerateOptions())
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("regenerate shifts: %v", err))
			s.logger.Warn("regeneration failed", zap.String("template_id", tpl.ID), zap.Error(err))
		} else {
			summary.Created = generation.CreatedCount
		}
	}

	s.hooks.shiftsChanged(ctx, events.ShiftsRegenerated, map[string]interface{}{
		"templateId": tpl.ID,
		"deleted":    summary.Deleted,
		"created":    summary.Created,
	})
	return result, nil
}

// Deactivate soft-deletes a template and removes its open, unassigned future instances.
func (s *ShiftTemplateService) Deactivate(ctx context.Context, id string) (*dto.TemplateDeactivateResult, error) {
	tpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	result := &dto.TemplateDeactivateResult{Template: tpl}
	if tpl.IsActive {
		tpl.IsActive = false
		if err := s.templates.Update(ctx, tpl); err != nil {
			return nil, appErrors.Internal(err, "failed to deactivate shift template")
		}
	}
	removed, err := s.shifts.DeleteRegenerable(ctx, tpl.ID, s.generator.Today())
	if err != nil {
		return nil, appErrors.Internal(err, "failed to remove future shifts")
	}
	result.RemovedFutures = removed
	s.hooks.shiftsChanged(ctx, events.ShiftsRegenerated, map[string]interface{}{
		"templateId": tpl.ID,
		"deleted":    removed,
		"created":    0,
	})
	s.logger.Info("shift template deactivated", zap.String("template_id", tpl.ID), zap.Int("removed", removed))
	return result, nil
}

func applyTemplateUpdate(tpl *models.ShiftTemplate, req dto.UpdateShiftTemplateRequest) {
	if req.Name != nil {
		tpl.Name = *req.Name
	}
	if req.Department != nil {
		tpl.Department = *req.Department
	}
	if req.Specialty != nil {
		tpl.Specialty = *req.Specialty
	}
	if req.StartTime != nil {
		tpl.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		tpl.EndTime = *req.EndTime
	}
	if req.DaysOfWeek != nil {
		tpl.DaysOfWeek = toInt64Array(*req.DaysOfWeek)
	}
	if req.MinStaff != nil {
		tpl.MinStaff = *req.MinStaff
	}
	if req.MaxStaff != nil {
		tpl.MaxStaff = *req.MaxStaff
	}
	if req.HourlyRate != nil {
		tpl.HourlyRate = *req.HourlyRate
	}
	if req.DaysInAdvance != nil {
		tpl.DaysInAdvance = *req.DaysInAdvance
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}
}

func validateTemplate(tpl *models.ShiftTemplate) error {
	if len(tpl.DaysOfWeek) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "daysOfWeek must not be empty")
	}
	for _, d := range tpl.DaysOfWeek {
		if d < 0 || d > 6 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day of week %d is out of range 0-6", d))
		}
	}
	if tpl.MinStaff < 1 {
		return appErrors.Clone(appErrors.ErrValidation, "minStaff must be at least 1")
	}
	if tpl.MinStaff > tpl.MaxStaff {
		return appErrors.Clone(appErrors.ErrValidation, "minStaff must not exceed maxStaff")
	}
	if tpl.StartTime == "" || tpl.EndTime == "" {
		return appErrors.Clone(appErrors.ErrValidation, "startTime and endTime are required")
	}
	return nil
}

func toInt64Array(days []int) pq.Int64Array {
	out := make(pq.Int64Array, 0, len(days))
	seen := make(map[int]struct{}, len(days))
	for _, d := range days {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, int64(d))
	}
	return out
}
