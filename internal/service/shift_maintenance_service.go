package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Joshburn99/NexSpace-sub001/internal/dto"
	"github.com/Joshburn99/NexSpace-sub001/internal/models"
	appErrors "github.com/Joshburn99/NexSpace-sub001/pkg/errors"
	"github.com/Joshburn99/NexSpace-sub001/pkg/events"
)

// ShiftMaintenanceService repairs drift between templates and their generated instances.
type ShiftMaintenanceService struct {
	templates shiftTemplateRepository
	shifts    generatedShiftRepository
	hooks     engineHooks
	logger    *zap.Logger
}

// NewShiftMaintenanceService constructs the maintenance service.
func NewShiftMaintenanceService(
	templates shiftTemplateRepository,
	shifts generatedShiftRepository,
	metrics *MetricsService,
	cache *CacheService,
	publisher events.Publisher,
	logger *zap.Logger,
) *ShiftMaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftMaintenanceService{
		templates: templates,
		shifts:    shifts,
		hooks:     newEngineHooks(metrics, cache, publisher, logger),
		logger:    logger,
	}
}

// ValidateShiftTiming deletes instances that fall on a weekday the template no longer uses and
// resets the clock times of the rest to the template's. Running it twice fixes nothing the second time.
func (s *ShiftMaintenanceService) ValidateShiftTiming(ctx context.Context, templateID string) (*dto.TimingValidationResult, error) {
	tpl, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("shift template %s not found", templateID))
		}
		return nil, appErrors.Internal(err, "failed to load shift template")
	}
	instances, err := s.shifts.ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list generated shifts")
	}

	result := &dto.TimingValidationResult{TemplateID: templateID, Issues: []string{}}
	var stale []int64
	for _, inst := range instances {
		day := inst.ShiftDate.Format(models.DateLayout)
		if !tpl.RunsOn(inst.ShiftDate.Weekday()) {
			stale = append(stale, inst.ID)
			result.Issues = append(result.Issues, fmt.Sprintf("shift %d on %s is on the wrong day of week (%s)", inst.ID, day, inst.ShiftDate.Weekday()))
			continue
		}
		if inst.StartTime == tpl.StartTime && inst.EndTime == tpl.EndTime {
			continue
		}
		if err := s.shifts.UpdateTimes(ctx, inst.ID, tpl.StartTime, tpl.EndTime); err != nil {
			return nil, appErrors.Internal(err, "failed to update generated shift times")
		}
		result.Fixed++
		s.hooks.metrics.RecordDriftRepair("retimed")
		result.Issues = append(result.Issues, fmt.Sprintf("shift %d on %s has incorrect times %s-%s, expected %s-%s",
			inst.ID, day, inst.StartTime, inst.EndTime, tpl.StartTime, tpl.EndTime))
	}

	if len(stale) > 0 {
		deleted, err := s.shifts.DeleteByIDs(ctx, stale)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to delete misplaced generated shifts")
		}
		result.Fixed += deleted
		for i := 0; i < deleted; i++ {
			s.hooks.metrics.RecordDriftRepair("deleted")
		}
	}

	if result.Fixed > 0 {
		s.hooks.shiftsChanged(ctx, events.ShiftsRepaired, map[string]interface{}{
			"templateId": templateID,
			"fixed":      result.Fixed,
		})
		s.logger.Info("shift timing repaired", zap.String("template_id", templateID), zap.Int("fixed", result.Fixed))
	}
	return result, nil
}

// RemoveDuplicateShifts keeps the oldest instance of every slot key and deletes the rest.
// A nil templateID sweeps every template.
func (s *ShiftMaintenanceService) RemoveDuplicateShifts(ctx context.Context, templateID *string) (int, error) {
	var (
		instances []models.GeneratedShift
		err       error
	)
	if templateID != nil {
		instances, err = s.shifts.ListByTemplate(ctx, *templateID)
	} else {
		instances, err = s.shifts.ListAll(ctx)
	}
	if err != nil {
		return 0, appErrors.Internal(err, "failed to list generated shifts")
	}

	duplicates := duplicateShiftIDs(instances)
	if len(duplicates) == 0 {
		return 0, nil
	}
	removed, err := s.shifts.DeleteByIDs(ctx, duplicates)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to delete duplicate generated shifts")
	}

	s.hooks.metrics.RecordDuplicatesRemoved(removed)
	payload := map[string]interface{}{"removed": removed}
	if templateID != nil {
		payload["templateId"] = *templateID
	}
	s.hooks.shiftsChanged(ctx, events.ShiftsDeduplicated, payload)
	s.logger.Info("duplicate generated shifts removed", zap.Int("removed", removed))
	return removed, nil
}

// duplicateShiftIDs returns every ID except the lowest in each slot key group, ascending.
func duplicateShiftIDs(instances []models.GeneratedShift) []int64 {
	keep := make(map[models.ShiftSlotKey]int64, len(instances))
	for _, inst := range instances {
		key := inst.Key()
		if id, ok := keep[key]; !ok || inst.ID < id {
			keep[key] = inst.ID
		}
	}
	var out []int64
	for _, inst := range instances {
		if keep[inst.Key()] != inst.ID {
			out = append(out, inst.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
