package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joshburn99/NexSpace-sub001/internal/dto"
	"github.com/Joshburn99/NexSpace-sub001/internal/models"
	appErrors "github.com/Joshburn99/NexSpace-sub001/pkg/errors"
)

func newTestUnifiedService(store *memoryShiftStore, coldStart bool) *UnifiedShiftService {
	generator := newTestGenerationService(store)
	return NewUnifiedShiftService(store, manualStore{store}, generator, nil, nil, ShiftEngineConfig{ColdStartEnabled: coldStart})
}

func seedMixedShifts(store *memoryShiftStore) {
	store.seed(
		models.GeneratedShift{ID: 1, TemplateID: "tpl-icu", ShiftDate: date(2025, 1, 8), StartTime: "07:00", EndTime: "19:00", FacilityID: "fac-1"},
		models.GeneratedShift{ID: 2, TemplateID: "tpl-icu", ShiftDate: date(2025, 1, 6), StartTime: "19:00", EndTime: "07:00", FacilityID: "fac-1"},
		models.GeneratedShift{ID: 3, TemplateID: "tpl-er", ShiftDate: date(2025, 1, 6), StartTime: "07:00", EndTime: "15:00", FacilityID: "fac-2"},
	)
	store.manual = []models.ManualShift{
		{ID: 1, ShiftDate: date(2025, 1, 6), StartTime: "11:00", EndTime: "15:00", FacilityID: "fac-1", RequiredStaff: 2, Status: models.ShiftStatusOpen},
		{ID: 2, ShiftDate: date(2025, 1, 7), StartTime: "07:00", EndTime: "15:00", FacilityID: "fac-3", RequiredStaff: 1, Status: models.ShiftStatusFilled},
	}
}

func TestUnifiedShiftsMergedAndSorted(t *testing.T) {
	store := newMemoryShiftStore()
	seedMixedShifts(store)
	svc := newTestUnifiedService(store, false)

	feed, err := svc.GetUnifiedShifts(context.Background(), models.Viewer{Role: models.RoleAdmin}, dto.UnifiedShiftQuery{})
	require.NoError(t, err)
	assert.False(t, feed.Degraded)

	ids := make([]string, 0, len(feed.Shifts))
	for _, s := range feed.Shifts {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"generated-3", "manual-1", "generated-2", "manual-2", "generated-1"}, ids)

	first := feed.Shifts[0]
	assert.Equal(t, models.ShiftSourceGenerated, first.Source)
	require.NotNil(t, first.TemplateID)
	assert.Equal(t, "tpl-er", *first.TemplateID)
	assert.Nil(t, feed.Shifts[1].TemplateID)
	assert.Equal(t, 2, feed.Shifts[1].RequiredStaff)
}

func TestUnifiedShiftsFacilityIsolation(t *testing.T) {
	store := newMemoryShiftStore()
	seedMixedShifts(store)
	svc := newTestUnifiedService(store, false)
	ctx := context.Background()

	feed, err := svc.GetUnifiedShifts(ctx, models.Viewer{Role: models.RoleFacilityManager, FacilityIDs: []string{"fac-1"}}, dto.UnifiedShiftQuery{})
	require.NoError(t, err)
	require.Len(t, feed.Shifts, 3)
	for _, s := range feed.Shifts {
		assert.Equal(t, "fac-1", s.FacilityID)
	}

	empty, err := svc.GetUnifiedShifts(ctx, models.Viewer{Role: models.RoleStaff}, dto.UnifiedShiftQuery{})
	require.NoError(t, err)
	assert.Empty(t, empty.Shifts)
}

func TestUnifiedShiftsQueryFilters(t *testing.T) {
	store := newMemoryShiftStore()
	seedMixedShifts(store)
	svc := newTestUnifiedService(store, false)

	from, to := date(2025, 1, 7), date(2025, 1, 8)
	feed, err := svc.GetUnifiedShifts(context.Background(), models.Viewer{Role: models.RoleSuperAdmin}, dto.UnifiedShiftQuery{From: &from, To: &to, Status: models.ShiftStatusOpen})
	require.NoError(t, err)
	require.Len(t, feed.Shifts, 1)
	assert.Equal(t, "generated-1", feed.Shifts[0].ID)
}

func TestUnifiedShiftsColdStart(t *testing.T) {
	store := newMemoryShiftStore()
	store.addTemplate(icuTemplate())
	svc := newTestUnifiedService(store, true)

	feed, err := svc.GetUnifiedShifts(context.Background(), models.Viewer{Role: models.RoleAdmin}, dto.UnifiedShiftQuery{})
	require.NoError(t, err)
	assert.Len(t, feed.Shifts, 4)
}

func TestUnifiedShiftsColdStartFailureDegradesAndRetries(t *testing.T) {
	store := newMemoryShiftStore()
	store.addTemplate(icuTemplate())
	store.listActiveErr = errors.New("db down")
	repo := &memoryCacheRepo{values: map[string][]byte{}}
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	generator := newTestGenerationService(store)
	svc := NewUnifiedShiftService(store, manualStore{store}, generator, cache, nil, ShiftEngineConfig{ColdStartEnabled: true})
	ctx := context.Background()

	feed, err := svc.GetUnifiedShifts(ctx, adminViewer(), dtoQuery())
	require.NoError(t, err)
	assert.True(t, feed.Degraded)
	assert.Contains(t, feed.Warnings, "generated shifts are temporarily unavailable")
	assert.Empty(t, feed.Shifts)
	assert.Empty(t, repo.values)

	store.listActiveErr = nil
	feed, err = svc.GetUnifiedShifts(ctx, adminViewer(), dtoQuery())
	require.NoError(t, err)
	assert.False(t, feed.Cached)
	assert.False(t, feed.Degraded)
	assert.Len(t, feed.Shifts, 4)
}

func TestUnifiedShiftsNoColdStartWhenDisabled(t *testing.T) {
	store := newMemoryShiftStore()
	store.addTemplate(icuTemplate())
	svc := newTestUnifiedService(store, false)

	feed, err := svc.GetUnifiedShifts(context.Background(), models.Viewer{Role: models.RoleAdmin}, dto.UnifiedShiftQuery{})
	require.NoError(t, err)
	assert.Empty(t, feed.Shifts)
}

func TestUnifiedShiftsDegradesWhenOneSourceFails(t *testing.T) {
	store := newMemoryShiftStore()
	seedMixedShifts(store)
	store.manualErr = errors.New("manual table locked")
	svc := newTestUnifiedService(store, false)

	feed, err := svc.GetUnifiedShifts(context.Background(), models.Viewer{Role: models.RoleAdmin}, dto.UnifiedShiftQuery{})
	require.NoError(t, err)
	assert.True(t, feed.Degraded)
	assert.Len(t, feed.Shifts, 3)
	assert.NotEmpty(t, feed.Warnings)

	store.manualErr = nil
	store.listAllErr = errors.New("generated table locked")
	feed, err = svc.GetUnifiedShifts(context.Background(), models.Viewer{Role: models.RoleAdmin}, dto.UnifiedShiftQuery{})
	require.NoError(t, err)
	assert.True(t, feed.Degraded)
	assert.Len(t, feed.Shifts, 2)
}

func TestUnifiedShiftsFailsWhenBothSourcesFail(t *testing.T) {
	store := newMemoryShiftStore()
	store.manualErr = errors.New("down")
	store.listAllErr = errors.New("down")
	svc := newTestUnifiedService(store, true)

	_, err := svc.GetUnifiedShifts(context.Background(), models.Viewer{Role: models.RoleAdmin}, dto.UnifiedShiftQuery{})
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func adminViewer() models.Viewer {
	return models.Viewer{UserID: "admin-1", Role: models.RoleAdmin}
}

func dtoQuery() dto.UnifiedShiftQuery {
	return dto.UnifiedShiftQuery{}
}
