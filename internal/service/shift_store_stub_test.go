package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Joshburn99/NexSpace-sub001/internal/models"
)

// memoryShiftStore is an in-memory stand-in for the template, generated and manual shift tables.
// It honours the slot-key unique index unless rows are seeded directly.
type memoryShiftStore struct {
	mu        sync.Mutex
	templates map[string]*models.ShiftTemplate
	shifts    []models.GeneratedShift
	manual    []models.ManualShift
	nextID    int64

	insertErr      error
	listAllErr     error
	manualErr      error
	listActiveErr  error
	failTemplateID string
	insertCalls    int
	existingCalls  int
}

func newMemoryShiftStore() *memoryShiftStore {
	return &memoryShiftStore{templates: map[string]*models.ShiftTemplate{}}
}

func (m *memoryShiftStore) addTemplate(tpl models.ShiftTemplate) *models.ShiftTemplate {
	m.mu.Lock()
	defer m.mu.Unlock()
	copyTpl := tpl
	m.templates[tpl.ID] = &copyTpl
	return &copyTpl
}

// seed appends rows without enforcing uniqueness.
func (m *memoryShiftStore) seed(shifts ...models.GeneratedShift) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range shifts {
		m.nextID++
		if s.ID == 0 {
			s.ID = m.nextID
		} else if s.ID > m.nextID {
			m.nextID = s.ID
		}
		if s.Status == "" {
			s.Status = models.ShiftStatusOpen
		}
		m.shifts = append(m.shifts, s)
	}
}

func (m *memoryShiftStore) template(id string) models.ShiftTemplate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.templates[id]
}

func (m *memoryShiftStore) liveShifts(templateID string) []models.GeneratedShift {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.GeneratedShift
	for _, s := range m.shifts {
		if s.TemplateID == templateID {
			out = append(out, s)
		}
	}
	return out
}

func (m *memoryShiftStore) FindByID(ctx context.Context, id string) (*models.ShiftTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tpl, ok := m.templates[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copyTpl := *tpl
	return &copyTpl, nil
}

func (m *memoryShiftStore) List(ctx context.Context, filter models.ShiftTemplateFilter) ([]models.ShiftTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ShiftTemplate
	for _, tpl := range m.templates {
		if filter.Active != nil && tpl.IsActive != *filter.Active {
			continue
		}
		if len(filter.FacilityIDs) > 0 && !containsString(filter.FacilityIDs, tpl.FacilityID) {
			continue
		}
		out = append(out, *tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryShiftStore) ListActive(ctx context.Context) ([]models.ShiftTemplate, error) {
	if m.listActiveErr != nil {
		return nil, m.listActiveErr
	}
	active := true
	return m.List(ctx, models.ShiftTemplateFilter{Active: &active})
}

func (m *memoryShiftStore) Create(ctx context.Context, tpl *models.ShiftTemplate) error {
	if tpl.ID == "" {
		tpl.ID = "tpl-new"
	}
	m.addTemplate(*tpl)
	return nil
}

func (m *memoryShiftStore) Update(ctx context.Context, tpl *models.ShiftTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.templates[tpl.ID]
	if !ok {
		return sql.ErrNoRows
	}
	count := stored.GeneratedShiftsCount
	copyTpl := *tpl
	copyTpl.GeneratedShiftsCount = count
	m.templates[tpl.ID] = &copyTpl
	return nil
}

func (m *memoryShiftStore) IncrementGeneratedCount(ctx context.Context, exec sqlx.ExtContext, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[id].GeneratedShiftsCount += delta
	return nil
}

func (m *memoryShiftStore) SetGeneratedCount(ctx context.Context, id string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tpl, ok := m.templates[id]
	if !ok {
		return sql.ErrNoRows
	}
	tpl.GeneratedShiftsCount = count
	return nil
}

func (m *memoryShiftStore) ListExistingDates(ctx context.Context, exec sqlx.ExtContext, templateID string, position int, start, end time.Time) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existingCalls++
	var out []time.Time
	for _, s := range m.shifts {
		if s.TemplateID == templateID && s.ShiftPosition == position && !s.ShiftDate.Before(start) && !s.ShiftDate.After(end) {
			out = append(out, s.ShiftDate)
		}
	}
	return out, nil
}

func (m *memoryShiftStore) InsertBatch(ctx context.Context, exec sqlx.ExtContext, shifts []models.GeneratedShift) ([]models.GeneratedShift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCalls++
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	if len(shifts) > 0 && shifts[0].TemplateID == m.failTemplateID {
		return nil, sql.ErrConnDone
	}
	taken := make(map[models.ShiftSlotKey]struct{}, len(m.shifts))
	for _, s := range m.shifts {
		taken[s.Key()] = struct{}{}
	}
	var inserted []models.GeneratedShift
	for _, s := range shifts {
		if _, ok := taken[s.Key()]; ok {
			continue
		}
		m.nextID++
		s.ID = m.nextID
		if s.AssignedStaffIDs == nil {
			s.AssignedStaffIDs = pq.StringArray{}
		}
		taken[s.Key()] = struct{}{}
		m.shifts = append(m.shifts, s)
		inserted = append(inserted, s)
	}
	return inserted, nil
}

func (m *memoryShiftStore) DeleteRegenerable(ctx context.Context, templateID string, today time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.shifts[:0]
	deleted := 0
	for _, s := range m.shifts {
		if s.TemplateID == templateID && s.Regenerable(today) {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	m.shifts = kept
	return deleted, nil
}

func (m *memoryShiftStore) ListByTemplate(ctx context.Context, templateID string) ([]models.GeneratedShift, error) {
	return m.liveShifts(templateID), nil
}

func (m *memoryShiftStore) ListAll(ctx context.Context) ([]models.GeneratedShift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listAllErr != nil {
		return nil, m.listAllErr
	}
	out := make([]models.GeneratedShift, len(m.shifts))
	copy(out, m.shifts)
	return out, nil
}

func (m *memoryShiftStore) DeleteByIDs(ctx context.Context, ids []int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	remove := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}
	kept := m.shifts[:0]
	deleted := 0
	for _, s := range m.shifts {
		if _, ok := remove[s.ID]; ok {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	m.shifts = kept
	return deleted, nil
}

func (m *memoryShiftStore) UpdateTimes(ctx context.Context, id int64, startTime, endTime string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.shifts {
		if m.shifts[i].ID == id {
			m.shifts[i].StartTime = startTime
			m.shifts[i].EndTime = endTime
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memoryShiftStore) CountByTemplate(ctx context.Context, templateID string) (int, error) {
	return len(m.liveShifts(templateID)), nil
}

// manualStore adapts the store to the manual shift reader.
type manualStore struct{ *memoryShiftStore }

func (m manualStore) ListAll(ctx context.Context) ([]models.ManualShift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.manualErr != nil {
		return nil, m.manualErr
	}
	out := make([]models.ManualShift, len(m.manual))
	copy(out, m.manual)
	return out, nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// fixedClock pins the engine to 2025-01-06, a Monday.
func fixedClock() time.Time {
	return time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
}

func icuTemplate() models.ShiftTemplate {
	return models.ShiftTemplate{
		ID:            "tpl-icu",
		Name:          "ICU Days",
		FacilityID:    "fac-1",
		FacilityName:  "General Hospital",
		Department:    "ICU",
		Specialty:     "RN",
		StartTime:     "07:00",
		EndTime:       "19:00",
		DaysOfWeek:    pq.Int64Array{1, 3},
		MinStaff:      2,
		MaxStaff:      3,
		HourlyRate:    62.5,
		DaysInAdvance: 6,
		IsActive:      true,
	}
}

func newTestGenerationService(store *memoryShiftStore) *ShiftGenerationService {
	return NewShiftGenerationService(store, store, nil, nil, nil, nil, nil, ShiftEngineConfig{BatchSize: 3}).WithClock(fixedClock)
}
