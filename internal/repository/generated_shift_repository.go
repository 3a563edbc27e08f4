package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Joshburn99/NexSpace-sub001/internal/models"
)

const generatedShiftColumns = `id, template_id, shift_date, shift_position, title, department, specialty, facility_id, facility_name,
start_time, end_time, hourly_rate, status, assigned_staff_ids, created_at, updated_at`

const generatedShiftInsertColumns = 15

// GeneratedShiftRepository persists template-derived shift instances.
type GeneratedShiftRepository struct {
	db *sqlx.DB
}

// NewGeneratedShiftRepository constructs the repository.
func NewGeneratedShiftRepository(db *sqlx.DB) *GeneratedShiftRepository {
	return &GeneratedShiftRepository{db: db}
}

func (r *GeneratedShiftRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListExistingDates returns the dates in [start, end] already holding the given position of a template.
func (r *GeneratedShiftRepository) ListExistingDates(ctx context.Context, exec sqlx.ExtContext, templateID string, position int, start, end time.Time) ([]time.Time, error) {
	const query = `SELECT shift_date FROM generated_shifts
WHERE template_id = $1 AND shift_position = $2 AND shift_date BETWEEN $3 AND $4
ORDER BY shift_date ASC`
	var dates []time.Time
	if err := sqlx.SelectContext(ctx, r.exec(exec), &dates, query, templateID, position, start, end); err != nil {
		return nil, fmt.Errorf("list existing generated shift dates: %w", err)
	}
	return dates, nil
}

// InsertBatch inserts the shifts, skipping rows whose slot key already exists.
// Only the rows actually written are returned.
func (r *GeneratedShiftRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, shifts []models.GeneratedShift) ([]models.GeneratedShift, error) {
	if len(shifts) == 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	values := make([]string, 0, len(shifts))
	args := make([]interface{}, 0, len(shifts)*generatedShiftInsertColumns)
	for i, shift := range shifts {
		if shift.Status == "" {
			shift.Status = models.ShiftStatusOpen
		}
		assigned := shift.AssignedStaffIDs
		if assigned == nil {
			assigned = pq.StringArray{}
		}
		base := i * generatedShiftInsertColumns
		placeholders := make([]string, generatedShiftInsertColumns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args,
			shift.TemplateID, shift.ShiftDate, shift.ShiftPosition, shift.Title, shift.Department, shift.Specialty,
			shift.FacilityID, shift.FacilityName, shift.StartTime, shift.EndTime, shift.HourlyRate,
			string(shift.Status), assigned, now, now,
		)
	}

	query := `INSERT INTO generated_shifts (template_id, shift_date, shift_position, title, department, specialty, facility_id,
facility_name, start_time, end_time, hourly_rate, status, assigned_staff_ids, created_at, updated_at)
VALUES ` + strings.Join(values, ", ") + `
ON CONFLICT (template_id, shift_date, shift_position) DO NOTHING
RETURNING ` + generatedShiftColumns

	var inserted []models.GeneratedShift
	if err := sqlx.SelectContext(ctx, r.exec(exec), &inserted, query, args...); err != nil {
		return nil, fmt.Errorf("insert generated shifts: %w", err)
	}
	return inserted, nil
}

// DeleteRegenerable removes the template's instances on or after today that are open and unassigned.
func (r *GeneratedShiftRepository) DeleteRegenerable(ctx context.Context, templateID string, today time.Time) (int, error) {
	const query = `DELETE FROM generated_shifts
WHERE template_id = $1 AND shift_date >= $2 AND status = $3 AND cardinality(assigned_staff_ids) = 0`
	result, err := r.db.ExecContext(ctx, query, templateID, today, string(models.ShiftStatusOpen))
	if err != nil {
		return 0, fmt.Errorf("delete regenerable generated shifts: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("regenerable shifts rows affected: %w", err)
	}
	return int(affected), nil
}

// ListByTemplate returns every live instance of a template ordered by date, position and age.
func (r *GeneratedShiftRepository) ListByTemplate(ctx context.Context, templateID string) ([]models.GeneratedShift, error) {
	query := `SELECT ` + generatedShiftColumns + ` FROM generated_shifts WHERE template_id = $1
ORDER BY shift_date ASC, shift_position ASC, id ASC`
	var shifts []models.GeneratedShift
	if err := r.db.SelectContext(ctx, &shifts, query, templateID); err != nil {
		return nil, fmt.Errorf("list generated shifts by template: %w", err)
	}
	return shifts, nil
}

// ListAll returns every live generated instance.
func (r *GeneratedShiftRepository) ListAll(ctx context.Context) ([]models.GeneratedShift, error) {
	query := `SELECT ` + generatedShiftColumns + ` FROM generated_shifts ORDER BY shift_date ASC, start_time ASC, id ASC`
	var shifts []models.GeneratedShift
	if err := r.db.SelectContext(ctx, &shifts, query); err != nil {
		return nil, fmt.Errorf("list generated shifts: %w", err)
	}
	return shifts, nil
}

// DeleteByIDs removes the given instances and returns the number deleted.
func (r *GeneratedShiftRepository) DeleteByIDs(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `DELETE FROM generated_shifts WHERE id = ANY($1)`
	result, err := r.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete generated shifts: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleted generated shifts rows affected: %w", err)
	}
	return int(affected), nil
}

// UpdateTimes rewrites only the clock times of an instance.
func (r *GeneratedShiftRepository) UpdateTimes(ctx context.Context, id int64, startTime, endTime string) error {
	const query = `UPDATE generated_shifts SET start_time = $1, end_time = $2, updated_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, startTime, endTime, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update generated shift times: %w", err)
	}
	return nil
}

// CountByTemplate returns the number of live instances of a template.
func (r *GeneratedShiftRepository) CountByTemplate(ctx context.Context, templateID string) (int, error) {
	const query = `SELECT COUNT(*) FROM generated_shifts WHERE template_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, templateID); err != nil {
		return 0, fmt.Errorf("count generated shifts: %w", err)
	}
	return count, nil
}
