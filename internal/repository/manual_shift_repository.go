package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Joshburn99/NexSpace-sub001/internal/models"
)

// ManualShiftRepository reads ad-hoc shifts created outside the template engine.
type ManualShiftRepository struct {
	db *sqlx.DB
}

// NewManualShiftRepository constructs the repository.
func NewManualShiftRepository(db *sqlx.DB) *ManualShiftRepository {
	return &ManualShiftRepository{db: db}
}

// ListAll returns every manual shift.
func (r *ManualShiftRepository) ListAll(ctx context.Context) ([]models.ManualShift, error) {
	const query = `SELECT id, title, department, specialty, facility_id, facility_name, shift_date, start_time, end_time,
hourly_rate, required_staff, status, assigned_staff_ids, created_at, updated_at
FROM manual_shifts ORDER BY shift_date ASC, start_time ASC, id ASC`
	var shifts []models.ManualShift
	if err := r.db.SelectContext(ctx, &shifts, query); err != nil {
		return nil, fmt.Errorf("list manual shifts: %w", err)
	}
	return shifts, nil
}
