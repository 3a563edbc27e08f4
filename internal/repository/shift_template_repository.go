package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Joshburn99/NexSpace-sub001/internal/models"
)

const shiftTemplateColumns = `t.id, t.name, t.facility_id, COALESCE(f.name, '') AS facility_name, t.department, t.specialty,
       t.start_time, t.end_time, t.days_of_week, t.min_staff, t.max_staff, t.hourly_rate, t.days_in_advance,
       t.is_active, t.generated_shifts_count, t.created_at, t.updated_at`

// ShiftTemplateRepository persists recurring shift templates.
type ShiftTemplateRepository struct {
	db *sqlx.DB
}

// NewShiftTemplateRepository constructs the repository.
func NewShiftTemplateRepository(db *sqlx.DB) *ShiftTemplateRepository {
	return &ShiftTemplateRepository{db: db}
}

func (r *ShiftTemplateRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID loads a template with its facility name.
func (r *ShiftTemplateRepository) FindByID(ctx context.Context, id string) (*models.ShiftTemplate, error) {
	query := `SELECT ` + shiftTemplateColumns + `
FROM shift_templates t
LEFT JOIN facilities f ON f.id = t.facility_id
WHERE t.id = $1`
	var tpl models.ShiftTemplate
	if err := r.db.GetContext(ctx, &tpl, query, id); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// List returns templates matching the filter ordered by name.
func (r *ShiftTemplateRepository) List(ctx context.Context, filter models.ShiftTemplateFilter) ([]models.ShiftTemplate, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if len(filter.FacilityIDs) > 0 {
		args = append(args, pq.Array(filter.FacilityIDs))
		conditions = append(conditions, fmt.Sprintf("t.facility_id = ANY($%d)", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("t.is_active = $%d", len(args)))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + shiftTemplateColumns + `
FROM shift_templates t
LEFT JOIN facilities f ON f.id = t.facility_id`)
	if len(conditions) > 0 {
		sb.WriteString("\nWHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString("\nORDER BY t.name ASC, t.id ASC")

	var templates []models.ShiftTemplate
	if err := r.db.SelectContext(ctx, &templates, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("list shift templates: %w", err)
	}
	return templates, nil
}

// ListActive returns every active template.
func (r *ShiftTemplateRepository) ListActive(ctx context.Context) ([]models.ShiftTemplate, error) {
	active := true
	return r.List(ctx, models.ShiftTemplateFilter{Active: &active})
}

// Create inserts a template, assigning an ID when missing.
func (r *ShiftTemplateRepository) Create(ctx context.Context, tpl *models.ShiftTemplate) error {
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now
	const query = `INSERT INTO shift_templates (id, name, facility_id, department, specialty, start_time, end_time, days_of_week,
		min_staff, max_staff, hourly_rate, days_in_advance, is_active, generated_shifts_count, created_at, updated_at)
		VALUES (:id, :name, :facility_id, :department, :specialty, :start_time, :end_time, :days_of_week,
		:min_staff, :max_staff, :hourly_rate, :days_in_advance, :is_active, :generated_shifts_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tpl); err != nil {
		return fmt.Errorf("create shift template: %w", err)
	}
	return nil
}

// Update persists the editable template fields. The generated counter is left untouched.
func (r *ShiftTemplateRepository) Update(ctx context.Context, tpl *models.ShiftTemplate) error {
	tpl.UpdatedAt = time.Now().UTC()
	const query = `UPDATE shift_templates SET name = :name, department = :department, specialty = :specialty,
		start_time = :start_time, end_time = :end_time, days_of_week = :days_of_week, min_staff = :min_staff,
		max_staff = :max_staff, hourly_rate = :hourly_rate, days_in_advance = :days_in_advance,
		is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, tpl)
	if err != nil {
		return fmt.Errorf("update shift template: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("shift template rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncrementGeneratedCount adds delta to the template's generated counter.
func (r *ShiftTemplateRepository) IncrementGeneratedCount(ctx context.Context, exec sqlx.ExtContext, id string, delta int) error {
	const query = `UPDATE shift_templates SET generated_shifts_count = generated_shifts_count + $1, updated_at = $2 WHERE id = $3`
	if _, err := r.exec(exec).ExecContext(ctx, query, delta, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("increment generated shifts count: %w", err)
	}
	return nil
}

// SetGeneratedCount overwrites the template's generated counter.
func (r *ShiftTemplateRepository) SetGeneratedCount(ctx context.Context, id string, count int) error {
	const query = `UPDATE shift_templates SET generated_shifts_count = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, count, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set generated shifts count: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("generated count rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
