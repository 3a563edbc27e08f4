package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joshburn99/NexSpace-sub001/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var templateRowColumns = []string{
	"id", "name", "facility_id", "facility_name", "department", "specialty", "start_time", "end_time", "days_of_week",
	"min_staff", "max_staff", "hourly_rate", "days_in_advance", "is_active", "generated_shifts_count", "created_at", "updated_at",
}

func TestShiftTemplateRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShiftTemplateRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(templateRowColumns).
		AddRow("tpl-1", "ICU Nights", "fac-1", "General Hospital", "ICU", "RN", "19:00", "07:00", "{1,3}", 2, 3, 55.5, 14, true, 8, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN facilities f ON f.id = t.facility_id\nWHERE t.id = $1")).
		WithArgs("tpl-1").
		WillReturnRows(rows)

	tpl, err := repo.FindByID(context.Background(), "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, "General Hospital", tpl.FacilityName)
	assert.Equal(t, pq.Int64Array{1, 3}, tpl.DaysOfWeek)
	assert.Equal(t, 2, tpl.MinStaff)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftTemplateRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShiftTemplateRepository(db)

	mock.ExpectQuery("FROM shift_templates t").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestShiftTemplateRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShiftTemplateRepository(db)

	active := true
	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.facility_id = ANY($1) AND t.is_active = $2\nORDER BY t.name ASC, t.id ASC")).
		WithArgs(sqlmock.AnyArg(), true).
		WillReturnRows(sqlmock.NewRows(templateRowColumns))

	list, err := repo.List(context.Background(), models.ShiftTemplateFilter{FacilityIDs: []string{"fac-1"}, Active: &active})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftTemplateRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShiftTemplateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shift_templates")).WillReturnResult(sqlmock.NewResult(1, 1))

	tpl := &models.ShiftTemplate{Name: "ER Days", FacilityID: "fac-1", StartTime: "07:00", EndTime: "19:00", DaysOfWeek: pq.Int64Array{1}, MinStaff: 1, MaxStaff: 1}
	require.NoError(t, repo.Create(context.Background(), tpl))
	assert.NotEmpty(t, tpl.ID)
	assert.False(t, tpl.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftTemplateRepositoryUpdateNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShiftTemplateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE shift_templates SET name =")).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.ShiftTemplate{ID: "tpl-x"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestShiftTemplateRepositoryIncrementGeneratedCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShiftTemplateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE shift_templates SET generated_shifts_count = generated_shifts_count + $1, updated_at = $2 WHERE id = $3")).
		WithArgs(4, sqlmock.AnyArg(), "tpl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementGeneratedCount(context.Background(), nil, "tpl-1", 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftTemplateRepositorySetGeneratedCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewShiftTemplateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE shift_templates SET generated_shifts_count = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(12, sqlmock.AnyArg(), "tpl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetGeneratedCount(context.Background(), "tpl-1", 12))
	assert.NoError(t, mock.ExpectationsWereMet())
}
