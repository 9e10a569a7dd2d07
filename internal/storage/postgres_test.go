package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/bptracker/internal/apperr"
)

func setupMockPostgres(t *testing.T) (sqlmock.Sqlmock, *SQL) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewSQL(db, DriverPostgres)
	require.NoError(t, err)
	return mock, s
}

var entryColumns = []string{"id", "date_time", "systolic", "diastolic", "heart_rate", "location", "notes"}

func TestRebind(t *testing.T) {
	pg := dialects[DriverPostgres]
	assert.Equal(t, "DELETE FROM entries WHERE id = $1 AND x = $2", pg.rebind("DELETE FROM entries WHERE id = ? AND x = ?"))

	lite := dialects[DriverSQLite]
	assert.Equal(t, "WHERE id = ?", lite.rebind("WHERE id = ?"))
}

func TestPostgres_Migrate(t *testing.T) {
	mock, s := setupMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS entries")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Create(t *testing.T) {
	mock, s := setupMockPostgres(t)
	r := sampleReading(128, 79, 66)

	mock.ExpectQuery(`INSERT INTO entries .* VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)\s+RETURNING id`).
		WithArgs("2025-01-02 07:30:00", 128, 79, 66, "Home", "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	created, err := s.Create(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, 128, created.Systolic)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetFound(t *testing.T) {
	mock, s := setupMockPostgres(t)

	rows := sqlmock.NewRows(entryColumns).
		AddRow(int64(7), "2025-02-03 09:15:00", 141, 92, 80, "Clinic", "after coffee")
	mock.ExpectQuery(`SELECT .* FROM entries WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	got, err := s.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "2025-02-03 09:15:00", got.DateTime())
	assert.Equal(t, "after coffee", got.Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetNotFound(t *testing.T) {
	mock, s := setupMockPostgres(t)

	mock.ExpectQuery(`SELECT`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), 99)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListError(t *testing.T) {
	mock, s := setupMockPostgres(t)

	mock.ExpectQuery(`SELECT .* ORDER BY date_time DESC`).
		WillReturnError(errors.New("connection reset"))

	_, err := s.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage: list")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Delete(t *testing.T) {
	mock, s := setupMockPostgres(t)

	mock.ExpectQuery(`DELETE FROM entries WHERE id = \$1\s+RETURNING id, date_time`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(entryColumns).
			AddRow(int64(3), "2025-01-02 07:30:00", 128, 79, 66, "Home", ""))

	removed, err := s.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed.ID)
	assert.Equal(t, 128, removed.Systolic)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteNotFound(t *testing.T) {
	mock, s := setupMockPostgres(t)

	mock.ExpectQuery(`DELETE FROM entries WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(entryColumns))

	_, err := s.Delete(context.Background(), 8)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
