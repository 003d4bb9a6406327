package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/clientportal/backend/internal/domain/shared"
)

// newMockNoteRepository creates a GormNoteRepository with a mocked SQL connection
func newMockNoteRepository(t *testing.T) (*GormNoteRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormNoteRepository(gormDB), mock, mockDB
}

func TestGormNoteRepository_FindByID(t *testing.T) {
	t.Run("finds existing note", func(t *testing.T) {
		repo, mock, mockDB := newMockNoteRepository(t)
		defer mockDB.Close()

		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "project_id", "author_id", "content", "edited_at"}).
			AddRow(1, now, now, 7, 3, "Kickoff summary", nil)

		mock.ExpectQuery(`SELECT \* FROM "notes" WHERE "notes"\."id" = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(1, 1).
			WillReturnRows(rows)

		note, err := repo.FindByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, uint(7), note.ProjectID)
		assert.Equal(t, "Kickoff summary", note.Content)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockNoteRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "notes"`).
			WithArgs(99, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), 99)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestGormNoteRepository_FindByProject(t *testing.T) {
	repo, mock, mockDB := newMockNoteRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notes" WHERE project_id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "project_id", "author_id", "content", "edited_at"}).
		AddRow(2, now, now, 7, 3, "Second", nil).
		AddRow(1, now.Add(-time.Hour), now, 7, 3, "First", nil)

	mock.ExpectQuery(`SELECT \* FROM "notes" WHERE project_id = \$1 ORDER BY created_at DESC LIMIT .*`).
		WithArgs(7, 20).
		WillReturnRows(rows)

	notes, total, err := repo.FindByProject(context.Background(), 7, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, notes, 2)
	assert.Equal(t, "Second", notes[0].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormNoteRepository_Delete(t *testing.T) {
	t.Run("deletes existing note", func(t *testing.T) {
		repo, mock, mockDB := newMockNoteRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "notes" WHERE "notes"\."id" = \$1`).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing note maps to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockNoteRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "notes"`).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), 99)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}
