package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

func TestSchoolRepository_ActivateSession(t *testing.T) {
	schoolID := "11111111-1111-1111-1111-111111111111"
	sessID := "22222222-2222-2222-2222-222222222222"

	t.Run("swaps the active session in one transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSchoolRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE school_sessions SET is_active = false").
			WithArgs(schoolID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE school_sessions SET is_active = true").
			WithArgs(schoolID, sessID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM school_sessions WHERE school_id = $1 AND id = $2`)).
			WithArgs(schoolID, sessID).
			WillReturnRows(sqlmock.
				NewRows([]string{"id", "school_id", "name", "start_date", "end_date", "is_active", "created_at", "updated_at"}).
				AddRow(sessID, schoolID, "2025/2026", time.Now(), time.Now(), true, time.Now(), time.Now()))

		sess, err := repo.ActivateSession(context.Background(), schoolID, sessID)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())

		assert.True(t, sess.IsActive)
	})

	t.Run("rolls back when the session does not exist", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSchoolRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE school_sessions SET is_active = false").
			WithArgs(schoolID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE school_sessions SET is_active = true").
			WithArgs(schoolID, sessID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.ActivateSession(context.Background(), schoolID, sessID)
		require.NoError(t, mock.ExpectationsWereMet())

		assert.ErrorIs(t, err, school.ErrSessionNotFound)
		assert.True(t, core.IsNotFound(err))
	})
}

func TestSchoolRepository_GetActiveSession(t *testing.T) {
	schoolID := "11111111-1111-1111-1111-111111111111"
	sessID := "22222222-2222-2222-2222-222222222222"

	t.Run("returns the active session", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSchoolRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM school_sessions WHERE school_id = $1 AND is_active`)).
			WithArgs(schoolID).
			WillReturnRows(sqlmock.
				NewRows([]string{"id", "school_id", "name", "start_date", "end_date", "is_active", "created_at", "updated_at"}).
				AddRow(sessID, schoolID, "2025/2026", time.Now(), time.Now(), true, time.Now(), time.Now()))

		sess, err := repo.GetActiveSession(context.Background(), schoolID)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())

		assert.Equal(t, sessID, sess.ID)
		assert.True(t, sess.IsActive)
	})

	t.Run("no active session", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSchoolRepository(db)

		mock.ExpectQuery("SELECT \\* FROM school_sessions").
			WithArgs(schoolID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetActiveSession(context.Background(), schoolID)
		assert.ErrorIs(t, err, school.ErrSessionNotFound)
	})
}

func TestSchoolRepository_GetActiveTerm(t *testing.T) {
	schoolID := "11111111-1111-1111-1111-111111111111"
	termID := "33333333-3333-3333-3333-333333333333"
	now := time.Now().UTC()

	t.Run("returns the current term of the active session", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSchoolRepository(db)

		mock.ExpectQuery("SELECT t\\.\\* FROM school_terms t").
			WithArgs(schoolID, now).
			WillReturnRows(sqlmock.
				NewRows([]string{"id", "school_id", "session_id", "name", "start_date", "end_date", "created_at", "updated_at"}).
				AddRow(termID, schoolID, "sess-1", "Term 1", now.AddDate(0, -1, 0), now.AddDate(0, 2, 0), now, now))

		term, err := repo.GetActiveTerm(context.Background(), schoolID, now)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())

		assert.Equal(t, termID, term.ID)
	})

	t.Run("no term covers the date", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSchoolRepository(db)

		mock.ExpectQuery("SELECT t\\.\\* FROM school_terms t").
			WithArgs(schoolID, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetActiveTerm(context.Background(), schoolID, now)
		assert.ErrorIs(t, err, school.ErrTermNotFound)
	})
}
