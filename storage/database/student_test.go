package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func TestStudentRepository_OnboardStudent(t *testing.T) {
	schoolID := "11111111-1111-1111-1111-111111111111"
	now := time.Now().UTC()

	newInputs := func() (student.Student, user.User, student.Enrollment) {
		st := student.Student{
			SchoolID:    schoolID,
			AdmissionNo: "adm-001",
			FirstName:   "Jane",
			LastName:    "Doe",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		usr := user.User{
			SchoolID:  &schoolID,
			Name:      "Jane Doe",
			Username:  "adm-001",
			Roles:     []string{user.RoleStudent},
			CreatedAt: now,
			UpdatedAt: now,
		}
		enr := student.Enrollment{
			SchoolID:   schoolID,
			SessionID:  "sess-1",
			ArmID:      "arm-1",
			EnrolledAt: now,
		}
		return st, usr, enr
	}

	t.Run("commits user, student and enrollment together", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewStudentRepository(db)
		st, usr, enr := newInputs()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO user_roles").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO student_enrollments").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		gotSt, gotUsr, gotEnr, err := repo.OnboardStudent(context.Background(), st, usr, enr)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())

		// IDs are assigned and the rows are linked
		assert.NotEmpty(t, gotSt.ID)
		assert.NotEmpty(t, gotUsr.ID)
		assert.Equal(t, gotUsr.ID, gotSt.UserID)
		assert.Equal(t, gotSt.ID, gotEnr.StudentID)
	})

	t.Run("rolls back everything when the student insert conflicts", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewStudentRepository(db)
		st, usr, enr := newInputs()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO user_roles").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO students").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "students_school_id_admission_no_key"})
		mock.ExpectRollback()

		_, _, _, err := repo.OnboardStudent(context.Background(), st, usr, enr)
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())

		assert.True(t, core.IsConflict(err))
		assert.ErrorIs(t, err, student.ErrAdmissionNoExists)
	})

	t.Run("user key collision is an account conflict, not an admission one", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewStudentRepository(db)
		st, usr, enr := newInputs()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_school_username_key"})
		mock.ExpectRollback()

		_, _, _, err := repo.OnboardStudent(context.Background(), st, usr, enr)
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())

		assert.ErrorIs(t, err, user.ErrUsernameExists)
		assert.NotErrorIs(t, err, student.ErrAdmissionNoExists)
	})

	t.Run("rolls back when the enrollment insert fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewStudentRepository(db)
		st, usr, enr := newInputs()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO user_roles").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO student_enrollments").WillReturnError(&pq.Error{Code: "23503"})
		mock.ExpectRollback()

		_, _, _, err := repo.OnboardStudent(context.Background(), st, usr, enr)
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
