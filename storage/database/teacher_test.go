package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/teacher"
	"github.com/trezcool/shule/core/user"
)

func TestTeacherRepository_OnboardTeacher(t *testing.T) {
	schoolID := "11111111-1111-1111-1111-111111111111"
	now := time.Now().UTC()

	newInputs := func() (teacher.Teacher, user.User) {
		tch := teacher.Teacher{
			SchoolID:        schoolID,
			EmployeeNo:      "emp-001",
			FirstName:       "John",
			LastName:        "Doe",
			Email:           "john@school.test",
			PrimarySubjects: []string{"sub-1", "sub-2"},
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		usr := user.User{
			SchoolID:  &schoolID,
			Name:      "John Doe",
			Username:  "emp-001",
			Email:     "john@school.test",
			Roles:     []string{user.RoleTeacher},
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tch, usr
	}

	t.Run("commits user, teacher and subject links together", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTeacherRepository(db)
		tch, usr := newInputs()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO user_roles").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO teachers").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO teacher_primary_subjects").WithArgs(sqlmock.AnyArg(), "sub-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO teacher_primary_subjects").WithArgs(sqlmock.AnyArg(), "sub-2").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		gotT, gotUsr, err := repo.OnboardTeacher(context.Background(), tch, usr)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())

		assert.NotEmpty(t, gotT.ID)
		assert.Equal(t, gotUsr.ID, gotT.UserID)
	})

	t.Run("rolls back everything when a subject link fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTeacherRepository(db)
		tch, usr := newInputs()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO user_roles").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO teachers").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO teacher_primary_subjects").WillReturnError(&pq.Error{Code: "23503"})
		mock.ExpectRollback()

		_, _, err := repo.OnboardTeacher(context.Background(), tch, usr)
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps employee number conflicts", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTeacherRepository(db)
		tch, usr := newInputs()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO user_roles").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO teachers").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "teachers_school_id_employee_no_key"})
		mock.ExpectRollback()

		_, _, err := repo.OnboardTeacher(context.Background(), tch, usr)
		require.NoError(t, mock.ExpectationsWereMet())
		assert.ErrorIs(t, err, teacher.ErrEmployeeNoExists)
	})

	t.Run("user key collision is an account conflict, not an employee one", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTeacherRepository(db)
		tch, usr := newInputs()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_school_email_key"})
		mock.ExpectRollback()

		_, _, err := repo.OnboardTeacher(context.Background(), tch, usr)
		require.NoError(t, mock.ExpectationsWereMet())
		assert.ErrorIs(t, err, user.ErrEmailExists)
		assert.NotErrorIs(t, err, teacher.ErrEmployeeNoExists)
	})
}
