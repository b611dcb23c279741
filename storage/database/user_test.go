package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/user"
)

func TestUserRepository_CheckUniqueness(t *testing.T) {
	schoolID := "11111111-1111-1111-1111-111111111111"

	t.Run("taken username", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.CheckUniqueness(context.Background(), &schoolID, "jdoe", "jdoe@school.test")
		assert.ErrorIs(t, err, user.ErrUsernameExists)
	})

	t.Run("taken email", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.CheckUniqueness(context.Background(), &schoolID, "jdoe", "jdoe@school.test")
		assert.ErrorIs(t, err, user.ErrEmailExists)
	})

	t.Run("checks are scoped to the school", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		// same username in another school is not a collision
		mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE username = \$1 AND school_id IS NOT DISTINCT FROM \$2 AND id != ALL\(\$3\)\)`).
			WithArgs("jdoe", schoolID, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE email = \$1 AND school_id IS NOT DISTINCT FROM \$2 AND id != ALL\(\$3\)\)`).
			WithArgs("jdoe@school.test", schoolID, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		require.NoError(t, repo.CheckUniqueness(context.Background(), &schoolID, "jdoe", "jdoe@school.test"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("available", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		require.NoError(t, repo.CheckUniqueness(context.Background(), nil, "jdoe", "jdoe@school.test"))
	})
}

func TestUserRepository_CreateUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	schoolID := "11111111-1111-1111-1111-111111111111"
	now := time.Now().UTC()
	usr := user.User{
		SchoolID:  &schoolID,
		Name:      "Jane Doe",
		Username:  "jdoe",
		Email:     "jdoe@school.test",
		Roles:     []string{user.RoleAdminPrincipal},
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO user_roles").
		WithArgs(sqlmock.AnyArg(), user.RoleAdminPrincipal).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.NotEmpty(t, got.ID)
}
