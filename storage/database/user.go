package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// Roles live in their own table; list/get queries aggregate them back onto
// the user row, hence the GROUP BY.
const selectUsersSQL = `
SELECT u.id, u.school_id, u.name, u.username, u.email, u.is_active, u.password_hash,
       u.created_at, u.updated_at, u.last_login,
       ARRAY_REMOVE(ARRAY_AGG(r.role), NULL) AS roles
FROM users u
LEFT JOIN user_roles r ON r.user_id = u.id`

var userListConfig = core.ListConfig{
	FilterFields: []string{"is_active", "created_at", "last_login"},
	SearchFields: []string{"u.name", "u.username", "u.email"},
	SortFields:   []string{"name", "username", "email", "created_at", "last_login"},
	DefaultSort:  core.DBOrdering{Field: "u.created_at", Ascending: true},
	CountField:   "u.id",
}

// userRow carries the aggregated roles column alongside the user fields.
type userRow struct {
	user.User
	RoleList pq.StringArray `db:"roles"`
}

func (r userRow) toUser() user.User {
	usr := r.User
	usr.Roles = r.RoleList
	return usr
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

// CheckUniqueness looks for key collisions within the school's namespace;
// platform accounts (nil schoolID) have their own. IS NOT DISTINCT FROM makes
// the NULL school compare as equal.
func (repo *userRepository) CheckUniqueness(ctx context.Context, schoolID *string, username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	check := func(column, value string) (bool, error) {
		if value == "" {
			return false, nil
		}
		var exists bool
		query := fmt.Sprintf(
			"SELECT EXISTS (SELECT 1 FROM users WHERE %s = $1 AND school_id IS NOT DISTINCT FROM $2 AND id != ALL($3))",
			column,
		)
		err := repo.db.GetContext(ctx, &exists, query, value, schoolID, pq.Array(exclIDs))
		return exists, errors.Wrapf(err, "checking %s uniqueness", column)
	}

	if taken, err := check("username", username); err != nil {
		return err
	} else if taken {
		return user.ErrUsernameExists
	}
	if taken, err := check("email", email); err != nil {
		return err
	} else if taken {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var err error
		usr, err = insertUser(ctx, tx, usr)
		return err
	})
	if err != nil {
		return user.User{}, trapErr(err, nil, user.ErrUsernameExists)
	}
	return usr, nil
}

// insertUser writes the user row and its role rows on the given executor so
// multi-step onboarding flows can reuse it inside their own transaction.
func insertUser(ctx context.Context, ext sqlx.ExtContext, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}
	const q = `
INSERT INTO users (id, school_id, name, username, email, is_active, password_hash, created_at, updated_at, last_login)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := ext.ExecContext(ctx, q,
		usr.ID, usr.SchoolID, usr.Name, usr.Username, usr.Email,
		usr.Active(), usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin,
	); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	if err := insertUserRoles(ctx, ext, usr.ID, usr.Roles); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func insertUserRoles(ctx context.Context, ext sqlx.ExtContext, userID string, roles []string) error {
	for _, role := range roles {
		const q = `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`
		if _, err := ext.ExecContext(ctx, q, userID, role); err != nil {
			return errors.Wrap(err, "inserting user role")
		}
	}
	return nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		cond string
		args []interface{}
	)
	switch {
	case filter.ID != "":
		cond, args = "u.id = $1", []interface{}{filter.ID}
	case filter.Username != "":
		cond, args = "u.username = $1", []interface{}{filter.Username}
	case filter.Email != "":
		cond, args = "u.email = $1", []interface{}{filter.Email}
	case filter.UsernameOrEmail != "":
		cond, args = "(u.username = $1 OR u.email = $1)", []interface{}{filter.UsernameOrEmail}
	default:
		return user.User{}, errors.New("empty user filter")
	}

	var row userRow
	query := selectUsersSQL + " WHERE " + cond + " GROUP BY u.id"
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return user.User{}, trapErr(err, user.ErrNotFound, nil)
	}
	return row.toUser(), nil
}

func (repo *userRepository) ListUsers(ctx context.Context, schoolID string, params core.ListParams) ([]user.User, core.Pagination, error) {
	base := selectUsersSQL + " WHERE u.school_id = $1 GROUP BY u.id"
	rows, pagination, err := queryList[userRow](ctx, repo.db, base, []interface{}{schoolID}, params, userListConfig)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, pagination, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	cols := []string{"name = $1", "username = $2", "email = $3", "updated_at = $4"}
	args := []interface{}{usr.Name, usr.Username, usr.Email, usr.UpdatedAt}
	if len(usr.PasswordHash) > 0 {
		args = append(args, usr.PasswordHash)
		cols = append(cols, fmt.Sprintf("password_hash = $%d", len(args)))
	}
	if isActive != nil {
		args = append(args, *isActive)
		cols = append(cols, fmt.Sprintf("is_active = $%d", len(args)))
	}
	args = append(args, usr.ID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(cols, ", "), len(args))

	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return errors.Wrap(err, "updating user")
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return user.ErrNotFound
		}
		if usr.Roles != nil {
			if _, err = tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, usr.ID); err != nil {
				return errors.Wrap(err, "clearing user roles")
			}
			if err = insertUserRoles(ctx, tx, usr.ID, usr.Roles); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return user.User{}, trapErr(err, user.ErrNotFound, user.ErrUsernameExists)
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo *userRepository) SetLastLogin(ctx context.Context, id string, t time.Time) error {
	_, err := repo.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, t, id)
	return errors.Wrap(err, "setting last login")
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	n, err := res.RowsAffected()
	return int(n), err
}
