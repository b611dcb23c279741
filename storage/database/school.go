package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

var (
	schoolListConfig = core.ListConfig{
		FilterFields: []string{"is_active", "created_at"},
		SearchFields: []string{"name", "email", "motto"},
		SortFields:   []string{"name", "created_at"},
		DefaultSort:  core.DBOrdering{Field: "name", Ascending: true},
	}
	sessionListConfig = core.ListConfig{
		FilterFields: []string{"is_active", "start_date", "end_date"},
		SearchFields: []string{"name"},
		SortFields:   []string{"name", "start_date"},
		DefaultSort:  core.DBOrdering{Field: "start_date", Ascending: false},
	}
	termListConfig = core.ListConfig{
		FilterFields: []string{"session_id", "start_date", "end_date"},
		SearchFields: []string{"name"},
		SortFields:   []string{"name", "start_date"},
		DefaultSort:  core.DBOrdering{Field: "start_date", Ascending: true},
	}
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *sqlx.DB) school.Repository {
	return &schoolRepository{db: db}
}

// Schools

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	if sch.ID == "" {
		sch.ID = uuid.NewString()
	}
	const q = `
INSERT INTO schools (id, name, address, email, phone, motto, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		sch.ID, sch.Name, sch.Address, sch.Email, sch.Phone, sch.Motto,
		sch.IsActive != nil && *sch.IsActive, sch.CreatedAt, sch.UpdatedAt,
	)
	if err != nil {
		return school.School{}, trapErr(errors.Wrap(err, "inserting school"), nil, school.ErrNameExists)
	}
	return sch, nil
}

func (repo *schoolRepository) GetSchool(ctx context.Context, id string) (school.School, error) {
	var sch school.School
	err := repo.db.GetContext(ctx, &sch, `SELECT * FROM schools WHERE id = $1`, id)
	return sch, trapErr(err, school.ErrNotFound, nil)
}

func (repo *schoolRepository) GetSchoolByName(ctx context.Context, name string) (school.School, error) {
	var sch school.School
	err := repo.db.GetContext(ctx, &sch, `SELECT * FROM schools WHERE name = $1`, name)
	return sch, trapErr(err, school.ErrNotFound, nil)
}

func (repo *schoolRepository) ListSchools(ctx context.Context, params core.ListParams) ([]school.School, core.Pagination, error) {
	// platform-level list; the WHERE clause anchors dynamic filters
	const base = `SELECT * FROM schools WHERE true`
	return queryList[school.School](ctx, repo.db, base, nil, params, schoolListConfig)
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School, isActive *bool) (school.School, error) {
	const q = `
UPDATE schools
SET name = $1, address = $2, email = $3, phone = $4, motto = $5,
    is_active = COALESCE($6, is_active), updated_at = $7
WHERE id = $8`
	res, err := repo.db.ExecContext(ctx, q,
		sch.Name, sch.Address, sch.Email, sch.Phone, sch.Motto, isActive, sch.UpdatedAt, sch.ID,
	)
	if err != nil {
		return school.School{}, trapErr(errors.Wrap(err, "updating school"), nil, school.ErrNameExists)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.School{}, school.ErrNotFound
	}
	return repo.GetSchool(ctx, sch.ID)
}

func (repo *schoolRepository) DeleteSchool(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM schools WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting school")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ErrNotFound
	}
	return nil
}

// Sessions

func (repo *schoolRepository) CreateSession(ctx context.Context, sess school.Session) (school.Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	const q = `
INSERT INTO school_sessions (id, school_id, name, start_date, end_date, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, q,
		sess.ID, sess.SchoolID, sess.Name, sess.StartDate, sess.EndDate, sess.IsActive,
		sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return school.Session{}, trapErr(errors.Wrap(err, "inserting session"), nil,
			core.NewConflictError("a session with this name already exists"))
	}
	return sess, nil
}

func (repo *schoolRepository) GetSession(ctx context.Context, schoolID, id string) (school.Session, error) {
	var sess school.Session
	const q = `SELECT * FROM school_sessions WHERE school_id = $1 AND id = $2`
	err := repo.db.GetContext(ctx, &sess, q, schoolID, id)
	return sess, trapErr(err, school.ErrSessionNotFound, nil)
}

func (repo *schoolRepository) GetActiveSession(ctx context.Context, schoolID string) (school.Session, error) {
	var sess school.Session
	const q = `SELECT * FROM school_sessions WHERE school_id = $1 AND is_active`
	err := repo.db.GetContext(ctx, &sess, q, schoolID)
	return sess, trapErr(err, school.ErrSessionNotFound, nil)
}

func (repo *schoolRepository) ListSessions(ctx context.Context, schoolID string, params core.ListParams) ([]school.Session, core.Pagination, error) {
	const base = `SELECT * FROM school_sessions WHERE school_id = $1`
	return queryList[school.Session](ctx, repo.db, base, []interface{}{schoolID}, params, sessionListConfig)
}

func (repo *schoolRepository) UpdateSession(ctx context.Context, sess school.Session) (school.Session, error) {
	const q = `
UPDATE school_sessions
SET name = $1, start_date = $2, end_date = $3, updated_at = $4
WHERE school_id = $5 AND id = $6`
	res, err := repo.db.ExecContext(ctx, q,
		sess.Name, sess.StartDate, sess.EndDate, sess.UpdatedAt, sess.SchoolID, sess.ID,
	)
	if err != nil {
		return school.Session{}, errors.Wrap(err, "updating session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Session{}, school.ErrSessionNotFound
	}
	return repo.GetSession(ctx, sess.SchoolID, sess.ID)
}

// ActivateSession deactivates whichever session is currently active for the
// school and activates the given one; both steps commit or roll back together.
func (repo *schoolRepository) ActivateSession(ctx context.Context, schoolID, id string) (school.Session, error) {
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		const deactivate = `UPDATE school_sessions SET is_active = false WHERE school_id = $1 AND is_active`
		if _, err := tx.ExecContext(ctx, deactivate, schoolID); err != nil {
			return errors.Wrap(err, "deactivating current session")
		}
		const activate = `UPDATE school_sessions SET is_active = true, updated_at = now() WHERE school_id = $1 AND id = $2`
		res, err := tx.ExecContext(ctx, activate, schoolID, id)
		if err != nil {
			return errors.Wrap(err, "activating session")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return school.ErrSessionNotFound
		}
		return nil
	})
	if err != nil {
		return school.Session{}, err
	}
	return repo.GetSession(ctx, schoolID, id)
}

func (repo *schoolRepository) DeleteSession(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM school_sessions WHERE school_id = $1 AND id = $2`, schoolID, id)
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ErrSessionNotFound
	}
	return nil
}

// Terms

func (repo *schoolRepository) CreateTerm(ctx context.Context, term school.Term) (school.Term, error) {
	if term.ID == "" {
		term.ID = uuid.NewString()
	}
	const q = `
INSERT INTO school_terms (id, school_id, session_id, name, start_date, end_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, q,
		term.ID, term.SchoolID, term.SessionID, term.Name, term.StartDate, term.EndDate,
		term.CreatedAt, term.UpdatedAt,
	)
	if err != nil {
		return school.Term{}, trapErr(errors.Wrap(err, "inserting term"), nil,
			core.NewConflictError("a term with this name already exists for this session"))
	}
	return term, nil
}

func (repo *schoolRepository) GetTerm(ctx context.Context, schoolID, id string) (school.Term, error) {
	var term school.Term
	const q = `SELECT * FROM school_terms WHERE school_id = $1 AND id = $2`
	err := repo.db.GetContext(ctx, &term, q, schoolID, id)
	return term, trapErr(err, school.ErrTermNotFound, nil)
}

func (repo *schoolRepository) GetActiveTerm(ctx context.Context, schoolID string, at time.Time) (school.Term, error) {
	var term school.Term
	const q = `
SELECT t.* FROM school_terms t
JOIN school_sessions s ON s.id = t.session_id
WHERE t.school_id = $1 AND s.is_active AND $2 BETWEEN t.start_date AND t.end_date`
	err := repo.db.GetContext(ctx, &term, q, schoolID, at)
	return term, trapErr(err, school.ErrTermNotFound, nil)
}

func (repo *schoolRepository) ListTerms(ctx context.Context, schoolID string, params core.ListParams) ([]school.Term, core.Pagination, error) {
	const base = `SELECT * FROM school_terms WHERE school_id = $1`
	return queryList[school.Term](ctx, repo.db, base, []interface{}{schoolID}, params, termListConfig)
}

func (repo *schoolRepository) UpdateTerm(ctx context.Context, term school.Term) (school.Term, error) {
	const q = `
UPDATE school_terms
SET name = $1, start_date = $2, end_date = $3, updated_at = $4
WHERE school_id = $5 AND id = $6`
	res, err := repo.db.ExecContext(ctx, q,
		term.Name, term.StartDate, term.EndDate, term.UpdatedAt, term.SchoolID, term.ID,
	)
	if err != nil {
		return school.Term{}, errors.Wrap(err, "updating term")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Term{}, school.ErrTermNotFound
	}
	return repo.GetTerm(ctx, term.SchoolID, term.ID)
}

func (repo *schoolRepository) DeleteTerm(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM school_terms WHERE school_id = $1 AND id = $2`, schoolID, id)
	if err != nil {
		return errors.Wrap(err, "deleting term")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ErrTermNotFound
	}
	return nil
}
