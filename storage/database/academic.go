package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academic"
)

var (
	levelListConfig = core.ListConfig{
		FilterFields: []string{"rank"},
		SearchFields: []string{"name"},
		SortFields:   []string{"name", "rank"},
		DefaultSort:  core.DBOrdering{Field: "rank", Ascending: true},
	}
	armListConfig = core.ListConfig{
		FilterFields: []string{"level_id", "capacity"},
		SearchFields: []string{"name"},
		SortFields:   []string{"name", "capacity"},
		DefaultSort:  core.DBOrdering{Field: "name", Ascending: true},
	}
	subjectListConfig = core.ListConfig{
		FilterFields: []string{"code"},
		SearchFields: []string{"name", "code"},
		SortFields:   []string{"name", "code"},
		DefaultSort:  core.DBOrdering{Field: "name", Ascending: true},
	}
	leadershipRoleListConfig = core.ListConfig{
		SearchFields: []string{"name", "description"},
		SortFields:   []string{"name"},
		DefaultSort:  core.DBOrdering{Field: "name", Ascending: true},
	}
)

type academicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*academicRepository)(nil)

func NewAcademicRepository(db *sqlx.DB) academic.Repository {
	return &academicRepository{db: db}
}

// Class levels

func (repo *academicRepository) CreateLevel(ctx context.Context, lvl academic.ClassLevel) (academic.ClassLevel, error) {
	if lvl.ID == "" {
		lvl.ID = uuid.NewString()
	}
	const q = `
INSERT INTO class_levels (id, school_id, name, rank, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q, lvl.ID, lvl.SchoolID, lvl.Name, lvl.Rank, lvl.CreatedAt, lvl.UpdatedAt)
	if err != nil {
		return academic.ClassLevel{}, trapErr(errors.Wrap(err, "inserting class level"), nil,
			core.NewConflictError("a class level with this name already exists"))
	}
	return lvl, nil
}

func (repo *academicRepository) GetLevel(ctx context.Context, schoolID, id string) (academic.ClassLevel, error) {
	var lvl academic.ClassLevel
	const q = `SELECT * FROM class_levels WHERE school_id = $1 AND id = $2`
	err := repo.db.GetContext(ctx, &lvl, q, schoolID, id)
	return lvl, trapErr(err, academic.ErrLevelNotFound, nil)
}

func (repo *academicRepository) ListLevels(ctx context.Context, schoolID string, params core.ListParams) ([]academic.ClassLevel, core.Pagination, error) {
	const base = `SELECT * FROM class_levels WHERE school_id = $1`
	return queryList[academic.ClassLevel](ctx, repo.db, base, []interface{}{schoolID}, params, levelListConfig)
}

func (repo *academicRepository) UpdateLevel(ctx context.Context, lvl academic.ClassLevel) (academic.ClassLevel, error) {
	const q = `
UPDATE class_levels SET name = $1, rank = $2, updated_at = $3
WHERE school_id = $4 AND id = $5`
	res, err := repo.db.ExecContext(ctx, q, lvl.Name, lvl.Rank, lvl.UpdatedAt, lvl.SchoolID, lvl.ID)
	if err != nil {
		return academic.ClassLevel{}, errors.Wrap(err, "updating class level")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.ClassLevel{}, academic.ErrLevelNotFound
	}
	return repo.GetLevel(ctx, lvl.SchoolID, lvl.ID)
}

func (repo *academicRepository) DeleteLevel(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM class_levels WHERE school_id = $1 AND id = $2`, schoolID, id)
	if err != nil {
		return errors.Wrap(err, "deleting class level")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.ErrLevelNotFound
	}
	return nil
}

// Class arms

func (repo *academicRepository) CreateArm(ctx context.Context, arm academic.ClassArm) (academic.ClassArm, error) {
	if arm.ID == "" {
		arm.ID = uuid.NewString()
	}
	const q = `
INSERT INTO class_arms (id, school_id, level_id, name, capacity, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q,
		arm.ID, arm.SchoolID, arm.LevelID, arm.Name, arm.Capacity, arm.CreatedAt, arm.UpdatedAt)
	if err != nil {
		return academic.ClassArm{}, trapErr(errors.Wrap(err, "inserting class arm"), nil, academic.ErrArmExists)
	}
	return arm, nil
}

func (repo *academicRepository) GetArm(ctx context.Context, schoolID, id string) (academic.ClassArm, error) {
	var arm academic.ClassArm
	const q = `SELECT * FROM class_arms WHERE school_id = $1 AND id = $2`
	err := repo.db.GetContext(ctx, &arm, q, schoolID, id)
	return arm, trapErr(err, academic.ErrArmNotFound, nil)
}

func (repo *academicRepository) ListArms(ctx context.Context, schoolID string, params core.ListParams) ([]academic.ClassArm, core.Pagination, error) {
	const base = `SELECT * FROM class_arms WHERE school_id = $1`
	return queryList[academic.ClassArm](ctx, repo.db, base, []interface{}{schoolID}, params, armListConfig)
}

func (repo *academicRepository) UpdateArm(ctx context.Context, arm academic.ClassArm) (academic.ClassArm, error) {
	const q = `
UPDATE class_arms SET name = $1, capacity = $2, updated_at = $3
WHERE school_id = $4 AND id = $5`
	res, err := repo.db.ExecContext(ctx, q, arm.Name, arm.Capacity, arm.UpdatedAt, arm.SchoolID, arm.ID)
	if err != nil {
		return academic.ClassArm{}, trapErr(errors.Wrap(err, "updating class arm"), nil, academic.ErrArmExists)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.ClassArm{}, academic.ErrArmNotFound
	}
	return repo.GetArm(ctx, arm.SchoolID, arm.ID)
}

func (repo *academicRepository) DeleteArm(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM class_arms WHERE school_id = $1 AND id = $2`, schoolID, id)
	if err != nil {
		return errors.Wrap(err, "deleting class arm")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.ErrArmNotFound
	}
	return nil
}

// Subjects

func (repo *academicRepository) CreateSubject(ctx context.Context, sub academic.Subject) (academic.Subject, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	const q = `
INSERT INTO school_subjects (id, school_id, name, code, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q, sub.ID, sub.SchoolID, sub.Name, sub.Code, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return academic.Subject{}, trapErr(errors.Wrap(err, "inserting subject"), nil, academic.ErrSubjectExists)
	}
	return sub, nil
}

func (repo *academicRepository) GetSubject(ctx context.Context, schoolID, id string) (academic.Subject, error) {
	var sub academic.Subject
	const q = `SELECT * FROM school_subjects WHERE school_id = $1 AND id = $2`
	err := repo.db.GetContext(ctx, &sub, q, schoolID, id)
	return sub, trapErr(err, academic.ErrSubjectNotFound, nil)
}

func (repo *academicRepository) ListSubjects(ctx context.Context, schoolID string, params core.ListParams) ([]academic.Subject, core.Pagination, error) {
	const base = `SELECT * FROM school_subjects WHERE school_id = $1`
	return queryList[academic.Subject](ctx, repo.db, base, []interface{}{schoolID}, params, subjectListConfig)
}

func (repo *academicRepository) UpdateSubject(ctx context.Context, sub academic.Subject) (academic.Subject, error) {
	const q = `
UPDATE school_subjects SET name = $1, code = $2, updated_at = $3
WHERE school_id = $4 AND id = $5`
	res, err := repo.db.ExecContext(ctx, q, sub.Name, sub.Code, sub.UpdatedAt, sub.SchoolID, sub.ID)
	if err != nil {
		return academic.Subject{}, trapErr(errors.Wrap(err, "updating subject"), nil, academic.ErrSubjectExists)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.Subject{}, academic.ErrSubjectNotFound
	}
	return repo.GetSubject(ctx, sub.SchoolID, sub.ID)
}

func (repo *academicRepository) DeleteSubject(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM school_subjects WHERE school_id = $1 AND id = $2`, schoolID, id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.ErrSubjectNotFound
	}
	return nil
}

// Class subjects

func (repo *academicRepository) AssignClassSubject(ctx context.Context, cs academic.ClassSubject) (academic.ClassSubject, error) {
	if cs.ID == "" {
		cs.ID = uuid.NewString()
	}
	const q = `
INSERT INTO class_subject (id, school_id, arm_id, subject_id, teacher_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q, cs.ID, cs.SchoolID, cs.ArmID, cs.SubjectID, cs.TeacherID, cs.CreatedAt)
	if err != nil {
		return academic.ClassSubject{}, trapErr(errors.Wrap(err, "assigning class subject"), nil,
			core.NewConflictError("this subject is already assigned to this class arm"))
	}
	return cs, nil
}

func (repo *academicRepository) ListClassSubjects(ctx context.Context, schoolID, armID string) ([]academic.ClassSubject, error) {
	subs := make([]academic.ClassSubject, 0)
	const q = `SELECT * FROM class_subject WHERE school_id = $1 AND arm_id = $2 ORDER BY created_at`
	err := repo.db.SelectContext(ctx, &subs, q, schoolID, armID)
	return subs, errors.Wrap(err, "listing class subjects")
}

func (repo *academicRepository) UnassignClassSubject(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM class_subject WHERE school_id = $1 AND id = $2`, schoolID, id)
	if err != nil {
		return errors.Wrap(err, "unassigning class subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.ErrSubjectNotFound
	}
	return nil
}

// Leadership roles

func (repo *academicRepository) CreateLeadershipRole(ctx context.Context, role academic.LeadershipRole) (academic.LeadershipRole, error) {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	const q = `
INSERT INTO leadership_roles (id, school_id, name, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q,
		role.ID, role.SchoolID, role.Name, role.Description, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		return academic.LeadershipRole{}, trapErr(errors.Wrap(err, "inserting leadership role"), nil,
			core.NewConflictError("a leadership role with this name already exists"))
	}
	return role, nil
}

func (repo *academicRepository) GetLeadershipRole(ctx context.Context, schoolID, id string) (academic.LeadershipRole, error) {
	var role academic.LeadershipRole
	const q = `SELECT * FROM leadership_roles WHERE school_id = $1 AND id = $2`
	err := repo.db.GetContext(ctx, &role, q, schoolID, id)
	return role, trapErr(err, academic.ErrRoleNotFound, nil)
}

func (repo *academicRepository) ListLeadershipRoles(ctx context.Context, schoolID string, params core.ListParams) ([]academic.LeadershipRole, core.Pagination, error) {
	const base = `SELECT * FROM leadership_roles WHERE school_id = $1`
	return queryList[academic.LeadershipRole](ctx, repo.db, base, []interface{}{schoolID}, params, leadershipRoleListConfig)
}

func (repo *academicRepository) DeleteLeadershipRole(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM leadership_roles WHERE school_id = $1 AND id = $2`, schoolID, id)
	if err != nil {
		return errors.Wrap(err, "deleting leadership role")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academic.ErrRoleNotFound
	}
	return nil
}
