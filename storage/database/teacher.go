package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/teacher"
	"github.com/trezcool/shule/core/user"
)

// Primary subjects live in a link table; list/get queries aggregate them back
// onto the teacher row.
const selectTeachersSQL = `
SELECT t.id, t.school_id, t.user_id, t.employee_no, t.first_name, t.last_name, t.email, t.phone,
       t.qualification, t.is_active, t.created_at, t.updated_at,
       ARRAY_REMOVE(ARRAY_AGG(s.subject_id), NULL) AS primary_subjects
FROM teachers t
LEFT JOIN teacher_primary_subjects s ON s.teacher_id = t.id`

var teacherListConfig = core.ListConfig{
	FilterFields: []string{"is_active", "employee_no", "qualification", "created_at"},
	SearchFields: []string{"t.first_name", "t.last_name", "t.employee_no", "t.email"},
	SortFields:   []string{"first_name", "last_name", "employee_no", "created_at"},
	DefaultSort:  core.DBOrdering{Field: "t.last_name", Ascending: true},
	CountField:   "t.id",
}

type teacherRow struct {
	teacher.Teacher
	SubjectList pq.StringArray `db:"primary_subjects"`
}

func (r teacherRow) toTeacher() teacher.Teacher {
	t := r.Teacher
	t.PrimarySubjects = r.SubjectList
	return t
}

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db *sqlx.DB) teacher.Repository {
	return &teacherRepository{db: db}
}

// OnboardTeacher persists the teacher, its user account and one link row per
// primary subject in one transaction; a failure at any step rolls everything back.
func (repo *teacherRepository) OnboardTeacher(
	ctx context.Context, t teacher.Teacher, usr user.User,
) (teacher.Teacher, user.User, error) {
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var err error
		if usr, err = insertUser(ctx, tx, usr); err != nil {
			return err
		}
		t.UserID = usr.ID
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		const q = `
INSERT INTO teachers (id, school_id, user_id, employee_no, first_name, last_name, email, phone,
                      qualification, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
		if _, err = tx.ExecContext(ctx, q,
			t.ID, t.SchoolID, t.UserID, t.EmployeeNo, t.FirstName, t.LastName, t.Email, t.Phone,
			t.Qualification, t.IsActive != nil && *t.IsActive, t.CreatedAt, t.UpdatedAt,
		); err != nil {
			return errors.Wrap(err, "inserting teacher")
		}
		for _, subjectID := range t.PrimarySubjects {
			const link = `INSERT INTO teacher_primary_subjects (teacher_id, subject_id) VALUES ($1, $2)`
			if _, err = tx.ExecContext(ctx, link, t.ID, subjectID); err != nil {
				return errors.Wrap(err, "linking primary subject")
			}
		}
		return nil
	})
	if err != nil {
		return teacher.Teacher{}, user.User{}, trapErr(err, nil, teacher.ErrEmployeeNoExists)
	}
	return t, usr, nil
}

func (repo *teacherRepository) GetTeacher(ctx context.Context, schoolID, id string) (teacher.Teacher, error) {
	return repo.getTeacher(ctx, "t.school_id = $1 AND t.id = $2", schoolID, id)
}

func (repo *teacherRepository) GetTeacherByEmployeeNo(ctx context.Context, schoolID, employeeNo string) (teacher.Teacher, error) {
	return repo.getTeacher(ctx, "t.school_id = $1 AND t.employee_no = $2", schoolID, employeeNo)
}

func (repo *teacherRepository) getTeacher(ctx context.Context, cond string, args ...interface{}) (teacher.Teacher, error) {
	var row teacherRow
	query := selectTeachersSQL + " WHERE " + cond + " GROUP BY t.id"
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return teacher.Teacher{}, trapErr(err, teacher.ErrNotFound, nil)
	}
	return row.toTeacher(), nil
}

func (repo *teacherRepository) ListTeachers(ctx context.Context, schoolID string, params core.ListParams) ([]teacher.Teacher, core.Pagination, error) {
	base := selectTeachersSQL + " WHERE t.school_id = $1 GROUP BY t.id"
	rows, pagination, err := queryList[teacherRow](ctx, repo.db, base, []interface{}{schoolID}, params, teacherListConfig)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.toTeacher())
	}
	return teachers, pagination, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher, isActive *bool) (teacher.Teacher, error) {
	const q = `
UPDATE teachers
SET first_name = $1, last_name = $2, email = $3, phone = $4, qualification = $5,
    is_active = COALESCE($6, is_active), updated_at = $7
WHERE school_id = $8 AND id = $9`
	res, err := repo.db.ExecContext(ctx, q,
		t.FirstName, t.LastName, t.Email, t.Phone, t.Qualification,
		isActive, t.UpdatedAt, t.SchoolID, t.ID,
	)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return repo.GetTeacher(ctx, t.SchoolID, t.ID)
}

func (repo *teacherRepository) DeleteTeacher(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM teachers WHERE school_id = $1 AND id = $2`, schoolID, id)
	if err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return teacher.ErrNotFound
	}
	return nil
}
