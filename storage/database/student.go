package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
)

var studentListConfig = core.ListConfig{
	FilterFields: []string{"is_active", "gender", "admission_no", "date_of_birth", "created_at"},
	SearchFields: []string{"first_name", "last_name", "admission_no", "guardian_name"},
	SortFields:   []string{"first_name", "last_name", "admission_no", "created_at"},
	DefaultSort:  core.DBOrdering{Field: "last_name", Ascending: true},
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

// OnboardStudent persists the student, its user account and the initial
// enrollment in one transaction; a failure at any step rolls everything back.
func (repo *studentRepository) OnboardStudent(
	ctx context.Context, st student.Student, usr user.User, enr student.Enrollment,
) (student.Student, user.User, student.Enrollment, error) {
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var err error
		if usr, err = insertUser(ctx, tx, usr); err != nil {
			return err
		}
		st.UserID = usr.ID
		if st, err = insertStudent(ctx, tx, st); err != nil {
			return err
		}
		enr.StudentID = st.ID
		enr, err = insertEnrollment(ctx, tx, enr)
		return err
	})
	if err != nil {
		return student.Student{}, user.User{}, student.Enrollment{},
			trapErr(err, nil, student.ErrAdmissionNoExists)
	}
	return st, usr, enr, nil
}

func insertStudent(ctx context.Context, ext sqlx.ExtContext, st student.Student) (student.Student, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	const q = `
INSERT INTO students (id, school_id, user_id, admission_no, first_name, last_name, email, gender,
                      date_of_birth, guardian_name, guardian_phone, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := ext.ExecContext(ctx, q,
		st.ID, st.SchoolID, st.UserID, st.AdmissionNo, st.FirstName, st.LastName, st.Email, st.Gender,
		st.DateOfBirth, st.GuardianName, st.GuardianPhone, st.IsActive != nil && *st.IsActive,
		st.CreatedAt, st.UpdatedAt,
	)
	return st, errors.Wrap(err, "inserting student")
}

func insertEnrollment(ctx context.Context, ext sqlx.ExtContext, enr student.Enrollment) (student.Enrollment, error) {
	if enr.ID == "" {
		enr.ID = uuid.NewString()
	}
	const q = `
INSERT INTO student_enrollments (id, school_id, student_id, session_id, arm_id, enrolled_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := ext.ExecContext(ctx, q,
		enr.ID, enr.SchoolID, enr.StudentID, enr.SessionID, enr.ArmID, enr.EnrolledAt)
	return enr, errors.Wrap(err, "inserting enrollment")
}

func (repo *studentRepository) GetStudent(ctx context.Context, schoolID, id string) (student.Student, error) {
	var st student.Student
	const q = `SELECT * FROM students WHERE school_id = $1 AND id = $2`
	err := repo.db.GetContext(ctx, &st, q, schoolID, id)
	return st, trapErr(err, student.ErrNotFound, nil)
}

func (repo *studentRepository) GetStudentByAdmissionNo(ctx context.Context, schoolID, admissionNo string) (student.Student, error) {
	var st student.Student
	const q = `SELECT * FROM students WHERE school_id = $1 AND admission_no = $2`
	err := repo.db.GetContext(ctx, &st, q, schoolID, admissionNo)
	return st, trapErr(err, student.ErrNotFound, nil)
}

func (repo *studentRepository) ListStudents(ctx context.Context, schoolID string, params core.ListParams) ([]student.Student, core.Pagination, error) {
	const base = `SELECT * FROM students WHERE school_id = $1`
	return queryList[student.Student](ctx, repo.db, base, []interface{}{schoolID}, params, studentListConfig)
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student, isActive *bool) (student.Student, error) {
	const q = `
UPDATE students
SET first_name = $1, last_name = $2, email = $3, guardian_name = $4, guardian_phone = $5,
    is_active = COALESCE($6, is_active), updated_at = $7
WHERE school_id = $8 AND id = $9`
	res, err := repo.db.ExecContext(ctx, q,
		st.FirstName, st.LastName, st.Email, st.GuardianName, st.GuardianPhone,
		isActive, st.UpdatedAt, st.SchoolID, st.ID,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudent(ctx, st.SchoolID, st.ID)
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM students WHERE school_id = $1 AND id = $2`, schoolID, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNotFound
	}
	return nil
}

// Enrollments

func (repo *studentRepository) CreateEnrollment(ctx context.Context, enr student.Enrollment) (student.Enrollment, error) {
	enr, err := insertEnrollment(ctx, repo.db, enr)
	if err != nil {
		return student.Enrollment{}, trapErr(err, nil,
			core.NewConflictError("the student is already enrolled for this session"))
	}
	return enr, nil
}

func (repo *studentRepository) ListEnrollments(ctx context.Context, schoolID, studentID string) ([]student.Enrollment, error) {
	enrs := make([]student.Enrollment, 0)
	const q = `SELECT * FROM student_enrollments WHERE school_id = $1 AND student_id = $2 ORDER BY enrolled_at DESC`
	err := repo.db.SelectContext(ctx, &enrs, q, schoolID, studentID)
	return enrs, errors.Wrap(err, "listing enrollments")
}

// Leaderships

func (repo *studentRepository) AssignLeadership(ctx context.Context, l student.Leadership) (student.Leadership, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	const q = `
INSERT INTO student_leaderships (id, school_id, student_id, role_id, session_id, assigned_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q, l.ID, l.SchoolID, l.StudentID, l.RoleID, l.SessionID, l.AssignedAt)
	if err != nil {
		return student.Leadership{}, trapErr(errors.Wrap(err, "assigning leadership"), nil,
			core.NewConflictError("the student already holds this role for this session"))
	}
	return l, nil
}

func (repo *studentRepository) ListLeaderships(ctx context.Context, schoolID, studentID string) ([]student.Leadership, error) {
	ls := make([]student.Leadership, 0)
	const q = `SELECT * FROM student_leaderships WHERE school_id = $1 AND student_id = $2 ORDER BY assigned_at DESC`
	err := repo.db.SelectContext(ctx, &ls, q, schoolID, studentID)
	return ls, errors.Wrap(err, "listing leaderships")
}

func (repo *studentRepository) RevokeLeadership(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student_leaderships WHERE school_id = $1 AND id = $2`, schoolID, id)
	if err != nil {
		return errors.Wrap(err, "revoking leadership")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrLeadershipNotFound
	}
	return nil
}
