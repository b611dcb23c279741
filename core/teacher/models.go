package teacher

import (
	"time"

	"github.com/trezcool/shule/core"
)

type Teacher struct {
	ID            string    `json:"id" db:"id"`
	SchoolID      string    `json:"school_id" db:"school_id"`
	UserID        string    `json:"user_id" db:"user_id"`
	EmployeeNo    string    `json:"employee_no" db:"employee_no"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	Email         string    `json:"email" db:"email"`
	Phone         string    `json:"phone" db:"phone"`
	Qualification string    `json:"qualification" db:"qualification"`
	IsActive      *bool     `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	// PrimarySubjects are the subject IDs the teacher mainly teaches; at least
	// one is required at onboarding.
	PrimarySubjects []string `json:"primary_subjects" db:"-"`
}

func (t Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// NewTeacher contains information needed to onboard a teacher:
// the teacher row, a linked user account and the primary-subject links are
// created atomically.
type NewTeacher struct {
	EmployeeNo      string   `json:"employee_no" validate:"required"`
	FirstName       string   `json:"first_name" validate:"required"`
	LastName        string   `json:"last_name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone"`
	Qualification   string   `json:"qualification"`
	PrimarySubjects []string `json:"primary_subjects"`
}

func (nt *NewTeacher) Validate() error {
	nt.EmployeeNo = core.CleanString(nt.EmployeeNo, true /* lower */)
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.LastName = core.CleanString(nt.LastName)
	nt.Email = core.CleanString(nt.Email, true /* lower */)

	if err := core.Validate.Struct(nt); err != nil {
		return err
	}
	if len(nt.PrimarySubjects) == 0 {
		return core.NewValidationError(errPrimarySubjectsRequired, core.FieldError{
			Field: "primary_subjects", Error: errPrimarySubjectsRequired.Error(),
		})
	}
	return nil
}

type UpdateTeacher struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
	Qualification string `json:"qualification"`
	IsActive      *bool  `json:"is_active"`
}

func (ut *UpdateTeacher) Validate(orig Teacher) error {
	if v := core.CleanString(ut.FirstName); v != "" {
		ut.FirstName = v
	} else {
		ut.FirstName = orig.FirstName
	}
	if v := core.CleanString(ut.LastName); v != "" {
		ut.LastName = v
	} else {
		ut.LastName = orig.LastName
	}
	if v := core.CleanString(ut.Email, true /* lower */); v != "" {
		ut.Email = v
	} else {
		ut.Email = orig.Email
	}
	return core.Validate.Struct(ut)
}

// Onboarded aggregates everything created by a successful onboarding.
// TempPassword is plaintext exactly once; only its hash is persisted.
type Onboarded struct {
	Teacher      Teacher       `json:"teacher"`
	Account      OnboardedUser `json:"account"`
	TempPassword string        `json:"temp_password"`
}

type OnboardedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
