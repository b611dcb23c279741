package student

import (
	"time"

	"github.com/trezcool/shule/core"
)

type Student struct {
	ID            string    `json:"id" db:"id"`
	SchoolID      string    `json:"school_id" db:"school_id"`
	UserID        string    `json:"user_id" db:"user_id"`
	AdmissionNo   string    `json:"admission_no" db:"admission_no"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	Email         string    `json:"email" db:"email"`
	Gender        string    `json:"gender" db:"gender"`
	DateOfBirth   time.Time `json:"date_of_birth" db:"date_of_birth"`
	GuardianName  string    `json:"guardian_name" db:"guardian_name"`
	GuardianPhone string    `json:"guardian_phone" db:"guardian_phone"`
	IsActive      *bool     `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Enrollment places a student in a class arm for a session.
type Enrollment struct {
	ID         string    `json:"id" db:"id"`
	SchoolID   string    `json:"school_id" db:"school_id"`
	StudentID  string    `json:"student_id" db:"student_id"`
	SessionID  string    `json:"session_id" db:"session_id"`
	ArmID      string    `json:"arm_id" db:"arm_id"`
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"`
}

// Leadership assigns a leadership role to a student for a session.
type Leadership struct {
	ID         string    `json:"id" db:"id"`
	SchoolID   string    `json:"school_id" db:"school_id"`
	StudentID  string    `json:"student_id" db:"student_id"`
	RoleID     string    `json:"role_id" db:"role_id"`
	SessionID  string    `json:"session_id" db:"session_id"`
	AssignedAt time.Time `json:"assigned_at" db:"assigned_at"`
}

// NewStudent contains information needed to onboard a student:
// the student row, a linked user account and an enrollment are created atomically.
type NewStudent struct {
	AdmissionNo   string    `json:"admission_no" validate:"required"`
	FirstName     string    `json:"first_name" validate:"required"`
	LastName      string    `json:"last_name" validate:"required"`
	Email         string    `json:"email" validate:"omitempty,email"`
	Gender        string    `json:"gender" validate:"omitempty,oneof=male female"`
	DateOfBirth   time.Time `json:"date_of_birth"`
	GuardianName  string    `json:"guardian_name"`
	GuardianPhone string    `json:"guardian_phone"`
	SessionID     string    `json:"session_id" validate:"required"`
	ArmID         string    `json:"arm_id" validate:"required"`
}

func (ns *NewStudent) Validate() error {
	ns.AdmissionNo = core.CleanString(ns.AdmissionNo, true /* lower */)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Gender = core.CleanString(ns.Gender, true /* lower */)
	return core.Validate.Struct(ns)
}

type UpdateStudent struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email" validate:"omitempty,email"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
	IsActive      *bool  `json:"is_active"`
}

func (us *UpdateStudent) Validate(orig Student) error {
	if v := core.CleanString(us.FirstName); v != "" {
		us.FirstName = v
	} else {
		us.FirstName = orig.FirstName
	}
	if v := core.CleanString(us.LastName); v != "" {
		us.LastName = v
	} else {
		us.LastName = orig.LastName
	}
	if v := core.CleanString(us.Email, true /* lower */); v != "" {
		us.Email = v
	} else {
		us.Email = orig.Email
	}
	return core.Validate.Struct(us)
}

type NewLeadership struct {
	RoleID    string `json:"role_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
}

func (nl *NewLeadership) Validate() error {
	return core.Validate.Struct(nl)
}

// Onboarded aggregates everything created by a successful onboarding.
// TempPassword is plaintext exactly once; only its hash is persisted.
type Onboarded struct {
	Student      Student       `json:"student"`
	Account      OnboardedUser `json:"account"`
	Enrollment   Enrollment    `json:"enrollment"`
	TempPassword string        `json:"temp_password"`
}

// OnboardedUser is the subset of the linked account returned on creation.
type OnboardedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
