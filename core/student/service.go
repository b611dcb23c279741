package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("student not found")
	ErrEnrollmentNotFound = core.NewNotFoundError("enrollment not found")
	ErrLeadershipNotFound = core.NewNotFoundError("leadership not found")
	ErrAdmissionNoExists  = core.NewConflictError("a student with this admission number already exists")
)

type (
	Repository interface {
		// OnboardStudent creates the student row, its linked user account and the
		// initial enrollment in one transaction; nothing persists on failure.
		OnboardStudent(ctx context.Context, st Student, usr user.User, enr Enrollment) (Student, user.User, Enrollment, error)
		GetStudent(ctx context.Context, schoolID, id string) (Student, error)
		GetStudentByAdmissionNo(ctx context.Context, schoolID, admissionNo string) (Student, error)
		ListStudents(ctx context.Context, schoolID string, params core.ListParams) ([]Student, core.Pagination, error)
		UpdateStudent(ctx context.Context, st Student, isActive *bool) (Student, error)
		DeleteStudent(ctx context.Context, schoolID, id string) error

		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		ListEnrollments(ctx context.Context, schoolID, studentID string) ([]Enrollment, error)

		AssignLeadership(ctx context.Context, l Leadership) (Leadership, error)
		ListLeaderships(ctx context.Context, schoolID, studentID string) ([]Leadership, error)
		RevokeLeadership(ctx context.Context, schoolID, id string) error
	}

	Service struct {
		repo   Repository
		usrSvc *user.Service
	}
)

func NewService(repo Repository, usrSvc *user.Service) *Service {
	return &Service{repo: repo, usrSvc: usrSvc}
}

// Onboard creates a student, a user account with a random temporary password
// and the initial enrollment as one atomic unit. The temporary password is
// returned once in the result and is never stored in plaintext.
//
// Onboarding is not idempotent: retrying after a partial failure with the same
// admission number surfaces the uniqueness conflict to the caller.
func (svc *Service) Onboard(ctx context.Context, schoolID string, ns NewStudent) (Onboarded, error) {
	// pre-check the natural key for a friendlier error than the DB conflict
	if _, err := svc.repo.GetStudentByAdmissionNo(ctx, schoolID, ns.AdmissionNo); err == nil {
		return Onboarded{}, ErrAdmissionNoExists
	} else if !core.IsNotFound(err) {
		return Onboarded{}, errors.Wrap(err, "checking admission number")
	}

	now := time.Now().UTC()
	st := Student{
		SchoolID:      schoolID,
		AdmissionNo:   ns.AdmissionNo,
		FirstName:     ns.FirstName,
		LastName:      ns.LastName,
		Email:         ns.Email,
		Gender:        ns.Gender,
		DateOfBirth:   ns.DateOfBirth,
		GuardianName:  ns.GuardianName,
		GuardianPhone: ns.GuardianPhone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	st.IsActive = boolPtr(true)

	tempPwd, err := user.RandomPassword()
	if err != nil {
		return Onboarded{}, errors.Wrap(err, "generating temporary password")
	}

	usr := user.User{
		SchoolID:  &schoolID,
		Name:      st.FullName(),
		Username:  ns.AdmissionNo,
		Email:     ns.Email,
		Roles:     []string{user.RoleStudent},
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err = usr.SetPassword(tempPwd); err != nil {
		return Onboarded{}, errors.Wrap(err, "hashing temporary password")
	}

	enr := Enrollment{
		SchoolID:   schoolID,
		SessionID:  ns.SessionID,
		ArmID:      ns.ArmID,
		EnrolledAt: now,
	}

	st, usr, enr, err = svc.repo.OnboardStudent(ctx, st, usr, enr)
	if err != nil {
		return Onboarded{}, errors.Wrap(err, "onboarding student")
	}

	svc.usrSvc.SendWelcomeEmail(usr)

	return Onboarded{
		Student:      st,
		Account:      OnboardedUser{ID: usr.ID, Username: usr.Username, Email: usr.Email},
		Enrollment:   enr,
		TempPassword: tempPwd,
	}, nil
}

func (svc *Service) Get(ctx context.Context, schoolID, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, schoolID, id)
}

func (svc *Service) List(ctx context.Context, schoolID string, params core.ListParams) ([]Student, core.Pagination, error) {
	return svc.repo.ListStudents(ctx, schoolID, params)
}

func (svc *Service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	st := Student{
		ID:            orig.ID,
		SchoolID:      orig.SchoolID,
		FirstName:     us.FirstName,
		LastName:      us.LastName,
		Email:         us.Email,
		GuardianName:  us.GuardianName,
		GuardianPhone: us.GuardianPhone,
		UpdatedAt:     time.Now().UTC(),
	}
	return svc.repo.UpdateStudent(ctx, st, us.IsActive)
}

func (svc *Service) Delete(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteStudent(ctx, schoolID, id)
}

// Enroll places an existing student in a class arm for a session.
func (svc *Service) Enroll(ctx context.Context, schoolID, studentID, sessionID, armID string) (Enrollment, error) {
	if _, err := svc.repo.GetStudent(ctx, schoolID, studentID); err != nil {
		return Enrollment{}, err
	}
	return svc.repo.CreateEnrollment(ctx, Enrollment{
		SchoolID:   schoolID,
		StudentID:  studentID,
		SessionID:  sessionID,
		ArmID:      armID,
		EnrolledAt: time.Now().UTC(),
	})
}

func (svc *Service) ListEnrollments(ctx context.Context, schoolID, studentID string) ([]Enrollment, error) {
	return svc.repo.ListEnrollments(ctx, schoolID, studentID)
}

// AssignLeadership gives a student a leadership role for a session.
// The role must belong to the same school; the repo enforces it via the FK scope.
func (svc *Service) AssignLeadership(ctx context.Context, schoolID, studentID string, nl NewLeadership) (Leadership, error) {
	if _, err := svc.repo.GetStudent(ctx, schoolID, studentID); err != nil {
		return Leadership{}, err
	}
	return svc.repo.AssignLeadership(ctx, Leadership{
		SchoolID:   schoolID,
		StudentID:  studentID,
		RoleID:     nl.RoleID,
		SessionID:  nl.SessionID,
		AssignedAt: time.Now().UTC(),
	})
}

func (svc *Service) ListLeaderships(ctx context.Context, schoolID, studentID string) ([]Leadership, error) {
	return svc.repo.ListLeaderships(ctx, schoolID, studentID)
}

func (svc *Service) RevokeLeadership(ctx context.Context, schoolID, id string) error {
	return svc.repo.RevokeLeadership(ctx, schoolID, id)
}

func boolPtr(b bool) *bool { return &b }
