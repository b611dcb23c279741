package teacher

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("teacher not found")
	ErrEmployeeNoExists = core.NewConflictError("a teacher with this employee number already exists")

	errPrimarySubjectsRequired = errors.New("At least one primary subject is required")
)

type (
	Repository interface {
		// OnboardTeacher creates the teacher row, its linked user account and one
		// link row per primary subject in one transaction; nothing persists on failure.
		OnboardTeacher(ctx context.Context, t Teacher, usr user.User) (Teacher, user.User, error)
		GetTeacher(ctx context.Context, schoolID, id string) (Teacher, error)
		GetTeacherByEmployeeNo(ctx context.Context, schoolID, employeeNo string) (Teacher, error)
		ListTeachers(ctx context.Context, schoolID string, params core.ListParams) ([]Teacher, core.Pagination, error)
		UpdateTeacher(ctx context.Context, t Teacher, isActive *bool) (Teacher, error)
		DeleteTeacher(ctx context.Context, schoolID, id string) error
	}

	Service struct {
		repo   Repository
		usrSvc *user.Service
	}
)

func NewService(repo Repository, usrSvc *user.Service) *Service {
	return &Service{repo: repo, usrSvc: usrSvc}
}

// Onboard creates a teacher, a user account with a random temporary password
// and the primary-subject links as one atomic unit.
//
// Not idempotent: retrying after a partial failure with the same employee
// number surfaces the uniqueness conflict to the caller.
func (svc *Service) Onboard(ctx context.Context, schoolID string, nt NewTeacher) (Onboarded, error) {
	if _, err := svc.repo.GetTeacherByEmployeeNo(ctx, schoolID, nt.EmployeeNo); err == nil {
		return Onboarded{}, ErrEmployeeNoExists
	} else if !core.IsNotFound(err) {
		return Onboarded{}, pkgerrors.Wrap(err, "checking employee number")
	}

	now := time.Now().UTC()
	t := Teacher{
		SchoolID:        schoolID,
		EmployeeNo:      nt.EmployeeNo,
		FirstName:       nt.FirstName,
		LastName:        nt.LastName,
		Email:           nt.Email,
		Phone:           nt.Phone,
		Qualification:   nt.Qualification,
		PrimarySubjects: nt.PrimarySubjects,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	active := true
	t.IsActive = &active

	tempPwd, err := user.RandomPassword()
	if err != nil {
		return Onboarded{}, pkgerrors.Wrap(err, "generating temporary password")
	}

	usr := user.User{
		SchoolID:  &schoolID,
		Name:      t.FullName(),
		Username:  nt.EmployeeNo,
		Email:     nt.Email,
		Roles:     []string{user.RoleTeacher},
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err = usr.SetPassword(tempPwd); err != nil {
		return Onboarded{}, pkgerrors.Wrap(err, "hashing temporary password")
	}

	t, usr, err = svc.repo.OnboardTeacher(ctx, t, usr)
	if err != nil {
		return Onboarded{}, pkgerrors.Wrap(err, "onboarding teacher")
	}

	svc.usrSvc.SendWelcomeEmail(usr)

	return Onboarded{
		Teacher:      t,
		Account:      OnboardedUser{ID: usr.ID, Username: usr.Username, Email: usr.Email},
		TempPassword: tempPwd,
	}, nil
}

func (svc *Service) Get(ctx context.Context, schoolID, id string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, schoolID, id)
}

func (svc *Service) List(ctx context.Context, schoolID string, params core.ListParams) ([]Teacher, core.Pagination, error) {
	return svc.repo.ListTeachers(ctx, schoolID, params)
}

func (svc *Service) Update(ctx context.Context, orig Teacher, ut UpdateTeacher) (Teacher, error) {
	t := Teacher{
		ID:            orig.ID,
		SchoolID:      orig.SchoolID,
		FirstName:     ut.FirstName,
		LastName:      ut.LastName,
		Email:         ut.Email,
		Phone:         ut.Phone,
		Qualification: ut.Qualification,
		UpdatedAt:     time.Now().UTC(),
	}
	return svc.repo.UpdateTeacher(ctx, t, ut.IsActive)
}

func (svc *Service) Delete(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteTeacher(ctx, schoolID, id)
}
