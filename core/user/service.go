package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("user not found")
	ErrEmailExists    = core.NewConflictError("a user with this email already exists")
	ErrUsernameExists = core.NewConflictError("a user with this username already exists")
)

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, schoolID *string, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		ListUsers(ctx context.Context, schoolID string, params core.ListParams) ([]User, core.Pagination, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		SetLastLogin(ctx context.Context, id string, t time.Time) error
		DeleteUsersByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

// CheckUniqueness verifies the username and email are free within the given
// school; a nil schoolID checks the platform-level namespace.
func (svc *Service) CheckUniqueness(schoolID *string, uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUniqueness(context.Background(), schoolID, uname, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		SchoolID:  nu.SchoolID,
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
}

func (svc *Service) List(ctx context.Context, schoolID string, params core.ListParams) ([]User, core.Pagination, error) {
	return svc.repo.ListUsers(ctx, schoolID, params)
}

func (svc *Service) Update(ctx context.Context, origUsr User, uu UpdateUser) (User, error) {
	usr := User{
		ID:        origUsr.ID,
		SchoolID:  origUsr.SchoolID,
		Name:      uu.Name,
		Username:  uu.Username,
		Email:     uu.Email,
		Roles:     uu.Roles,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	if err := svc.repo.SetLastLogin(ctx, usr.ID, usr.LastLogin); err != nil {
		return User{}, err
	}
	return usr, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteUsersByID(ctx, ids...)
	return err
}

// SendWelcomeEmail notifies a newly onboarded account owner.
// Temporary credentials are never included; they are handed over out of band.
func (svc *Service) SendWelcomeEmail(usr User) {
	if usr.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: fmt.Sprintf("Welcome to %s", svc.conf.AppName),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour account has been created. Sign in at %s with the credentials provided by your school.\n",
			usr.Name, svc.conf.FrontendBaseURL,
		),
	})
}
