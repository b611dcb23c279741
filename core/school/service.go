package school

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("school not found")
	ErrSessionNotFound = core.NewNotFoundError("session not found")
	ErrTermNotFound    = core.NewNotFoundError("term not found")
	ErrNameExists      = core.NewConflictError("a school with this name already exists")

	errStartNotBeforeEnd  = errors.New("start_date must be before end_date")
	errTermOutsideSession = errors.New("term dates must fall within the session dates")
)

type (
	Repository interface {
		CreateSchool(ctx context.Context, sch School) (School, error)
		GetSchool(ctx context.Context, id string) (School, error)
		GetSchoolByName(ctx context.Context, name string) (School, error)
		ListSchools(ctx context.Context, params core.ListParams) ([]School, core.Pagination, error)
		UpdateSchool(ctx context.Context, sch School, isActive *bool) (School, error)
		DeleteSchool(ctx context.Context, id string) error

		CreateSession(ctx context.Context, sess Session) (Session, error)
		GetSession(ctx context.Context, schoolID, id string) (Session, error)
		GetActiveSession(ctx context.Context, schoolID string) (Session, error)
		ListSessions(ctx context.Context, schoolID string, params core.ListParams) ([]Session, core.Pagination, error)
		UpdateSession(ctx context.Context, sess Session) (Session, error)
		// ActivateSession atomically deactivates the school's currently active
		// session and activates the given one in a single transaction.
		ActivateSession(ctx context.Context, schoolID, id string) (Session, error)
		DeleteSession(ctx context.Context, schoolID, id string) error

		CreateTerm(ctx context.Context, term Term) (Term, error)
		GetTerm(ctx context.Context, schoolID, id string) (Term, error)
		// GetActiveTerm returns the active session's term whose dates contain
		// the given time.
		GetActiveTerm(ctx context.Context, schoolID string, at time.Time) (Term, error)
		ListTerms(ctx context.Context, schoolID string, params core.ListParams) ([]Term, core.Pagination, error)
		UpdateTerm(ctx context.Context, term Term) (Term, error)
		DeleteTerm(ctx context.Context, schoolID, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkNameUniqueness(name string) error {
	_, err := svc.repo.GetSchoolByName(context.Background(), name)
	if err == nil {
		return core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	}
	if core.IsNotFound(err) {
		return nil
	}
	return err
}

// Schools

func (svc *Service) CreateSchool(ctx context.Context, ns NewSchool) (School, error) {
	now := time.Now().UTC()
	sch := School{
		Name:      ns.Name,
		Address:   ns.Address,
		Email:     ns.Email,
		Phone:     ns.Phone,
		Motto:     ns.Motto,
		CreatedAt: now,
		UpdatedAt: now,
	}
	active := true
	sch.IsActive = &active
	return svc.repo.CreateSchool(ctx, sch)
}

func (svc *Service) GetSchool(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchool(ctx, id)
}

func (svc *Service) ListSchools(ctx context.Context, params core.ListParams) ([]School, core.Pagination, error) {
	return svc.repo.ListSchools(ctx, params)
}

func (svc *Service) UpdateSchool(ctx context.Context, orig School, us UpdateSchool) (School, error) {
	sch := School{
		ID:        orig.ID,
		Name:      us.Name,
		Address:   us.Address,
		Email:     us.Email,
		Phone:     us.Phone,
		Motto:     us.Motto,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateSchool(ctx, sch, us.IsActive)
}

func (svc *Service) DeleteSchool(ctx context.Context, id string) error {
	return svc.repo.DeleteSchool(ctx, id)
}

// Sessions

func (svc *Service) CreateSession(ctx context.Context, schoolID string, ns NewSession) (Session, error) {
	now := time.Now().UTC()
	sess := Session{
		SchoolID:  schoolID,
		Name:      ns.Name,
		StartDate: ns.StartDate,
		EndDate:   ns.EndDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSession(ctx, sess)
}

func (svc *Service) GetSession(ctx context.Context, schoolID, id string) (Session, error) {
	return svc.repo.GetSession(ctx, schoolID, id)
}

func (svc *Service) GetActiveSession(ctx context.Context, schoolID string) (Session, error) {
	return svc.repo.GetActiveSession(ctx, schoolID)
}

func (svc *Service) ListSessions(ctx context.Context, schoolID string, params core.ListParams) ([]Session, core.Pagination, error) {
	return svc.repo.ListSessions(ctx, schoolID, params)
}

func (svc *Service) UpdateSession(ctx context.Context, orig Session, us UpdateSession) (Session, error) {
	sess := Session{
		ID:        orig.ID,
		SchoolID:  orig.SchoolID,
		Name:      us.Name,
		StartDate: us.StartDate,
		EndDate:   us.EndDate,
		IsActive:  orig.IsActive,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateSession(ctx, sess)
}

func (svc *Service) ActivateSession(ctx context.Context, schoolID, id string) (Session, error) {
	return svc.repo.ActivateSession(ctx, schoolID, id)
}

func (svc *Service) DeleteSession(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteSession(ctx, schoolID, id)
}

// Terms

func (svc *Service) CreateTerm(ctx context.Context, schoolID string, nt NewTerm) (Term, error) {
	now := time.Now().UTC()
	term := Term{
		SchoolID:  schoolID,
		SessionID: nt.SessionID,
		Name:      nt.Name,
		StartDate: nt.StartDate,
		EndDate:   nt.EndDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateTerm(ctx, term)
}

func (svc *Service) GetTerm(ctx context.Context, schoolID, id string) (Term, error) {
	return svc.repo.GetTerm(ctx, schoolID, id)
}

// GetActiveTerm resolves the school's current term: the term of the active
// session whose date range contains today.
func (svc *Service) GetActiveTerm(ctx context.Context, schoolID string) (Term, error) {
	return svc.repo.GetActiveTerm(ctx, schoolID, time.Now().UTC())
}

func (svc *Service) ListTerms(ctx context.Context, schoolID string, params core.ListParams) ([]Term, core.Pagination, error) {
	return svc.repo.ListTerms(ctx, schoolID, params)
}

func (svc *Service) UpdateTerm(ctx context.Context, orig Term, nt NewTerm) (Term, error) {
	term := Term{
		ID:        orig.ID,
		SchoolID:  orig.SchoolID,
		SessionID: orig.SessionID,
		Name:      nt.Name,
		StartDate: nt.StartDate,
		EndDate:   nt.EndDate,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateTerm(ctx, term)
}

func (svc *Service) DeleteTerm(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteTerm(ctx, schoolID, id)
}
