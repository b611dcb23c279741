package school

import (
	"time"

	"github.com/trezcool/shule/core"
)

// School is the tenant root; every other entity hangs off its ID.
type School struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Motto     string    `json:"motto" db:"motto"`
	IsActive  *bool     `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Session is an academic year (e.g. "2025/2026"). At most one session is
// active per school at any time; activation is transactional.
type Session struct {
	ID        string    `json:"id" db:"id"`
	SchoolID  string    `json:"school_id" db:"school_id"`
	Name      string    `json:"name" db:"name"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Term is a subdivision of a Session; its dates must fall within the session's.
type Term struct {
	ID        string    `json:"id" db:"id"`
	SchoolID  string    `json:"school_id" db:"school_id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Name      string    `json:"name" db:"name"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type NewSchool struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Motto   string `json:"motto"`
}

func (ns *NewSchool) Validate(svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkNameUniqueness(ns.Name)
}

type UpdateSchool struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Motto    string `json:"motto"`
	IsActive *bool  `json:"is_active"`
}

func (us *UpdateSchool) Validate(orig School, svc *Service) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if email := core.CleanString(us.Email, true /* lower */); email != "" {
		us.Email = email
	} else {
		us.Email = orig.Email
	}

	if err := core.Validate.Struct(us); err != nil {
		return err
	}
	if us.Name != orig.Name {
		return svc.checkNameUniqueness(us.Name)
	}
	return nil
}

type NewSession struct {
	Name      string    `json:"name" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

func (ns *NewSession) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return validateDateRange(ns.StartDate, ns.EndDate)
}

type UpdateSession struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func (us *UpdateSession) Validate(orig Session) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if us.StartDate.IsZero() {
		us.StartDate = orig.StartDate
	}
	if us.EndDate.IsZero() {
		us.EndDate = orig.EndDate
	}
	return validateDateRange(us.StartDate, us.EndDate)
}

type NewTerm struct {
	SessionID string    `json:"session_id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

func (nt *NewTerm) Validate(session Session) error {
	nt.Name = core.CleanString(nt.Name)
	if err := core.Validate.Struct(nt); err != nil {
		return err
	}
	if err := validateDateRange(nt.StartDate, nt.EndDate); err != nil {
		return err
	}
	if nt.StartDate.Before(session.StartDate) || nt.EndDate.After(session.EndDate) {
		return core.NewValidationError(errTermOutsideSession)
	}
	return nil
}

func validateDateRange(start, end time.Time) error {
	if !start.Before(end) {
		return core.NewValidationError(errStartNotBeforeEnd, core.FieldError{
			Field: "start_date", Error: errStartNotBeforeEnd.Error(),
		})
	}
	return nil
}
