package academic

import (
	"context"
	"time"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrLevelNotFound   = core.NewNotFoundError("class level not found")
	ErrArmNotFound     = core.NewNotFoundError("class arm not found")
	ErrSubjectNotFound = core.NewNotFoundError("subject not found")
	ErrRoleNotFound    = core.NewNotFoundError("leadership role not found")
	ErrSubjectExists   = core.NewConflictError("a subject with this code already exists")
	ErrArmExists       = core.NewConflictError("a class arm with this name already exists for this level")
)

type (
	Repository interface {
		CreateLevel(ctx context.Context, lvl ClassLevel) (ClassLevel, error)
		GetLevel(ctx context.Context, schoolID, id string) (ClassLevel, error)
		ListLevels(ctx context.Context, schoolID string, params core.ListParams) ([]ClassLevel, core.Pagination, error)
		UpdateLevel(ctx context.Context, lvl ClassLevel) (ClassLevel, error)
		DeleteLevel(ctx context.Context, schoolID, id string) error

		CreateArm(ctx context.Context, arm ClassArm) (ClassArm, error)
		GetArm(ctx context.Context, schoolID, id string) (ClassArm, error)
		ListArms(ctx context.Context, schoolID string, params core.ListParams) ([]ClassArm, core.Pagination, error)
		UpdateArm(ctx context.Context, arm ClassArm) (ClassArm, error)
		DeleteArm(ctx context.Context, schoolID, id string) error

		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		GetSubject(ctx context.Context, schoolID, id string) (Subject, error)
		ListSubjects(ctx context.Context, schoolID string, params core.ListParams) ([]Subject, core.Pagination, error)
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		DeleteSubject(ctx context.Context, schoolID, id string) error

		AssignClassSubject(ctx context.Context, cs ClassSubject) (ClassSubject, error)
		ListClassSubjects(ctx context.Context, schoolID, armID string) ([]ClassSubject, error)
		UnassignClassSubject(ctx context.Context, schoolID, id string) error

		CreateLeadershipRole(ctx context.Context, role LeadershipRole) (LeadershipRole, error)
		GetLeadershipRole(ctx context.Context, schoolID, id string) (LeadershipRole, error)
		ListLeadershipRoles(ctx context.Context, schoolID string, params core.ListParams) ([]LeadershipRole, core.Pagination, error)
		DeleteLeadershipRole(ctx context.Context, schoolID, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Class levels

func (svc *Service) CreateLevel(ctx context.Context, schoolID string, n NewClassLevel) (ClassLevel, error) {
	now := time.Now().UTC()
	return svc.repo.CreateLevel(ctx, ClassLevel{
		SchoolID:  schoolID,
		Name:      n.Name,
		Rank:      n.Rank,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) GetLevel(ctx context.Context, schoolID, id string) (ClassLevel, error) {
	return svc.repo.GetLevel(ctx, schoolID, id)
}

func (svc *Service) ListLevels(ctx context.Context, schoolID string, params core.ListParams) ([]ClassLevel, core.Pagination, error) {
	return svc.repo.ListLevels(ctx, schoolID, params)
}

func (svc *Service) UpdateLevel(ctx context.Context, orig ClassLevel, n NewClassLevel) (ClassLevel, error) {
	orig.Name = n.Name
	orig.Rank = n.Rank
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLevel(ctx, orig)
}

func (svc *Service) DeleteLevel(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteLevel(ctx, schoolID, id)
}

// Class arms

func (svc *Service) CreateArm(ctx context.Context, schoolID string, n NewClassArm) (ClassArm, error) {
	// level must exist within the same school
	if _, err := svc.repo.GetLevel(ctx, schoolID, n.LevelID); err != nil {
		return ClassArm{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateArm(ctx, ClassArm{
		SchoolID:  schoolID,
		LevelID:   n.LevelID,
		Name:      n.Name,
		Capacity:  n.Capacity,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) GetArm(ctx context.Context, schoolID, id string) (ClassArm, error) {
	return svc.repo.GetArm(ctx, schoolID, id)
}

func (svc *Service) ListArms(ctx context.Context, schoolID string, params core.ListParams) ([]ClassArm, core.Pagination, error) {
	return svc.repo.ListArms(ctx, schoolID, params)
}

func (svc *Service) UpdateArm(ctx context.Context, orig ClassArm, n NewClassArm) (ClassArm, error) {
	orig.Name = n.Name
	orig.Capacity = n.Capacity
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateArm(ctx, orig)
}

func (svc *Service) DeleteArm(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteArm(ctx, schoolID, id)
}

// Subjects

func (svc *Service) CreateSubject(ctx context.Context, schoolID string, n NewSubject) (Subject, error) {
	now := time.Now().UTC()
	return svc.repo.CreateSubject(ctx, Subject{
		SchoolID:  schoolID,
		Name:      n.Name,
		Code:      n.Code,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) GetSubject(ctx context.Context, schoolID, id string) (Subject, error) {
	return svc.repo.GetSubject(ctx, schoolID, id)
}

func (svc *Service) ListSubjects(ctx context.Context, schoolID string, params core.ListParams) ([]Subject, core.Pagination, error) {
	return svc.repo.ListSubjects(ctx, schoolID, params)
}

func (svc *Service) UpdateSubject(ctx context.Context, orig Subject, n NewSubject) (Subject, error) {
	orig.Name = n.Name
	orig.Code = n.Code
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, orig)
}

func (svc *Service) DeleteSubject(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteSubject(ctx, schoolID, id)
}

// Class subjects

func (svc *Service) AssignClassSubject(ctx context.Context, schoolID string, n NewClassSubject) (ClassSubject, error) {
	if _, err := svc.repo.GetArm(ctx, schoolID, n.ArmID); err != nil {
		return ClassSubject{}, err
	}
	if _, err := svc.repo.GetSubject(ctx, schoolID, n.SubjectID); err != nil {
		return ClassSubject{}, err
	}
	return svc.repo.AssignClassSubject(ctx, ClassSubject{
		SchoolID:  schoolID,
		ArmID:     n.ArmID,
		SubjectID: n.SubjectID,
		TeacherID: n.TeacherID,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) ListClassSubjects(ctx context.Context, schoolID, armID string) ([]ClassSubject, error) {
	return svc.repo.ListClassSubjects(ctx, schoolID, armID)
}

func (svc *Service) UnassignClassSubject(ctx context.Context, schoolID, id string) error {
	return svc.repo.UnassignClassSubject(ctx, schoolID, id)
}

// Leadership roles

func (svc *Service) CreateLeadershipRole(ctx context.Context, schoolID string, n NewLeadershipRole) (LeadershipRole, error) {
	now := time.Now().UTC()
	return svc.repo.CreateLeadershipRole(ctx, LeadershipRole{
		SchoolID:    schoolID,
		Name:        n.Name,
		Description: n.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) GetLeadershipRole(ctx context.Context, schoolID, id string) (LeadershipRole, error) {
	return svc.repo.GetLeadershipRole(ctx, schoolID, id)
}

func (svc *Service) ListLeadershipRoles(ctx context.Context, schoolID string, params core.ListParams) ([]LeadershipRole, core.Pagination, error) {
	return svc.repo.ListLeadershipRoles(ctx, schoolID, params)
}

func (svc *Service) DeleteLeadershipRole(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteLeadershipRole(ctx, schoolID, id)
}
