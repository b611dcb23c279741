package announce

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("announcement not found")
	ErrAlreadyPublished = core.NewValidationError(errors.New("announcement is already published"))
)

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		GetAnnouncement(ctx context.Context, schoolID, id string) (Announcement, error)
		ListAnnouncements(ctx context.Context, schoolID string, params core.ListParams) ([]Announcement, core.Pagination, error)
		UpdateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		DeleteAnnouncement(ctx context.Context, schoolID, id string) error

		// AudienceEmails returns the emails of the school's users matching the
		// announcement audience.
		AudienceEmails(ctx context.Context, schoolID, audience string) ([]string, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, logger: logger}
}

func (svc *Service) Create(ctx context.Context, schoolID, createdBy string, na NewAnnouncement) (Announcement, error) {
	now := time.Now().UTC()
	return svc.repo.CreateAnnouncement(ctx, Announcement{
		SchoolID:  schoolID,
		Title:     na.Title,
		Body:      na.Body,
		Audience:  na.Audience,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Get(ctx context.Context, schoolID, id string) (Announcement, error) {
	return svc.repo.GetAnnouncement(ctx, schoolID, id)
}

func (svc *Service) List(ctx context.Context, schoolID string, params core.ListParams) ([]Announcement, core.Pagination, error) {
	return svc.repo.ListAnnouncements(ctx, schoolID, params)
}

func (svc *Service) Update(ctx context.Context, orig Announcement, na NewAnnouncement) (Announcement, error) {
	orig.Title = na.Title
	orig.Body = na.Body
	orig.Audience = na.Audience
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAnnouncement(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, schoolID, id string) error {
	return svc.repo.DeleteAnnouncement(ctx, schoolID, id)
}

// Publish stamps the announcement and fans it out to the audience by email.
// The fan-out is best effort; a mail failure does not unpublish.
func (svc *Service) Publish(ctx context.Context, schoolID, id string) (Announcement, error) {
	a, err := svc.repo.GetAnnouncement(ctx, schoolID, id)
	if err != nil {
		return Announcement{}, err
	}
	if a.Published() {
		return Announcement{}, ErrAlreadyPublished
	}

	now := time.Now().UTC()
	a.PublishedAt = &now
	a.UpdatedAt = now
	if a, err = svc.repo.UpdateAnnouncement(ctx, a); err != nil {
		return Announcement{}, errors.Wrap(err, "publishing announcement")
	}

	emails, err := svc.repo.AudienceEmails(ctx, schoolID, a.Audience)
	if err != nil {
		svc.logger.Error("fetching announcement audience", err)
		return a, nil
	}
	msgs := make([]*core.EmailMessage, 0, len(emails))
	for _, email := range emails {
		msgs = append(msgs, &core.EmailMessage{
			To:      []mail.Address{{Address: email}},
			Subject: a.Title,
			Body:    a.Body,
		})
	}
	svc.mailSvc.SendMessages(msgs...)
	return a, nil
}
