package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/announce"
	"github.com/trezcool/shule/core/user"
)

var announcementListConfig = core.ListConfig{
	FilterFields: []string{"audience", "created_by", "published_at", "created_at"},
	SearchFields: []string{"title", "body"},
	SortFields:   []string{"title", "published_at", "created_at"},
	DefaultSort:  core.DBOrdering{Field: "created_at", Ascending: false},
}

type announcementRepository struct {
	db *sqlx.DB
}

var _ announce.Repository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db *sqlx.DB) announce.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a announce.Announcement) (announce.Announcement, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	const q = `
INSERT INTO announcements (id, school_id, title, body, audience, created_by, published_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		a.ID, a.SchoolID, a.Title, a.Body, a.Audience, a.CreatedBy, a.PublishedAt, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return announce.Announcement{}, trapErr(errors.Wrap(err, "inserting announcement"), nil, nil)
	}
	return a, nil
}

func (repo *announcementRepository) GetAnnouncement(ctx context.Context, schoolID, id string) (announce.Announcement, error) {
	var a announce.Announcement
	const q = `SELECT * FROM announcements WHERE school_id = $1 AND id = $2`
	err := repo.db.GetContext(ctx, &a, q, schoolID, id)
	return a, trapErr(err, announce.ErrNotFound, nil)
}

func (repo *announcementRepository) ListAnnouncements(ctx context.Context, schoolID string, params core.ListParams) ([]announce.Announcement, core.Pagination, error) {
	const base = `SELECT * FROM announcements WHERE school_id = $1`
	return queryList[announce.Announcement](ctx, repo.db, base, []interface{}{schoolID}, params, announcementListConfig)
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, a announce.Announcement) (announce.Announcement, error) {
	const q = `
UPDATE announcements
SET title = $1, body = $2, audience = $3, published_at = $4, updated_at = $5
WHERE school_id = $6 AND id = $7`
	res, err := repo.db.ExecContext(ctx, q,
		a.Title, a.Body, a.Audience, a.PublishedAt, a.UpdatedAt, a.SchoolID, a.ID)
	if err != nil {
		return announce.Announcement{}, errors.Wrap(err, "updating announcement")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return announce.Announcement{}, announce.ErrNotFound
	}
	return repo.GetAnnouncement(ctx, a.SchoolID, a.ID)
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, schoolID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM announcements WHERE school_id = $1 AND id = $2`, schoolID, id)
	if err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return announce.ErrNotFound
	}
	return nil
}

// AudienceEmails resolves the audience to active account emails within the school.
func (repo *announcementRepository) AudienceEmails(ctx context.Context, schoolID, audience string) ([]string, error) {
	query := `
SELECT DISTINCT u.email
FROM users u
JOIN user_roles r ON r.user_id = u.id
WHERE u.school_id = $1 AND u.is_active AND u.email != ''`
	args := []interface{}{schoolID}

	switch audience {
	case announce.AudienceTeachers:
		args = append(args, user.RoleTeacher+"%")
		query += " AND r.role LIKE $2"
	case announce.AudienceStudents:
		args = append(args, user.RoleStudent+"%")
		query += " AND r.role LIKE $2"
	}

	emails := make([]string, 0)
	err := repo.db.SelectContext(ctx, &emails, query, args...)
	return emails, errors.Wrap(err, "resolving audience emails")
}
