package announce

import (
	"time"

	"github.com/trezcool/shule/core"
)

// Audience values
const (
	AudienceAll      = "all"
	AudienceTeachers = "teachers"
	AudienceStudents = "students"
)

type Announcement struct {
	ID          string     `json:"id" db:"id"`
	SchoolID    string     `json:"school_id" db:"school_id"`
	Title       string     `json:"title" db:"title"`
	Body        string     `json:"body" db:"body"`
	Audience    string     `json:"audience" db:"audience"`
	CreatedBy   string     `json:"created_by" db:"created_by"`
	PublishedAt *time.Time `json:"published_at" db:"published_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

func (a Announcement) Published() bool {
	return a.PublishedAt != nil
}

type NewAnnouncement struct {
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	Audience string `json:"audience" validate:"required,oneof=all teachers students"`
}

func (na *NewAnnouncement) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Audience = core.CleanString(na.Audience, true /* lower */)
	return core.Validate.Struct(na)
}
