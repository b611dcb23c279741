package academic

import (
	"time"

	"github.com/trezcool/shule/core"
)

// ClassLevel is a grade (e.g. "JSS 1", "Grade 5"); Rank orders levels.
type ClassLevel struct {
	ID        string    `json:"id" db:"id"`
	SchoolID  string    `json:"school_id" db:"school_id"`
	Name      string    `json:"name" db:"name"`
	Rank      int       `json:"rank" db:"rank"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ClassArm is a stream within a level (e.g. "JSS 1A").
type ClassArm struct {
	ID        string    `json:"id" db:"id"`
	SchoolID  string    `json:"school_id" db:"school_id"`
	LevelID   string    `json:"level_id" db:"level_id"`
	Name      string    `json:"name" db:"name"`
	Capacity  int       `json:"capacity" db:"capacity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Subject struct {
	ID        string    `json:"id" db:"id"`
	SchoolID  string    `json:"school_id" db:"school_id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ClassSubject assigns a subject to a class arm, optionally with a teacher.
type ClassSubject struct {
	ID        string    `json:"id" db:"id"`
	SchoolID  string    `json:"school_id" db:"school_id"`
	ArmID     string    `json:"arm_id" db:"arm_id"`
	SubjectID string    `json:"subject_id" db:"subject_id"`
	TeacherID *string   `json:"teacher_id" db:"teacher_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LeadershipRole is a student office a school defines (e.g. "Head Boy").
type LeadershipRole struct {
	ID          string    `json:"id" db:"id"`
	SchoolID    string    `json:"school_id" db:"school_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type NewClassLevel struct {
	Name string `json:"name" validate:"required"`
	Rank int    `json:"rank" validate:"gte=0"`
}

func (n *NewClassLevel) Validate() error {
	n.Name = core.CleanString(n.Name)
	return core.Validate.Struct(n)
}

type NewClassArm struct {
	LevelID  string `json:"level_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"gte=0"`
}

func (n *NewClassArm) Validate() error {
	n.Name = core.CleanString(n.Name)
	return core.Validate.Struct(n)
}

type NewSubject struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required,alphanum_"`
}

func (n *NewSubject) Validate() error {
	n.Name = core.CleanString(n.Name)
	n.Code = core.CleanString(n.Code, true /* lower */)
	return core.Validate.Struct(n)
}

type NewClassSubject struct {
	ArmID     string  `json:"arm_id" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	TeacherID *string `json:"teacher_id"`
}

func (n *NewClassSubject) Validate() error {
	return core.Validate.Struct(n)
}

type NewLeadershipRole struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (n *NewLeadershipRole) Validate() error {
	n.Name = core.CleanString(n.Name)
	return core.Validate.Struct(n)
}
