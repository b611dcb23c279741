package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

// Every endpoint answers with the same envelope; Data and Pagination only
// appear on success, Errors only on failure.
type envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Timestamp  time.Time        `json:"timestamp"`
	Data       interface{}      `json:"data,omitempty"`
	Pagination *core.Pagination `json:"pagination,omitempty"`
	Errors     interface{}      `json:"errors,omitempty"`
}

func respond(ctx echo.Context, code int, message string, data interface{}) error {
	return ctx.JSON(code, envelope{
		Success:   true,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

func respondList(ctx echo.Context, message string, data interface{}, pagination core.Pagination) error {
	return ctx.JSON(200, envelope{
		Success:    true,
		Message:    message,
		Timestamp:  time.Now().UTC(),
		Data:       data,
		Pagination: &pagination,
	})
}

const includeParam = "include"

// wantsSchool reports whether the caller explicitly asked for the owning
// school to be embedded; it is never merged by default.
func wantsSchool(ctx echo.Context) bool {
	return ctx.QueryParam(includeParam) == "school"
}

// withSchool wraps a payload with its owning school when requested.
func withSchool(ctx echo.Context, svc *school.Service, schoolID, key string, payload interface{}) (interface{}, error) {
	if !wantsSchool(ctx) {
		return payload, nil
	}
	sch, err := svc.GetSchool(ctx.Request().Context(), schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "embedding school")
	}
	return echo.Map{key: payload, "school": sch}, nil
}
