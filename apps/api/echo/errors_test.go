package echoapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

type loggerMock struct {
	errored []string
}

func (l *loggerMock) Debug(msg string, args ...interface{}) {}
func (l *loggerMock) Info(msg string, args ...interface{})  {}
func (l *loggerMock) Warn(msg string, args ...interface{})  {}
func (l *loggerMock) Error(msg string, args ...interface{}) { l.errored = append(l.errored, msg) }
func (l *loggerMock) Fatal(msg string, args ...interface{}) {}

func handleErr(t *testing.T, err error) (*loggerMock, bool, *httptest.ResponseRecorder) {
	t.Helper()
	logger := new(loggerMock)
	var shutdownCalled bool

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ctx := echo.New().NewContext(req, rec)

	newAppHTTPErrorHandler(logger, func() { shutdownCalled = true })(err, ctx)
	return logger, shutdownCalled, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func Test_appHTTPErrorHandler(t *testing.T) {
	t.Run("missing token is unauthorized", func(t *testing.T) {
		_, _, rec := handleErr(t, middleware.ErrJWTMissing)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "missing or malformed token", env.Message)
	})

	t.Run("http error passthrough", func(t *testing.T) {
		_, _, rec := handleErr(t, errHttpForbidden)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "permission denied", env.Message)
	})

	t.Run("struct validation errors are unprocessable", func(t *testing.T) {
		var payload struct {
			Name string `json:"name" validate:"required"`
		}
		vErr := core.Validate.Struct(payload)
		require.Error(t, vErr)

		_, _, rec := handleErr(t, vErr)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "validation failed", env.Message)

		fieldErrs, ok := env.Errors.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "this field is required", fieldErrs["name"])
	})

	t.Run("domain validation error is a bad request", func(t *testing.T) {
		err := core.NewValidationError(
			errors.New("unknown filter"),
			core.FieldError{Field: "password_hash", Error: "unknown filter key"},
		)
		_, _, rec := handleErr(t, err)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "unknown filter", env.Message)

		fieldErrs, ok := env.Errors.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "unknown filter key", fieldErrs["password_hash"])
	})

	t.Run("not found", func(t *testing.T) {
		_, _, rec := handleErr(t, core.NewNotFoundError("student not found"))
		env := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "student not found", env.Message)
	})

	t.Run("wrapped not found keeps its status", func(t *testing.T) {
		err := errors.Wrap(core.NewNotFoundError("term not found"), "getting term")
		_, _, rec := handleErr(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("conflict", func(t *testing.T) {
		_, _, rec := handleErr(t, core.NewConflictError("a user with this email already exists"))
		env := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "a user with this email already exists", env.Message)
	})

	t.Run("unexpected error is logged as a server error", func(t *testing.T) {
		logger, shutdownCalled, rec := handleErr(t, errors.New("kaboom"))
		env := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, http.StatusText(http.StatusInternalServerError), env.Message)
		assert.Len(t, logger.errored, 1)
		assert.False(t, shutdownCalled)
	})

	t.Run("shutdown error stops the server", func(t *testing.T) {
		_, shutdownCalled, rec := handleErr(t, core.NewShutdownError("integrity violation"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.True(t, shutdownCalled)
	})
}
