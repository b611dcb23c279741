package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

func testConfig() *core.Config {
	return &core.Config{
		AppName:   "Shule",
		Debug:     true,
		SecretKey: "s3cr3t",
		Server: core.ServerConfig{
			JWTExpirationDelta:        1 * time.Hour,
			JWTRefreshExpirationDelta: 7 * 24 * time.Hour,
		},
	}
}

func newTestContext(t *testing.T, claims *Claims) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ctx := echo.New().NewContext(req, rec)
	if claims != nil {
		ctx.Set(tokenContextKey, &jwt.Token{Claims: claims})
	}
	return ctx, rec
}

func Test_generateToken_roundTrip(t *testing.T) {
	conf := testConfig()
	schoolID := "sch-1"
	usr := user.User{
		ID:       "usr-1",
		SchoolID: &schoolID,
		Username: "awe",
		Email:    "awe@test.cd",
		Roles:    []string{user.RoleAdminPrincipal, user.RoleTeacher},
	}

	tokStr, err := generateToken(conf, getUserClaims(conf, usr))
	require.NoError(t, err)
	require.NotEmpty(t, tokStr)

	parsed, err := jwt.ParseWithClaims(tokStr, new(Claims), func(token *jwt.Token) (interface{}, error) {
		return []byte(conf.SecretKey), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(*Claims)
	assert.Equal(t, conf.AppName, claims.Issuer)
	assert.Equal(t, usr.ID, claims.Subject)
	assert.Equal(t, usr.Username, claims.Username)
	assert.Equal(t, usr.Email, claims.Email)
	assert.Equal(t, schoolID, claims.SchoolID)
	assert.True(t, claims.IsAdmin)
	assert.True(t, claims.IsTeacher)
	assert.False(t, claims.IsStudent)
	assert.Equal(t, usr.Roles, claims.Roles)
	assert.Equal(t, claims.IssuedAt, claims.OrigIssuedAt)
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func Test_newJWTMiddleware(t *testing.T) {
	conf := testConfig()
	mw := newJWTMiddleware(conf)
	next := func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		return ctx.String(http.StatusOK, claims.Username)
	}

	t.Run("missing token", func(t *testing.T) {
		ctx, _ := newTestContext(t, nil)
		err := mw(next)(ctx)
		assert.Equal(t, middleware.ErrJWTMissing, err)
	})

	t.Run("valid token", func(t *testing.T) {
		usr := user.User{ID: "usr-1", Username: "awe", Roles: user.StudentRoles}
		tokStr, err := generateToken(conf, getUserClaims(conf, usr))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tokStr)
		rec := httptest.NewRecorder()
		ctx := echo.New().NewContext(req, rec)

		require.NoError(t, mw(next)(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "awe", rec.Body.String())
	})

	t.Run("missing secret is a server fault", func(t *testing.T) {
		noSecret := testConfig()
		noSecret.SecretKey = ""

		ctx, _ := newTestContext(t, nil)
		err := newJWTMiddleware(noSecret)(next)(ctx)

		var herr *echo.HTTPError
		require.ErrorAs(t, err, &herr)
		assert.Equal(t, http.StatusInternalServerError, herr.Code)
	})
}

func Test_contextHasAnyRole(t *testing.T) {
	claims := &Claims{Roles: []string{user.RoleTeacher, user.RoleAdminPrincipal}}

	tests := []struct {
		name  string
		roles []string
		want  bool
	}{
		{name: "no restriction", roles: nil, want: true},
		{name: "has role", roles: []string{user.RoleAdminPrincipal}, want: true},
		{name: "has one of", roles: []string{user.RoleAdminOwner, user.RoleTeacher}, want: true},
		{name: "missing role", roles: []string{user.RoleAdminOwner}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newTestContext(t, claims)
			assert.Equal(t, tt.want, contextHasAnyRole(ctx, tt.roles))
		})
	}
}

func Test_refreshToken(t *testing.T) {
	conf := testConfig()
	now := time.Now().Unix()

	t.Run("expired refresh window", func(t *testing.T) {
		oriat := time.Now().Add(-conf.Server.JWTRefreshExpirationDelta - time.Hour).Unix()
		ctx, _ := newTestContext(t, &Claims{
			StandardClaims: jwt.StandardClaims{Subject: "usr-1", IssuedAt: now},
			OrigIssuedAt:   oriat,
		})
		usr := user.User{ID: "usr-1"}
		usr.SetActive(true)
		ctx.Set(userContextKey, usr)

		_, _, err := refreshToken(ctx, nil, conf)
		assert.Equal(t, errRefreshExpired, err)
	})

	t.Run("deactivated account", func(t *testing.T) {
		ctx, _ := newTestContext(t, &Claims{
			StandardClaims: jwt.StandardClaims{Subject: "usr-1", IssuedAt: now},
			OrigIssuedAt:   now,
		})
		ctx.Set(userContextKey, user.User{ID: "usr-1"})

		_, _, err := refreshToken(ctx, nil, conf)
		assert.Equal(t, errAccountDeactivated, err)
	})

	t.Run("refreshed token keeps original issue time", func(t *testing.T) {
		oriat := time.Now().Add(-2 * time.Hour).Unix()
		ctx, _ := newTestContext(t, &Claims{
			StandardClaims: jwt.StandardClaims{Subject: "usr-1", IssuedAt: now},
			OrigIssuedAt:   oriat,
		})
		usr := user.User{ID: "usr-1", Username: "awe"}
		usr.SetActive(true)
		ctx.Set(userContextKey, usr)

		tokStr, refresh, err := refreshToken(ctx, nil, conf)
		require.NoError(t, err)
		require.NotEmpty(t, refresh)

		parsed, err := jwt.ParseWithClaims(tokStr, new(Claims), func(token *jwt.Token) (interface{}, error) {
			return []byte(conf.SecretKey), nil
		})
		require.NoError(t, err)
		assert.Equal(t, oriat, parsed.Claims.(*Claims).OrigIssuedAt)

		// the new refresh token stays anchored to the original login
		parsedRefresh, err := jwt.ParseWithClaims(refresh, new(Claims), func(token *jwt.Token) (interface{}, error) {
			return []byte(conf.SecretKey), nil
		})
		require.NoError(t, err)
		refreshClaims := parsedRefresh.Claims.(*Claims)
		assert.Equal(t, oriat, refreshClaims.OrigIssuedAt)
		wantExp := time.Unix(oriat, 0).Add(conf.Server.JWTRefreshExpirationDelta).Unix()
		assert.Equal(t, wantExp, refreshClaims.ExpiresAt)
	})
}

func Test_newRefreshJWTMiddleware(t *testing.T) {
	conf := testConfig()
	mw := newRefreshJWTMiddleware(conf)
	next := func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		return ctx.String(http.StatusOK, claims.Username)
	}

	usr := user.User{ID: "usr-1", Username: "awe", Roles: user.StudentRoles}
	refresh, err := generateRefreshToken(conf, getUserClaims(conf, usr))
	require.NoError(t, err)

	t.Run("cookie alone is enough", func(t *testing.T) {
		// no Authorization header: the access token has typically lapsed
		// by the time a client renews
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh})
		rec := httptest.NewRecorder()
		ctx := echo.New().NewContext(req, rec)

		require.NoError(t, mw(next)(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "awe", rec.Body.String())
	})

	t.Run("missing cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+refresh)
		rec := httptest.NewRecorder()
		ctx := echo.New().NewContext(req, rec)

		err := mw(next)(ctx)
		assert.Equal(t, middleware.ErrJWTMissing, err)
	})
}

func Test_setRefreshCookie(t *testing.T) {
	conf := testConfig()
	ctx, rec := newTestContext(t, nil)

	setRefreshCookie(ctx, conf, "tok")

	res := rec.Result()
	require.Len(t, res.Cookies(), 1)
	cookie := res.Cookies()[0]
	assert.Equal(t, refreshCookieName, cookie.Name)
	assert.Equal(t, "tok", cookie.Value)
	assert.Equal(t, refreshCookiePath, cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure) // Debug mode
}
