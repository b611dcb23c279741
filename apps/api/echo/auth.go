package echoapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

const (
	tokenContextKey = "userToken"
	userContextKey  = "user"

	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

// Claims represents the authorization claims transmitted via a JWT.
// SchoolID is the tenant boundary; it is empty for platform-level admins.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64    `json:"oriat,omitempty"`
	Username     string   `json:"username,omitempty"`
	Email        string   `json:"email,omitempty"`
	SchoolID     string   `json:"school_id,omitempty"`
	IsStudent    bool     `json:"is_student,omitempty"`
	IsTeacher    bool     `json:"is_teacher,omitempty"`
	IsAdmin      bool     `json:"is_admin,omitempty"`
	Roles        []string `json:"roles,omitempty"`
}

// newJWTMiddleware builds the bearer-token gate. A missing signing secret is a
// deployment fault: every guarded request fails with a 500, never an open door.
func newJWTMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return jwtMiddleware(conf, "header:"+echo.HeaderAuthorization)
}

// newRefreshJWTMiddleware reads the renewal credential from the refresh cookie
// instead of the Authorization header: by the time a client renews, the access
// token it holds may already have lapsed.
func newRefreshJWTMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return jwtMiddleware(conf, "cookie:"+refreshCookieName)
}

func jwtMiddleware(conf *core.Config, tokenLookup string) echo.MiddlewareFunc {
	if conf.SecretKey == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(ctx echo.Context) error {
				return echo.NewHTTPError(http.StatusInternalServerError, "token signing secret is not configured")
			}
		}
	}
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
		TokenLookup:   tokenLookup,
	})
}

func getUserClaims(conf *core.Config, usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	var schoolID string
	if usr.SchoolID != nil {
		schoolID = *usr.SchoolID
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     usr.Username,
		Email:        usr.Email,
		SchoolID:     schoolID,
		IsStudent:    usr.IsStudent(),
		IsTeacher:    usr.IsTeacher(),
		IsAdmin:      usr.IsAdmin(),
		Roles:        usr.Roles,
	}
}

func authenticate(ctx echo.Context, uname, pwd string, svc *user.Service, conf *core.Config) (*Claims, error) {
	usr, err := svc.GetByUsernameOrEmail(ctx.Request().Context(), uname)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding user by username or email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !usr.Active() {
		return nil, errAccountDeactivated
	}
	if usr, err = svc.SetLastLogin(ctx.Request().Context(), usr); err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return getUserClaims(conf, usr), nil
}

// generateToken generates a signed JWT token string representing the user Claims.
func generateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	return ss, errors.Wrap(err, "signing token")
}

// generateRefreshToken signs a copy of the claims that stays valid for the
// whole renewal window. The expiry is anchored to OrigIssuedAt so chained
// refreshes never extend the window past the original login.
func generateRefreshToken(conf *core.Config, claims *Claims) (string, error) {
	refreshClaims := *claims
	refreshClaims.ExpiresAt = time.Unix(claims.OrigIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta).Unix()
	return generateToken(conf, &refreshClaims)
}

// setRefreshCookie stores the long-lived token in an HTTP-only cookie scoped
// to the auth endpoints so scripts never see it.
func setRefreshCookie(ctx echo.Context, conf *core.Config, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		Expires:  time.Now().Add(conf.Server.JWTRefreshExpirationDelta),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   !conf.Debug,
	})
}

func clearRefreshCookie(ctx echo.Context, conf *core.Config) {
	ctx.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   !conf.Debug,
	})
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc *user.Service, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(userContextKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		if claims, err = getContextClaims(ctx); err != nil {
			return user.User{}, err
		}
	}

	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(userContextKey, usr)
	return usr, nil
}

func contextHasAnyRole(ctx echo.Context, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	if claims, err := getContextClaims(ctx); err == nil {
		sort.Strings(claims.Roles)
		for _, role := range roles {
			if i := sort.SearchStrings(claims.Roles, role); i < len(claims.Roles) && claims.Roles[i] == role {
				return true
			}
		}
	}
	return false
}

// refreshToken issues a fresh access/refresh token pair off the claims the
// refresh cookie carried into the context.
func refreshToken(ctx echo.Context, svc *user.Service, conf *core.Config) (access, refresh string, err error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", "", err
	}

	usr, err := getContextUser(ctx, svc, claims)
	if err != nil {
		return "", "", errors.Wrap(err, "getting context user")
	}
	if !usr.Active() {
		return "", "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", "", errRefreshExpired
	}

	newClaims := getUserClaims(conf, usr, claims.OrigIssuedAt)
	if access, err = generateToken(conf, newClaims); err != nil {
		return "", "", err
	}
	if refresh, err = generateRefreshToken(conf, newClaims); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
