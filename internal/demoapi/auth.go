package demoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/freshcart/storefront/internal/core/domain"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// Issuer signs HS256 access tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a token for id carrying sub, email, role, iat and exp.
func (i *Issuer) Issue(id domain.Identity) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"sub":   string(id.ID),
		"email": id.Email,
		"role":  id.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(i.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *Issuer) parse(raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// Auth validates the bearer token and injects the caller into context.
// Tokens of deleted or blocked accounts are rejected like invalid ones.
func Auth(issuer *Issuer, store *Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return fail(c, http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return fail(c, http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := issuer.parse(parts[1])
			if err != nil {
				return fail(c, http.StatusUnauthorized, "invalid token")
			}
			sub, _ := claims["sub"].(string)
			id, status, err := store.Account(sub)
			if err != nil || status == domain.CustomerBlocked {
				return fail(c, http.StatusUnauthorized, "invalid token")
			}

			c.Set(ctxUserID, string(id.ID))
			c.Set(ctxRole, id.Role)
			return next(c)
		}
	}
}

// RequireRole answers 403 unless the caller holds one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ctxRole).(string)
			for _, r := range roles {
				if strings.EqualFold(r, role) {
					return next(c)
				}
			}
			return fail(c, http.StatusForbidden, "access denied")
		}
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get(ctxUserID).(string)
	return id
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"message": msg})
}
