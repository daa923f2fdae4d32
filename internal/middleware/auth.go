package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medlab-api/internal/apperr"
	"github.com/harentsoaR/medlab-api/internal/response"
	"github.com/harentsoaR/medlab-api/internal/utils"
)

// Context keys set by the authenticator.
const (
	ClaimsKey   = "claims"
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
	LabIDKey    = "labID"
)

const (
	LabTokenHeader = "X-Lab-Token"
	LabTokenCookie = "labToken"
	LabTokenQuery  = "token"
)

// errNoCredential means a source found nothing to read. Sources return it
// so the next one is tried.
var errNoCredential = errors.New("no credential")

// TokenVerifier checks a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*utils.Claims, error)
}

// TokenSource extracts a raw token from a request. It returns
// errNoCredential when the request carries nothing for it, and an apperr
// error when the credential is present but unusable.
type TokenSource func(r *http.Request) (string, error)

// BearerHeader reads "Authorization: Bearer <token>".
func BearerHeader(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errNoCredential
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.Unauthorized("no token provided")
	}
	return strings.TrimSpace(parts[1]), nil
}

func HeaderSource(name string) TokenSource {
	return func(r *http.Request) (string, error) {
		if v := strings.TrimSpace(r.Header.Get(name)); v != "" {
			return v, nil
		}
		return "", errNoCredential
	}
}

func CookieSource(name string) TokenSource {
	return func(r *http.Request) (string, error) {
		if ck, err := r.Cookie(name); err == nil && ck.Value != "" {
			return ck.Value, nil
		}
		return "", errNoCredential
	}
}

func QuerySource(name string) TokenSource {
	return func(r *http.Request) (string, error) {
		if v := r.URL.Query().Get(name); v != "" {
			return v, nil
		}
		return "", errNoCredential
	}
}

// Authenticator resolves a verified principal from a request. Its sources
// are tried in order; the first one that yields a token wins.
type Authenticator struct {
	tokens  TokenVerifier
	sources []TokenSource
	role    string

	missing   func() *apperr.Error
	rejected  func(err error) *apperr.Error
	wrongRole func() *apperr.Error
}

// GenericBearer accepts any valid token in the Authorization header.
func GenericBearer(tokens TokenVerifier) *Authenticator {
	return &Authenticator{
		tokens:  tokens,
		sources: []TokenSource{BearerHeader},
		missing: func() *apperr.Error {
			return apperr.Unauthorized("authorization header missing")
		},
		rejected: func(error) *apperr.Error {
			return apperr.Forbidden("Unauthorized - invalid or expired token")
		},
	}
}

// LabBearer accepts lab tokens from the X-Lab-Token header, the labToken
// cookie or the token query parameter, in that order. Anonymous requests
// are told where to log in.
func LabBearer(tokens TokenVerifier, loginPath string) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		sources: []TokenSource{
			HeaderSource(LabTokenHeader),
			CookieSource(LabTokenCookie),
			QuerySource(LabTokenQuery),
		},
		role: utils.RoleLab,
		missing: func() *apperr.Error {
			return apperr.Unauthorized("Access denied. Please login as a laboratory").WithDetail("redirect", loginPath)
		},
		rejected: func(err error) *apperr.Error {
			if errors.Is(err, utils.ErrTokenExpired) {
				return apperr.Unauthorized("Token expired, please login again").WithDetail("redirect", loginPath)
			}
			return apperr.Unauthorized("Invalid token")
		},
		wrongRole: func() *apperr.Error {
			return apperr.Forbidden("Invalid access level")
		},
	}
}

// Resolve returns the verified claims carried by r.
func (a *Authenticator) Resolve(r *http.Request) (*utils.Claims, error) {
	raw, err := a.extract(r)
	if err != nil {
		return nil, err
	}
	claims, err := a.tokens.Verify(raw)
	if err != nil {
		return nil, a.rejected(err)
	}
	if a.role != "" && claims.Role != a.role {
		return nil, a.wrongRole()
	}
	return claims, nil
}

func (a *Authenticator) extract(r *http.Request) (string, error) {
	for _, source := range a.sources {
		raw, err := source(r)
		if errors.Is(err, errNoCredential) {
			continue
		}
		return raw, err
	}
	return "", a.missing()
}

// Required rejects requests without a valid token.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.Resolve(c.Request)
		if err != nil {
			response.Error(c, err)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// Optional attaches the claims of a valid token and lets every other
// request through anonymously.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := a.Resolve(c.Request); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(ClaimsKey, claims)
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserRoleKey, claims.Role)
	if claims.LabID != "" {
		c.Set(LabIDKey, claims.LabID)
	}
}

// Claims returns the claims attached by an authenticator, or nil.
func Claims(c *gin.Context) *utils.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*utils.Claims); ok {
			return claims
		}
	}
	return nil
}
