package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RolePatient = "patient"
	RoleLab     = "lab"
)

var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenExpired          = errors.New("token has expired")
	ErrTokenInvalidSignature = errors.New("token signature is invalid")
	ErrTokenInvalid          = errors.New("token is invalid")
)

type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	LabID  string `json:"labId,omitempty"`
	jwt.RegisteredClaims
}

// IssueOptions carries the optional claims of a new token.
type IssueOptions struct {
	Role  string
	LabID string
	TTL   time.Duration
}

// TokenService signs and verifies HS256 bearer tokens. It keeps no state
// besides the secret.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenService(secret, issuer string) *TokenService {
	return &TokenService{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue creates a signed token for the given principal.
func (s *TokenService) Issue(principalID string, opts IssueOptions) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("JWT secret is not configured")
	}
	if principalID == "" {
		return "", errors.New("principal id is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := s.now()
	claims := &Claims{
		UserID: principalID,
		Role:   opts.Role,
		LabID:  opts.LabID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns its claims. Failures are reported as one of
// ErrTokenMalformed, ErrTokenExpired, ErrTokenInvalidSignature or
// ErrTokenInvalid.
func (s *TokenService) Verify(raw string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("JWT secret is not configured")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrTokenInvalidSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
