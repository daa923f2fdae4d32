package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret", "medlab-api")

	token, err := svc.Issue("lab123", IssueOptions{Role: RoleLab, LabID: "lab123", TTL: time.Hour})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Failed to verify valid token: %v", err)
	}
	if claims.UserID != "lab123" {
		t.Errorf("Expected UserID 'lab123', got '%s'", claims.UserID)
	}
	if claims.Role != RoleLab {
		t.Errorf("Expected Role 'lab', got '%s'", claims.Role)
	}
	if claims.LabID != "lab123" {
		t.Errorf("Expected LabID 'lab123', got '%s'", claims.LabID)
	}
	if claims.Issuer != "medlab-api" {
		t.Errorf("Expected issuer 'medlab-api', got '%s'", claims.Issuer)
	}
}

func TestTokenService_DefaultTTLIs24Hours(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTokenService("test-secret", "medlab-api")
	svc.now = func() time.Time { return now }

	token, err := svc.Issue("patient1", IssueOptions{Role: RolePatient})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Failed to verify token: %v", err)
	}
	if got := claims.ExpiresAt.Time.Sub(now); got != 24*time.Hour {
		t.Errorf("Expected 24h lifetime, got %s", got)
	}
}

func TestTokenService_Verify_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTokenService("test-secret", "medlab-api")
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue("patient1", IssueOptions{TTL: time.Minute})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_Verify_Malformed(t *testing.T) {
	svc := NewTokenService("test-secret", "medlab-api")

	if _, err := svc.Verify("invalid-token"); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("Expected ErrTokenMalformed, got %v", err)
	}
}

func TestTokenService_Verify_WrongSecret(t *testing.T) {
	token, err := NewTokenService("other-secret", "medlab-api").Issue("patient1", IssueOptions{})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	_, err = NewTokenService("test-secret", "medlab-api").Verify(token)
	if !errors.Is(err, ErrTokenInvalidSignature) {
		t.Errorf("Expected ErrTokenInvalidSignature, got %v", err)
	}
}

func TestTokenService_Verify_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		UserID: "patient1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	raw, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to create test token: %v", err)
	}

	_, err = NewTokenService("test-secret", "medlab-api").Verify(raw)
	if !errors.Is(err, ErrTokenInvalidSignature) {
		t.Errorf("Expected ErrTokenInvalidSignature, got %v", err)
	}
}

func TestTokenService_Verify_MissingSubject(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to create test token: %v", err)
	}

	_, err = NewTokenService("test-secret", "medlab-api").Verify(raw)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_RequiresSecret(t *testing.T) {
	svc := NewTokenService("", "medlab-api")
	if _, err := svc.Issue("patient1", IssueOptions{}); err == nil {
		t.Error("Expected error when secret is empty")
	}
}
