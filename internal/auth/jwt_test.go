package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var testSecret = []byte("test-secret-key-12345")

func TestJWTFlow(t *testing.T) {
	userID := uuid.New().String()

	token, err := GenerateToken(testSecret, userID, "caja@example.com", RoleCashier, 0)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("expected userID %s, got %s", userID, claims.UserID)
	}
	if claims.Role != RoleCashier {
		t.Errorf("expected role %s, got %s", RoleCashier, claims.Role)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	if _, err := GenerateToken(nil, "u", "", RoleAdmin, 0); err != ErrMissingSecret {
		t.Errorf("expected ErrMissingSecret, got %v", err)
	}

	other, _ := GenerateToken([]byte("other"), "u", "", RoleAdmin, 0)
	if _, err := ValidateToken(testSecret, other); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for foreign signature, got %v", err)
	}

	expired, _ := GenerateToken(testSecret, "u", "", RoleAdmin, time.Nanosecond)
	time.Sleep(2 * time.Millisecond)
	if _, err := ValidateToken(testSecret, expired); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := ValidateToken(testSecret, unsigned); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for alg none, got %v", err)
	}
}
