package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/contract-workflow/internal/model"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, c claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims(userID uuid.UUID) claims {
	return claims{
		Username: "aigerim.legal",
		Role:     string(model.RoleLegalUser),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestParseValidToken(t *testing.T) {
	userID := uuid.New()
	parser := NewParser(testSecret)

	principal, err := parser.Parse(signToken(t, testSecret, validClaims(userID)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if principal.UserID != userID {
		t.Errorf("user id = %s, want %s", principal.UserID, userID)
	}
	if principal.Username != "aigerim.legal" {
		t.Errorf("username = %q", principal.Username)
	}
	if principal.Role != model.RoleLegalUser {
		t.Errorf("role = %s", principal.Role)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	userID := uuid.New()
	parser := NewParser(testSecret)

	expired := validClaims(userID)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	badSubject := validClaims(userID)
	badSubject.Subject = "not-a-uuid"

	badRole := validClaims(userID)
	badRole.Role = "JANITOR"

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", signToken(t, "other-secret", validClaims(userID))},
		{"expired", signToken(t, testSecret, expired)},
		{"non-uuid subject", signToken(t, testSecret, badSubject)},
		{"unknown role", signToken(t, testSecret, badRole)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parser.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("err = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}
