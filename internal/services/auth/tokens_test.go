package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benvon/careerontrack/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenService_IssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, "careerontrack", time.Hour)
	user := &models.User{ID: 42, Email: "test@example.com", Name: "Test User"}

	token, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("Expected compact JWS, got %q", token)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Sub != "42" || claims.Email != user.Email || claims.Name != user.Name {
		t.Errorf("Unexpected claims %+v", claims)
	}
	if claims.Iss != "careerontrack" {
		t.Errorf("Expected issuer careerontrack, got %q", claims.Iss)
	}
	if claims.JTI == "" {
		t.Error("Expected a token id")
	}
	if claims.Exp-claims.Iat != int64(time.Hour/time.Second) {
		t.Errorf("Expected one hour lifetime, got %d seconds", claims.Exp-claims.Iat)
	}

	id, err := UserID(claims)
	if err != nil || id != 42 {
		t.Errorf("UserID() = %d, %v", id, err)
	}
}

func TestTokenService_UniqueTokenIDs(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, "careerontrack", time.Hour)
	user := &models.User{ID: 1, Email: "a@b.co", Name: "A"}

	a, _ := svc.Issue(user)
	b, _ := svc.Issue(user)
	ca, _ := svc.Verify(a)
	cb, _ := svc.Verify(b)
	if ca.JTI == cb.JTI {
		t.Error("Expected distinct token ids")
	}
}

func TestTokenService_Rejects(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: 1, Email: "a@b.co", Name: "A"}
	issuer := NewTokenService(testSecret, "careerontrack", time.Hour)
	valid, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	expired := NewTokenService(testSecret, "careerontrack", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name     string
		verifier *TokenService
		token    string
	}{
		{"garbage", issuer, "not-a-token"},
		{"wrong secret", NewTokenService("ffffffffffffffffffffffffffffffff", "careerontrack", time.Hour), valid},
		{"wrong issuer", NewTokenService(testSecret, "someone-else", time.Hour), valid},
		{"expired", issuer, expiredToken},
		{"tampered", issuer, valid[:len(valid)-2] + "xx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := tt.verifier.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestUserID_Malformed(t *testing.T) {
	t.Parallel()

	for _, sub := range []string{"", "abc", "0", "-3"} {
		if _, err := UserID(&models.JWTClaims{Sub: sub}); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("UserID(%q) expected ErrInvalidToken, got %v", sub, err)
		}
	}
}

func TestPasswords(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "password123" {
		t.Fatal("Hash must not equal the plaintext")
	}
	if err := CheckPassword(hash, "password123"); err != nil {
		t.Errorf("Expected match, got %v", err)
	}
	if err := CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}
