package models

import (
	"testing"
	"time"
)

func TestJWTClaimsExpiresAt(t *testing.T) {
	t.Parallel()

	c := JWTClaims{Exp: 1700000000}
	if got := c.ExpiresAt(); !got.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("ExpiresAt() = %v", got)
	}
}
