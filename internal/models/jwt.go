package models

import "time"

// JWTClaims are the verified claims of a session token. Sub holds the
// user id in decimal; Exp and Iat are Unix seconds.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
	JTI   string `json:"jti"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
	Iss   string `json:"iss"`
}

// ExpiresAt returns the expiry as a time
func (c JWTClaims) ExpiresAt() time.Time {
	return time.Unix(c.Exp, 0)
}
