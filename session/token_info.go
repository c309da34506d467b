package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry decodes the stored access token's exp claim without verifying
// the signature. Display-only: authorization decisions always belong to the
// backend, which rejects stale tokens on use.
func (m *Manager) TokenExpiry() (time.Time, bool) {
	raw := m.store.Access()
	if raw == "" {
		return time.Time{}, false
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
