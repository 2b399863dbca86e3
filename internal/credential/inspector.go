package credential

import (
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/spec-kit/care-client/internal/domain"
)

// Claims describes the JWT payload issued by the backend.
type Claims struct {
	SubjectID string      `json:"userId"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Inspector decodes claims out of an opaque credential string. The client
// holds no signing key, so the signature is not verified here; the backend
// remains the authority and rejects forged tokens. Decode failures never
// escape: lookups return absent and expiry checks fail safe to expired.
type Inspector struct {
	clock  clockwork.Clock
	parser *jwt.Parser
}

// NewInspector builds an inspector using the given clock for expiry checks.
func NewInspector(clock clockwork.Clock) *Inspector {
	return &Inspector{clock: clock, parser: jwt.NewParser()}
}

func (i *Inspector) decode(credential string) (*Claims, bool) {
	if credential == "" {
		return nil, false
	}
	claims := &Claims{}
	if _, _, err := i.parser.ParseUnverified(credential, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// Role returns the embedded role, or false on malformed input.
func (i *Inspector) Role(credential string) (domain.Role, bool) {
	claims, ok := i.decode(credential)
	if !ok || !claims.Role.Valid() {
		return "", false
	}
	return claims.Role, true
}

// SubjectID returns the embedded subject identifier, or false on malformed input.
func (i *Inspector) SubjectID(credential string) (string, bool) {
	claims, ok := i.decode(credential)
	if !ok || claims.SubjectID == "" {
		return "", false
	}
	return claims.SubjectID, true
}

// IsExpired compares the expiry claim to the current time. Any decode error,
// including a missing expiry claim, is treated as expired: a malformed
// credential must never pass as valid.
func (i *Inspector) IsExpired(credential string) bool {
	claims, ok := i.decode(credential)
	if !ok {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !i.clock.Now().Before(claims.ExpiresAt.Time)
}
