package credential

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/care-client/internal/domain"
)

func signedToken(t *testing.T, subjectID string, role domain.Role, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		SubjectID: subjectID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestInspectorIsExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inspector := NewInspector(clock)

	t.Run("unexpired credential", func(t *testing.T) {
		token := signedToken(t, "u1", domain.RolePatient, clock.Now().Add(time.Hour))
		require.False(t, inspector.IsExpired(token))
	})

	t.Run("expired credential", func(t *testing.T) {
		token := signedToken(t, "u1", domain.RolePatient, clock.Now().Add(-time.Minute))
		require.True(t, inspector.IsExpired(token))
	})

	t.Run("expiry passing while held", func(t *testing.T) {
		token := signedToken(t, "u1", domain.RolePatient, clock.Now().Add(time.Minute))
		require.False(t, inspector.IsExpired(token))
		clock.Advance(2 * time.Minute)
		require.True(t, inspector.IsExpired(token))
	})

	t.Run("malformed input fails safe", func(t *testing.T) {
		for _, input := range []string{"", "garbage", "a.b.c", "only.two"} {
			require.True(t, inspector.IsExpired(input), "input %q must be treated as expired", input)
		}
	})

	t.Run("missing expiry claim fails safe", func(t *testing.T) {
		claims := jwt.MapClaims{"userId": "u1", "role": "PATIENT"}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		require.True(t, inspector.IsExpired(token))
	})
}

func TestInspectorRole(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inspector := NewInspector(clock)

	token := signedToken(t, "d1", domain.RoleDoctor, clock.Now().Add(time.Hour))
	role, ok := inspector.Role(token)
	require.True(t, ok)
	require.Equal(t, domain.RoleDoctor, role)

	_, ok = inspector.Role("garbage")
	require.False(t, ok)

	// Unknown role values are not surfaced.
	claims := jwt.MapClaims{"userId": "u1", "role": "SUPERUSER"}
	odd, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, ok = inspector.Role(odd)
	require.False(t, ok)
}

func TestInspectorSubjectID(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inspector := NewInspector(clock)

	token := signedToken(t, "subject-42", domain.RolePatient, clock.Now().Add(time.Hour))
	id, ok := inspector.SubjectID(token)
	require.True(t, ok)
	require.Equal(t, "subject-42", id)

	_, ok = inspector.SubjectID("not-a-jwt")
	require.False(t, ok)
}
