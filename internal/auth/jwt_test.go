package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customer = Identity{
	ID:    "5b0a3f0e-8f5e-4c8e-9a43-2f7f0d3c9a11",
	Email: "jane@example.com",
	Name:  "Jane",
	Role:  models.RoleCustomer,
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec("test-secret")

	token, err := codec.Issue(customer)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	identity, err := codec.Verify(token)

	require.NoError(t, err)
	assert.Equal(t, customer, *identity)
}

func TestCodecRejects(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := NewCodec("test-secret", WithClock(fixedClock(issuedAt)))

	token, err := codec.Issue(customer)
	require.NoError(t, err)

	t.Run("Empty token", func(t *testing.T) {
		_, err := codec.Verify("")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("Wrong part count", func(t *testing.T) {
		parts := strings.Split(token, ".")

		_, err := codec.Verify(parts[0] + "." + parts[1])
		assert.ErrorIs(t, err, ErrInvalidSession)

		_, err = codec.Verify(token + ".extra")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("Other secret", func(t *testing.T) {
		_, err := NewCodec("other-secret", WithClock(fixedClock(issuedAt))).Verify(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("Expired", func(t *testing.T) {
		later := NewCodec("test-secret", WithClock(fixedClock(issuedAt.Add(SessionTTL+time.Second))))

		_, err := later.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("Still valid just before expiry", func(t *testing.T) {
		later := NewCodec("test-secret", WithClock(fixedClock(issuedAt.Add(SessionTTL-time.Second))))

		_, err := later.Verify(token)
		assert.NoError(t, err)
	})

	t.Run("Any single character change", func(t *testing.T) {
		for i := range token {
			if token[i] == '.' {
				continue
			}

			replacement := byte('A')
			if token[i] == 'A' {
				replacement = 'B'
			}

			tampered := token[:i] + string(replacement) + token[i+1:]

			_, err := codec.Verify(tampered)
			assert.ErrorIs(t, err, ErrInvalidSession, "position %d", i)
		}
	})

	t.Run("Unsigned algorithm", func(t *testing.T) {
		claims := Claims{
			Role: models.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   customer.ID,
				ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
			},
		}

		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = codec.Verify(unsigned)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("Missing expiry", func(t *testing.T) {
		claims := Claims{
			Role:             models.RoleCustomer,
			RegisteredClaims: jwt.RegisteredClaims{Subject: customer.ID},
		}

		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = codec.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("Unknown role", func(t *testing.T) {
		claims := Claims{
			Role: models.Role("owner"),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   customer.ID,
				ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
			},
		}

		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = codec.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("Payload is not JSON", func(t *testing.T) {
		parts := strings.Split(token, ".")
		parts[1] = base64.RawURLEncoding.EncodeToString([]byte("not json"))

		_, err := codec.Verify(strings.Join(parts, "."))
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestNewCodecFallsBackToDefaultSecret(t *testing.T) {
	token, err := NewCodec("").Issue(customer)
	require.NoError(t, err)

	_, err = NewCodec(InsecureDefaultSecret).Verify(token)
	assert.NoError(t, err)
}
