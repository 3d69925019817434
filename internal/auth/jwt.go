package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/pkg/errors"
)

const (
	SessionCookie = "bertostore_session"
	SessionTTL    = 7 * 24 * time.Hour

	// InsecureDefaultSecret is used when SESSION_SECRET is unset. Anyone who
	// knows it can mint admin sessions.
	InsecureDefaultSecret = "replace-this-in-production"
)

var ErrInvalidSession = errors.New("Invalid or expired session")

// Identity is who a verified session belongs to.
type Identity struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

func IdentityOf(user models.User) Identity {
	return Identity{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	Name  string      `json:"name"`
	jwt.RegisteredClaims
}

type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type CodecOption func(*Codec)

func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(secret string, opts ...CodecOption) *Codec {
	if secret == "" {
		secret = InsecureDefaultSecret
	}

	codec := &Codec{
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(codec)
	}

	return codec
}

func (c *Codec) Issue(identity Identity) (string, error) {
	claims := Claims{
		Email: identity.Email,
		Role:  identity.Role,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(c.now().Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.secret)

	if err != nil {
		return "", errors.Wrap(err, "sign session token")
	}

	return signed, nil
}

// Verify returns ErrInvalidSession for every absent, malformed, tampered or
// expired token.
func (c *Codec) Verify(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrInvalidSession
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)

	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrInvalidSession
	}

	return &Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}
