// Package token issues and verifies signed, time-limited bearer tokens.
//
// Tokens are HS256 JWTs carrying the subject username, the subject user id
// and an expiry. They are stateless: nothing is stored server-side and a
// token stays valid until it expires.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/TodoKeeper/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the lifetime of a token issued without an explicit TTL.
const DefaultTTL = 60 * time.Minute

// Kind classifies verification failures.
type Kind string

const (
	// KindInvalidSignature covers bad signatures, unexpected algorithms,
	// malformed tokens and tokens missing required claims.
	KindInvalidSignature Kind = "invalid_signature"
	// KindExpired is returned for correctly signed tokens past their expiry.
	KindExpired Kind = "expired"
)

// Error is returned by Verify.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "token: " + string(e.Kind)
	}
	return fmt.Sprintf("token: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	// ErrInvalidSignature matches every KindInvalidSignature error.
	ErrInvalidSignature = &Error{Kind: KindInvalidSignature}
	// ErrExpired matches every KindExpired error.
	ErrExpired = &Error{Kind: KindExpired}
)

// ErrEmptySecret is returned by NewManager when no signing secret is given.
var ErrEmptySecret = errors.New("token: empty signing secret")

// Claims is the JWT payload.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens with a single symmetric secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source, used by tests to simulate expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a Manager signing with secret. A non-positive ttl selects DefaultTTL.
func NewManager(secret []byte, ttl time.Duration, opts ...Option) (*Manager, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL returns the default lifetime of issued tokens.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue mints a token for user valid for the manager's TTL.
func (m *Manager) Issue(user models.User) (string, error) {
	return m.IssueWithTTL(user, m.ttl)
}

// IssueWithTTL mints a token for user valid for ttl.
func (m *Manager) IssueWithTTL(user models.User, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns its subject.
// No claim is read before the signature has been checked.
func (m *Manager) Verify(raw string) (models.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, &Error{Kind: KindExpired, Err: err}
		}
		return models.Identity{}, &Error{Kind: KindInvalidSignature, Err: err}
	}

	if claims.Subject == "" || claims.UserID == 0 {
		return models.Identity{}, &Error{Kind: KindInvalidSignature, Err: errors.New("missing subject claims")}
	}

	return models.Identity{Username: claims.Subject, UserID: claims.UserID}, nil
}
