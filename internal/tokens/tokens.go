// Package tokens issues and verifies the HS256 session tokens used by the API.
//
// Access tokens are short lived and never stored. Refresh tokens carry a jti
// that the auth service persists so a rotated token can be recognised when it
// is presented again.
package tokens

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingJTI   = errors.New("refresh token has no id")
)

const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

// Config holds the signing secrets and lifetimes. It is built once from the
// process configuration and passed in explicitly.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Claims is the payload shared by access and refresh tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID decodes the numeric subject.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// IsAccess reports whether the token was minted as an access token.
func (c *Claims) IsAccess() bool {
	for _, aud := range c.Audience {
		if aud == audienceAccess {
			return true
		}
	}
	return false
}

// Pair is what login and refresh hand back to the transport layer.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	RefreshID        uuid.UUID
	RefreshExpiresAt time.Time
}

type Manager struct {
	cfg Config
	now func() time.Time
}

func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg, now: time.Now}
}

// WithClock returns a copy of the manager that reads time from now.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	tmp := *m
	tmp.now = now
	return &tmp
}

func (m *Manager) AccessSecret() []byte { return m.cfg.AccessSecret }

func (m *Manager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

func (m *Manager) IssueAccess(userID uint, username string) (string, error) {
	return m.sign(m.cfg.AccessSecret, m.claims(userID, username, audienceAccess, m.cfg.AccessTTL))
}

// IssueRefresh signs a refresh token whose jti is id and reports its expiry.
func (m *Manager) IssueRefresh(userID uint, username string, id uuid.UUID) (string, time.Time, error) {
	claims := m.claims(userID, username, audienceRefresh, m.cfg.RefreshTTL)
	claims.ID = id.String()
	raw, err := m.sign(m.cfg.RefreshSecret, claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return raw, claims.ExpiresAt.Time, nil
}

// IssuePair mints an access token and a refresh token with a fresh jti.
func (m *Manager) IssuePair(userID uint, username string) (*Pair, error) {
	access, err := m.IssueAccess(userID, username)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	refresh, exp, err := m.IssueRefresh(userID, username, id)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshID:        id,
		RefreshExpiresAt: exp,
	}, nil
}

func (m *Manager) ParseAccess(raw string) (*Claims, error) {
	return m.parse(raw, m.cfg.AccessSecret, audienceAccess)
}

// ParseRefresh verifies a refresh token and returns its claims and jti.
func (m *Manager) ParseRefresh(raw string) (*Claims, uuid.UUID, error) {
	claims, err := m.parse(raw, m.cfg.RefreshSecret, audienceRefresh)
	if err != nil {
		return nil, uuid.Nil, err
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, uuid.Nil, ErrMissingJTI
	}
	return claims, id, nil
}

func (m *Manager) claims(userID uint, username, audience string, ttl time.Duration) *Claims {
	now := m.now()
	return &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func (m *Manager) sign(secret []byte, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "tokens.sign")
	}
	return raw, nil
}

func (m *Manager) parse(raw string, secret []byte, audience string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}
