package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is what a token proves about its bearer. IsAdmin is the flag as
// it was at issuance time.
type Identity struct {
	AccountID string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"isAdmin"`
}

type Claims struct {
	AccountID string `json:"sub"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"isAdmin"`
	JTI       string `json:"jti"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{
		AccountID: c.AccountID,
		Email:     c.Email,
		Name:      c.Name,
		IsAdmin:   c.IsAdmin,
	}
}

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of m that reads time from now. Tests use it to
// issue tokens in the past.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) GenerateAccessToken(id Identity) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		AccountID: id.AccountID,
		Email:     id.Email,
		Name:      id.Name,
		IsAdmin:   id.IsAdmin,
		JTI:       uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   id.AccountID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	raw, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return raw, expiresAt, nil
}

func (m *Manager) VerifyAccessToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AccountID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
