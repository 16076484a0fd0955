package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every way a bearer token can fail verification.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager issues and verifies signed, time-limited bearer tokens.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration

	now func() time.Time
}

var defaultManager *JWTManager

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	m := &JWTManager{
		Secret: []byte(secret),
		TTL:    ttl,
		now:    time.Now,
	}
	defaultManager = m
	return m
}

// DefaultJWT returns the last constructed JWTManager (used for auto-wiring routes)
func DefaultJWT() *JWTManager { return defaultManager }

// WithClock returns a copy of m that reads time from now.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	cp := *m
	cp.now = now
	return &cp
}

type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// IssuedAtUnix returns the iat claim in whole seconds.
func (c *Claims) IssuedAtUnix() int64 {
	if c.IssuedAt == nil {
		return 0
	}
	return c.IssuedAt.Unix()
}

// Issue signs a token for userID that expires after the configured TTL.
func (m *JWTManager) Issue(userID string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.TTL)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Verify checks signature and expiry and returns the claims. Both checks run
// on every call and any failure yields ErrInvalidToken.
func (m *JWTManager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, jwt.WithoutClaimsValidation(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	expired := claims.ExpiresAt == nil || !m.now().Before(claims.ExpiresAt.Time)
	malformed := claims.UserID == "" || claims.IssuedAt == nil
	if err != nil || expired || malformed {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// InvalidatedBy reports whether a token issued at issuedAt (unix seconds)
// predates the last password change. The change time is truncated to seconds.
func InvalidatedBy(issuedAt int64, passwordChangedAt *time.Time) bool {
	if passwordChangedAt == nil {
		return false
	}
	return issuedAt < passwordChangedAt.UnixMilli()/1000
}
