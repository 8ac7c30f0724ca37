package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "addressbook"

var (
	// ErrTokenExpired is returned when the token's expiry instant has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signatures, malformed tokens, unexpected
	// algorithms and tokens without a subject.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims represents the JWT claims carried by a session token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens. It holds no mutable
// state and is safe for concurrent use.
type TokenService struct {
	secret  []byte
	horizon time.Duration
	now     func() time.Time
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a token service signing with secret. Tokens expire
// horizon after issue.
func NewTokenService(secret string, horizon time.Duration, opts ...Option) *TokenService {
	s := &TokenService{
		secret:  []byte(secret),
		horizon: horizon,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Horizon returns the validity window applied to issued tokens.
func (s *TokenService) Horizon() time.Duration {
	return s.horizon
}

// Issue creates a signed token bound to identityRef.
func (s *TokenService) Issue(identityRef string) (string, time.Time, error) {
	if identityRef == "" {
		return "", time.Time{}, fmt.Errorf("issue token: empty identity reference")
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.horizon)
	claims := &Claims{
		UserID: identityRef,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityRef,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	// NumericDate truncates to whole seconds; report what the token carries.
	return signed, claims.ExpiresAt.Time, nil
}

// Verify parses token and returns the identity reference it asserts.
func (s *TokenService) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("%w: unexpected claims", ErrTokenInvalid)
	}
	if claims.Subject == "" || claims.UserID != claims.Subject {
		return "", fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return claims.Subject, nil
}
