package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"coworking/internal/config"
	apperrors "coworking/internal/errors"
	"coworking/internal/model"
)

// DefaultAccessTokenTTL is used when no lifetime is configured.
const DefaultAccessTokenTTL = 30 * time.Minute

// Claims is the signed payload of a session token. The subject carries the e-mail.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the normalized claim set of a verified token.
type Identity struct {
	Email     string     `json:"email"`
	UserID    uint       `json:"user_id"`
	Role      model.Role `json:"role"`
	Username  *string    `json:"username"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// TokenService issues and verifies HMAC-signed session tokens. It holds no
// per-token state.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces the wall clock used for issuing and checking expiry.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a token service from the security configuration.
// It fails when the secret is empty or the algorithm is not an HMAC method.
func NewTokenService(cfg config.SecurityConfig, opts ...TokenOption) (*TokenService, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, config.ErrMissingSecret
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(strings.ToUpper(alg)).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}

	ttl := cfg.AccessTokenTTL()
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	s := &TokenService{
		secret: []byte(cfg.SecretKey),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultTTL returns the lifetime applied when Issue is called without one.
func (s *TokenService) DefaultTTL() time.Duration {
	return s.ttl
}

// Issue signs a token for user that expires ttl from now. A non-positive ttl
// selects the configured default.
func (s *TokenService) Issue(user *model.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()

	claims := &Claims{
		UserID:   user.ID,
		Role:     string(user.Role),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry, then requires the subject,
// user id and role claims to be present and non-empty. The role must be known.
func (s *TokenService) Verify(tokenString string) (*Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	switch {
	case claims.Subject == "":
		return nil, fmt.Errorf("%w: missing field sub", apperrors.ErrInvalidToken)
	case claims.UserID == 0:
		return nil, fmt.Errorf("%w: missing field user_id", apperrors.ErrInvalidToken)
	case claims.Role == "":
		return nil, fmt.Errorf("%w: missing field role", apperrors.ErrInvalidToken)
	case !model.Role(claims.Role).Valid():
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrInvalidToken, claims.Role)
	}

	identity := &Identity{
		Email:     claims.Subject,
		UserID:    claims.UserID,
		Role:      model.Role(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.Username != "" {
		username := claims.Username
		identity.Username = &username
	}
	return identity, nil
}

// DecodeUnsafe returns whatever claims a correctly signed token carries,
// ignoring expiry and required fields, or nil on any failure. It is for
// diagnostics only and must never decide access.
func (s *TokenService) DecodeUnsafe(tokenString string) map[string]interface{} {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, s.keyFunc); err != nil {
		return nil
	}
	return claims
}

func (s *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return s.secret, nil
}
