package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coworking/internal/config"
	apperrors "coworking/internal/errors"
	"coworking/internal/model"
)

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		SecretKey:          "test-secret",
		Algorithm:          "HS256",
		AccessTokenMinutes: 30,
	}
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestTokenService(t *testing.T) (*TokenService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc, err := NewTokenService(testSecurityConfig(), WithClock(clock.Now))
	require.NoError(t, err)
	return svc, clock
}

func testUser() *model.User {
	return &model.User{
		ID:       42,
		Email:    "ana@example.com",
		Username: "ana",
		Role:     model.RoleUser,
		IsActive: true,
	}
}

func signRaw(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.SecretKey = "  "

	_, err := NewTokenService(cfg)
	assert.ErrorIs(t, err, config.ErrMissingSecret)
}

func TestNewTokenService_RejectsNonHMAC(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.Algorithm = "RS256"

	_, err := NewTokenService(cfg)
	assert.Error(t, err)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc, clock := newTestTokenService(t)

	token, err := svc.Issue(testUser(), 0)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", identity.Email)
	assert.Equal(t, uint(42), identity.UserID)
	assert.Equal(t, model.RoleUser, identity.Role)
	require.NotNil(t, identity.Username)
	assert.Equal(t, "ana", *identity.Username)
	assert.Equal(t, clock.now.Add(30*time.Minute), identity.ExpiresAt.UTC())
	assert.Equal(t, 30*time.Minute, svc.DefaultTTL())
}

func TestTokenService_CustomTTL(t *testing.T) {
	svc, clock := newTestTokenService(t)

	token, err := svc.Issue(testUser(), 5*time.Minute)
	require.NoError(t, err)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(5*time.Minute), identity.ExpiresAt.UTC())
}

func TestTokenService_Expired(t *testing.T) {
	svc, clock := newTestTokenService(t)

	token, err := svc.Issue(testUser(), time.Minute)
	require.NoError(t, err)

	clock.now = clock.now.Add(2 * time.Minute)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestTokenService_WrongSecret(t *testing.T) {
	svc, _ := newTestTokenService(t)

	other, err := NewTokenService(config.SecurityConfig{SecretKey: "another-secret", Algorithm: "HS256", AccessTokenMinutes: 30})
	require.NoError(t, err)
	token, err := other.Issue(testUser(), 0)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestTokenService_WrongAlgorithm(t *testing.T) {
	svc, clock := newTestTokenService(t)

	token := signRaw(t, &Claims{
		UserID: 42,
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ana@example.com",
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}, jwt.SigningMethodHS512, "test-secret")

	_, err := svc.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestTokenService_Garbage(t *testing.T) {
	svc, _ := newTestTokenService(t)

	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken, token)
	}
}

func TestTokenService_MissingClaims(t *testing.T) {
	svc, clock := newTestTokenService(t)
	exp := jwt.NewNumericDate(clock.now.Add(time.Hour))

	tests := []struct {
		name    string
		claims  jwt.MapClaims
		missing string
	}{
		{"no subject", jwt.MapClaims{"user_id": 1, "role": "user", "exp": exp}, "sub"},
		{"no user id", jwt.MapClaims{"sub": "ana@example.com", "role": "user", "exp": exp}, "user_id"},
		{"zero user id", jwt.MapClaims{"sub": "ana@example.com", "user_id": 0, "role": "user", "exp": exp}, "user_id"},
		{"empty role", jwt.MapClaims{"sub": "ana@example.com", "user_id": 1, "role": "", "exp": exp}, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := signRaw(t, tt.claims, jwt.SigningMethodHS256, "test-secret")

			_, err := svc.Verify(token)
			require.ErrorIs(t, err, apperrors.ErrInvalidToken)
			assert.Contains(t, err.Error(), "missing field "+tt.missing)
		})
	}
}

func TestTokenService_UnknownRole(t *testing.T) {
	svc, clock := newTestTokenService(t)
	token := signRaw(t, jwt.MapClaims{
		"sub":     "ana@example.com",
		"user_id": 1,
		"role":    "superuser",
		"exp":     jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}, jwt.SigningMethodHS256, "test-secret")

	_, err := svc.Verify(token)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	assert.Contains(t, err.Error(), `unknown role "superuser"`)
}

func TestTokenService_MissingExpiry(t *testing.T) {
	svc, _ := newTestTokenService(t)

	token := signRaw(t, jwt.MapClaims{"sub": "ana@example.com", "user_id": 1, "role": "user"}, jwt.SigningMethodHS256, "test-secret")

	_, err := svc.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestTokenService_OptionalUsername(t *testing.T) {
	svc, _ := newTestTokenService(t)
	user := testUser()
	user.Username = ""

	token, err := svc.Issue(user, 0)
	require.NoError(t, err)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Nil(t, identity.Username)
}

func TestTokenService_DecodeUnsafe(t *testing.T) {
	svc, clock := newTestTokenService(t)

	token, err := svc.Issue(testUser(), time.Minute)
	require.NoError(t, err)
	clock.now = clock.now.Add(time.Hour)

	claims := svc.DecodeUnsafe(token)
	require.NotNil(t, claims)
	assert.Equal(t, "ana@example.com", claims["sub"])
	assert.Equal(t, "user", claims["role"])

	assert.Nil(t, svc.DecodeUnsafe("not-a-token"))
	assert.Nil(t, svc.DecodeUnsafe(signRaw(t, jwt.MapClaims{"sub": "x"}, jwt.SigningMethodHS256, "other")))
}
