package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "test-issuer",
	}
}

func newTestTokenService(t *testing.T, opts ...TokenOption) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testTokenConfig(), opts...)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RequiresConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TokenConfig)
		wantErr error
	}{
		{"missing access secret", func(c *TokenConfig) { c.AccessSecret = "" }, ErrMissingSecret},
		{"missing refresh secret", func(c *TokenConfig) { c.RefreshSecret = "" }, ErrMissingSecret},
		{"same secret", func(c *TokenConfig) { c.RefreshSecret = c.AccessSecret }, ErrSecretsNotDistinct},
		{"zero access ttl", func(c *TokenConfig) { c.AccessTTL = 0 }, ErrInvalidLifetime},
		{"negative refresh ttl", func(c *TokenConfig) { c.RefreshTTL = -time.Second }, ErrInvalidLifetime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testTokenConfig()
			tt.mutate(&cfg)
			svc, err := NewTokenService(cfg)
			assert.Nil(t, svc)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	payload := TokenPayload{UserID: "user-123", Email: "a@x.com"}

	token, err := svc.IssueAccess(payload)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.VerifyAccess(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, payload, *got)
}

func TestTokenService_RefreshRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	payload := TokenPayload{UserID: "user-456", Email: "b@x.com"}

	token, err := svc.IssueRefresh(payload)
	require.NoError(t, err)

	got, err := svc.VerifyRefresh(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, payload, *got)
}

func TestTokenService_ClassesAreNotInterchangeable(t *testing.T) {
	svc := newTestTokenService(t)
	payload := TokenPayload{UserID: "user-123", Email: "a@x.com"}

	access, err := svc.IssueAccess(payload)
	require.NoError(t, err)
	refresh, err := svc.IssueRefresh(payload)
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(context.Background(), access)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = svc.VerifyAccess(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenService_ForgedWithRefreshSecret(t *testing.T) {
	svc := newTestTokenService(t)
	cfg := testTokenConfig()

	// An access-typed token signed with the refresh secret must not verify.
	claims := Claims{
		UserID: "user-123",
		Email:  "a@x.com",
		Type:   TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.RefreshSecret))
	require.NoError(t, err)

	_, err = svc.VerifyAccess(context.Background(), forged)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenService_WrongSecret(t *testing.T) {
	issuer := newTestTokenService(t)

	other := testTokenConfig()
	other.AccessSecret = "another-access-secret"
	verifier, err := NewTokenService(other)
	require.NoError(t, err)

	token, err := issuer.IssueAccess(TokenPayload{UserID: "user-123", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = verifier.VerifyAccess(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenService_Expired(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	svc := newTestTokenService(t, WithClock(clock))

	access, err := svc.IssueAccess(TokenPayload{UserID: "user-123", Email: "a@x.com"})
	require.NoError(t, err)
	refresh, err := svc.IssueRefresh(TokenPayload{UserID: "user-123", Email: "a@x.com"})
	require.NoError(t, err)

	now = now.Add(16 * time.Minute)

	_, err = svc.VerifyAccess(context.Background(), access)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// Refresh tokens outlive access tokens.
	_, err = svc.VerifyRefresh(context.Background(), refresh)
	assert.NoError(t, err)

	now = now.Add(7 * 24 * time.Hour)
	_, err = svc.VerifyRefresh(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := newTestTokenService(t)

	for _, token := range []string{"", "not.a.token", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid", strings.Repeat("a", 40)} {
		_, err := svc.VerifyAccess(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidSignature, "token %q", token)
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	svc := newTestTokenService(t)
	cfg := testTokenConfig()

	claims := Claims{
		UserID: "user-123",
		Type:   TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(cfg.AccessSecret))
	require.NoError(t, err)

	_, err = svc.VerifyAccess(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenService_Revoke(t *testing.T) {
	ctx := context.Background()
	denylist := NewMemoryDenylist()
	svc := newTestTokenService(t, WithDenylist(denylist))
	require.True(t, svc.RevocationEnabled())

	payload := TokenPayload{UserID: "user-123", Email: "a@x.com"}
	access, err := svc.IssueAccess(payload)
	require.NoError(t, err)
	refresh, err := svc.IssueRefresh(payload)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, access, TokenTypeAccess))

	_, err = svc.VerifyAccess(ctx, access)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Revoking the access token leaves the refresh token alone.
	_, err = svc.VerifyRefresh(ctx, refresh)
	assert.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, refresh, TokenTypeRefresh))
	_, err = svc.VerifyRefresh(ctx, refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestTokenService_RevokeWithoutDenylist(t *testing.T) {
	svc := newTestTokenService(t)
	assert.False(t, svc.RevocationEnabled())

	access, err := svc.IssueAccess(TokenPayload{UserID: "user-123", Email: "a@x.com"})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), access, TokenTypeAccess))

	_, err = svc.VerifyAccess(context.Background(), access)
	assert.NoError(t, err)
}
