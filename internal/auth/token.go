package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidSignature is returned when a token is malformed, signed with
	// another key, or belongs to the other token class.
	ErrInvalidSignature = errors.New("invalid token")
	// ErrTokenExpired is returned when a correctly signed token is past its expiry.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenRevoked is returned when a token was denylisted before it expired.
	ErrTokenRevoked = errors.New("token has been revoked")

	ErrMissingSecret      = errors.New("token secrets must be configured")
	ErrSecretsNotDistinct = errors.New("access and refresh secrets must differ")
	ErrInvalidLifetime    = errors.New("token lifetimes must be positive")
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenPayload is the identity claim carried by both token classes.
type TokenPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Claims is the JWT body.
type Claims struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Payload returns the identity part of the claims.
func (c *Claims) Payload() TokenPayload {
	return TokenPayload{UserID: c.UserID, Email: c.Email}
}

// TokenConfig holds the token secrets and lifetimes. It is built once at startup.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenService issues and verifies access and refresh tokens.
type TokenService struct {
	cfg      TokenConfig
	denylist Denylist
	now      func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithDenylist enables revocation checks against d.
func WithDenylist(d Denylist) TokenOption {
	return func(s *TokenService) {
		s.denylist = d
	}
}

// WithClock overrides the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService validates cfg and returns a TokenService.
func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, ErrSecretsNotDistinct
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, ErrInvalidLifetime
	}

	s := &TokenService{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RevocationEnabled reports whether a denylist is configured.
func (s *TokenService) RevocationEnabled() bool {
	return s.denylist != nil
}

// IssueAccess signs a short-lived access token for payload.
func (s *TokenService) IssueAccess(payload TokenPayload) (string, error) {
	return s.issue(payload, TokenTypeAccess, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

// IssueRefresh signs a long-lived refresh token for payload.
func (s *TokenService) IssueRefresh(payload TokenPayload) (string, error) {
	return s.issue(payload, TokenTypeRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

// VerifyAccess validates an access token and returns its payload.
func (s *TokenService) VerifyAccess(ctx context.Context, token string) (*TokenPayload, error) {
	claims, err := s.verify(ctx, token, TokenTypeAccess, s.cfg.AccessSecret)
	if err != nil {
		return nil, err
	}
	payload := claims.Payload()
	return &payload, nil
}

// VerifyRefresh validates a refresh token and returns its payload.
func (s *TokenService) VerifyRefresh(ctx context.Context, token string) (*TokenPayload, error) {
	claims, err := s.verify(ctx, token, TokenTypeRefresh, s.cfg.RefreshSecret)
	if err != nil {
		return nil, err
	}
	payload := claims.Payload()
	return &payload, nil
}

// Revoke denylists a valid token of the given type until it expires.
// Without a denylist it does nothing.
func (s *TokenService) Revoke(ctx context.Context, token string, tokenType TokenType) error {
	if s.denylist == nil {
		return nil
	}

	secret := s.cfg.AccessSecret
	if tokenType == TokenTypeRefresh {
		secret = s.cfg.RefreshSecret
	}

	claims, err := s.parse(token, tokenType, secret)
	if err != nil {
		return err
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return ErrInvalidSignature
	}

	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *TokenService) issue(payload TokenPayload, tokenType TokenType, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: payload.UserID,
		Email:  payload.Email,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.cfg.Issuer,
			Subject:   payload.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *TokenService) verify(ctx context.Context, token string, tokenType TokenType, secret string) (*Claims, error) {
	claims, err := s.parse(token, tokenType, secret)
	if err != nil {
		return nil, err
	}

	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}

func (s *TokenService) parse(token string, tokenType TokenType, secret string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidSignature
	}

	if !parsed.Valid || claims.Type != tokenType || claims.UserID == "" {
		return nil, ErrInvalidSignature
	}

	return claims, nil
}
