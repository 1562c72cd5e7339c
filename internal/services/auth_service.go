package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yukikurage/taskmanager-api/internal/auth"
	"github.com/yukikurage/taskmanager-api/internal/models"
	"github.com/yukikurage/taskmanager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrDuplicateEmail      = errors.New("user with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrPasswordTooLong     = errors.New("password exceeds 72 bytes")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new user. Emails are compared exactly as stored.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if _, err := s.userRepo.FindByEmail(ctx, input.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can win the race between lookup and insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is the authenticated user with a fresh token pair.
type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// Login verifies credentials and issues an access and a refresh token.
// An unknown email and a wrong password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.VerifyDummy(input.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	payload := auth.TokenPayload{UserID: user.ID, Email: user.Email}

	accessToken, err := s.tokens.IssueAccess(payload)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefresh(payload)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh issues a new access token for a valid refresh token. The refresh
// token itself stays valid until it expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	payload, err := s.tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		if isTokenRejection(err) {
			slog.DebugContext(ctx, "refresh token rejected", "reason", err)
			return "", ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("failed to verify refresh token: %w", err)
	}

	return s.tokens.IssueAccess(*payload)
}

// LogoutInput holds the tokens a client discards on logout. Both are optional.
type LogoutInput struct {
	AccessToken  string
	RefreshToken string
}

// Logout always succeeds. When a denylist is configured the supplied tokens
// are revoked until they expire; failures are logged and otherwise ignored.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) {
	if !s.tokens.RevocationEnabled() {
		return
	}

	revoke := func(token string, tokenType auth.TokenType) {
		if token == "" {
			return
		}
		if err := s.tokens.Revoke(ctx, token, tokenType); err != nil {
			if isTokenRejection(err) {
				slog.DebugContext(ctx, "skipping revocation of unusable token", "type", tokenType, "reason", err)
				return
			}
			slog.WarnContext(ctx, "failed to revoke token", "type", tokenType, "error", err)
		}
	}

	revoke(input.AccessToken, auth.TokenTypeAccess)
	revoke(input.RefreshToken, auth.TokenTypeRefresh)
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func isTokenRejection(err error) bool {
	return errors.Is(err, auth.ErrInvalidSignature) ||
		errors.Is(err, auth.ErrTokenExpired) ||
		errors.Is(err, auth.ErrTokenRevoked)
}
