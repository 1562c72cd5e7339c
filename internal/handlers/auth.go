package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager-api/internal/dto"
	apierrors "github.com/yukikurage/taskmanager-api/internal/errors"
	"github.com/yukikurage/taskmanager-api/internal/middleware"
	"github.com/yukikurage/taskmanager-api/internal/services"
	"github.com/yukikurage/taskmanager-api/internal/validation"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register creates a new user.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, validation.Translate(err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", dto.ToPublicUser(*user))
}

// Login authenticates a user and issues a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, validation.Translate(err))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", dto.LoginResponse{
		User:         dto.ToUserSummary(*result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// Refresh exchanges a refresh token for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, validation.Translate(err))
		return
	}

	accessToken, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	respond(c, http.StatusOK, "Token refreshed successfully", dto.RefreshResponse{AccessToken: accessToken})
}

// Logout always succeeds. The bearer header and a refreshToken body are both
// optional and are only used when token revocation is enabled.
func (h *AuthHandler) Logout(c *gin.Context) {
	var input services.LogoutInput
	if token, ok := middleware.BearerToken(c.GetHeader("Authorization")); ok {
		input.AccessToken = token
	}
	if c.Request.ContentLength != 0 {
		var req logoutRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			input.RefreshToken = req.RefreshToken
		}
	}

	h.authService.Logout(c.Request.Context(), input)

	respond(c, http.StatusOK, "Logged out successfully", nil)
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	respond(c, http.StatusOK, "User retrieved successfully", dto.ToPublicUser(*user))
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDuplicateEmail):
		apierrors.BadRequest(c, "User with this email already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, "Invalid email or password")
	case errors.Is(err, services.ErrInvalidRefreshToken):
		apierrors.Unauthorized(c, "Invalid or expired refresh token")
	case errors.Is(err, services.ErrPasswordTooLong):
		apierrors.ValidationFailed(c, []dto.FieldError{{Field: "password", Message: "Password must be at most 72 bytes"}})
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	default:
		slog.ErrorContext(c.Request.Context(), "auth request failed", "path", c.FullPath(), "error", err)
		apierrors.InternalError(c)
	}
}
