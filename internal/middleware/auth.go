package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager-api/internal/auth"
	"github.com/yukikurage/taskmanager-api/internal/constants"
	apierrors "github.com/yukikurage/taskmanager-api/internal/errors"
)

// Messages returned for rejected credentials
const (
	MsgMissingAuthHeader   = "No authorization header provided"
	MsgMalformedAuthHeader = "Invalid authorization header format. Use: Bearer <token>"
	MsgInvalidToken        = "Invalid token"
	MsgExpiredToken        = "Token has expired"
)

// AccessVerifier verifies access tokens.
type AccessVerifier interface {
	VerifyAccess(ctx context.Context, token string) (*auth.TokenPayload, error)
}

// RequireAuth checks the bearer access token and stores its payload in the
// gin context and the request context
func RequireAuth(verifier AccessVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			slog.DebugContext(c.Request.Context(), "auth rejected", "reason", "missing header", "path", c.Request.URL.Path)
			apierrors.Unauthorized(c, MsgMissingAuthHeader)
			return
		}

		token, ok := BearerToken(header)
		if !ok {
			slog.DebugContext(c.Request.Context(), "auth rejected", "reason", "malformed header", "path", c.Request.URL.Path)
			apierrors.Unauthorized(c, MsgMalformedAuthHeader)
			return
		}

		payload, err := verifier.VerifyAccess(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				slog.DebugContext(c.Request.Context(), "auth rejected", "reason", "expired", "path", c.Request.URL.Path)
				apierrors.Unauthorized(c, MsgExpiredToken)
			case errors.Is(err, auth.ErrInvalidSignature), errors.Is(err, auth.ErrTokenRevoked):
				slog.InfoContext(c.Request.Context(), "auth rejected", "reason", err, "path", c.Request.URL.Path)
				apierrors.Unauthorized(c, MsgInvalidToken)
			default:
				slog.ErrorContext(c.Request.Context(), "token verification failed", "error", err)
				apierrors.InternalError(c)
			}
			return
		}

		// Store identity for handlers and for anything reading the request context
		c.Set(constants.ContextKeyUserID, payload.UserID)
		c.Request = c.Request.WithContext(auth.WithPayload(c.Request.Context(), *payload))
		c.Next()
	}
}

// BearerToken extracts the token from "Bearer <token>". The scheme is case
// sensitive and exactly one space must separate it from the token.
func BearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != constants.BearerScheme || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(constants.ContextKeyUserID)
	return userID, userID != ""
}
