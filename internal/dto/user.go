package dto

import (
	"time"

	"github.com/yukikurage/taskmanager-api/internal/models"
)

// PublicUser is the user projection returned by register and /auth/me.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSummary is the user embedded in a login response.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResponse carries the token pair issued on login.
type LoginResponse struct {
	User         UserSummary `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// RefreshResponse carries the access token issued on refresh.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// ToPublicUser converts a User model to PublicUser
func ToPublicUser(user models.User) PublicUser {
	return PublicUser{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserSummary converts a User model to UserSummary
func ToUserSummary(user models.User) UserSummary {
	return UserSummary{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}
