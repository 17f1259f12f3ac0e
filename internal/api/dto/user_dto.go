package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// UserRegisterRequest payload for new directory users.
type UserRegisterRequest struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Department   string `json:"department"`
	Role         string `json:"role"`
	MobileNumber string `json:"mobile_number"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	PushToken *string `json:"push_token"`
}

// RefreshRequest payload.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	User   ProfileResponse `json:"user"`
	Tokens TokenResponse   `json:"tokens"`
}

// NewAuthResponse maps a login result.
func NewAuthResponse(res *service.LoginResult) AuthResponse {
	return AuthResponse{
		User: NewProfile(res.User.Profile()),
		Tokens: TokenResponse{
			AccessToken:      res.Tokens.AccessToken,
			AccessExpiresAt:  res.Tokens.AccessExpiresAt,
			RefreshToken:     res.Tokens.RefreshToken,
			RefreshExpiresAt: res.Tokens.RefreshExpiresAt,
		},
	}
}

// NewUserProfile maps a freshly registered user.
func NewUserProfile(u *domain.User) ProfileResponse {
	return NewProfile(u.Profile())
}
