package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/meenabazaar/order-management/internal/core/domain/user"
)

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the login payload returned to the client.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *UserSummary `json:"user"`
}

// UserSummary is the slim user view embedded in the login response.
type UserSummary struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  user.UserRole `json:"role"`
}

// Claims represents JWT claims carried by the access token.
type Claims struct {
	UserID string        `json:"user_id"`
	Email  string        `json:"email"`
	Role   user.UserRole `json:"role"`

	jwt.RegisteredClaims
}
