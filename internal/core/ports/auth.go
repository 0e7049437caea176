package ports

import (
	"context"

	"github.com/meenabazaar/order-management/internal/core/domain/auth"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error)
}
