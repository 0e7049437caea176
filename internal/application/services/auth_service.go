package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	config "github.com/meenabazaar/order-management/configs"
	"github.com/meenabazaar/order-management/internal/core/domain/auth"
	"github.com/meenabazaar/order-management/internal/core/domain/user"
	"github.com/meenabazaar/order-management/internal/core/ports"
	"github.com/meenabazaar/order-management/internal/utils"
)

type AuthService struct {
	userRepo  ports.UserRepository
	jwtConfig *config.JWTConfig
	logger    *logrus.Logger
}

func NewAuthService(userRepo ports.UserRepository, jwtConfig *config.JWTConfig, logger *logrus.Logger) ports.AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtConfig: jwtConfig,
		logger:    logger,
	}
}

// Login verifies credentials against the store. The email lookup bypasses the
// cache so a just-changed password or deactivated account takes effect
// immediately.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	foundUser, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if !utils.CheckPassword(foundUser.PasswordHash, req.Password) {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"email": req.Email}).Warn("auth: failed login attempt")
		}
		return nil, fmt.Errorf("invalid credentials")
	}

	if foundUser.Status != user.StatusActive {
		return nil, fmt.Errorf("user account is disabled")
	}

	token, err := s.generateToken(foundUser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &auth.LoginResponse{
		Token: token,
		User: &auth.UserSummary{
			ID:    foundUser.ID.Hex(),
			Name:  foundUser.Name,
			Email: foundUser.Email,
			Role:  foundUser.Role,
		},
	}, nil
}

func (s *AuthService) generateToken(u *user.User) (string, error) {
	now := time.Now()
	claims := &auth.Claims{
		UserID: u.ID.Hex(),
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}

// ValidateToken parses and verifies an access token and returns its claims.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	claims := &auth.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
