package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/user"
	"github.com/meenabazaar/order-management/internal/core/ports"
	"github.com/meenabazaar/order-management/internal/infrastructure/httpserver/helpers"
)

type JWTMiddleware struct {
	authService ports.AuthService
	userService ports.UserService
	logger      *logrus.Logger
}

func NewJWTMiddleware(authService ports.AuthService, userService ports.UserService, logger *logrus.Logger) *JWTMiddleware {
	return &JWTMiddleware{authService: authService, userService: userService, logger: logger}
}

// RequireJWT creates middleware that validates JWT tokens and sets user context.
// The acting user is reloaded per request so role and branch assignment
// changes take effect without waiting for token expiry.
func (m *JWTMiddleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := helpers.GetJWTTokenFromContext(c)
			if err != nil {
				return err
			}

			claims, err := m.authService.ValidateToken(c.Request().Context(), tokenString)
			if err != nil {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path, "error": err.Error()}).Warn("JWT validation failed")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			userID, err := bson.ObjectIDFromHex(claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			userObj, err := m.userService.GetUser(c.Request().Context(), userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "user no longer exists")
			}
			if userObj.Status != user.StatusActive {
				return echo.NewHTTPError(http.StatusForbidden, "user account is disabled")
			}

			helpers.SetUserID(c, userObj.ID)
			helpers.SetUserRole(c, userObj.Role)
			helpers.SetUserEmail(c, userObj.Email)
			helpers.SetCurrentUser(c, userObj)

			return next(c)
		}
	}
}

// RequireRoles creates middleware that restricts a route to the given roles.
func (m *JWTMiddleware) RequireRoles(roles ...user.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, err := helpers.GetUserRoleFromContext(c)
			if err != nil {
				return err
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}
