package helpers

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/user"
)

type ctxKey string

const (
	keyUserID      ctxKey = "user_id"
	keyUserRole    ctxKey = "user_role"
	keyUserEmail   ctxKey = "user_email"
	keyCurrentUser ctxKey = "current_user"
)

func SetUserID(c echo.Context, id bson.ObjectID) { c.Set(string(keyUserID), id) }
func GetUserIDRaw(c echo.Context) (bson.ObjectID, bool) {
	v := c.Get(string(keyUserID))
	id, ok := v.(bson.ObjectID)
	return id, ok
}

func SetUserRole(c echo.Context, r user.UserRole) { c.Set(string(keyUserRole), r) }
func GetUserRoleRaw(c echo.Context) (user.UserRole, bool) {
	v := c.Get(string(keyUserRole))
	r, ok := v.(user.UserRole)
	return r, ok
}

func SetUserEmail(c echo.Context, email string) { c.Set(string(keyUserEmail), email) }
func GetUserEmailRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyUserEmail))
	s, ok := v.(string)
	return s, ok
}

func SetCurrentUser(c echo.Context, u *user.User) { c.Set(string(keyCurrentUser), u) }
func GetCurrentUserRaw(c echo.Context) (*user.User, bool) {
	v := c.Get(string(keyCurrentUser))
	u, ok := v.(*user.User)
	return u, ok
}
