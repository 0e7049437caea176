package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/user"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id bson.ObjectID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByName(ctx context.Context, name string) (*user.User, error)
	GetByMobile(ctx context.Context, mobile string) (*user.User, error)
	GetByResetToken(ctx context.Context, token string) (*user.User, error)
	GetAdmin(ctx context.Context) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
	// SetBranch rewrites only the branch assignment fields of a user. Callers
	// holding a possibly cached copy use this instead of Update so fields the
	// cached copy does not carry are never written back.
	SetBranch(ctx context.Context, id bson.ObjectID, branchID bson.ObjectID, branchName string) error
	Delete(ctx context.Context, id bson.ObjectID) error
	ListAll(ctx context.Context) ([]*user.User, error)
	ListByBranch(ctx context.Context, branchID bson.ObjectID, exclude bson.ObjectID) ([]*user.User, error)
	ListActive(ctx context.Context) ([]*user.User, error)
	CountSummary(ctx context.Context, branchID bson.ObjectID) (*user.CountSummary, error)
	RelabelBranch(ctx context.Context, oldName, newName string) error
}

// UserService defines the interface for user business logic
type UserService interface {
	Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error)
	CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error)
	GetUser(ctx context.Context, id bson.ObjectID) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	UpdateUser(ctx context.Context, id bson.ObjectID, req *user.UpdateUserRequest) (*user.User, error)
	DeleteUser(ctx context.Context, id bson.ObjectID) error
	ListUsers(ctx context.Context, caller *user.User) ([]*user.User, error)
	ListActiveUsers(ctx context.Context) ([]*user.User, error)
	UserCounts(ctx context.Context, caller *user.User) (*user.CountSummary, error)
	ChangePassword(ctx context.Context, id bson.ObjectID, oldPassword, newPassword string) error

	// Password reset flow
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}
