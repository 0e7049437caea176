package user

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserRole string

const (
	RoleAdmin         UserRole = "admin"
	RoleBranchManager UserRole = "branch_manager"
	RolePackingAgent  UserRole = "packing_agent"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleBranchManager, RolePackingAgent:
		return true
	default:
		return false
	}
}

type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
)

// User is an account in the system. BranchName is a denormalized copy of the
// assigned branch's name; it must be rewritten whenever the branch is renamed.
type User struct {
	ID                   bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string        `bson:"name" json:"name"`
	Email                string        `bson:"email" json:"email"`
	PasswordHash         string        `bson:"password" json:"-"`
	Role                 UserRole      `bson:"role" json:"role"`
	BranchID             bson.ObjectID `bson:"branch,omitempty" json:"branchId,omitempty"`
	BranchName           string        `bson:"branchName,omitempty" json:"branchName,omitempty"`
	Mobile               string        `bson:"mobile" json:"mobile"`
	Status               UserStatus    `bson:"status" json:"status"`
	ResetPasswordToken   string        `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires *time.Time    `bson:"resetPasswordExpires,omitempty" json:"-"`
	CreatedAt            time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// HasBranch reports whether the user is attached to a branch.
func (u *User) HasBranch() bool {
	return !u.BranchID.IsZero()
}

// HasOutstandingResetToken reports whether a previously issued password reset
// token is still within its validity window.
func (u *User) HasOutstandingResetToken(now time.Time) bool {
	return u.ResetPasswordToken != "" && u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(now)
}

// RegisterRequest is the self-service signup request.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Mobile   string `json:"mobile" validate:"required"`
}

// CreateUserRequest is the admin "add user" form.
type CreateUserRequest struct {
	Name     string     `json:"name" validate:"required"`
	Email    string     `json:"email" validate:"required,email"`
	Mobile   string     `json:"mobile" validate:"required"`
	BranchID string     `json:"branchId"`
	Status   UserStatus `json:"status"`
	UserType UserRole   `json:"userType" validate:"required"`
	Password string     `json:"password" validate:"required,min=8"`
}

// UpdateUserRequest is the admin "edit user" form. Password is optional.
type UpdateUserRequest struct {
	Name     string     `json:"name" validate:"required"`
	Email    string     `json:"email" validate:"required,email"`
	Mobile   string     `json:"mobile" validate:"required"`
	BranchID string     `json:"branchId"`
	Status   UserStatus `json:"status"`
	UserType UserRole   `json:"userType" validate:"required"`
	Password string     `json:"password"`
}

// ForgotPasswordRequest starts the reset flow for an email address.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// ChangePasswordRequest changes a password for an authenticated user.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// CountSummary is the dashboard aggregate for a role scope.
type CountSummary struct {
	ActiveUsers      int    `json:"activeUsers"`
	PercentageActive string `json:"percentageActive"`
}
