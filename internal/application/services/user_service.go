package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"

	config "github.com/meenabazaar/order-management/configs"
	"github.com/meenabazaar/order-management/internal/core/domain/branch"
	"github.com/meenabazaar/order-management/internal/core/domain/user"
	"github.com/meenabazaar/order-management/internal/core/ports"
	"github.com/meenabazaar/order-management/internal/utils"
)

func isNotFound(err error) bool {
	return errors.Is(err, ports.ErrNotFound)
}

type UserService struct {
	repo         ports.UserRepository
	branchRepo   ports.BranchRepository
	emailService ports.EmailService
	guard        ports.ResetGuard
	guardConfig  *config.ResetGuardConfig
	logger       *logrus.Logger
}

func NewUserService(repo ports.UserRepository, branchRepo ports.BranchRepository, emailService ports.EmailService, guard ports.ResetGuard, guardConfig *config.ResetGuardConfig, logger *logrus.Logger) ports.UserService {
	return &UserService{
		repo:         repo,
		branchRepo:   branchRepo,
		emailService: emailService,
		guard:        guard,
		guardConfig:  guardConfig,
		logger:       logger,
	}
}

// getFresh loads a user from the store, never the cache. The cached copy
// strips the password hash and reset token on serialization, so flows that
// rewrite the full document must not start from it.
func (s *UserService) getFresh(ctx context.Context, id bson.ObjectID) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByEmail(ctx, u.Email)
}

// checkDuplicates refuses an email, name or mobile already held by a
// different user. exclude is zero on create.
func (s *UserService) checkDuplicates(ctx context.Context, email, name, mobile string, exclude bson.ObjectID) error {
	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing.ID != exclude {
		return fmt.Errorf("email %s: %w", email, ports.ErrDuplicate)
	}
	if existing, err := s.repo.GetByName(ctx, name); err == nil && existing.ID != exclude {
		return fmt.Errorf("name %s: %w", name, ports.ErrDuplicate)
	}
	if existing, err := s.repo.GetByMobile(ctx, mobile); err == nil && existing.ID != exclude {
		return fmt.Errorf("mobile %s: %w", mobile, ports.ErrDuplicate)
	}
	return nil
}

// Register creates the admin account. There is exactly one admin; once it
// exists, self-service signup is closed.
func (s *UserService) Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
	if _, err := s.repo.GetAdmin(ctx); err == nil {
		return nil, fmt.Errorf("admin account: %w", ports.ErrDuplicate)
	}
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}
	if err := s.checkDuplicates(ctx, req.Email, req.Name, req.Mobile, bson.ObjectID{}); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := &user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Mobile:       req.Mobile,
		Role:         user.RoleAdmin,
		Status:       user.StatusActive,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"email": newUser.Email}).Info("admin account registered")
	}
	return newUser, nil
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	if !req.UserType.IsValid() {
		return nil, fmt.Errorf("invalid user role %q", req.UserType)
	}
	if req.UserType == user.RoleAdmin {
		if _, err := s.repo.GetAdmin(ctx); err == nil {
			return nil, fmt.Errorf("admin account: %w", ports.ErrDuplicate)
		}
	}
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}
	if err := s.checkDuplicates(ctx, req.Email, req.Name, req.Mobile, bson.ObjectID{}); err != nil {
		return nil, err
	}

	var assigned *branch.Branch
	if req.BranchID != "" {
		branchID, err := bson.ObjectIDFromHex(req.BranchID)
		if err != nil {
			return nil, fmt.Errorf("invalid branch id %q", req.BranchID)
		}
		assigned, err = s.branchRepo.GetByID(ctx, branchID)
		if err != nil {
			return nil, err
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	status := req.Status
	if status == "" {
		status = user.StatusActive
	}

	newUser := &user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Mobile:       req.Mobile,
		Role:         req.UserType,
		Status:       status,
	}
	if assigned != nil {
		newUser.BranchID = assigned.ID
		newUser.BranchName = assigned.Name
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		return nil, err
	}
	if assigned != nil {
		s.attachToBranch(ctx, assigned, newUser)
	}
	return newUser, nil
}

// attachToBranch records the user on the branch side, as its manager or as
// one of its packing agents.
func (s *UserService) attachToBranch(ctx context.Context, b *branch.Branch, u *user.User) {
	switch u.Role {
	case user.RoleBranchManager:
		if b.ManagerID == u.ID {
			return
		}
		b.ManagerID = u.ID
	case user.RolePackingAgent:
		if b.HasPackingAgent(u.ID) {
			return
		}
		b.PackingAgentIDs = append(b.PackingAgentIDs, u.ID)
	default:
		return
	}
	if err := s.branchRepo.Update(ctx, b); err != nil && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"branch_id": b.ID.Hex(), "user_id": u.ID.Hex()}).WithError(err).Warn("failed to record user on branch")
	}
}

// detachFromBranch removes the user from the branch side.
func (s *UserService) detachFromBranch(ctx context.Context, branchID bson.ObjectID, u *user.User) {
	if branchID.IsZero() {
		return
	}
	b, err := s.branchRepo.GetByID(ctx, branchID)
	if err != nil {
		return
	}
	changed := false
	if b.ManagerID == u.ID {
		b.ManagerID = bson.ObjectID{}
		changed = true
	}
	for i, agentID := range b.PackingAgentIDs {
		if agentID == u.ID {
			b.PackingAgentIDs = append(b.PackingAgentIDs[:i], b.PackingAgentIDs[i+1:]...)
			changed = true
			break
		}
	}
	if !changed {
		return
	}
	if err := s.branchRepo.Update(ctx, b); err != nil && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"branch_id": b.ID.Hex(), "user_id": u.ID.Hex()}).WithError(err).Warn("failed to remove user from branch")
	}
}

func (s *UserService) GetUser(ctx context.Context, id bson.ObjectID) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) UpdateUser(ctx context.Context, id bson.ObjectID, req *user.UpdateUserRequest) (*user.User, error) {
	existing, err := s.getFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.UserType.IsValid() {
		return nil, fmt.Errorf("invalid user role %q", req.UserType)
	}
	if req.UserType == user.RoleAdmin && existing.Role != user.RoleAdmin {
		return nil, fmt.Errorf("admin account: %w", ports.ErrDuplicate)
	}
	if err := s.checkDuplicates(ctx, req.Email, req.Name, req.Mobile, existing.ID); err != nil {
		return nil, err
	}

	var newBranch *branch.Branch
	var newBranchID bson.ObjectID
	if req.BranchID != "" {
		newBranchID, err = bson.ObjectIDFromHex(req.BranchID)
		if err != nil {
			return nil, fmt.Errorf("invalid branch id %q", req.BranchID)
		}
		newBranch, err = s.branchRepo.GetByID(ctx, newBranchID)
		if err != nil {
			return nil, err
		}
	}

	oldBranchID := existing.BranchID
	roleOrBranchChanged := existing.Role != req.UserType || oldBranchID != newBranchID

	existing.Name = req.Name
	existing.Email = req.Email
	existing.Mobile = req.Mobile
	existing.Role = req.UserType
	if req.Status != "" {
		existing.Status = req.Status
	}
	if newBranch != nil {
		existing.BranchID = newBranch.ID
		existing.BranchName = newBranch.Name
	} else {
		existing.BranchID = bson.ObjectID{}
		existing.BranchName = ""
	}
	if req.Password != "" {
		if err := utils.ValidatePasswordStrength(req.Password); err != nil {
			return nil, err
		}
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		existing.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	if roleOrBranchChanged {
		s.detachFromBranch(ctx, oldBranchID, existing)
		if newBranch != nil {
			s.attachToBranch(ctx, newBranch, existing)
		}
	}
	return existing, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id bson.ObjectID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Role == user.RoleAdmin {
		return fmt.Errorf("the admin account cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.detachFromBranch(ctx, existing.BranchID, existing)
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, caller *user.User) ([]*user.User, error) {
	if caller == nil || caller.Role == user.RoleAdmin {
		return s.repo.ListAll(ctx)
	}
	if caller.Role == user.RoleBranchManager && caller.HasBranch() {
		return s.repo.ListByBranch(ctx, caller.BranchID, caller.ID)
	}
	return []*user.User{}, nil
}

func (s *UserService) ListActiveUsers(ctx context.Context) ([]*user.User, error) {
	return s.repo.ListActive(ctx)
}

func (s *UserService) UserCounts(ctx context.Context, caller *user.User) (*user.CountSummary, error) {
	if caller == nil || caller.Role == user.RoleAdmin {
		return s.repo.CountSummary(ctx, bson.ObjectID{})
	}
	if !caller.HasBranch() {
		return &user.CountSummary{PercentageActive: "0%"}, nil
	}
	return s.repo.CountSummary(ctx, caller.BranchID)
}

func (s *UserService) ChangePassword(ctx context.Context, id bson.ObjectID, oldPassword, newPassword string) error {
	u, err := s.getFresh(ctx, id)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(u.PasswordHash, oldPassword) {
		return fmt.Errorf("current password is incorrect")
	}
	if err := utils.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = hash
	return s.repo.Update(ctx, u)
}

// ForgotPassword starts the reset flow. The attempt counter runs per email
// before anything else, so failed lookups count too. A second token is
// refused while one is outstanding.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	allowed, err := s.guard.Allow(ctx, email, s.guardConfig.MaxAttempts, s.guardConfig.Window)
	if err == nil && !allowed {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"email": email}).Warn("password reset request rate limited")
		}
		return ports.ErrTooManyResetRequests
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.HasOutstandingResetToken(time.Now()) {
		return ports.ErrResetTokenOutstanding
	}

	token := generateResetToken()
	expires := time.Now().Add(s.guardConfig.TokenTTL)
	u.ResetPasswordToken = token
	u.ResetPasswordExpires = &expires
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	if err := s.emailService.SendPasswordResetEmail(ctx, u.Email, token, u.Name); err != nil {
		// Roll the token back so the user is not locked out of retrying
		// against a dead mail provider.
		u.ResetPasswordToken = ""
		u.ResetPasswordExpires = nil
		if rbErr := s.repo.Update(ctx, u); rbErr != nil && s.logger != nil {
			s.logger.WithFields(logrus.Fields{"email": email}).WithError(rbErr).Error("failed to roll back reset token")
		}
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := utils.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	u, err := s.repo.GetByResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("reset token is invalid or expired")
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = hash
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"email": u.Email}).Info("password reset completed")
	}
	return nil
}

// generateResetToken returns an unguessable single-use token. Tokens are
// stored as-is and looked up verbatim, so opacity is all that matters.
func generateResetToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
