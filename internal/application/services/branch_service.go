package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/branch"
	"github.com/meenabazaar/order-management/internal/core/domain/order"
	"github.com/meenabazaar/order-management/internal/core/domain/user"
	"github.com/meenabazaar/order-management/internal/core/ports"
)

type BranchService struct {
	repo        ports.BranchRepository
	orderRepo   ports.OrderRepository
	userRepo    ports.UserRepository
	invalidator ports.CacheInvalidator
	logger      *logrus.Logger
}

func NewBranchService(repo ports.BranchRepository, orderRepo ports.OrderRepository, userRepo ports.UserRepository, invalidator ports.CacheInvalidator, logger *logrus.Logger) ports.BranchService {
	return &BranchService{
		repo:        repo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (s *BranchService) CreateBranch(ctx context.Context, req *branch.CreateBranchRequest) (*branch.Branch, error) {
	if existing, err := s.repo.GetByNameOrCode(ctx, req.Name, req.Code); err == nil && existing != nil {
		return nil, fmt.Errorf("branch %s/%s: %w", req.Name, req.Code, ports.ErrDuplicate)
	}

	b := &branch.Branch{
		Name:    req.Name,
		Code:    req.Code,
		Address: req.Address,
		Phone:   req.Phone,
		Pincode: req.Pincode,
		State:   req.State,
		City:    req.City,
		Status:  req.Status,
	}
	if err := s.assignMembers(ctx, b, req.Manager, req.PackingAgents); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.syncMemberBranch(ctx, b)
	return b, nil
}

// assignMembers resolves manager and packing-agent ids from the request form.
func (s *BranchService) assignMembers(ctx context.Context, b *branch.Branch, manager string, agents []string) error {
	if manager != "" {
		managerID, err := bson.ObjectIDFromHex(manager)
		if err != nil {
			return fmt.Errorf("invalid manager id %q", manager)
		}
		b.ManagerID = managerID
	} else {
		b.ManagerID = bson.ObjectID{}
	}

	b.PackingAgentIDs = b.PackingAgentIDs[:0]
	for _, agent := range agents {
		agentID, err := bson.ObjectIDFromHex(agent)
		if err != nil {
			return fmt.Errorf("invalid packing agent id %q", agent)
		}
		b.PackingAgentIDs = append(b.PackingAgentIDs, agentID)
	}
	return nil
}

// syncMemberBranch stamps the branch assignment onto the member users. The
// by-id read is only a no-op check and may be served from the cache; the write
// is field-scoped, so the cached copy (which carries no credentials) never
// flows back into the store.
func (s *BranchService) syncMemberBranch(ctx context.Context, b *branch.Branch) {
	members := make([]bson.ObjectID, 0, len(b.PackingAgentIDs)+1)
	if b.HasManager() {
		members = append(members, b.ManagerID)
	}
	members = append(members, b.PackingAgentIDs...)

	for _, memberID := range members {
		u, err := s.userRepo.GetByID(ctx, memberID)
		if err != nil {
			continue
		}
		if u.BranchID == b.ID && u.BranchName == b.Name {
			continue
		}
		if err := s.userRepo.SetBranch(ctx, memberID, b.ID, b.Name); err != nil && s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": memberID.Hex(), "branch": b.Name}).WithError(err).Warn("failed to stamp branch on member")
		}
	}
}

func (s *BranchService) GetBranch(ctx context.Context, id bson.ObjectID) (*branch.Branch, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBranchForManager finds the branch managed by the given user.
func (s *BranchService) GetBranchForManager(ctx context.Context, managerID bson.ObjectID) (*branch.Branch, error) {
	branches, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range branches {
		if b.ManagerID == managerID {
			return b, nil
		}
	}
	return nil, fmt.Errorf("branch for manager %s: %w", managerID.Hex(), ports.ErrNotFound)
}

// UpdateBranch applies the edit form. A rename is a fan-out: every order and
// user carrying the old name is rewritten, then every cache entry derived
// from either name is flushed, as one logical operation.
func (s *BranchService) UpdateBranch(ctx context.Context, id bson.ObjectID, req *branch.UpdateBranchRequest) (*branch.Branch, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if (req.Name != "" && req.Name != b.Name) || (req.Code != "" && req.Code != b.Code) {
		name, code := req.Name, req.Code
		if name == "" {
			name = b.Name
		}
		if code == "" {
			code = b.Code
		}
		if existing, err := s.repo.GetByNameOrCode(ctx, name, code); err == nil && existing.ID != id {
			return nil, fmt.Errorf("branch %s/%s: %w", name, code, ports.ErrDuplicate)
		}
	}

	oldName := b.Name
	if req.Name != "" {
		b.Name = req.Name
	}
	if req.Code != "" {
		b.Code = req.Code
	}
	if req.Address != "" {
		b.Address = req.Address
	}
	if req.Phone != "" {
		b.Phone = req.Phone
	}
	if req.Pincode != 0 {
		b.Pincode = req.Pincode
	}
	if req.State != "" {
		b.State = req.State
	}
	if req.City != "" {
		b.City = req.City
	}
	if req.Status != "" {
		b.Status = req.Status
	}
	if req.Manager != "" || req.PackingAgents != nil {
		if err := s.assignMembers(ctx, b, req.Manager, req.PackingAgents); err != nil {
			return nil, err
		}
	}

	renamed := b.Name != oldName

	// Capture the dependents before relabeling; their ids drive the by-id
	// cache flush afterwards.
	var dependentOrders []*order.Order
	var dependentUsers []*user.User
	if renamed {
		dependentOrders, _ = s.orderRepo.ListByBranch(ctx, oldName)
		dependentUsers, _ = s.userRepo.ListByBranch(ctx, id, bson.ObjectID{})
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.syncMemberBranch(ctx, b)

	if renamed {
		if err := s.orderRepo.RelabelBranch(ctx, oldName, b.Name); err != nil {
			return nil, fmt.Errorf("branch renamed but order relabel failed: %w", err)
		}
		if err := s.userRepo.RelabelBranch(ctx, oldName, b.Name); err != nil {
			return nil, fmt.Errorf("branch renamed but user relabel failed: %w", err)
		}
		s.invalidator.BranchRenamed(ctx, oldName, b.Name, dependentOrders, dependentUsers)
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"old": oldName, "new": b.Name}).Info("branch renamed")
		}
	}
	return b, nil
}

// DeleteBranch removes the branch and cascades to its orders. User accounts
// survive with their last branch assignment.
func (s *BranchService) DeleteBranch(ctx context.Context, id bson.ObjectID) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.orderRepo.DeleteByBranch(ctx, b.Name); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"branch": b.Name}).Info("branch deleted with its orders")
	}
	return nil
}

func (s *BranchService) ListBranches(ctx context.Context) ([]*branch.Branch, error) {
	return s.repo.List(ctx)
}

func (s *BranchService) ListBranchNames(ctx context.Context) ([]*branch.NameEntry, error) {
	return s.repo.ListNames(ctx)
}

func (s *BranchService) BranchCounts(ctx context.Context) (*branch.CountSummary, error) {
	return s.repo.CountSummary(ctx)
}
