package services_test

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/branch"
	"github.com/meenabazaar/order-management/internal/core/domain/order"
	"github.com/meenabazaar/order-management/internal/core/domain/user"
	"github.com/meenabazaar/order-management/internal/core/ports"
)

type orderRepoMock struct {
	createFn          func(ctx context.Context, o *order.Order) error
	getByIDFn         func(ctx context.Context, id bson.ObjectID) (*order.Order, error)
	getByOrderIDFn    func(ctx context.Context, orderID string) (*order.Order, error)
	updateFn          func(ctx context.Context, o *order.Order) error
	updatePaymentFn   func(ctx context.Context, id bson.ObjectID, status order.PaymentStatus) (*order.Order, error)
	listAllFn         func(ctx context.Context) ([]*order.Order, error)
	listByBranchFn    func(ctx context.Context, branchName string) ([]*order.Order, error)
	listDeliveredFn   func(ctx context.Context, from, to time.Time, branchName string) ([]*order.Order, error)
	countSummaryFn    func(ctx context.Context, branchName string) (*order.CountSummary, error)
	deleteByBranchFn  func(ctx context.Context, branchName string) error
	relabelBranchFn   func(ctx context.Context, oldName, newName string) error
	relabelBranchHits int
}

func (m *orderRepoMock) Create(ctx context.Context, o *order.Order) error {
	if m.createFn != nil {
		return m.createFn(ctx, o)
	}
	return nil
}
func (m *orderRepoMock) GetByID(ctx context.Context, id bson.ObjectID) (*order.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("order: %w", ports.ErrNotFound)
}
func (m *orderRepoMock) GetByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	if m.getByOrderIDFn != nil {
		return m.getByOrderIDFn(ctx, orderID)
	}
	return nil, fmt.Errorf("order: %w", ports.ErrNotFound)
}
func (m *orderRepoMock) Update(ctx context.Context, o *order.Order) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, o)
	}
	return nil
}
func (m *orderRepoMock) UpdatePaymentStatus(ctx context.Context, id bson.ObjectID, status order.PaymentStatus) (*order.Order, error) {
	if m.updatePaymentFn != nil {
		return m.updatePaymentFn(ctx, id, status)
	}
	return nil, fmt.Errorf("order: %w", ports.ErrNotFound)
}
func (m *orderRepoMock) ListAll(ctx context.Context) ([]*order.Order, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}
func (m *orderRepoMock) ListByBranch(ctx context.Context, branchName string) ([]*order.Order, error) {
	if m.listByBranchFn != nil {
		return m.listByBranchFn(ctx, branchName)
	}
	return nil, nil
}
func (m *orderRepoMock) ListDeliveredBetween(ctx context.Context, from, to time.Time, branchName string) ([]*order.Order, error) {
	if m.listDeliveredFn != nil {
		return m.listDeliveredFn(ctx, from, to, branchName)
	}
	return nil, nil
}
func (m *orderRepoMock) CountSummary(ctx context.Context, branchName string) (*order.CountSummary, error) {
	if m.countSummaryFn != nil {
		return m.countSummaryFn(ctx, branchName)
	}
	return &order.CountSummary{PercentagePaid: "0%"}, nil
}
func (m *orderRepoMock) DeleteByBranch(ctx context.Context, branchName string) error {
	if m.deleteByBranchFn != nil {
		return m.deleteByBranchFn(ctx, branchName)
	}
	return nil
}
func (m *orderRepoMock) RelabelBranch(ctx context.Context, oldName, newName string) error {
	m.relabelBranchHits++
	if m.relabelBranchFn != nil {
		return m.relabelBranchFn(ctx, oldName, newName)
	}
	return nil
}

type userRepoMock struct {
	createFn          func(ctx context.Context, u *user.User) error
	getByIDFn         func(ctx context.Context, id bson.ObjectID) (*user.User, error)
	getByEmailFn      func(ctx context.Context, email string) (*user.User, error)
	getByNameFn       func(ctx context.Context, name string) (*user.User, error)
	getByMobileFn     func(ctx context.Context, mobile string) (*user.User, error)
	getByResetTokenFn func(ctx context.Context, token string) (*user.User, error)
	getAdminFn        func(ctx context.Context) (*user.User, error)
	updateFn          func(ctx context.Context, u *user.User) error
	setBranchFn       func(ctx context.Context, id bson.ObjectID, branchID bson.ObjectID, branchName string) error
	deleteFn          func(ctx context.Context, id bson.ObjectID) error
	listAllFn         func(ctx context.Context) ([]*user.User, error)
	listByBranchFn    func(ctx context.Context, branchID, exclude bson.ObjectID) ([]*user.User, error)
	listActiveFn      func(ctx context.Context) ([]*user.User, error)
	countSummaryFn    func(ctx context.Context, branchID bson.ObjectID) (*user.CountSummary, error)
	relabelBranchFn   func(ctx context.Context, oldName, newName string) error
	relabelBranchHits int
}

func (m *userRepoMock) Create(ctx context.Context, u *user.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	return nil
}
func (m *userRepoMock) GetByID(ctx context.Context, id bson.ObjectID) (*user.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("user: %w", ports.ErrNotFound)
}
func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, fmt.Errorf("user: %w", ports.ErrNotFound)
}
func (m *userRepoMock) GetByName(ctx context.Context, name string) (*user.User, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, fmt.Errorf("user: %w", ports.ErrNotFound)
}
func (m *userRepoMock) GetByMobile(ctx context.Context, mobile string) (*user.User, error) {
	if m.getByMobileFn != nil {
		return m.getByMobileFn(ctx, mobile)
	}
	return nil, fmt.Errorf("user: %w", ports.ErrNotFound)
}
func (m *userRepoMock) GetByResetToken(ctx context.Context, token string) (*user.User, error) {
	if m.getByResetTokenFn != nil {
		return m.getByResetTokenFn(ctx, token)
	}
	return nil, fmt.Errorf("user: %w", ports.ErrNotFound)
}
func (m *userRepoMock) GetAdmin(ctx context.Context) (*user.User, error) {
	if m.getAdminFn != nil {
		return m.getAdminFn(ctx)
	}
	return nil, fmt.Errorf("user: %w", ports.ErrNotFound)
}
func (m *userRepoMock) Update(ctx context.Context, u *user.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, u)
	}
	return nil
}
func (m *userRepoMock) SetBranch(ctx context.Context, id bson.ObjectID, branchID bson.ObjectID, branchName string) error {
	if m.setBranchFn != nil {
		return m.setBranchFn(ctx, id, branchID, branchName)
	}
	return nil
}
func (m *userRepoMock) Delete(ctx context.Context, id bson.ObjectID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
func (m *userRepoMock) ListAll(ctx context.Context) ([]*user.User, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}
func (m *userRepoMock) ListByBranch(ctx context.Context, branchID, exclude bson.ObjectID) ([]*user.User, error) {
	if m.listByBranchFn != nil {
		return m.listByBranchFn(ctx, branchID, exclude)
	}
	return nil, nil
}
func (m *userRepoMock) ListActive(ctx context.Context) ([]*user.User, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
}
func (m *userRepoMock) CountSummary(ctx context.Context, branchID bson.ObjectID) (*user.CountSummary, error) {
	if m.countSummaryFn != nil {
		return m.countSummaryFn(ctx, branchID)
	}
	return &user.CountSummary{PercentageActive: "0%"}, nil
}
func (m *userRepoMock) RelabelBranch(ctx context.Context, oldName, newName string) error {
	m.relabelBranchHits++
	if m.relabelBranchFn != nil {
		return m.relabelBranchFn(ctx, oldName, newName)
	}
	return nil
}

type branchRepoMock struct {
	createFn          func(ctx context.Context, b *branch.Branch) error
	getByIDFn         func(ctx context.Context, id bson.ObjectID) (*branch.Branch, error)
	getByNameOrCodeFn func(ctx context.Context, name, code string) (*branch.Branch, error)
	updateFn          func(ctx context.Context, b *branch.Branch) error
	deleteFn          func(ctx context.Context, id bson.ObjectID) error
	listFn            func(ctx context.Context) ([]*branch.Branch, error)
	listNamesFn       func(ctx context.Context) ([]*branch.NameEntry, error)
	countSummaryFn    func(ctx context.Context) (*branch.CountSummary, error)
}

func (m *branchRepoMock) Create(ctx context.Context, b *branch.Branch) error {
	if m.createFn != nil {
		return m.createFn(ctx, b)
	}
	return nil
}
func (m *branchRepoMock) GetByID(ctx context.Context, id bson.ObjectID) (*branch.Branch, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("branch: %w", ports.ErrNotFound)
}
func (m *branchRepoMock) GetByNameOrCode(ctx context.Context, name, code string) (*branch.Branch, error) {
	if m.getByNameOrCodeFn != nil {
		return m.getByNameOrCodeFn(ctx, name, code)
	}
	return nil, fmt.Errorf("branch: %w", ports.ErrNotFound)
}
func (m *branchRepoMock) Update(ctx context.Context, b *branch.Branch) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, b)
	}
	return nil
}
func (m *branchRepoMock) Delete(ctx context.Context, id bson.ObjectID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
func (m *branchRepoMock) List(ctx context.Context) ([]*branch.Branch, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *branchRepoMock) ListNames(ctx context.Context) ([]*branch.NameEntry, error) {
	if m.listNamesFn != nil {
		return m.listNamesFn(ctx)
	}
	return nil, nil
}
func (m *branchRepoMock) CountSummary(ctx context.Context) (*branch.CountSummary, error) {
	if m.countSummaryFn != nil {
		return m.countSummaryFn(ctx)
	}
	return &branch.CountSummary{PercentageActiveBranches: "0%"}, nil
}

type invalidatorMock struct {
	orderChanged  int
	userChanged   int
	branchRenamed int
	ordersRemoved int

	lastOldName string
	lastNewName string
	lastOrders  []*order.Order
	lastUsers   []*user.User
}

func (m *invalidatorMock) OrderChanged(ctx context.Context, before, after *order.Order) {
	m.orderChanged++
}
func (m *invalidatorMock) UserChanged(ctx context.Context, before, after *user.User) {
	m.userChanged++
}
func (m *invalidatorMock) BranchRenamed(ctx context.Context, oldName, newName string, orders []*order.Order, users []*user.User) {
	m.branchRenamed++
	m.lastOldName = oldName
	m.lastNewName = newName
	m.lastOrders = orders
	m.lastUsers = users
}
func (m *invalidatorMock) OrdersRemoved(ctx context.Context, branchName string, orders []*order.Order) {
	m.ordersRemoved++
}

type resetGuardMock struct {
	allowFn func(ctx context.Context, email string, maxAttempts int, window time.Duration) (bool, error)
	calls   int
}

func (m *resetGuardMock) Allow(ctx context.Context, email string, maxAttempts int, window time.Duration) (bool, error) {
	m.calls++
	if m.allowFn != nil {
		return m.allowFn(ctx, email, maxAttempts, window)
	}
	return true, nil
}

type emailServiceMock struct {
	sendResetFn func(ctx context.Context, email, token, userName string) error
	sent        int
}

func (m *emailServiceMock) SendPasswordResetEmail(ctx context.Context, email, token, userName string) error {
	m.sent++
	if m.sendResetFn != nil {
		return m.sendResetFn(ctx, email, token, userName)
	}
	return nil
}
