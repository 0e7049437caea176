package repositories

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Canonical cache key scheme. Every cached view of an order, user or
// aggregate derives its key from exactly one of these constructors, so the
// same logical entity/scope always maps to the same key string regardless of
// request-time casing.

// orderKey is the by-id entry for a single order. Order ids are matched
// case-insensitively in storage, so the id is folded to lowercase first.
func orderKey(orderID string) string {
	return "order:" + strings.ToLower(orderID)
}

func orderListAdminKey() string {
	return "orders:admin"
}

func orderListBranchKey(branchName string) string {
	return "orders:branch:" + branchName
}

func orderCountAdminKey() string {
	return "orders:count:admin"
}

func orderCountBranchKey(branchName string) string {
	return "orders:count:branch:" + branchName
}

// userKey is the by-id entry for a single user.
func userKey(id bson.ObjectID) string {
	return "user:" + id.Hex()
}

func userListAdminKey() string {
	return "users:admin"
}

// userListBranchKey scopes a manager's user list by the branch's store id,
// matching the underlying query (user lists filter on the branch reference,
// not on the denormalized name).
func userListBranchKey(branchID bson.ObjectID) string {
	return "users:branch:" + branchID.Hex()
}

func userCountAdminKey() string {
	return "users:count:admin"
}

func userCountBranchKey(branchID bson.ObjectID) string {
	return "users:count:branch:" + branchID.Hex()
}

// resetAttemptKey is the password-reset attempt counter for an email address.
func resetAttemptKey(email string) string {
	return "pwreset:" + strings.ToLower(email)
}
