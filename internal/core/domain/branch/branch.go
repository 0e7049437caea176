package branch

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type BranchStatus string

const (
	StatusActive   BranchStatus = "active"
	StatusInactive BranchStatus = "inactive"
)

// Branch is a physical store location. Orders and users reference it by Name,
// so renaming a branch requires rewriting those denormalized copies.
type Branch struct {
	ID              bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string          `bson:"name" json:"name"`
	Code            string          `bson:"code" json:"code"`
	Address         string          `bson:"address" json:"address"`
	Phone           string          `bson:"phone" json:"phone"`
	Pincode         int             `bson:"pincode" json:"pincode"`
	State           string          `bson:"state" json:"state"`
	City            string          `bson:"city" json:"city"`
	ManagerID       bson.ObjectID   `bson:"manager,omitempty" json:"managerId,omitempty"`
	PackingAgentIDs []bson.ObjectID `bson:"packingAgents,omitempty" json:"packingAgentIds,omitempty"`
	Status          BranchStatus    `bson:"status" json:"status"`
	CreatedAt       time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// HasManager reports whether a manager is assigned.
func (b *Branch) HasManager() bool {
	return !b.ManagerID.IsZero()
}

// HasPackingAgent reports whether the given user is listed as a packing agent.
func (b *Branch) HasPackingAgent(id bson.ObjectID) bool {
	for _, agentID := range b.PackingAgentIDs {
		if agentID == id {
			return true
		}
	}
	return false
}

// CreateBranchRequest is the admin "add branch" form.
type CreateBranchRequest struct {
	Name          string       `json:"name" validate:"required"`
	Code          string       `json:"code" validate:"required"`
	Address       string       `json:"address" validate:"required"`
	Phone         string       `json:"phone" validate:"required"`
	Pincode       int          `json:"pincode" validate:"required"`
	State         string       `json:"state" validate:"required"`
	City          string       `json:"city" validate:"required"`
	Status        BranchStatus `json:"status" validate:"required"`
	Manager       string       `json:"manager"`
	PackingAgents []string     `json:"packingAgents"`
}

// UpdateBranchRequest is the admin "edit branch" form; zero values are ignored.
type UpdateBranchRequest struct {
	Name          string       `json:"name"`
	Code          string       `json:"code"`
	Address       string       `json:"address"`
	Phone         string       `json:"phone"`
	Pincode       int          `json:"pincode"`
	State         string       `json:"state"`
	City          string       `json:"city"`
	Status        BranchStatus `json:"status"`
	Manager       string       `json:"manager"`
	PackingAgents []string     `json:"packingAgents"`
}

// CountSummary is the dashboard aggregate over all branches.
type CountSummary struct {
	ActiveBranches           int    `json:"activeBranches"`
	PercentageActiveBranches string `json:"percentageActiveBranches"`
}

// NameEntry is the compact listing used by branch pickers.
type NameEntry struct {
	ID        bson.ObjectID `bson:"_id" json:"id"`
	Name      string        `bson:"name" json:"name"`
	Code      string        `bson:"code" json:"code"`
	ManagerID bson.ObjectID `bson:"manager,omitempty" json:"managerId,omitempty"`
}
