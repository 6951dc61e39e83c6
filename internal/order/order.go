package order

import (
	"github.com/naruebet87/local-market-backend/internal/user"
)

// Status is the order lifecycle state. Orders start at pending and only move
// through the transitions table below; rejected, rejected_by_agent and
// delivered are terminal.
type Status string

const (
	StatusPending         Status = "pending"
	StatusAccepted        Status = "accepted"
	StatusRejected        Status = "rejected"
	StatusAssigned        Status = "assigned"
	StatusAcceptedByAgent Status = "accepted_by_agent"
	StatusRejectedByAgent Status = "rejected_by_agent"
	StatusPickedUp        Status = "picked_up"
	StatusDelivered       Status = "delivered"
)

// Action names a status-transition request. The same action word can mean
// different transitions depending on the caller's role (a shopkeeper's
// accept is not an agent's accept).
type Action string

const (
	ActionAccept  Action = "accept"
	ActionReject  Action = "reject"
	ActionPickUp  Action = "picked_up"
	ActionDeliver Action = "delivered"
	// ActionAssign never comes in over the status endpoint; it names the
	// assignment operation in error details.
	ActionAssign Action = "assign"
)

// Timestamp columns stamped by specific transitions.
const (
	stampPickedUp  = "picked_up_at"
	stampDelivered = "delivered_at"
)

type transition struct {
	from  Status
	to    Status
	stamp string
	// restoreAvailability releases the assigned agent's availability flag
	// in the same write (used when an agent rejects an assignment).
	restoreAvailability bool
}

// transitions is the full legality table keyed by (role, action). Anything
// absent from it is an invalid transition; assignment has its own path
// because it carries an agent id.
var transitions = map[string]map[Action]transition{
	user.RoleShopkeeper: {
		ActionAccept: {from: StatusPending, to: StatusAccepted},
		ActionReject: {from: StatusPending, to: StatusRejected},
	},
	user.RoleDeliveryAgent: {
		ActionAccept:  {from: StatusAssigned, to: StatusAcceptedByAgent},
		ActionReject:  {from: StatusAssigned, to: StatusRejectedByAgent, restoreAvailability: true},
		ActionPickUp:  {from: StatusAcceptedByAgent, to: StatusPickedUp, stamp: stampPickedUp},
		ActionDeliver: {from: StatusPickedUp, to: StatusDelivered, stamp: stampDelivered},
	},
}

// knownAction reports whether any role uses this action word at all.
func knownAction(a Action) bool {
	for _, byAction := range transitions {
		if _, ok := byAction[a]; ok {
			return true
		}
	}
	return false
}

// Line is a frozen copy of a cart line taken at checkout. It is never
// re-derived from the product after the order is created.
type Line struct {
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
}

// Order is the durable record of a committed purchase. Orders are
// append-only: rows are created once by checkout and mutated only by status
// transitions.
type Order struct {
	OrderID         int     `json:"orderId"`
	CustomerID      int     `json:"customerId"`
	ShopID          int     `json:"shopId"`
	AgentID         *int    `json:"agentId,omitempty"`
	Lines           []Line  `json:"lines"`
	TotalAmount     float64 `json:"totalAmount"`
	Status          Status  `json:"status"`
	DeliveryAddress string  `json:"deliveryAddress"`
	CreatedAt       string  `json:"createdAt,omitempty"`
	AssignedAt      *string `json:"assignedAt,omitempty"`
	PickedUpAt      *string `json:"pickedUpAt,omitempty"`
	DeliveredAt     *string `json:"deliveredAt,omitempty"`
	UpdatedAt       string  `json:"updatedAt,omitempty"`
}
