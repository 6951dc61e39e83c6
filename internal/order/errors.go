package order

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("order not found")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrShopNotFound     = errors.New("shop no longer exists")
	ErrAddressMissing   = errors.New("no delivery address on file")
	ErrForbidden        = errors.New("not allowed to act on this order")
	ErrAgentNotFound    = errors.New("delivery agent not found")
	ErrAgentUnavailable = errors.New("delivery agent is not available")
	ErrUnknownAction    = errors.New("unknown action")
)

// InsufficientStockError reports the first cart line whose requested
// quantity exceeds the product's remaining stock. A product that vanished
// from the shop reports Available 0.
type InsufficientStockError struct {
	ProductID   int    `json:"productId"`
	ProductName string `json:"productName"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): requested %d, available %d",
		e.ProductID, e.ProductName, e.Requested, e.Available)
}

// InvalidTransitionError reports a (status, action) pair outside the
// legality table. Current is the order's status at the time of the attempt.
type InvalidTransitionError struct {
	Action  Action `json:"action"`
	Role    string `json:"role"`
	Current Status `json:"currentStatus"`
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot apply %q as %s while order is %q", e.Action, e.Role, e.Current)
}
