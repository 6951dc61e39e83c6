package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/naruebet87/local-market-backend/internal/address"
	"github.com/naruebet87/local-market-backend/internal/shop"
	"github.com/naruebet87/local-market-backend/internal/user"
)

// Service is the order fulfillment engine: the checkout coordinator and the
// status state machine. It leans on the user service as the delivery-agent
// directory and on the shop service for ownership checks.
type Service struct {
	repo      Repository
	users     user.ServiceInterface
	shops     shop.ServiceInterface
	addresses address.ServiceInterface
}

func NewService(repo Repository, users user.ServiceInterface, shops shop.ServiceInterface, addresses address.ServiceInterface) *Service {
	return &Service{repo: repo, users: users, shops: shops, addresses: addresses}
}

// Checkout converts the customer's current cart into a pending order. All
// preconditions are checked before anything is written; the commit itself is
// delegated to the repository as one atomic unit.
func (s *Service) Checkout(customerID int) (Order, error) {
	deliveryAddress, err := s.resolveDeliveryAddress(customerID)
	if err != nil {
		return Order{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	return s.repo.Checkout(customerID, deliveryAddress, now)
}

// resolveDeliveryAddress prefers a saved address (the main one if set,
// otherwise the first on file) and falls back to the profile coordinate
// pair. The zero pair is the "unset" sentinel and is rejected.
func (s *Service) resolveDeliveryAddress(customerID int) (string, error) {
	u, err := s.users.GetByID(customerID)
	if err != nil {
		return "", err
	}

	if u.MainAddressID != nil {
		if a, err := s.addresses.GetByID(customerID, *u.MainAddressID); err == nil && a.AddressDesc != "" {
			return a.AddressDesc, nil
		}
	}
	if addrs, err := s.addresses.GetAddresses(customerID); err == nil {
		for _, a := range addrs {
			if a.AddressDesc != "" {
				return a.AddressDesc, nil
			}
		}
	}
	if u.HasLocation() {
		return fmt.Sprintf("%.6f,%.6f", u.Latitude, u.Longitude), nil
	}

	return "", ErrAddressMissing
}

// UpdateStatus applies one action from the transition table. Role and
// ownership checks run before state validity, so a non-owner always gets
// ErrForbidden no matter what status the order holds.
func (s *Service) UpdateStatus(actorID int, role string, orderID int, action Action) (Order, error) {
	if !knownAction(action) {
		return Order{}, ErrUnknownAction
	}

	o, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}

	switch role {
	case user.RoleShopkeeper:
		if err := s.checkShopOwnership(actorID, o.ShopID); err != nil {
			return Order{}, err
		}
	case user.RoleDeliveryAgent:
		if o.AgentID == nil || *o.AgentID != actorID {
			return Order{}, ErrForbidden
		}
	default:
		return Order{}, ErrForbidden
	}

	tr, ok := transitions[role][action]
	if !ok {
		return Order{}, &InvalidTransitionError{Action: action, Role: role, Current: o.Status}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	updated, err := s.repo.ApplyTransition(orderID, tr, now)
	if err != nil {
		var ite *InvalidTransitionError
		if errors.As(err, &ite) {
			ite.Action = action
			ite.Role = role
		}
		return Order{}, err
	}
	return updated, nil
}

// AssignAgent hands an accepted order to an available delivery agent,
// clearing the agent's availability in the same atomic write.
func (s *Service) AssignAgent(shopkeeperID, orderID, agentID int) (Order, error) {
	o, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	if err := s.checkShopOwnership(shopkeeperID, o.ShopID); err != nil {
		return Order{}, err
	}

	agent, err := s.users.GetByID(agentID)
	if err != nil {
		if err == user.ErrNotFound {
			return Order{}, ErrAgentNotFound
		}
		return Order{}, err
	}
	if agent.Role != user.RoleDeliveryAgent {
		return Order{}, ErrAgentNotFound
	}
	if !agent.Available {
		return Order{}, ErrAgentUnavailable
	}

	now := time.Now().UTC().Format(time.RFC3339)
	updated, err := s.repo.Assign(orderID, agentID, now)
	if err != nil {
		var ite *InvalidTransitionError
		if errors.As(err, &ite) {
			ite.Action = ActionAssign
			ite.Role = user.RoleShopkeeper
		}
		return Order{}, err
	}
	return updated, nil
}

func (s *Service) GetByID(orderID int) (Order, error) {
	return s.repo.GetByID(orderID)
}

// GetFor returns the order only to actors with a stake in it: the customer
// who placed it, a shopkeeper owning its shop, or the assigned agent.
func (s *Service) GetFor(actorID int, role string, orderID int) (Order, error) {
	o, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}

	switch role {
	case user.RoleCustomer:
		if o.CustomerID != actorID {
			return Order{}, ErrForbidden
		}
	case user.RoleShopkeeper:
		if err := s.checkShopOwnership(actorID, o.ShopID); err != nil {
			return Order{}, err
		}
	case user.RoleDeliveryAgent:
		if o.AgentID == nil || *o.AgentID != actorID {
			return Order{}, ErrForbidden
		}
	default:
		return Order{}, ErrForbidden
	}
	return o, nil
}

// ListFor returns the orders visible to the given actor: customers see
// their own, shopkeepers see their shops', agents see their assignments.
func (s *Service) ListFor(actorID int, role string) ([]Order, error) {
	switch role {
	case user.RoleCustomer:
		return s.repo.ListByCustomer(actorID)
	case user.RoleShopkeeper:
		shops, err := s.shops.ListByShopkeeper(actorID)
		if err != nil {
			return nil, err
		}
		ids := make([]int, 0, len(shops))
		for _, sh := range shops {
			ids = append(ids, sh.ShopID)
		}
		return s.repo.ListByShops(ids)
	case user.RoleDeliveryAgent:
		return s.repo.ListByAgent(actorID)
	}
	return nil, ErrForbidden
}

func (s *Service) checkShopOwnership(shopkeeperID, shopID int) error {
	owned, err := s.shops.GetByID(shopID)
	if err != nil {
		if err == shop.ErrNotFound {
			return ErrForbidden
		}
		return err
	}
	if owned.ShopkeeperID != shopkeeperID {
		return ErrForbidden
	}
	return nil
}
