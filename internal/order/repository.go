package order

import (
	"sync"

	"github.com/naruebet87/local-market-backend/internal/cart"
	"github.com/naruebet87/local-market-backend/internal/product"
	"github.com/naruebet87/local-market-backend/internal/shop"
	"github.com/naruebet87/local-market-backend/internal/user"
)

// Repository persists orders and performs the operations that must be
// atomic: the checkout commit, conditional status transitions, and agent
// assignment. Implementations guarantee all-or-nothing behaviour for each
// call.
type Repository interface {
	GetByID(orderID int) (Order, error)
	ListByCustomer(customerID int) ([]Order, error)
	ListByShops(shopIDs []int) ([]Order, error)
	ListByAgent(agentID int) ([]Order, error)

	// Checkout converts the customer's cart into an order, decrements stock
	// and deletes the cart as one unit. On ErrShopNotFound the stale cart
	// is deleted; every other failure leaves all stores untouched.
	Checkout(customerID int, deliveryAddress, now string) (Order, error)

	// ApplyTransition writes tr.to only if the order currently holds
	// tr.from, stamping tr.stamp and restoring the agent's availability
	// when the transition calls for it.
	ApplyTransition(orderID int, tr transition, now string) (Order, error)

	// Assign sets the agent and moves accepted→assigned while atomically
	// clearing the agent's availability flag.
	Assign(orderID, agentID int, now string) (Order, error)
}

// InMemoryRepository holds a self-contained marketplace world (products,
// carts, shops, users, orders) behind one mutex so tests can exercise the
// same atomicity rules the Postgres implementation gets from transactions.
type InMemoryRepository struct {
	mu       sync.Mutex
	products []product.Product
	carts    map[int]cart.Cart
	shops    []shop.Shop
	users    []user.User
	orders   []Order
	nextID   int
}

func NewInMemoryRepository(catalog []product.Product, carts []cart.Cart, shops []shop.Shop, users []user.User) *InMemoryRepository {
	repo := &InMemoryRepository{
		products: append([]product.Product(nil), catalog...),
		carts:    map[int]cart.Cart{},
		shops:    append([]shop.Shop(nil), shops...),
		users:    append([]user.User(nil), users...),
		nextID:   1,
	}
	for _, c := range carts {
		repo.carts[c.CustomerID] = c
	}
	return repo
}

func (r *InMemoryRepository) GetByID(orderID int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.OrderID == orderID {
			return copyOrder(o), nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByCustomer(customerID int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListByShops(shopIDs []int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := map[int]struct{}{}
	for _, id := range shopIDs {
		wanted[id] = struct{}{}
	}
	out := make([]Order, 0)
	for _, o := range r.orders {
		if _, ok := wanted[o.ShopID]; ok {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListByAgent(agentID int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.AgentID != nil && *o.AgentID == agentID {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Checkout(customerID int, deliveryAddress, now string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[customerID]
	if !ok || len(c.Lines) == 0 {
		return Order{}, ErrEmptyCart
	}

	shopExists := false
	for _, s := range r.shops {
		if s.ShopID == c.ShopID {
			shopExists = true
			break
		}
	}
	if !shopExists {
		delete(r.carts, customerID)
		return Order{}, ErrShopNotFound
	}

	// validate every line before touching any stock so a late failure
	// cannot leave a partial decrement behind
	indexes := make([]int, len(c.Lines))
	for i, line := range c.Lines {
		idx := -1
		for j := range r.products {
			if r.products[j].ProductID == line.ProductID && r.products[j].ShopID == c.ShopID {
				idx = j
				break
			}
		}
		if idx < 0 {
			return Order{}, &InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Requested:   line.Quantity,
				Available:   0,
			}
		}
		if r.products[idx].Stock < line.Quantity {
			return Order{}, &InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Requested:   line.Quantity,
				Available:   r.products[idx].Stock,
			}
		}
		indexes[i] = idx
	}

	lines := make([]Line, 0, len(c.Lines))
	total := 0.0
	for i, line := range c.Lines {
		r.products[indexes[i]].Stock -= line.Quantity
		lines = append(lines, Line{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		})
		total += line.UnitPrice * float64(line.Quantity)
	}

	o := Order{
		OrderID:         r.nextID,
		CustomerID:      customerID,
		ShopID:          c.ShopID,
		Lines:           lines,
		TotalAmount:     total,
		Status:          StatusPending,
		DeliveryAddress: deliveryAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.nextID++
	r.orders = append(r.orders, o)
	delete(r.carts, customerID)

	return copyOrder(o), nil
}

func (r *InMemoryRepository) ApplyTransition(orderID int, tr transition, now string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, o := range r.orders {
		if o.OrderID != orderID {
			continue
		}
		if o.Status != tr.from {
			return Order{}, &InvalidTransitionError{Action: "", Current: o.Status}
		}
		o.Status = tr.to
		o.UpdatedAt = now
		switch tr.stamp {
		case stampPickedUp:
			o.PickedUpAt = &now
		case stampDelivered:
			o.DeliveredAt = &now
		}
		if tr.restoreAvailability && o.AgentID != nil {
			for j := range r.users {
				if r.users[j].ID == *o.AgentID {
					r.users[j].Available = true
				}
			}
		}
		r.orders[i] = o
		return copyOrder(o), nil
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) Assign(orderID, agentID int, now string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	agentIdx := -1
	for j := range r.users {
		if r.users[j].ID == agentID && r.users[j].Role == user.RoleDeliveryAgent {
			agentIdx = j
			break
		}
	}
	if agentIdx < 0 {
		return Order{}, ErrAgentNotFound
	}
	if !r.users[agentIdx].Available {
		return Order{}, ErrAgentUnavailable
	}

	for i, o := range r.orders {
		if o.OrderID != orderID {
			continue
		}
		if o.Status != StatusAccepted {
			return Order{}, &InvalidTransitionError{Current: o.Status}
		}
		r.users[agentIdx].Available = false
		o.AgentID = &agentID
		o.Status = StatusAssigned
		o.AssignedAt = &now
		o.UpdatedAt = now
		r.orders[i] = o
		return copyOrder(o), nil
	}
	return Order{}, ErrNotFound
}

// ProductStock reports a product's remaining stock; test helper.
func (r *InMemoryRepository) ProductStock(productID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.ProductID == productID {
			return p.Stock
		}
	}
	return -1
}

// HasCart reports whether the customer still has a cart; test helper.
func (r *InMemoryRepository) HasCart(customerID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.carts[customerID]
	return ok
}

// AgentAvailable reports an agent's availability flag; test helper.
func (r *InMemoryRepository) AgentAvailable(agentID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == agentID {
			return u.Available
		}
	}
	return false
}

func copyOrder(o Order) Order {
	lines := make([]Line, len(o.Lines))
	copy(lines, o.Lines)
	o.Lines = lines
	return o
}
