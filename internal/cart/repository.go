package cart

import (
	"errors"
	"sync"

	"github.com/naruebet87/local-market-backend/internal/product"
)

var (
	ErrNotFound        = errors.New("cart not found")
	ErrProductNotFound = errors.New("product not found")
	ErrShopMismatch    = errors.New("cart already holds products from another shop")
)

// Repository provides access to cart state. Lines are merged by product id,
// so adding the same product twice increments its quantity.
type Repository interface {
	Get(customerID int) (Cart, error)
	AddItem(customerID, productID, qty int, now string) (Cart, error)
	Clear(customerID int) error
}

// InMemoryRepository backs tests and local scenarios. It carries its own
// product catalog so line snapshots can be taken without a database.
type InMemoryRepository struct {
	mu      sync.Mutex
	catalog []product.Product
	carts   map[int]*Cart // keyed by customerID
	nextID  int
}

func NewInMemoryRepository(catalog []product.Product) *InMemoryRepository {
	return &InMemoryRepository{
		catalog: catalog,
		carts:   map[int]*Cart{},
		nextID:  1,
	}
}

func (r *InMemoryRepository) Get(customerID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[customerID]
	if !ok {
		return Cart{}, ErrNotFound
	}
	return copyCart(*c), nil
}

func (r *InMemoryRepository) AddItem(customerID, productID, qty int, now string) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found *product.Product
	for i := range r.catalog {
		if r.catalog[i].ProductID == productID {
			found = &r.catalog[i]
			break
		}
	}
	if found == nil {
		return Cart{}, ErrProductNotFound
	}

	c, ok := r.carts[customerID]
	if !ok {
		c = &Cart{CartID: r.nextID, CustomerID: customerID, ShopID: found.ShopID}
		r.nextID++
		r.carts[customerID] = c
	}
	if c.ShopID != found.ShopID {
		return Cart{}, ErrShopMismatch
	}

	merged := false
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += qty
			if c.Lines[i].Quantity <= 0 {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			}
			merged = true
			break
		}
	}
	if !merged && qty > 0 {
		c.Lines = append(c.Lines, Line{
			ProductID:   productID,
			ProductName: found.ProductName,
			UnitPrice:   found.Price,
			Quantity:    qty,
		})
	}
	c.UpdatedAt = now

	if len(c.Lines) == 0 {
		delete(r.carts, customerID)
		return Cart{}, ErrNotFound
	}
	return copyCart(*c), nil
}

func (r *InMemoryRepository) Clear(customerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[customerID]; !ok {
		return ErrNotFound
	}
	delete(r.carts, customerID)
	return nil
}

func copyCart(c Cart) Cart {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	c.Lines = lines
	return c
}
