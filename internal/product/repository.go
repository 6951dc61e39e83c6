package product

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	GetByID(productID int) (Product, error)
	ListByShop(shopID int) ([]Product, error)
	Create(p Product) (Product, error)
	Update(productID int, p Product) (Product, error)
	Delete(productID int) error
}

// InMemoryRepository for tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products []Product
	nextID   int
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	repo := &InMemoryRepository{products: make([]Product, 0, len(seed)), nextID: 1}
	for _, p := range seed {
		repo.products = append(repo.products, p)
		if p.ProductID >= repo.nextID {
			repo.nextID = p.ProductID + 1
		}
	}
	return repo
}

func (r *InMemoryRepository) GetByID(productID int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ProductID == productID {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) ListByShop(shopID int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range r.products {
		if p.ShopID == shopID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ProductID == 0 {
		p.ProductID = r.nextID
		r.nextID++
	}
	r.products = append(r.products, p)
	return p, nil
}

func (r *InMemoryRepository) Update(productID int, update Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ProductID == productID {
			if update.ProductName != "" {
				p.ProductName = update.ProductName
			}
			if update.Price >= 0 {
				p.Price = update.Price
			}
			if update.Stock >= 0 {
				p.Stock = update.Stock
			}
			if update.Description != "" {
				p.Description = update.Description
			}
			if update.ProductImg != nil {
				p.ProductImg = update.ProductImg
			}
			if update.UpdatedAt != "" {
				p.UpdatedAt = update.UpdatedAt
			}
			r.products[i] = p
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(productID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ProductID == productID {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
