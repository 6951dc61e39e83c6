package shop

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("shop not found")

type Repository interface {
	GetByID(shopID int) (Shop, error)
	ListByShopkeeper(shopkeeperID int) ([]Shop, error)
	Create(shop Shop) (Shop, error)
	Update(shopID int, shop Shop) (Shop, error)
}

// InMemoryRepository for tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	shops  []Shop
	nextID int
}

func NewInMemoryRepository(seed []Shop) *InMemoryRepository {
	repo := &InMemoryRepository{shops: make([]Shop, 0, len(seed)), nextID: 1}
	for _, s := range seed {
		repo.shops = append(repo.shops, s)
		if s.ShopID >= repo.nextID {
			repo.nextID = s.ShopID + 1
		}
	}
	return repo
}

func (r *InMemoryRepository) GetByID(shopID int) (Shop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.shops {
		if s.ShopID == shopID {
			return s, nil
		}
	}
	return Shop{}, ErrNotFound
}

func (r *InMemoryRepository) ListByShopkeeper(shopkeeperID int) ([]Shop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Shop, 0)
	for _, s := range r.shops {
		if s.ShopkeeperID == shopkeeperID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(shop Shop) (Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if shop.ShopID == 0 {
		shop.ShopID = r.nextID
		r.nextID++
	}
	r.shops = append(r.shops, shop)
	return shop, nil
}

func (r *InMemoryRepository) Update(shopID int, update Shop) (Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.shops {
		if s.ShopID == shopID {
			if update.ShopName != "" {
				s.ShopName = update.ShopName
			}
			if update.Latitude != 0 || update.Longitude != 0 {
				s.Latitude = update.Latitude
				s.Longitude = update.Longitude
			}
			if update.UpdatedAt != "" {
				s.UpdatedAt = update.UpdatedAt
			}
			r.shops[i] = s
			return s, nil
		}
	}
	return Shop{}, ErrNotFound
}
