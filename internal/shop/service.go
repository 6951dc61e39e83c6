package shop

import (
	"errors"
	"time"
)

var ErrNotOwner = errors.New("shop does not belong to this shopkeeper")

// ServiceInterface is what the order package needs from the shop service:
// resolving an order's shop to check ownership.
type ServiceInterface interface {
	GetByID(shopID int) (Shop, error)
	ListByShopkeeper(shopkeeperID int) ([]Shop, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(shopID int) (Shop, error) {
	if shopID <= 0 {
		return Shop{}, ErrNotFound
	}
	return s.repo.GetByID(shopID)
}

func (s *Service) ListByShopkeeper(shopkeeperID int) ([]Shop, error) {
	if shopkeeperID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.ListByShopkeeper(shopkeeperID)
}

func (s *Service) Create(shopkeeperID int, name string, lat, lng float64) (Shop, error) {
	if name == "" {
		return Shop{}, errors.New("shopName required")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return s.repo.Create(Shop{
		ShopkeeperID: shopkeeperID,
		ShopName:     name,
		Latitude:     lat,
		Longitude:    lng,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *Service) Update(shopkeeperID, shopID int, update Shop) (Shop, error) {
	existing, err := s.repo.GetByID(shopID)
	if err != nil {
		return Shop{}, err
	}
	if existing.ShopkeeperID != shopkeeperID {
		return Shop{}, ErrNotOwner
	}
	update.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.Update(shopID, update)
}
