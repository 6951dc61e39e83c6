package product

import (
	"errors"
	"time"

	"github.com/naruebet87/local-market-backend/internal/shop"
)

var (
	ErrNotOwner     = errors.New("product's shop does not belong to this shopkeeper")
	ErrInvalidPrice = errors.New("price must be non-negative")
	ErrInvalidStock = errors.New("stock must be non-negative")
)

// ServiceInterface is the read-side other packages use.
type ServiceInterface interface {
	GetByID(productID int) (Product, error)
	ListByShop(shopID int) ([]Product, error)
}

type Service struct {
	repo  Repository
	shops shop.ServiceInterface
}

func NewService(repo Repository, shops shop.ServiceInterface) *Service {
	return &Service{repo: repo, shops: shops}
}

func (s *Service) GetByID(productID int) (Product, error) {
	if productID <= 0 {
		return Product{}, ErrNotFound
	}
	return s.repo.GetByID(productID)
}

func (s *Service) ListByShop(shopID int) ([]Product, error) {
	if shopID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.ListByShop(shopID)
}

func (s *Service) Create(shopkeeperID int, p Product) (Product, error) {
	if p.Price < 0 {
		return Product{}, ErrInvalidPrice
	}
	if p.Stock < 0 {
		return Product{}, ErrInvalidStock
	}
	if err := s.checkOwnership(shopkeeperID, p.ShopID); err != nil {
		return Product{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.repo.Create(p)
}

func (s *Service) Update(shopkeeperID, productID int, update Product) (Product, error) {
	existing, err := s.repo.GetByID(productID)
	if err != nil {
		return Product{}, err
	}
	if err := s.checkOwnership(shopkeeperID, existing.ShopID); err != nil {
		return Product{}, err
	}

	update.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.Update(productID, update)
}

func (s *Service) Delete(shopkeeperID, productID int) error {
	existing, err := s.repo.GetByID(productID)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(shopkeeperID, existing.ShopID); err != nil {
		return err
	}

	return s.repo.Delete(productID)
}

func (s *Service) checkOwnership(shopkeeperID, shopID int) error {
	owned, err := s.shops.GetByID(shopID)
	if err != nil {
		return err
	}
	if owned.ShopkeeperID != shopkeeperID {
		return ErrNotOwner
	}
	return nil
}
