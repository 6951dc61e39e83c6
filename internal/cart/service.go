package cart

import "time"

// Service orchestrates cart operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) AddToCart(customerID, productID, qty int) (Cart, error) {
	if customerID <= 0 || productID <= 0 {
		return Cart{}, ErrNotFound
	}
	// zero qty does nothing, but we still return the current cart
	if qty == 0 {
		return s.repo.Get(customerID)
	}
	return s.repo.AddItem(customerID, productID, qty, time.Now().UTC().Format(time.RFC3339))
}

func (s *Service) GetCart(customerID int) (Cart, error) {
	if customerID <= 0 {
		return Cart{}, ErrNotFound
	}
	return s.repo.Get(customerID)
}

func (s *Service) ClearCart(customerID int) error {
	if customerID <= 0 {
		return ErrNotFound
	}
	return s.repo.Clear(customerID)
}
