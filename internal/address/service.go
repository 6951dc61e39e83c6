package address

import (
	"errors"
	"time"
)

// ServiceInterface is the slice of the address service the order package
// consumes when resolving the delivery address at checkout.
type ServiceInterface interface {
	GetAddresses(userID int) ([]Address, error)
	GetByID(userID, addressID int) (Address, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetAddresses(userID int) ([]Address, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetAddresses(userID)
}

func (s *Service) GetByID(userID, addressID int) (Address, error) {
	if userID <= 0 || addressID <= 0 {
		return Address{}, ErrNotFound
	}
	return s.repo.GetByID(userID, addressID)
}

func (s *Service) AddAddress(userID int, desc, phone, name string) (Address, error) {
	if userID <= 0 {
		return Address{}, ErrNotFound
	}
	if desc == "" {
		return Address{}, errors.New("addressDesc required")
	}
	return s.repo.AddAddress(userID, desc, phone, name, time.Now().UTC().Format(time.RFC3339))
}

func (s *Service) UpdateAddress(userID, addressID int, desc, phone, name string) (Address, error) {
	if userID <= 0 || addressID <= 0 {
		return Address{}, ErrNotFound
	}
	if desc == "" {
		return Address{}, errors.New("addressDesc required")
	}
	return s.repo.UpdateAddress(userID, addressID, desc, phone, name, time.Now().UTC().Format(time.RFC3339))
}

func (s *Service) DeleteAddress(userID, addressID int) error {
	if userID <= 0 || addressID <= 0 {
		return ErrNotFound
	}
	return s.repo.DeleteAddress(userID, addressID)
}
