package address

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("address not found")

type Repository interface {
	GetAddresses(userID int) ([]Address, error)
	GetByID(userID, addressID int) (Address, error)
	AddAddress(userID int, addressDesc, phone, addressName, now string) (Address, error)
	UpdateAddress(userID, addressID int, addressDesc, phone, addressName, now string) (Address, error)
	DeleteAddress(userID, addressID int) error
}

// InMemoryRepository for tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	data   map[int][]Address // keyed by userID
	nextID int
}

func NewInMemoryRepository(seed map[int][]Address) *InMemoryRepository {
	repo := &InMemoryRepository{data: map[int][]Address{}, nextID: 1}
	for userID, addrs := range seed {
		repo.data[userID] = append(repo.data[userID], addrs...)
		for _, a := range addrs {
			if a.AddressID >= repo.nextID {
				repo.nextID = a.AddressID + 1
			}
		}
	}
	return repo
}

func (r *InMemoryRepository) GetAddresses(userID int) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Address, 0, len(r.data[userID]))
	out = append(out, r.data[userID]...)
	return out, nil
}

func (r *InMemoryRepository) GetByID(userID, addressID int) (Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.data[userID] {
		if a.AddressID == addressID {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) AddAddress(userID int, addressDesc, phone, addressName, now string) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	addr := Address{
		AddressID:   r.nextID,
		UserID:      userID,
		AddressDesc: addressDesc,
		Phone:       phone,
		AddressName: addressName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.nextID++
	r.data[userID] = append(r.data[userID], addr)
	return addr, nil
}

func (r *InMemoryRepository) UpdateAddress(userID, addressID int, addressDesc, phone, addressName, now string) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, a := range r.data[userID] {
		if a.AddressID == addressID {
			a.AddressDesc = addressDesc
			a.Phone = phone
			a.AddressName = addressName
			a.UpdatedAt = now
			r.data[userID][i] = a
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) DeleteAddress(userID, addressID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	addrs := r.data[userID]
	for i, a := range addrs {
		if a.AddressID == addressID {
			r.data[userID] = append(addrs[:i], addrs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
