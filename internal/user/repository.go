package user

import (
	"errors"
	"sync"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
)

type Repository interface {
	GetByID(id int) (User, error)
	GetByEmail(email string) (User, error)
	Create(user User) (User, error)
	Update(id int, user User) (User, error)
	SetAvailability(id int, available bool, updatedAt string) (User, error)
	SetMainAddress(id int, addressID int, updatedAt string) (User, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	users  []User
	nextID int
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{users: make([]User, 0, len(seed)), nextID: 1}

	maxID := 0
	for _, user := range seed {
		repo.users = append(repo.users, user)
		if user.ID > maxID {
			maxID = user.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) GetByID(id int) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Create(user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	}

	r.users = append(r.users, user)
	return user, nil
}

func (r *InMemoryRepository) Update(id int, userUpdate User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, user := range r.users {
		if user.ID == id {
			if userUpdate.FirstName != "" {
				user.FirstName = userUpdate.FirstName
			}
			if userUpdate.LastName != "" {
				user.LastName = userUpdate.LastName
			}
			if userUpdate.Phone != "" {
				user.Phone = userUpdate.Phone
			}
			if userUpdate.Password != "" {
				user.Password = userUpdate.Password
			}
			if userUpdate.Latitude != 0 || userUpdate.Longitude != 0 {
				user.Latitude = userUpdate.Latitude
				user.Longitude = userUpdate.Longitude
			}
			if userUpdate.UpdatedAt != "" {
				user.UpdatedAt = userUpdate.UpdatedAt
			}
			r.users[i] = user
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) SetAvailability(id int, available bool, updatedAt string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, user := range r.users {
		if user.ID == id {
			user.Available = available
			if updatedAt != "" {
				user.UpdatedAt = updatedAt
			}
			r.users[i] = user
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) SetMainAddress(id int, addressID int, updatedAt string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, user := range r.users {
		if user.ID == id {
			user.MainAddressID = &addressID
			if updatedAt != "" {
				user.UpdatedAt = updatedAt
			}
			r.users[i] = user
			return user, nil
		}
	}

	return User{}, ErrNotFound
}
