package user

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidRole = errors.New("invalid role")

// ServiceInterface is the subset of the user service other packages depend
// on. The order package uses it as the delivery-agent directory and to read
// customer geolocation at checkout time.
type ServiceInterface interface {
	GetByID(id int) (User, error)
	SetAvailability(id int, available bool, updatedAt string) (User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(id int) (User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Register(user User) (User, error) {
	if !ValidRole(user.Role) {
		return User{}, ErrInvalidRole
	}
	if _, err := s.repo.GetByEmail(user.Email); err == nil {
		return User{}, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	user.Password = string(hashed)

	// new delivery agents start out available for assignments
	if user.Role == RoleDeliveryAgent {
		user.Available = true
	}

	return s.repo.Create(user)
}

func (s *Service) Authenticate(email, password string) (User, error) {
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

func (s *Service) UpdateProfile(id int, update User) (User, error) {
	if update.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(update.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		update.Password = string(hashed)
	}

	return s.repo.Update(id, update)
}

// SetAvailability flips a delivery agent's availability flag. Only agents
// carry the flag; other roles are rejected.
func (s *Service) SetAvailability(id int, available bool, updatedAt string) (User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return User{}, err
	}
	if user.Role != RoleDeliveryAgent {
		return User{}, ErrInvalidRole
	}

	return s.repo.SetAvailability(id, available, updatedAt)
}

func (s *Service) SetMainAddress(id int, addressID int, updatedAt string) (User, error) {
	return s.repo.SetMainAddress(id, addressID, updatedAt)
}
