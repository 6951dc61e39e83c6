package user

// Roles known to the marketplace. The JWT carries the role as a claim and
// handlers gate operations on it.
const (
	RoleCustomer      = "customer"
	RoleShopkeeper    = "shopkeeper"
	RoleDeliveryAgent = "delivery_agent"
)

// User represents an account of any role. Delivery agents additionally use
// the Available flag; customers use the address/geolocation fields at
// checkout time.
type User struct {
	ID            int     `json:"userId"`
	Email         string  `json:"email"`
	Password      string  `json:"password,omitempty"`
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Phone         string  `json:"phone"`
	Role          string  `json:"role"`
	Available     bool    `json:"available"`
	MainAddressID *int    `json:"mainAddressId,omitempty"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	CreatedAt     string  `json:"createdAt,omitempty"`
	UpdatedAt     string  `json:"updatedAt,omitempty"`
}

// ValidRole reports whether the given role string is one the system accepts
// at registration time.
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleShopkeeper, RoleDeliveryAgent:
		return true
	}
	return false
}

// HasLocation reports whether the user has a usable coordinate pair. The
// zero pair is the "unset" sentinel and never counts as a location.
func (u User) HasLocation() bool {
	return u.Latitude != 0 || u.Longitude != 0
}
