package shop

// Shop is a seller storefront owned by a shopkeeper. Latitude/longitude are
// stored for the (external) nearby-shops lookup; this service never queries
// by distance itself.
type Shop struct {
	ShopID       int     `json:"shopId"`
	ShopkeeperID int     `json:"shopkeeperId"`
	ShopName     string  `json:"shopName"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	CreatedAt    string  `json:"createdAt,omitempty"`
	UpdatedAt    string  `json:"updatedAt,omitempty"`
}
