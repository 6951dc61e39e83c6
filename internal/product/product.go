package product

// Product is a sellable item belonging to a shop. Stock is the number of
// units currently sellable; only shopkeeper edits and checkout decrements
// change it.
type Product struct {
	ProductID   int     `json:"productId"`
	ShopID      int     `json:"shopId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Description string  `json:"description,omitempty"`
	ProductImg  *string `json:"productImg,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}
