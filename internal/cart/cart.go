package cart

// Line is one product entry in a cart. Name and unit price are snapshots
// taken when the product was added; checkout freezes them into the order.
type Line struct {
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
}

// Cart is a customer's in-progress selection. A cart references exactly one
// shop; adding a product from another shop is rejected.
type Cart struct {
	CartID     int    `json:"cartId"`
	CustomerID int    `json:"customerId"`
	ShopID     int    `json:"shopId"`
	Lines      []Line `json:"lines"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}
