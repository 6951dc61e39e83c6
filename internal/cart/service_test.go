package cart

import (
	"testing"

	"github.com/naruebet87/local-market-backend/internal/product"
)

func testCatalog() []product.Product {
	return []product.Product{
		{ProductID: 1, ShopID: 1, ProductName: "Mango Sticky Rice", Price: 50, Stock: 5},
		{ProductID: 2, ShopID: 1, ProductName: "Durian Pack", Price: 100, Stock: 2},
		{ProductID: 3, ShopID: 2, ProductName: "Thai Tea", Price: 25, Stock: 3},
	}
}

func newCartService() *Service {
	return NewService(NewInMemoryRepository(testCatalog()))
}

func TestAddToCart_SnapshotsProduct(t *testing.T) {
	svc := newCartService()

	c, err := svc.AddToCart(20, 1, 2)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if c.ShopID != 1 {
		t.Fatalf("expected shop 1, got %d", c.ShopID)
	}
	if len(c.Lines) != 1 {
		t.Fatalf("expected one line, got %+v", c.Lines)
	}
	l := c.Lines[0]
	if l.ProductName != "Mango Sticky Rice" || l.UnitPrice != 50 || l.Quantity != 2 {
		t.Fatalf("unexpected line snapshot: %+v", l)
	}
}

func TestAddToCart_MergesByProduct(t *testing.T) {
	svc := newCartService()

	if _, err := svc.AddToCart(20, 1, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	c, err := svc.AddToCart(20, 1, 3)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(c.Lines) != 1 || c.Lines[0].Quantity != 5 {
		t.Fatalf("expected merged line with quantity 5, got %+v", c.Lines)
	}
}

func TestAddToCart_SingleShopOnly(t *testing.T) {
	svc := newCartService()

	if _, err := svc.AddToCart(20, 1, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.AddToCart(20, 3, 1); err != ErrShopMismatch {
		t.Fatalf("expected ErrShopMismatch, got %v", err)
	}

	// the cart kept only the original shop's line
	c, err := svc.GetCart(20)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(c.Lines) != 1 || c.Lines[0].ProductID != 1 {
		t.Fatalf("cart mutated by rejected add: %+v", c.Lines)
	}
}

func TestAddToCart_NegativeQuantityRemovesLine(t *testing.T) {
	svc := newCartService()

	if _, err := svc.AddToCart(20, 1, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.AddToCart(20, 2, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	c, err := svc.AddToCart(20, 1, -2)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if len(c.Lines) != 1 || c.Lines[0].ProductID != 2 {
		t.Fatalf("expected only product 2 to remain, got %+v", c.Lines)
	}

	// removing the last line deletes the cart itself
	if _, err := svc.AddToCart(20, 2, -1); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound once cart empties, got %v", err)
	}
	if _, err := svc.GetCart(20); err != ErrNotFound {
		t.Fatalf("expected cart to be gone, got %v", err)
	}
}

func TestAddToCart_ZeroQuantityIsReadOnly(t *testing.T) {
	svc := newCartService()

	if _, err := svc.AddToCart(20, 1, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	c, err := svc.AddToCart(20, 1, 0)
	if err != nil {
		t.Fatalf("zero qty add failed: %v", err)
	}
	if len(c.Lines) != 1 || c.Lines[0].Quantity != 2 {
		t.Fatalf("zero qty changed the cart: %+v", c.Lines)
	}
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	svc := newCartService()

	if _, err := svc.AddToCart(20, 999, 1); err != ErrProductNotFound {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestClearCart(t *testing.T) {
	svc := newCartService()

	if _, err := svc.AddToCart(20, 1, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.ClearCart(20); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := svc.GetCart(20); err != ErrNotFound {
		t.Fatalf("expected empty cart after clear, got %v", err)
	}
	if err := svc.ClearCart(20); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on double clear, got %v", err)
	}
}
