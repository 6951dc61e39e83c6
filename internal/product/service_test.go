package product

import (
	"testing"

	"github.com/naruebet87/local-market-backend/internal/shop"
)

func newProductService() *Service {
	shops := shop.NewService(shop.NewInMemoryRepository([]shop.Shop{
		{ShopID: 1, ShopkeeperID: 10, ShopName: "Fruit Corner"},
		{ShopID: 2, ShopkeeperID: 11, ShopName: "Tea House"},
	}))
	repo := NewInMemoryRepository([]Product{
		{ProductID: 1, ShopID: 1, ProductName: "Mango Sticky Rice", Price: 50, Stock: 5},
	})
	return NewService(repo, shops)
}

func TestCreateProduct_OwnershipAndValidation(t *testing.T) {
	svc := newProductService()

	created, err := svc.Create(10, Product{ShopID: 1, ProductName: "Coconut Jelly", Price: 30, Stock: 4})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ProductID == 0 {
		t.Fatalf("expected an id to be assigned")
	}

	if _, err := svc.Create(11, Product{ShopID: 1, ProductName: "Intruder", Price: 1, Stock: 1}); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := svc.Create(10, Product{ShopID: 1, ProductName: "Bad", Price: -1, Stock: 1}); err != ErrInvalidPrice {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if _, err := svc.Create(10, Product{ShopID: 1, ProductName: "Bad", Price: 1, Stock: -1}); err != ErrInvalidStock {
		t.Fatalf("expected ErrInvalidStock, got %v", err)
	}
	if _, err := svc.Create(10, Product{ShopID: 99, ProductName: "Ghost", Price: 1, Stock: 1}); err != shop.ErrNotFound {
		t.Fatalf("expected shop.ErrNotFound, got %v", err)
	}
}

func TestUpdateProduct_OnlyOwner(t *testing.T) {
	svc := newProductService()

	updated, err := svc.Update(10, 1, Product{Stock: 9, Price: -1})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Stock != 9 {
		t.Fatalf("expected stock 9, got %d", updated.Stock)
	}
	if updated.Price != 50 {
		t.Fatalf("negative price sentinel must leave price unchanged, got %v", updated.Price)
	}

	if _, err := svc.Update(11, 1, Product{Stock: 1}); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := svc.Update(10, 999, Product{Stock: 1}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteProduct_OnlyOwner(t *testing.T) {
	svc := newProductService()

	if err := svc.Delete(11, 1); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.Delete(10, 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetByID(1); err != ErrNotFound {
		t.Fatalf("expected product gone, got %v", err)
	}
}
