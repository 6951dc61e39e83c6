package cart

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func newCartApp() *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		id, _ := strconv.Atoi(c.Get("X-User-ID"))
		claims := jwt.MapClaims{"user_id": float64(id), "role": "customer"}
		c.Locals("user", &jwt.Token{Claims: claims, Valid: true})
		return c.Next()
	})
	NewHandler(newCartService()).RegisterProtectedRoutes(app)
	return app
}

func doCartRequest(t *testing.T, app *fiber.App, method, target string, customerID int, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", strconv.Itoa(customerID))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func decodeCart(t *testing.T, resp *http.Response) Cart {
	t.Helper()
	var c Cart
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	return c
}

func TestCartHandler_AddAndGet(t *testing.T) {
	app := newCartApp()

	resp := doCartRequest(t, app, fiber.MethodPost, "/api/v1/cart/items", 20, fiber.Map{"productId": 1, "quantity": 2})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	c := decodeCart(t, resp)
	if len(c.Lines) != 1 || c.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", c)
	}

	resp = doCartRequest(t, app, fiber.MethodGet, "/api/v1/cart", 20, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	c = decodeCart(t, resp)
	if c.ShopID != 1 || len(c.Lines) != 1 {
		t.Fatalf("unexpected cart: %+v", c)
	}
}

func TestCartHandler_EmptyCartIsOK(t *testing.T) {
	app := newCartApp()

	resp := doCartRequest(t, app, fiber.MethodGet, "/api/v1/cart", 20, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for empty cart, got %d", resp.StatusCode)
	}
	c := decodeCart(t, resp)
	if c.CustomerID != 20 || len(c.Lines) != 0 {
		t.Fatalf("expected empty cart body, got %+v", c)
	}
}

func TestCartHandler_ShopMismatchConflict(t *testing.T) {
	app := newCartApp()

	doCartRequest(t, app, fiber.MethodPost, "/api/v1/cart/items", 20, fiber.Map{"productId": 1, "quantity": 1})
	resp := doCartRequest(t, app, fiber.MethodPost, "/api/v1/cart/items", 20, fiber.Map{"productId": 3, "quantity": 1})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for cross-shop add, got %d", resp.StatusCode)
	}
}

func TestCartHandler_UnknownProduct(t *testing.T) {
	app := newCartApp()

	resp := doCartRequest(t, app, fiber.MethodPost, "/api/v1/cart/items", 20, fiber.Map{"productId": 999, "quantity": 1})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCartHandler_Clear(t *testing.T) {
	app := newCartApp()

	doCartRequest(t, app, fiber.MethodPost, "/api/v1/cart/items", 20, fiber.Map{"productId": 1, "quantity": 1})
	resp := doCartRequest(t, app, fiber.MethodDelete, "/api/v1/cart", 20, nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	// clearing an already empty cart is fine
	resp = doCartRequest(t, app, fiber.MethodDelete, "/api/v1/cart", 20, nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204 on double clear, got %d", resp.StatusCode)
	}
}
