package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/naruebet87/local-market-backend/internal/address"
	"github.com/naruebet87/local-market-backend/internal/cart"
	"github.com/naruebet87/local-market-backend/internal/config"
	"github.com/naruebet87/local-market-backend/internal/order"
	"github.com/naruebet87/local-market-backend/internal/product"
	"github.com/naruebet87/local-market-backend/internal/shop"
	"github.com/naruebet87/local-market-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := fiber.New()
	setupCORS(app)
	app.Use(checkMiddleware)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()

	mustMigrate(db)

	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	shopRepo := shop.NewPostgresRepository(db)
	shopService := shop.NewService(shopRepo)
	shopHandler := shop.NewHandler(shopService)

	productRepo := product.NewPostgresRepository(db)
	productService := product.NewService(productRepo, shopService)
	productHandler := product.NewHandler(productService)

	addressRepo := address.NewPostgresRepository(db)
	addressService := address.NewService(addressRepo)
	addressHandler := address.NewHandler(addressService)

	cartRepo := cart.NewPostgresRepository(db)
	cartService := cart.NewService(cartRepo)
	cartHandler := cart.NewHandler(cartService)

	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, userService, shopService, addressService)
	orderHandler := order.NewHandler(orderService)

	userHandler.RegisterPublicRoutes(app)
	shopHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	shopHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)

	app.Listen(cfg.Addr)
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

// mustMigrate creates the schema when it does not exist yet.
func mustMigrate(db *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id SERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			first_name TEXT,
			last_name TEXT,
			phone TEXT,
			role TEXT NOT NULL,
			available BOOLEAN NOT NULL DEFAULT FALSE,
			main_address_id INT,
			latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS addresses (
			address_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			address_desc TEXT,
			phone TEXT,
			address_name TEXT,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS shops (
			shop_id SERIAL PRIMARY KEY,
			shopkeeper_id INT NOT NULL,
			shop_name TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			product_id SERIAL PRIMARY KEY,
			shop_id INT NOT NULL,
			product_name TEXT NOT NULL,
			price NUMERIC NOT NULL DEFAULT 0 CHECK (price >= 0),
			stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
			description TEXT,
			product_img TEXT,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS carts (
			cart_id SERIAL PRIMARY KEY,
			customer_id INT NOT NULL UNIQUE,
			shop_id INT NOT NULL,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			cart_id INT NOT NULL,
			product_id INT NOT NULL,
			product_name TEXT NOT NULL,
			unit_price NUMERIC NOT NULL,
			quantity INT NOT NULL,
			PRIMARY KEY (cart_id, product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id SERIAL PRIMARY KEY,
			customer_id INT NOT NULL,
			shop_id INT NOT NULL,
			agent_id INT,
			total_amount NUMERIC NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			delivery_address TEXT NOT NULL,
			created_at TEXT,
			assigned_at TEXT,
			picked_up_at TEXT,
			delivered_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id INT NOT NULL,
			product_id INT NOT NULL,
			product_name TEXT NOT NULL,
			unit_price NUMERIC NOT NULL,
			quantity INT NOT NULL,
			PRIMARY KEY (order_id, product_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			panic(err)
		}
	}
}

func checkMiddleware(c *fiber.Ctx) error {
	start := time.Now()
	fmt.Printf("URL = %s, Method = %s, Start Time = %v\n", c.OriginalURL(), c.Method(), start)
	return c.Next()
}
