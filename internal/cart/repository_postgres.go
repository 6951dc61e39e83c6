package cart

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartQuery = `
		SELECT cart_id, customer_id, shop_id, updated_at FROM carts WHERE customer_id = $1
	`
	getLinesQuery = `
		SELECT product_id, product_name, unit_price, quantity
		FROM cart_items WHERE cart_id = $1 ORDER BY product_id
	`
	lookupProductQuery = `
		SELECT shop_id, product_name, price FROM products WHERE product_id = $1
	`
	insertCartQuery = `
		INSERT INTO carts (customer_id, shop_id, updated_at) VALUES ($1,$2,$3) RETURNING cart_id
	`
	// The upsert may leave a non-positive quantity mid-transaction; such
	// lines are deleted before commit, so committed rows always hold
	// quantity >= 1.
	upsertLineQuery = `
		INSERT INTO cart_items (cart_id, product_id, product_name, unit_price, quantity)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING quantity
	`
	deleteLineQuery  = `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`
	countLinesQuery  = `SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`
	deleteCartQuery  = `DELETE FROM carts WHERE cart_id = $1`
	deleteLinesQuery = `DELETE FROM cart_items WHERE cart_id = $1`
	touchCartQuery   = `UPDATE carts SET updated_at = $2 WHERE cart_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(customerID int) (Cart, error) {
	var c Cart
	err := r.db.QueryRow(getCartQuery, customerID).Scan(&c.CartID, &c.CustomerID, &c.ShopID, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Cart{}, ErrNotFound
		}
		return Cart{}, err
	}

	rows, err := r.db.Query(getLinesQuery, c.CartID)
	if err != nil {
		return Cart{}, err
	}
	defer rows.Close()

	c.Lines = make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.UnitPrice, &l.Quantity); err != nil {
			return Cart{}, err
		}
		c.Lines = append(c.Lines, l)
	}

	return c, rows.Err()
}

func (r *PostgresRepository) AddItem(customerID, productID, qty int, now string) (Cart, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Cart{}, err
	}
	defer tx.Rollback()

	var (
		shopID      int
		productName string
		unitPrice   float64
	)
	if err := tx.QueryRow(lookupProductQuery, productID).Scan(&shopID, &productName, &unitPrice); err != nil {
		if err == sql.ErrNoRows {
			return Cart{}, ErrProductNotFound
		}
		return Cart{}, err
	}

	var cartID, cartShopID int
	var updatedAt string
	err = tx.QueryRow(getCartQuery, customerID).Scan(&cartID, &customerID, &cartShopID, &updatedAt)
	switch {
	case err == sql.ErrNoRows:
		if qty <= 0 {
			return Cart{}, ErrNotFound
		}
		if err := tx.QueryRow(insertCartQuery, customerID, shopID, now).Scan(&cartID); err != nil {
			return Cart{}, err
		}
		cartShopID = shopID
	case err != nil:
		return Cart{}, err
	}
	if cartShopID != shopID {
		return Cart{}, ErrShopMismatch
	}

	var newQty int
	if err := tx.QueryRow(upsertLineQuery, cartID, productID, productName, unitPrice, qty).Scan(&newQty); err != nil {
		return Cart{}, err
	}
	if newQty <= 0 {
		if _, err := tx.Exec(deleteLineQuery, cartID, productID); err != nil {
			return Cart{}, err
		}
	}

	// drop the cart row entirely once the last line is removed
	var remaining int
	if err := tx.QueryRow(countLinesQuery, cartID).Scan(&remaining); err != nil {
		return Cart{}, err
	}
	if remaining == 0 {
		if _, err := tx.Exec(deleteCartQuery, cartID); err != nil {
			return Cart{}, err
		}
		if err := tx.Commit(); err != nil {
			return Cart{}, err
		}
		return Cart{}, ErrNotFound
	}

	if _, err := tx.Exec(touchCartQuery, cartID, now); err != nil {
		return Cart{}, err
	}
	if err := tx.Commit(); err != nil {
		return Cart{}, err
	}

	return r.Get(customerID)
}

func (r *PostgresRepository) Clear(customerID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var c Cart
	if err := tx.QueryRow(getCartQuery, customerID).Scan(&c.CartID, &c.CustomerID, &c.ShopID, &c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	if _, err := tx.Exec(deleteLinesQuery, c.CartID); err != nil {
		return err
	}
	if _, err := tx.Exec(deleteCartQuery, c.CartID); err != nil {
		return err
	}

	return tx.Commit()
}
