package order

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getOrderQuery = `
		SELECT order_id, customer_id, shop_id, agent_id, total_amount, status, delivery_address,
			created_at, assigned_at, picked_up_at, delivered_at, updated_at
		FROM orders WHERE order_id = $1
	`
	listByCustomerQuery = `
		SELECT order_id, customer_id, shop_id, agent_id, total_amount, status, delivery_address,
			created_at, assigned_at, picked_up_at, delivered_at, updated_at
		FROM orders WHERE customer_id = $1 ORDER BY order_id DESC
	`
	listByShopsQuery = `
		SELECT order_id, customer_id, shop_id, agent_id, total_amount, status, delivery_address,
			created_at, assigned_at, picked_up_at, delivered_at, updated_at
		FROM orders WHERE shop_id = ANY($1::int[]) ORDER BY order_id DESC
	`
	listByAgentQuery = `
		SELECT order_id, customer_id, shop_id, agent_id, total_amount, status, delivery_address,
			created_at, assigned_at, picked_up_at, delivered_at, updated_at
		FROM orders WHERE agent_id = $1 ORDER BY order_id DESC
	`
	getOrderLinesQuery = `
		SELECT product_id, product_name, unit_price, quantity
		FROM order_items WHERE order_id = $1 ORDER BY product_id
	`

	cartForCheckoutQuery = `SELECT cart_id, shop_id FROM carts WHERE customer_id = $1`
	cartLinesQuery       = `
		SELECT product_id, product_name, unit_price, quantity
		FROM cart_items WHERE cart_id = $1 ORDER BY product_id
	`
	shopExistsQuery = `SELECT shop_id FROM shops WHERE shop_id = $1`

	// The decrement is conditional on remaining stock so two concurrent
	// checkouts cannot both take the last units: the row lock plus the
	// stock >= quantity guard make check-and-decrement one atomic step.
	decrementStockQuery = `
		UPDATE products SET stock = stock - $3
		WHERE product_id = $1 AND shop_id = $2 AND stock >= $3
	`
	stockLeftQuery = `SELECT product_name, stock FROM products WHERE product_id = $1 AND shop_id = $2`

	insertOrderQuery = `
		INSERT INTO orders (customer_id, shop_id, total_amount, status, delivery_address, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$6)
		RETURNING order_id
	`
	insertOrderLineQuery = `
		INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity)
		VALUES ($1,$2,$3,$4,$5)
	`
	deleteCartLinesQuery = `DELETE FROM cart_items WHERE cart_id = $1`
	deleteCartRowQuery   = `DELETE FROM carts WHERE cart_id = $1`

	// Status writes are gated on the expected current status; zero rows
	// affected means the order moved (or never existed) and nothing is
	// changed.
	transitionQuery = `
		UPDATE orders SET status = $3, updated_at = $4,
			picked_up_at = CASE WHEN $5 = 'picked_up_at' THEN $4 ELSE picked_up_at END,
			delivered_at = CASE WHEN $5 = 'delivered_at' THEN $4 ELSE delivered_at END
		WHERE order_id = $1 AND status = $2
	`
	restoreAgentQuery = `
		UPDATE users SET available = TRUE, updated_at = $2
		WHERE user_id = (SELECT agent_id FROM orders WHERE order_id = $1)
	`
	agentForAssignQuery = `
		SELECT available FROM users WHERE user_id = $1 AND role = 'delivery_agent'
	`
	claimAgentQuery = `
		UPDATE users SET available = FALSE, updated_at = $2
		WHERE user_id = $1 AND role = 'delivery_agent' AND available
	`
	assignOrderQuery = `
		UPDATE orders SET agent_id = $2, status = $3, assigned_at = $4, updated_at = $4
		WHERE order_id = $1 AND status = $5
	`
	currentStatusQuery = `SELECT status FROM orders WHERE order_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(orderID int) (Order, error) {
	o, err := r.scanOrder(r.db.QueryRow(getOrderQuery, orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	if err := r.loadLines(&o); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) ListByCustomer(customerID int) ([]Order, error) {
	return r.list(listByCustomerQuery, customerID)
}

func (r *PostgresRepository) ListByShops(shopIDs []int) ([]Order, error) {
	if len(shopIDs) == 0 {
		return []Order{}, nil
	}
	return r.list(listByShopsQuery, pq.Array(shopIDs))
}

func (r *PostgresRepository) ListByAgent(agentID int) ([]Order, error) {
	return r.list(listByAgentQuery, agentID)
}

func (r *PostgresRepository) Checkout(customerID int, deliveryAddress, now string) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	var cartID, shopID int
	if err := tx.QueryRow(cartForCheckoutQuery, customerID).Scan(&cartID, &shopID); err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrEmptyCart
		}
		return Order{}, err
	}

	rows, err := tx.Query(cartLinesQuery, cartID)
	if err != nil {
		return Order{}, err
	}
	lines := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.UnitPrice, &l.Quantity); err != nil {
			rows.Close()
			return Order{}, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Order{}, err
	}
	if len(lines) == 0 {
		return Order{}, ErrEmptyCart
	}

	var exists int
	if err := tx.QueryRow(shopExistsQuery, shopID).Scan(&exists); err != nil {
		if err != sql.ErrNoRows {
			return Order{}, err
		}
		// stale cart pointing at a deleted shop: drop it and commit only
		// that deletion
		if _, err := tx.Exec(deleteCartLinesQuery, cartID); err != nil {
			return Order{}, err
		}
		if _, err := tx.Exec(deleteCartRowQuery, cartID); err != nil {
			return Order{}, err
		}
		if err := tx.Commit(); err != nil {
			return Order{}, err
		}
		return Order{}, ErrShopNotFound
	}

	total := 0.0
	for _, l := range lines {
		res, err := tx.Exec(decrementStockQuery, l.ProductID, shopID, l.Quantity)
		if err != nil {
			return Order{}, err
		}
		if cnt, _ := res.RowsAffected(); cnt == 0 {
			stockErr := &InsufficientStockError{
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				Requested:   l.Quantity,
			}
			var name string
			var available int
			if err := tx.QueryRow(stockLeftQuery, l.ProductID, shopID).Scan(&name, &available); err == nil {
				stockErr.ProductName = name
				stockErr.Available = available
			}
			return Order{}, stockErr
		}
		total += l.UnitPrice * float64(l.Quantity)
	}

	var orderID int
	if err := tx.QueryRow(insertOrderQuery, customerID, shopID, total, StatusPending, deliveryAddress, now).Scan(&orderID); err != nil {
		return Order{}, err
	}
	for _, l := range lines {
		if _, err := tx.Exec(insertOrderLineQuery, orderID, l.ProductID, l.ProductName, l.UnitPrice, l.Quantity); err != nil {
			return Order{}, err
		}
	}

	if _, err := tx.Exec(deleteCartLinesQuery, cartID); err != nil {
		return Order{}, err
	}
	if _, err := tx.Exec(deleteCartRowQuery, cartID); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}

	return r.GetByID(orderID)
}

func (r *PostgresRepository) ApplyTransition(orderID int, tr transition, now string) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(transitionQuery, orderID, tr.from, tr.to, now, tr.stamp)
	if err != nil {
		return Order{}, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		var current Status
		if err := tx.QueryRow(currentStatusQuery, orderID).Scan(&current); err != nil {
			if err == sql.ErrNoRows {
				return Order{}, ErrNotFound
			}
			return Order{}, err
		}
		return Order{}, &InvalidTransitionError{Current: current}
	}

	if tr.restoreAvailability {
		if _, err := tx.Exec(restoreAgentQuery, orderID, now); err != nil {
			return Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}

	return r.GetByID(orderID)
}

func (r *PostgresRepository) Assign(orderID, agentID int, now string) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	var available bool
	if err := tx.QueryRow(agentForAssignQuery, agentID).Scan(&available); err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrAgentNotFound
		}
		return Order{}, err
	}
	if !available {
		return Order{}, ErrAgentUnavailable
	}

	res, err := tx.Exec(claimAgentQuery, agentID, now)
	if err != nil {
		return Order{}, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		// lost a race for the same agent
		return Order{}, ErrAgentUnavailable
	}

	res, err = tx.Exec(assignOrderQuery, orderID, agentID, StatusAssigned, now, StatusAccepted)
	if err != nil {
		return Order{}, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		var current Status
		if err := tx.QueryRow(currentStatusQuery, orderID).Scan(&current); err != nil {
			if err == sql.ErrNoRows {
				return Order{}, ErrNotFound
			}
			return Order{}, err
		}
		return Order{}, &InvalidTransitionError{Current: current}
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}

	return r.GetByID(orderID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanOrder(row rowScanner) (Order, error) {
	var (
		o           Order
		agentID     sql.NullInt64
		assignedAt  sql.NullString
		pickedUpAt  sql.NullString
		deliveredAt sql.NullString
	)
	if err := row.Scan(&o.OrderID, &o.CustomerID, &o.ShopID, &agentID, &o.TotalAmount,
		&o.Status, &o.DeliveryAddress, &o.CreatedAt, &assignedAt, &pickedUpAt, &deliveredAt, &o.UpdatedAt); err != nil {
		return Order{}, err
	}
	if agentID.Valid {
		v := int(agentID.Int64)
		o.AgentID = &v
	}
	if assignedAt.Valid {
		s := assignedAt.String
		o.AssignedAt = &s
	}
	if pickedUpAt.Valid {
		s := pickedUpAt.String
		o.PickedUpAt = &s
	}
	if deliveredAt.Valid {
		s := deliveredAt.String
		o.DeliveredAt = &s
	}
	return o, nil
}

func (r *PostgresRepository) loadLines(o *Order) error {
	rows, err := r.db.Query(getOrderLinesQuery, o.OrderID)
	if err != nil {
		return err
	}
	defer rows.Close()

	o.Lines = make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.UnitPrice, &l.Quantity); err != nil {
			return err
		}
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

func (r *PostgresRepository) list(query string, arg any) ([]Order, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.loadLines(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
