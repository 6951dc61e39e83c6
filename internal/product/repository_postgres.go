package product

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	getProductQuery = `
		SELECT product_id, shop_id, product_name, price, stock, description, product_img, created_at, updated_at
		FROM products WHERE product_id = $1
	`
	listProductsByShopQuery = `
		SELECT product_id, shop_id, product_name, price, stock, description, product_img, created_at, updated_at
		FROM products WHERE shop_id = $1 ORDER BY product_id
	`
	insertProductQuery = `
		INSERT INTO products (shop_id, product_name, price, stock, description, product_img, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
		RETURNING product_id, shop_id, product_name, price, stock, description, product_img, created_at, updated_at
	`
	updateProductQuery = `
		UPDATE products
		SET product_name = COALESCE(NULLIF($2, ''), product_name),
			price = CASE WHEN $3::numeric < 0 THEN price ELSE $3 END,
			stock = CASE WHEN $4::int < 0 THEN stock ELSE $4 END,
			description = COALESCE(NULLIF($5, ''), description),
			product_img = COALESCE($6, product_img),
			updated_at = $7
		WHERE product_id = $1
		RETURNING product_id, shop_id, product_name, price, stock, description, product_img, created_at, updated_at
	`
	deleteProductQuery = `DELETE FROM products WHERE product_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(productID int) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductQuery, productID))
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) ListByShop(shopID int) ([]Product, error) {
	rows, err := r.db.Query(listProductsByShopQuery, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	created, err := scanProduct(r.db.QueryRow(insertProductQuery,
		p.ShopID, p.ProductName, p.Price, p.Stock, p.Description, p.ProductImg, p.CreatedAt))
	if err != nil {
		return Product{}, err
	}
	return created, nil
}

func (r *PostgresRepository) Update(productID int, p Product) (Product, error) {
	updated, err := scanProduct(r.db.QueryRow(updateProductQuery,
		productID, p.ProductName, p.Price, p.Stock, p.Description, p.ProductImg, p.UpdatedAt))
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(productID int) error {
	res, err := r.db.Exec(deleteProductQuery, productID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p    Product
		desc sql.NullString
		img  sql.NullString
	)
	if err := row.Scan(&p.ProductID, &p.ShopID, &p.ProductName, &p.Price, &p.Stock,
		&desc, &img, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	p.Description = desc.String
	if img.Valid {
		s := img.String
		p.ProductImg = &s
	}
	return p, nil
}
