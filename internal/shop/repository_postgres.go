package shop

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getShopQuery = `
		SELECT shop_id, shopkeeper_id, shop_name, latitude, longitude, created_at, updated_at
		FROM shops WHERE shop_id = $1
	`
	listShopsByKeeperQuery = `
		SELECT shop_id, shopkeeper_id, shop_name, latitude, longitude, created_at, updated_at
		FROM shops WHERE shopkeeper_id = $1 ORDER BY shop_id
	`
	insertShopQuery = `
		INSERT INTO shops (shopkeeper_id, shop_name, latitude, longitude, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$5)
		RETURNING shop_id, shopkeeper_id, shop_name, latitude, longitude, created_at, updated_at
	`
	updateShopQuery = `
		UPDATE shops
		SET shop_name = COALESCE(NULLIF($2, ''), shop_name),
			latitude = CASE WHEN $3::double precision = 0 AND $4::double precision = 0 THEN latitude ELSE $3 END,
			longitude = CASE WHEN $3::double precision = 0 AND $4::double precision = 0 THEN longitude ELSE $4 END,
			updated_at = $5
		WHERE shop_id = $1
		RETURNING shop_id, shopkeeper_id, shop_name, latitude, longitude, created_at, updated_at
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(shopID int) (Shop, error) {
	var s Shop
	err := r.db.QueryRow(getShopQuery, shopID).Scan(
		&s.ShopID, &s.ShopkeeperID, &s.ShopName, &s.Latitude, &s.Longitude, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Shop{}, ErrNotFound
		}
		return Shop{}, err
	}
	return s, nil
}

func (r *PostgresRepository) ListByShopkeeper(shopkeeperID int) ([]Shop, error) {
	rows, err := r.db.Query(listShopsByKeeperQuery, shopkeeperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Shop, 0)
	for rows.Next() {
		var s Shop
		if err := rows.Scan(&s.ShopID, &s.ShopkeeperID, &s.ShopName, &s.Latitude, &s.Longitude, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(shop Shop) (Shop, error) {
	var s Shop
	err := r.db.QueryRow(insertShopQuery, shop.ShopkeeperID, shop.ShopName, shop.Latitude, shop.Longitude, shop.CreatedAt).Scan(
		&s.ShopID, &s.ShopkeeperID, &s.ShopName, &s.Latitude, &s.Longitude, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Shop{}, err
	}
	return s, nil
}

func (r *PostgresRepository) Update(shopID int, update Shop) (Shop, error) {
	var s Shop
	err := r.db.QueryRow(updateShopQuery, shopID, update.ShopName, update.Latitude, update.Longitude, update.UpdatedAt).Scan(
		&s.ShopID, &s.ShopkeeperID, &s.ShopName, &s.Latitude, &s.Longitude, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Shop{}, ErrNotFound
		}
		return Shop{}, err
	}
	return s, nil
}
