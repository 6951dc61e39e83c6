package address

import (
	"database/sql"
)

// PostgresRepository stores addresses in a dedicated table keyed to users.
type PostgresRepository struct {
	db *sql.DB
}

const (
	listAddressesQuery = `
		SELECT address_id, user_id, address_desc, phone, address_name, created_at, updated_at
		FROM addresses WHERE user_id = $1 ORDER BY address_id
	`
	getAddressQuery = `
		SELECT address_id, user_id, address_desc, phone, address_name, created_at, updated_at
		FROM addresses WHERE user_id = $1 AND address_id = $2
	`
	insertAddressQuery = `
		INSERT INTO addresses (user_id, address_desc, phone, address_name, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$5)
		RETURNING address_id, user_id, address_desc, phone, address_name, created_at, updated_at
	`
	updateAddressQuery = `
		UPDATE addresses
		SET address_desc=$3, phone=$4, address_name=$5, updated_at=$6
		WHERE user_id=$1 AND address_id=$2
		RETURNING address_id, user_id, address_desc, phone, address_name, created_at, updated_at
	`
	deleteAddressQuery = `DELETE FROM addresses WHERE user_id=$1 AND address_id=$2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetAddresses(userID int) ([]Address, error) {
	rows, err := r.db.Query(listAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.AddressID, &a.UserID, &a.AddressDesc, &a.Phone, &a.AddressName, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(userID, addressID int) (Address, error) {
	var a Address
	err := r.db.QueryRow(getAddressQuery, userID, addressID).Scan(
		&a.AddressID, &a.UserID, &a.AddressDesc, &a.Phone, &a.AddressName, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Address{}, ErrNotFound
		}
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) AddAddress(userID int, addressDesc, phone, addressName, now string) (Address, error) {
	var a Address
	err := r.db.QueryRow(insertAddressQuery, userID, addressDesc, phone, addressName, now).Scan(
		&a.AddressID, &a.UserID, &a.AddressDesc, &a.Phone, &a.AddressName, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) UpdateAddress(userID, addressID int, addressDesc, phone, addressName, now string) (Address, error) {
	var a Address
	err := r.db.QueryRow(updateAddressQuery, userID, addressID, addressDesc, phone, addressName, now).Scan(
		&a.AddressID, &a.UserID, &a.AddressDesc, &a.Phone, &a.AddressName, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Address{}, ErrNotFound
		}
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) DeleteAddress(userID, addressID int) error {
	res, err := r.db.Exec(deleteAddressQuery, userID, addressID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return ErrNotFound
	}
	return nil
}
