package user

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
	getUserByIDQuery = `
		SELECT user_id, email, password, first_name, last_name, phone, role, available, main_address_id, latitude, longitude, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	getUserByEmailQuery = `
		SELECT user_id, email, password, first_name, last_name, phone, role, available, main_address_id, latitude, longitude, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	insertUserQuery = `
		INSERT INTO users (email, password, first_name, last_name, phone, role, available, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING user_id
	`
	updateUserQuery = `
		UPDATE users
		SET first_name = COALESCE(NULLIF($2, ''), first_name),
			last_name = COALESCE(NULLIF($3, ''), last_name),
			phone = COALESCE(NULLIF($4, ''), phone),
			password = COALESCE(NULLIF($5, ''), password),
			latitude = CASE WHEN $6::double precision = 0 AND $7::double precision = 0 THEN latitude ELSE $6 END,
			longitude = CASE WHEN $6::double precision = 0 AND $7::double precision = 0 THEN longitude ELSE $7 END,
			updated_at = $8
		WHERE user_id = $1
	`
	setAvailabilityQuery = `
		UPDATE users SET available = $2, updated_at = $3 WHERE user_id = $1
	`
	setMainAddressQuery = `
		UPDATE users SET main_address_id = $2, updated_at = $3 WHERE user_id = $1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(id int) (User, error) {
	user, err := scanUser(r.db.QueryRow(getUserByIDQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	user, err := scanUser(r.db.QueryRow(getUserByEmailQuery, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	return user, nil
}

func (r *PostgresRepository) Create(user User) (User, error) {
	err := r.db.QueryRow(insertUserQuery,
		user.Email, user.Password, user.FirstName, user.LastName, user.Phone,
		user.Role, user.Available, user.Latitude, user.Longitude,
		user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
	if err != nil {
		return User{}, err
	}

	return user, nil
}

func (r *PostgresRepository) Update(id int, user User) (User, error) {
	res, err := r.db.Exec(updateUserQuery, id,
		user.FirstName, user.LastName, user.Phone, user.Password,
		user.Latitude, user.Longitude, user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return User{}, ErrNotFound
	}

	return r.GetByID(id)
}

func (r *PostgresRepository) SetAvailability(id int, available bool, updatedAt string) (User, error) {
	res, err := r.db.Exec(setAvailabilityQuery, id, available, updatedAt)
	if err != nil {
		return User{}, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return User{}, ErrNotFound
	}

	return r.GetByID(id)
}

func (r *PostgresRepository) SetMainAddress(id int, addressID int, updatedAt string) (User, error) {
	res, err := r.db.Exec(setMainAddressQuery, id, addressID, updatedAt)
	if err != nil {
		return User{}, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return User{}, ErrNotFound
	}

	return r.GetByID(id)
}

func scanUser(row rowScanner) (User, error) {
	var (
		user        User
		mainAddress sql.NullInt64
		createdAt   sql.NullString
		updatedAt   sql.NullString
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Password, &user.FirstName,
		&user.LastName, &user.Phone, &user.Role, &user.Available,
		&mainAddress, &user.Latitude, &user.Longitude, &createdAt, &updatedAt); err != nil {
		return User{}, err
	}
	if mainAddress.Valid {
		v := int(mainAddress.Int64)
		user.MainAddressID = &v
	}
	user.CreatedAt = createdAt.String
	user.UpdatedAt = updatedAt.String

	return user, nil
}
