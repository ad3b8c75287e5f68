package store

import (
	"context"
	"time"
)

const userColumns = `id, first_name, last_name, username, email, password_hash, role,
	address, address2, city, state, postal_code, card_number, card_expiration,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.FirstName,
		&i.LastName,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.Role,
		&i.Address,
		&i.Address2,
		&i.City,
		&i.State,
		&i.PostalCode,
		&i.CardNumber,
		&i.CardExpiration,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createUser = `INSERT INTO users (first_name, last_name, username, email, password_hash, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

type CreateUserParams struct {
	FirstName    string
	LastName     string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	res, err := q.db.ExecContext(ctx, createUser,
		arg.FirstName,
		arg.LastName,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.Role,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return q.GetUserByID(ctx, id)
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = ?`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY id`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []User
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateUserProfile = `UPDATE users
SET first_name = ?, last_name = ?, username = ?, email = ?, updated_at = ?
WHERE username = ?`

type UpdateUserProfileParams struct {
	FirstName   string
	LastName    string
	NewUsername string
	Email       string
	UpdatedAt   time.Time
	Username    string
}

// UpdateUserProfile returns the number of rows changed.
func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateUserProfile,
		arg.FirstName,
		arg.LastName,
		arg.NewUsername,
		arg.Email,
		arg.UpdatedAt,
		arg.Username,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateUserMailing = `UPDATE users
SET address = ?, address2 = ?, city = ?, state = ?, postal_code = ?, updated_at = ?
WHERE username = ?`

type UpdateUserMailingParams struct {
	Address    string
	Address2   string
	City       string
	State      string
	PostalCode string
	UpdatedAt  time.Time
	Username   string
}

func (q *Queries) UpdateUserMailing(ctx context.Context, arg UpdateUserMailingParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateUserMailing,
		arg.Address,
		arg.Address2,
		arg.City,
		arg.State,
		arg.PostalCode,
		arg.UpdatedAt,
		arg.Username,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateUserPayment = `UPDATE users
SET first_name = ?, last_name = ?, card_number = ?, card_expiration = ?, updated_at = ?
WHERE username = ?`

type UpdateUserPaymentParams struct {
	FirstName      string
	LastName       string
	CardNumber     string
	CardExpiration string
	UpdatedAt      time.Time
	Username       string
}

func (q *Queries) UpdateUserPayment(ctx context.Context, arg UpdateUserPaymentParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateUserPayment,
		arg.FirstName,
		arg.LastName,
		arg.CardNumber,
		arg.CardExpiration,
		arg.UpdatedAt,
		arg.Username,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateUserCard = `UPDATE users
SET card_number = ?, card_expiration = ?, updated_at = ?
WHERE username = ?`

type UpdateUserCardParams struct {
	CardNumber     string
	CardExpiration string
	UpdatedAt      time.Time
	Username       string
}

func (q *Queries) UpdateUserCard(ctx context.Context, arg UpdateUserCardParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateUserCard,
		arg.CardNumber,
		arg.CardExpiration,
		arg.UpdatedAt,
		arg.Username,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countAdmins = `SELECT COUNT(*) FROM users WHERE role = 'admin'`

func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countAdmins).Scan(&count)
	return count, err
}
