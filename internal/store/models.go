package store

import "time"

type User struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	Address        string    `json:"address"`
	Address2       string    `json:"address2"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	PostalCode     string    `json:"postal_code"`
	CardNumber     string    `json:"-"`
	CardExpiration string    `json:"expiration"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Vehicle struct {
	VehicleID int64  `json:"vehicle_id"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	Stock     int64  `json:"stock"`
	Price     int64  `json:"price"`
}

type Order struct {
	OrderID   int64     `json:"order_id"`
	Reference string    `json:"reference"`
	Username  string    `json:"username"`
	Vehicle   string    `json:"vehicle"`
	Price     int64     `json:"price"`
	OrderDate time.Time `json:"date"`
}

type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
