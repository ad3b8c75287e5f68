package store

import (
	"context"
	"time"
)

const orderColumns = `order_id, reference, username, vehicle, price, order_date`

func scanOrder(row rowScanner) (Order, error) {
	var i Order
	err := row.Scan(
		&i.OrderID,
		&i.Reference,
		&i.Username,
		&i.Vehicle,
		&i.Price,
		&i.OrderDate,
	)
	return i, err
}

const createOrder = `INSERT INTO orders (reference, username, vehicle, price, order_date) VALUES (?, ?, ?, ?, ?)`

type CreateOrderParams struct {
	Reference string
	Username  string
	Vehicle   string
	Price     int64
	OrderDate time.Time
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	res, err := q.db.ExecContext(ctx, createOrder,
		arg.Reference,
		arg.Username,
		arg.Vehicle,
		arg.Price,
		arg.OrderDate,
	)
	if err != nil {
		return Order{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Order{}, err
	}
	return q.GetOrder(ctx, id)
}

const getOrder = `SELECT ` + orderColumns + ` FROM orders WHERE order_id = ?`

func (q *Queries) GetOrder(ctx context.Context, orderID int64) (Order, error) {
	return scanOrder(q.db.QueryRowContext(ctx, getOrder, orderID))
}

const listOrders = `SELECT ` + orderColumns + ` FROM orders ORDER BY order_id`

func (q *Queries) ListOrders(ctx context.Context) ([]Order, error) {
	return q.listOrders(ctx, listOrders)
}

const listOrdersByUsername = `SELECT ` + orderColumns + ` FROM orders WHERE username = ? ORDER BY order_id`

func (q *Queries) ListOrdersByUsername(ctx context.Context, username string) ([]Order, error) {
	return q.listOrders(ctx, listOrdersByUsername, username)
}

func (q *Queries) listOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
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
