package store

import (
	"context"
	"database/sql"
	"errors"
)

const vehicleColumns = `vehicle_id, make, model, stock, price`

func scanVehicle(row rowScanner) (Vehicle, error) {
	var i Vehicle
	err := row.Scan(
		&i.VehicleID,
		&i.Make,
		&i.Model,
		&i.Stock,
		&i.Price,
	)
	return i, err
}

const createVehicle = `INSERT INTO vehicles (make, model, stock, price) VALUES (?, ?, ?, ?)`

type CreateVehicleParams struct {
	Make  string
	Model string
	Stock int64
	Price int64
}

func (q *Queries) CreateVehicle(ctx context.Context, arg CreateVehicleParams) (Vehicle, error) {
	res, err := q.db.ExecContext(ctx, createVehicle, arg.Make, arg.Model, arg.Stock, arg.Price)
	if err != nil {
		return Vehicle{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Vehicle{}, err
	}
	return q.GetVehicle(ctx, id)
}

const getVehicle = `SELECT ` + vehicleColumns + ` FROM vehicles WHERE vehicle_id = ?`

func (q *Queries) GetVehicle(ctx context.Context, vehicleID int64) (Vehicle, error) {
	return scanVehicle(q.db.QueryRowContext(ctx, getVehicle, vehicleID))
}

const listVehicles = `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY vehicle_id`

func (q *Queries) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	rows, err := q.db.QueryContext(ctx, listVehicles)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Vehicle
	for rows.Next() {
		i, err := scanVehicle(rows)
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

const countVehicles = `SELECT COUNT(*) FROM vehicles`

func (q *Queries) CountVehicles(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countVehicles).Scan(&count)
	return count, err
}

const decrementStock = `UPDATE vehicles SET stock = stock - 1 WHERE vehicle_id = ? AND stock > 0`

// DecrementStock takes one unit of the vehicle. The guard on stock makes the
// check and the write a single statement, so concurrent buyers of the last
// unit cannot both succeed. It returns ErrOutOfStock when no unit is left and
// sql.ErrNoRows when the vehicle does not exist.
func (q *Queries) DecrementStock(ctx context.Context, vehicleID int64) error {
	res, err := q.db.ExecContext(ctx, decrementStock, vehicleID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := q.GetVehicle(ctx, vehicleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return err
	}
	return ErrOutOfStock
}

const updateVehicleByName = `UPDATE vehicles SET stock = ?, price = ? WHERE make = ? AND model = ?`

type UpdateVehicleByNameParams struct {
	Stock int64
	Price int64
	Make  string
	Model string
}

// UpdateVehicleByName returns the number of rows changed.
func (q *Queries) UpdateVehicleByName(ctx context.Context, arg UpdateVehicleByNameParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateVehicleByName, arg.Stock, arg.Price, arg.Make, arg.Model)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
