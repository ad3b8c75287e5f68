package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/olegiv/vsales/internal/model"
	"github.com/olegiv/vsales/internal/store"
)

// InventoryService serves the catalog and the admin stock/price updates.
type InventoryService struct {
	queries *store.Queries
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(db *sql.DB) *InventoryService {
	return &InventoryService{queries: store.New(db)}
}

// ListVehicles returns the catalog ordered by vehicle id.
func (s *InventoryService) ListVehicles(ctx context.Context) ([]store.Vehicle, error) {
	return s.queries.ListVehicles(ctx)
}

// UpdateVehicle sets stock and price for the vehicle named "Make Model".
// Input problems come back as *model.ValidationError and nothing is written.
func (s *InventoryService) UpdateVehicle(ctx context.Context, name, stock, price string) error {
	vMake, vModel, err := model.SplitVehicleName(name)
	if err != nil {
		return err
	}
	stockN, err := model.ParseStock(stock)
	if err != nil {
		return err
	}
	priceN, err := model.ParsePrice(price)
	if err != nil {
		return err
	}

	n, err := s.queries.UpdateVehicleByName(ctx, store.UpdateVehicleByNameParams{
		Stock: stockN,
		Price: priceN,
		Make:  vMake,
		Model: vModel,
	})
	if err != nil {
		return fmt.Errorf("updating vehicle: %w", err)
	}
	if n == 0 {
		return ErrVehicleNotFound
	}

	slog.Info("vehicle updated",
		"category", model.EventCategoryInventory,
		"make", vMake, "model", vModel, "stock", stockN, "price", priceN)
	return nil
}
