package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/vsales/internal/mail"
	"github.com/olegiv/vsales/internal/model"
	"github.com/olegiv/vsales/internal/store"
)

// Purchase errors.
var (
	ErrNotSignedIn     = errors.New("purchase requires a signed-in user")
	ErrNoEmailOnFile   = errors.New("no email address on file")
	ErrVehicleNotFound = errors.New("vehicle not found")
)

// PurchaseRequest is the JSON body posted by the checkout page. Build it
// with ParsePurchaseRequest.
type PurchaseRequest struct {
	VehicleID     int64  `json:"vehicleID"`
	EmailPurchase bool   `json:"emailPurchase"`
	Customer      string `json:"customer"`
	VehicleName   string `json:"vehicleName"`
	VehiclePrice  string `json:"vehiclePrice"`
	DeliveryCode  int    `json:"deliveryCode"`

	// Defects lists the fields that could not be decoded.
	Defects []error `json:"-"`
}

// PurchaseResult reports which steps of a purchase completed.
type PurchaseResult struct {
	StockUpdated  bool
	OrderRecorded bool
	EmailSent     bool
	Order         *store.Order
	Errors        []error
}

// Err joins every step failure, or returns nil when all attempted steps
// succeeded.
func (r PurchaseResult) Err() error {
	return errors.Join(r.Errors...)
}

func (r *PurchaseResult) fail(err error) {
	r.Errors = append(r.Errors, err)
}

// PurchaseService runs the checkout steps: stock decrement, email lookup,
// order insert and receipt. The steps are separate statements; a failure in
// one is recorded and the rest still run, except that a vehicle that is gone
// or sold out stops the purchase.
type PurchaseService struct {
	queries *store.Queries
	sender  mail.Sender
	logger  *slog.Logger
	now     func() time.Time
}

// NewPurchaseService creates a new PurchaseService.
func NewPurchaseService(db *sql.DB, sender mail.Sender, logger *slog.Logger) *PurchaseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PurchaseService{
		queries: store.New(db),
		sender:  sender,
		logger:  logger,
		now:     time.Now,
	}
}

// Purchase processes req on behalf of username.
func (s *PurchaseService) Purchase(ctx context.Context, username string, req PurchaseRequest) PurchaseResult {
	var res PurchaseResult
	defer s.logResult(username, req, &res)

	for _, d := range req.Defects {
		res.fail(d)
	}

	if username == "" {
		res.fail(ErrNotSignedIn)
		return res
	}

	if err := s.queries.DecrementStock(ctx, req.VehicleID); err != nil {
		switch {
		case errors.Is(err, store.ErrOutOfStock):
			res.fail(err)
			return res
		case errors.Is(err, sql.ErrNoRows):
			res.fail(ErrVehicleNotFound)
			return res
		default:
			res.fail(fmt.Errorf("updating stock: %w", err))
		}
	} else {
		res.StockUpdated = true
	}

	var user store.User
	var haveUser bool
	if u, err := s.queries.GetUserByUsername(ctx, username); err != nil {
		if req.EmailPurchase {
			res.fail(fmt.Errorf("fetching email: %w", err))
		}
	} else {
		user, haveUser = u, true
		if req.EmailPurchase && u.Email == "" {
			res.fail(ErrNoEmailOnFile)
		}
	}

	vehicleName := strings.TrimSpace(req.VehicleName)
	price, err := model.ParsePrice(req.VehiclePrice)
	if err != nil {
		res.fail(fmt.Errorf("recording order: %w", err))
	} else {
		order, err := s.queries.CreateOrder(ctx, store.CreateOrderParams{
			Reference: uuid.NewString(),
			Username:  username,
			Vehicle:   vehicleName,
			Price:     price,
			OrderDate: s.today(),
		})
		if err != nil {
			res.fail(fmt.Errorf("recording order: %w", err))
		} else {
			res.OrderRecorded = true
			res.Order = &order
		}
	}

	if !req.EmailPurchase || !haveUser || user.Email == "" {
		return res
	}

	customer := cleanText(req.Customer)
	if customer == "" {
		customer = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
	receipt := mail.Receipt{
		To:         user.Email,
		Customer:   customer,
		Vehicle:    vehicleName,
		Price:      price,
		Date:       s.today(),
		PickupCode: req.DeliveryCode,
	}
	if res.Order != nil {
		receipt.Reference = res.Order.Reference
	}
	if err := s.sender.Send(ctx, mail.ComposeReceipt(receipt)); err != nil {
		res.fail(fmt.Errorf("sending receipt: %w", err))
	} else {
		res.EmailSent = true
	}

	return res
}

func (s *PurchaseService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *PurchaseService) logResult(username string, req PurchaseRequest, res *PurchaseResult) {
	attrs := []any{
		"category", model.EventCategoryPurchase,
		"username", username,
		"vehicle_id", req.VehicleID,
		"stock_updated", res.StockUpdated,
		"order_recorded", res.OrderRecorded,
		"email_sent", res.EmailSent,
	}
	if err := res.Err(); err != nil {
		s.logger.Warn("purchase incomplete", append(attrs, "error", err)...)
		return
	}
	s.logger.Info("purchase completed", attrs...)
}

// ListOrders returns every recorded order.
func (s *PurchaseService) ListOrders(ctx context.Context) ([]store.Order, error) {
	return s.queries.ListOrders(ctx)
}

// OrdersFor returns the orders placed by username, oldest first.
func (s *PurchaseService) OrdersFor(ctx context.Context, username string) ([]store.Order, error) {
	return s.queries.ListOrdersByUsername(ctx, username)
}
