package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/olegiv/vsales/internal/model"
	"github.com/olegiv/vsales/internal/store"
)

// ErrUserNotFound is returned when an update matches no user.
var ErrUserNotFound = errors.New("user not found")

// Form identifiers posted by the update-payment page.
const (
	FormMailing = "mail-form"
	FormPayment = "payment-form"
)

// UpdateUserInput carries the admin user-edit form.
type UpdateUserInput struct {
	Username    string
	FirstName   string
	LastName    string
	NewUsername string
	Email       string
}

// MailingInput is a postal address.
type MailingInput struct {
	Address    string `json:"address"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"zip"`
}

// PaymentInput is a card. SecurityCode is validated and then dropped.
type PaymentInput struct {
	Name         string
	CardNumber   string
	Expiration   string
	SecurityCode string
}

// PurchaseInfo is the JSON body of the checkout page's "save info" action.
type PurchaseInfo struct {
	MailingInput
	CardNumber string `json:"cardNumber"`
	ExpDate    string `json:"expDate"`
	CVV        string `json:"cvv"`
}

// AccountService updates user records.
type AccountService struct {
	db      *sql.DB
	queries *store.Queries
	now     func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{
		db:      db,
		queries: store.New(db),
		now:     time.Now,
	}
}

// GetUser returns the user with the given username.
func (s *AccountService) GetUser(ctx context.Context, username string) (store.User, error) {
	u, err := s.queries.GetUserByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrUserNotFound
	}
	return u, err
}

// ListUsers returns every user.
func (s *AccountService) ListUsers(ctx context.Context) ([]store.User, error) {
	return s.queries.ListUsers(ctx)
}

// UpdateUser rewrites a user's names, username and email in one statement.
// Empty fields keep their current values.
func (s *AccountService) UpdateUser(ctx context.Context, in UpdateUserInput) (store.User, error) {
	current, err := s.GetUser(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return store.User{}, err
	}

	newUsername := strings.TrimSpace(in.NewUsername)
	if newUsername == "" {
		newUsername = current.Username
	} else if err := model.ValidateUsername(newUsername); err != nil {
		return store.User{}, err
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = current.Email
	} else if _, err := mail.ParseAddress(email); err != nil {
		return store.User{}, &model.ValidationError{Field: "email", Reason: "is not a valid address"}
	}

	n, err := s.queries.UpdateUserProfile(ctx, store.UpdateUserProfileParams{
		FirstName:   orDefault(cleanText(in.FirstName), current.FirstName),
		LastName:    orDefault(cleanText(in.LastName), current.LastName),
		NewUsername: newUsername,
		Email:       email,
		UpdatedAt:   s.now(),
		Username:    current.Username,
	})
	if err != nil {
		return store.User{}, fmt.Errorf("updating user: %w", err)
	}
	if n == 0 {
		return store.User{}, ErrUserNotFound
	}

	return s.GetUser(ctx, newUsername)
}

// UpdateMailing stores the postal address of username.
func (s *AccountService) UpdateMailing(ctx context.Context, username string, in MailingInput) error {
	return s.updateMailing(ctx, s.queries, username, in)
}

func (s *AccountService) updateMailing(ctx context.Context, q *store.Queries, username string, in MailingInput) error {
	n, err := q.UpdateUserMailing(ctx, store.UpdateUserMailingParams{
		Address:    cleanText(in.Address),
		Address2:   cleanText(in.Address2),
		City:       cleanText(in.City),
		State:      cleanText(in.State),
		PostalCode: cleanText(in.PostalCode),
		UpdatedAt:  s.now(),
		Username:   username,
	})
	if err != nil {
		return fmt.Errorf("updating address: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePayment stores the card and cardholder name of username.
func (s *AccountService) UpdatePayment(ctx context.Context, username string, in PaymentInput) error {
	number, err := validateCard(in.CardNumber, in.Expiration, in.SecurityCode)
	if err != nil {
		return err
	}
	first, last := model.SplitFullName(cleanText(in.Name))
	if first == "" {
		return &model.ValidationError{Field: "name", Reason: "is required"}
	}

	n, err := s.queries.UpdateUserPayment(ctx, store.UpdateUserPaymentParams{
		FirstName:      first,
		LastName:       last,
		CardNumber:     number,
		CardExpiration: strings.TrimSpace(in.Expiration),
		UpdatedAt:      s.now(),
		Username:       username,
	})
	if err != nil {
		return fmt.Errorf("updating payment: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SavePurchaseInfo stores address and card together; either both are
// written or neither is.
func (s *AccountService) SavePurchaseInfo(ctx context.Context, username string, in PurchaseInfo) error {
	number, err := validateCard(in.CardNumber, in.ExpDate, in.CVV)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := s.queries.WithTx(tx)
	if err := s.updateMailing(ctx, q, username, in.MailingInput); err != nil {
		return err
	}
	if _, err := q.UpdateUserCard(ctx, store.UpdateUserCardParams{
		CardNumber:     number,
		CardExpiration: strings.TrimSpace(in.ExpDate),
		UpdatedAt:      s.now(),
		Username:       username,
	}); err != nil {
		return fmt.Errorf("updating card: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing purchase info: %w", err)
	}
	return nil
}

func validateCard(number, expiration, securityCode string) (string, error) {
	normalized, err := model.NormalizeCardNumber(number)
	if err != nil {
		return "", err
	}
	if err := model.ValidateExpiration(strings.TrimSpace(expiration)); err != nil {
		return "", err
	}
	if err := model.ValidateSecurityCode(strings.TrimSpace(securityCode)); err != nil {
		return "", err
	}
	return normalized, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
