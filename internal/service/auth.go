package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"net/mail"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/vsales/internal/auth"
	"github.com/olegiv/vsales/internal/model"
	"github.com/olegiv/vsales/internal/store"
)

// Auth errors.
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
)

var textPolicy = bluemonday.StrictPolicy()

// cleanText trims s and strips any markup from it.
func cleanText(s string) string {
	return html.UnescapeString(textPolicy.Sanitize(strings.TrimSpace(s)))
}

// SignUpInput carries the sign-up form.
type SignUpInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// AuthService creates accounts and verifies credentials.
type AuthService struct {
	queries    *store.Queries
	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(db *sql.DB, bcryptCost int) *AuthService {
	return &AuthService{
		queries:    store.New(db),
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// SignUp validates the input, hashes the password and inserts a customer.
// The username check is query-then-insert; the unique index catches a
// concurrent duplicate, which is reported as ErrUsernameTaken too.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (store.User, error) {
	username := strings.TrimSpace(in.Username)
	if err := model.ValidateUsername(username); err != nil {
		return store.User{}, err
	}
	if in.Password == "" {
		return store.User{}, &model.ValidationError{Field: "password", Reason: "is required"}
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return store.User{}, &model.ValidationError{Field: "email", Reason: "is not a valid address"}
		}
	}

	_, err := s.queries.GetUserByUsername(ctx, username)
	if err == nil {
		return store.User{}, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return store.User{}, fmt.Errorf("checking username: %w", err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return store.User{}, &model.ValidationError{Field: "password", Reason: "must be at most 72 bytes"}
		}
		return store.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		FirstName:    cleanText(in.FirstName),
		LastName:     cleanText(in.LastName),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if _, lookupErr := s.queries.GetUserByUsername(ctx, username); lookupErr == nil {
			return store.User{}, ErrUsernameTaken
		}
		return store.User{}, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// SignIn returns the user whose credentials match, or ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (store.User, error) {
	user, err := s.queries.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			auth.CheckDummy(password)
			return store.User{}, ErrInvalidCredentials
		}
		return store.User{}, fmt.Errorf("fetching user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		return store.User{}, fmt.Errorf("checking password: %w", err)
	}
	if !ok {
		return store.User{}, ErrInvalidCredentials
	}

	return user, nil
}
