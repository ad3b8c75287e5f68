package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/vsales/internal/auth"
	"github.com/olegiv/vsales/internal/model"
)

// SeedOptions controls what Seed creates.
type SeedOptions struct {
	AdminUsername string
	AdminPassword string // generated and logged once when empty
	AdminEmail    string
	BcryptCost    int
	Vehicles      bool
}

// sampleVehicles is the starter catalog used when vehicle seeding is enabled.
var sampleVehicles = []CreateVehicleParams{
	{Make: "Toyota", Model: "Camry", Stock: 5, Price: 26420},
	{Make: "Honda", Model: "Civic", Stock: 8, Price: 23950},
	{Make: "Ford", Model: "F-150", Stock: 3, Price: 36570},
	{Make: "Tesla", Model: "Model 3", Stock: 2, Price: 38990},
	{Make: "Chevrolet", Model: "Malibu", Stock: 4, Price: 25100},
	{Make: "Subaru", Model: "Outback", Stock: 6, Price: 28895},
}

// Seed creates the admin account and, optionally, a starter catalog.
// It is idempotent.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	queries := New(db)

	if err := seedAdmin(ctx, queries, opts); err != nil {
		return err
	}

	if !opts.Vehicles {
		return nil
	}

	count, err := queries.CountVehicles(ctx)
	if err != nil {
		return fmt.Errorf("counting vehicles: %w", err)
	}
	if count > 0 {
		slog.Info("vehicles already present, skipping catalog seed", "count", count)
		return nil
	}

	for _, v := range sampleVehicles {
		if _, err := queries.CreateVehicle(ctx, v); err != nil {
			return fmt.Errorf("creating vehicle %s %s: %w", v.Make, v.Model, err)
		}
	}
	slog.Info("seeded vehicle catalog", "count", len(sampleVehicles))

	return nil
}

func seedAdmin(ctx context.Context, queries *Queries, opts SeedOptions) error {
	_, err := queries.GetUserByUsername(ctx, opts.AdminUsername)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	password := opts.AdminPassword
	generated := false
	if password == "" {
		password, err = randomPassword()
		if err != nil {
			return fmt.Errorf("generating admin password: %w", err)
		}
		generated = true
	}

	passwordHash, err := auth.HashPassword(password, opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		FirstName:    "Site",
		LastName:     "Administrator",
		Username:     opts.AdminUsername,
		Email:        opts.AdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	if generated {
		slog.Info("created admin user with generated password; change it after first login",
			"id", user.ID,
			"username", user.Username,
			"password", password,
		)
	} else {
		slog.Info("created admin user", "id", user.ID, "username", user.Username)
	}

	return nil
}

func randomPassword() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
