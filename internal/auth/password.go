// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides password hashing and verification utilities
// using bcrypt with a per-hash random salt.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 13

// MaxPasswordLength is the longest input bcrypt will hash.
const MaxPasswordLength = 72

// ErrPasswordTooLong is returned when the password exceeds MaxPasswordLength bytes.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword creates a bcrypt hash of the password at the given cost.
// A cost outside bcrypt's range falls back to DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("generating hash: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a password against a bcrypt hash.
// A mismatch is reported as (false, nil); a malformed hash is an error.
func CheckPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("comparing hash: %w", err)
	}
}

// dummyHash is compared against when no user exists so that unknown
// usernames take as long to reject as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("vsales-timing-equalizer"), bcrypt.MinCost)

// CheckDummy burns one bcrypt comparison and always reports false.
func CheckDummy(password string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return false
}
