// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain types and input parsing shared by the
// store, service, and handler layers.
package model

import (
	"regexp"
	"strings"
)

// User roles.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Username length limits.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateUsername checks length and allowed characters.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return &ValidationError{Field: "username", Reason: "must be between 3 and 32 characters"}
	}
	if !usernamePattern.MatchString(username) {
		return &ValidationError{Field: "username", Reason: "may contain only letters, digits, '.', '_' and '-'"}
	}
	return nil
}

// SplitFullName splits "First Last Name" into a first name and the remainder.
// A single word yields an empty last name.
func SplitFullName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	first, last, _ = strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
