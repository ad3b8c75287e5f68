package model

import (
	"strconv"
	"strings"
)

// NoPickupCode marks a purchase that is delivered rather than picked up.
const NoPickupCode = -1

// SplitVehicleName splits "Make Model" on the first space.
// Everything after the first space is the model, so "Land Rover Defender"
// yields make "Land" and model "Rover Defender".
func SplitVehicleName(name string) (vehicleMake, vehicleModel string, err error) {
	name = strings.TrimSpace(name)
	vehicleMake, vehicleModel, found := strings.Cut(name, " ")
	vehicleModel = strings.TrimSpace(vehicleModel)
	if !found || vehicleMake == "" || vehicleModel == "" {
		return "", "", &ValidationError{Field: "name", Reason: `expected "Make Model"`}
	}
	return vehicleMake, vehicleModel, nil
}

// ParsePrice parses a non-negative whole-dollar amount that may carry
// thousands separators and a leading dollar sign, e.g. "$12,345".
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, &ValidationError{Field: "price", Reason: "must be a non-negative whole number"}
	}
	return v, nil
}

// ParseStock parses a non-negative stock count.
func ParseStock(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v < 0 {
		return 0, &ValidationError{Field: "stock", Reason: "must be a non-negative whole number"}
	}
	return v, nil
}
