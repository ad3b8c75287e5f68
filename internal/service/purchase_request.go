package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/olegiv/vsales/internal/model"
)

// Checkout body errors.
var (
	ErrMalformedJSON = errors.New("purchase body is not valid JSON")
	ErrNotAnObject   = errors.New("purchase body is not a JSON object")
	ErrFieldType     = errors.New("unusable purchase field")
)

// Checkout body keys.
const (
	fieldVehicleID     = "vehicleID"
	fieldEmailPurchase = "emailPurchase"
	fieldCustomer      = "customer"
	fieldVehicleName   = "vehicleName"
	fieldVehiclePrice  = "vehiclePrice"
	fieldDeliveryCode  = "deliveryCode"
)

// ParsePurchaseRequest decodes a checkout body. Only a body that is not
// valid JSON is rejected. Numbers sent as strings, strings sent as numbers
// and string booleans are accepted; a field that still cannot be used is
// left at its zero value and reported in Defects.
func ParsePurchaseRequest(body []byte) (PurchaseRequest, error) {
	req := PurchaseRequest{DeliveryCode: model.NoPickupCode}
	if !json.Valid(body) {
		return req, ErrMalformedJSON
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		req.Defects = append(req.Defects, ErrNotAnObject)
		return req, nil
	}

	defect := func(name string, err error) {
		req.Defects = append(req.Defects, fmt.Errorf("%w %s: %v", ErrFieldType, name, err))
	}

	if raw, ok := fields[fieldVehicleID]; ok {
		if n, set, err := looseInt(raw); err != nil {
			defect(fieldVehicleID, err)
		} else if set {
			req.VehicleID = n
		}
	}
	if raw, ok := fields[fieldEmailPurchase]; ok {
		if b, set, err := looseBool(raw); err != nil {
			defect(fieldEmailPurchase, err)
		} else if set {
			req.EmailPurchase = b
		}
	}
	for name, dst := range map[string]*string{
		fieldCustomer:     &req.Customer,
		fieldVehicleName:  &req.VehicleName,
		fieldVehiclePrice: &req.VehiclePrice,
	} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if s, _, err := looseString(raw); err != nil {
			defect(name, err)
		} else {
			*dst = s
		}
	}
	if raw, ok := fields[fieldDeliveryCode]; ok {
		if n, set, err := looseInt(raw); err != nil {
			defect(fieldDeliveryCode, err)
		} else if set {
			req.DeliveryCode = int(n)
		}
	}

	return req, nil
}

// looseValue decodes raw keeping numbers as json.Number.
func looseValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	err := dec.Decode(&v)
	return v, err
}

// looseInt accepts a whole number or a string holding one. Null reports
// set == false.
func looseInt(raw json.RawMessage) (n int64, set bool, err error) {
	v, err := looseValue(raw)
	if err != nil {
		return 0, false, err
	}
	switch v := v.(type) {
	case nil:
		return 0, false, nil
	case json.Number:
		n, err = parseWhole(v.String())
	case string:
		n, err = parseWhole(strings.TrimSpace(v))
	default:
		err = fmt.Errorf("want a number, got %T", v)
	}
	return n, err == nil, err
}

func parseWhole(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%s is not a whole number", s)
	}
	return int64(f), nil
}

// looseString accepts a string, or a number or boolean rendered as text.
func looseString(raw json.RawMessage) (s string, set bool, err error) {
	v, err := looseValue(raw)
	if err != nil {
		return "", false, err
	}
	switch v := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case json.Number:
		return v.String(), true, nil
	case bool:
		return strconv.FormatBool(v), true, nil
	default:
		return "", false, fmt.Errorf("want a string, got %T", v)
	}
}

// looseBool accepts a boolean, a string such as "true" or "1", or a number
// where anything but zero is true.
func looseBool(raw json.RawMessage) (b bool, set bool, err error) {
	v, err := looseValue(raw)
	if err != nil {
		return false, false, err
	}
	switch v := v.(type) {
	case nil:
		return false, false, nil
	case bool:
		return v, true, nil
	case string:
		b, err = strconv.ParseBool(strings.TrimSpace(v))
	case json.Number:
		var f float64
		f, err = v.Float64()
		b = f != 0
	default:
		err = fmt.Errorf("want a boolean, got %T", v)
	}
	return b, err == nil, err
}
