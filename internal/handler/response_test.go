package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/olegiv/vsales/internal/model"
	"github.com/olegiv/vsales/internal/testutil"
)

func TestIsJSONRequest(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"Application/JSON", true},
		{"application/vnd.api+json", true},
		{"application/merge-patch+json; charset=utf-8", true},
		{"application/x-www-form-urlencoded", false},
		{"text/json", false},
		{"text/plain+json", false},
		{"application/jsonp", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			if got := isJSONRequest(r); got != tt.want {
				t.Errorf("isJSONRequest(%q) = %v; want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestPurchaseInfo_StructuredJSONType(t *testing.T) {
	env := newTestEnv(t)
	h := newTestPurchaseHandler(env)
	u := env.createUser(t, "vndjson", "secret123", model.RoleCustomer)
	v := testutil.CreateVehicle(t, env.db, "Volvo", "XC40", 2, 35000)

	body := `{"vehicleID":` + itoa(v.VehicleID) + `,"vehicleName":"Volvo XC40","vehiclePrice":"35,000"}`
	r := env.newRequest(t, http.MethodPost, RoutePurchaseInfo, strings.NewReader(body), &u)
	r.Header.Set("Content-Type", "application/vnd.api+json")
	w := env.serve(h.PurchaseInfo, r)

	assertStatus(t, w.Code, http.StatusOK)
	if w.Body.String() != "success" {
		t.Errorf("body = %q; want success", w.Body.String())
	}
}
