package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/olegiv/vsales/internal/mail"
	"github.com/olegiv/vsales/internal/model"
	"github.com/olegiv/vsales/internal/store"
	"github.com/olegiv/vsales/internal/testutil"
)

func newTestPurchaseHandler(env *testEnv) *PurchaseHandler {
	return NewPurchaseHandler(env.purchase, env.account)
}

func TestPurchaseInfo_EmailsReceipt(t *testing.T) {
	env := newTestEnv(t)
	h := newTestPurchaseHandler(env)
	u := env.createUser(t, "john123", "secret123", model.RoleCustomer)
	v := testutil.CreateVehicle(t, env.db, "Ford", "Ranger", 3, 12345)

	body := `{"vehicleID":` + itoa(v.VehicleID) + `,"emailPurchase":true,"customer":"John Smith",` +
		`"vehicleName":"Ford Ranger","vehiclePrice":"12,345","deliveryCode":-1}`
	w := env.serve(h.PurchaseInfo, env.jsonRequest(t, RoutePurchaseInfo, body, &u))

	assertStatus(t, w.Code, http.StatusOK)
	if w.Body.String() != "success" {
		t.Errorf("body = %q; want success", w.Body.String())
	}

	msgs := env.sender.Messages()
	if len(msgs) != 1 {
		t.Fatalf("sent %d messages; want 1", len(msgs))
	}
	if msgs[0].To != "john123@example.com" {
		t.Errorf("To = %q", msgs[0].To)
	}
	if !strings.Contains(msgs[0].Body, mail.ReceiptSubject) {
		t.Errorf("receipt heading missing: %q", msgs[0].Body)
	}
	if strings.Contains(msgs[0].Body, "Pick-up code") {
		t.Errorf("delivered purchase should have no pick-up code: %q", msgs[0].Body)
	}

	got, err := store.New(env.db).GetVehicle(context.Background(), v.VehicleID)
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	if got.Stock != 2 {
		t.Errorf("stock = %d; want 2", got.Stock)
	}

	orders, err := env.purchase.OrdersFor(context.Background(), "john123")
	if err != nil {
		t.Fatalf("OrdersFor: %v", err)
	}
	if len(orders) != 1 || orders[0].Price != 12345 {
		t.Errorf("orders = %+v", orders)
	}
}

func TestPurchaseInfo_PickupCodeLine(t *testing.T) {
	env := newTestEnv(t)
	h := newTestPurchaseHandler(env)
	u := env.createUser(t, "pickup", "secret123", model.RoleCustomer)
	v := testutil.CreateVehicle(t, env.db, "Honda", "Civic", 1, 22000)

	body := `{"vehicleID":` + itoa(v.VehicleID) + `,"emailPurchase":true,"customer":"P",` +
		`"vehicleName":"Honda Civic","vehiclePrice":"22,000","deliveryCode":987654}`
	w := env.serve(h.PurchaseInfo, env.jsonRequest(t, RoutePurchaseInfo, body, &u))
	assertStatus(t, w.Code, http.StatusOK)

	msgs := env.sender.Messages()
	if len(msgs) != 1 {
		t.Fatalf("sent %d messages; want 1", len(msgs))
	}
	if !strings.Contains(msgs[0].Body, "\nPick-up code: 987654\n") {
		t.Errorf("pick-up code line missing: %q", msgs[0].Body)
	}
}

func TestPurchaseInfo_MissingDeliveryCodeMeansDelivery(t *testing.T) {
	env := newTestEnv(t)
	h := newTestPurchaseHandler(env)
	u := env.createUser(t, "nocode", "secret123", model.RoleCustomer)
	v := testutil.CreateVehicle(t, env.db, "Kia", "Soul", 1, 18000)

	body := `{"vehicleID":` + itoa(v.VehicleID) + `,"emailPurchase":true,"vehicleName":"Kia Soul","vehiclePrice":"18,000"}`
	env.serve(h.PurchaseInfo, env.jsonRequest(t, RoutePurchaseInfo, body, &u))

	msgs := env.sender.Messages()
	if len(msgs) != 1 {
		t.Fatalf("sent %d messages; want 1", len(msgs))
	}
	if strings.Contains(msgs[0].Body, "Pick-up code") {
		t.Errorf("absent deliveryCode must not produce a pick-up code: %q", msgs[0].Body)
	}
}

func TestPurchaseInfo_BadData(t *testing.T) {
	env := newTestEnv(t)
	h := newTestPurchaseHandler(env)
	u := env.createUser(t, "baddata", "secret123", model.RoleCustomer)
	v := testutil.CreateVehicle(t, env.db, "Mazda", "Miata", 1, 30000)

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"form body", "application/x-www-form-urlencoded", "address=some&card=data"},
		{"no content type", "", `{"vehicleID":1}`},
		{"malformed json", "application/json", `{"vehicleID":`},
		{"two values", "application/json", `{"vehicleID":1}{"vehicleID":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.newRequest(t, http.MethodPost, RoutePurchaseInfo, strings.NewReader(tt.body), &u)
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			w := env.serve(h.PurchaseInfo, r)

			assertStatus(t, w.Code, http.StatusBadRequest)
			if strings.TrimSpace(w.Body.String()) != "bad data" {
				t.Errorf("body = %q; want bad data", w.Body.String())
			}
		})
	}

	got, err := store.New(env.db).GetVehicle(context.Background(), v.VehicleID)
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	if got.Stock != 1 {
		t.Errorf("stock changed to %d by a rejected request", got.Stock)
	}
}

func TestPurchaseInfo_LooseJSON(t *testing.T) {
	env := newTestEnv(t)
	h := newTestPurchaseHandler(env)
	u := env.createUser(t, "loose", "secret123", model.RoleCustomer)
	v := testutil.CreateVehicle(t, env.db, "Subaru", "Outback", 5, 12345)
	id := itoa(v.VehicleID)

	tests := []struct {
		name      string
		body      string
		wantStock int64
	}{
		{"vehicle id as string", `{"vehicleID":"` + id + `","vehicleName":"Subaru Outback","vehiclePrice":"12,345"}`, 4},
		{"price as number", `{"vehicleID":` + id + `,"vehicleName":"Subaru Outback","vehiclePrice":12345}`, 3},
		{"bool and code as strings", `{"vehicleID":` + id + `,"emailPurchase":"true","vehicleName":"Subaru Outback",` +
			`"vehiclePrice":"12,345","deliveryCode":"1234"}`, 2},
		{"array body", `[]`, 2},
		{"unusable vehicle id", `{"vehicleID":"one","vehiclePrice":"1"}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.serve(h.PurchaseInfo, env.jsonRequest(t, RoutePurchaseInfo, tt.body, &u))

			assertStatus(t, w.Code, http.StatusOK)
			if w.Body.String() != "success" {
				t.Errorf("body = %q; want success", w.Body.String())
			}
			got, err := store.New(env.db).GetVehicle(context.Background(), v.VehicleID)
			if err != nil {
				t.Fatalf("GetVehicle: %v", err)
			}
			if got.Stock != tt.wantStock {
				t.Errorf("stock = %d; want %d", got.Stock, tt.wantStock)
			}
		})
	}

	msgs := env.sender.Messages()
	if len(msgs) != 1 {
		t.Fatalf("sent %d messages; want 1", len(msgs))
	}
	if !strings.Contains(msgs[0].Body, "\nPick-up code: 1234\n") {
		t.Errorf("pick-up code from string field missing: %q", msgs[0].Body)
	}

	orders, err := env.purchase.OrdersFor(context.Background(), "loose")
	if err != nil {
		t.Fatalf("OrdersFor: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("recorded %d orders; want 3", len(orders))
	}
	for _, o := range orders {
		if o.Price != 12345 {
			t.Errorf("order %s price = %d; want 12345", o.Reference, o.Price)
		}
	}
}

func TestPurchaseInfo_FailuresStillAnswerSuccess(t *testing.T) {
	env := newTestEnv(t)
	h := newTestPurchaseHandler(env)
	u := env.createUser(t, "unlucky", "secret123", model.RoleCustomer)
	soldOut := testutil.CreateVehicle(t, env.db, "Tesla", "Model3", 0, 40000)

	tests := []struct {
		name string
		user *store.User
		body string
	}{
		{"out of stock", &u, `{"vehicleID":` + itoa(soldOut.VehicleID) + `,"emailPurchase":true,"vehiclePrice":"40,000"}`},
		{"unknown vehicle", &u, `{"vehicleID":9999,"emailPurchase":true,"vehiclePrice":"1"}`},
		{"anonymous", nil, `{"vehicleID":` + itoa(soldOut.VehicleID) + `,"emailPurchase":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.serve(h.PurchaseInfo, env.jsonRequest(t, RoutePurchaseInfo, tt.body, tt.user))
			assertStatus(t, w.Code, http.StatusOK)
			if w.Body.String() != "success" {
				t.Errorf("body = %q; want success", w.Body.String())
			}
		})
	}

	if n := len(env.sender.Messages()); n != 0 {
		t.Errorf("sent %d receipts; want 0", n)
	}
	orders, err := env.purchase.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("recorded %d orders; want 0", len(orders))
	}
}

func TestSavePurchaseInfo(t *testing.T) {
	env := newTestEnv(t)
	h := newTestPurchaseHandler(env)
	u := env.createUser(t, "saver", "secret123", model.RoleCustomer)

	body := `{"address":"500 Test Ave","address2":"Unit 1","city":"Austin","state":"TX","zip":"73301",` +
		`"cardNumber":"4111111111111111","expDate":"12/28","cvv":"321"}`
	w := env.serve(h.SavePurchaseInfo, env.jsonRequest(t, RouteSavePurchaseInfo, body, &u))

	assertStatus(t, w.Code, http.StatusOK)
	if w.Body.String() != "success" {
		t.Errorf("body = %q", w.Body.String())
	}

	got, err := env.account.GetUser(context.Background(), "saver")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.City != "Austin" || got.PostalCode != "73301" {
		t.Errorf("address not saved: %+v", got)
	}
	if got.CardNumber != "4111111111111111" || got.CardExpiration != "12/28" {
		t.Errorf("card not saved: %q %q", got.CardNumber, got.CardExpiration)
	}
}

func TestSavePurchaseInfo_Rejections(t *testing.T) {
	env := newTestEnv(t)
	h := newTestPurchaseHandler(env)
	u := env.createUser(t, "reject", "secret123", model.RoleCustomer)

	w := env.serve(h.SavePurchaseInfo, env.formRequest(t, RouteSavePurchaseInfo, "address=x", &u))
	assertStatus(t, w.Code, http.StatusBadRequest)

	w = env.serve(h.SavePurchaseInfo, env.jsonRequest(t, RouteSavePurchaseInfo, `{"cardNumber":"4111111111111111"}`, nil))
	assertStatus(t, w.Code, http.StatusUnauthorized)

	w = env.serve(h.SavePurchaseInfo, env.jsonRequest(t, RouteSavePurchaseInfo,
		`{"address":"1 Main","cardNumber":"4111111111111112","expDate":"12/28","cvv":"321"}`, &u))
	assertStatus(t, w.Code, http.StatusUnprocessableEntity)

	got, err := env.account.GetUser(context.Background(), "reject")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Address != "" {
		t.Errorf("address written despite invalid card: %q", got.Address)
	}
}
