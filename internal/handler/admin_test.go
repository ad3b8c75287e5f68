package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/olegiv/vsales/internal/middleware"
	"github.com/olegiv/vsales/internal/model"
	"github.com/olegiv/vsales/internal/service"
	"github.com/olegiv/vsales/internal/session"
	"github.com/olegiv/vsales/internal/store"
	"github.com/olegiv/vsales/internal/testutil"
)

func newTestAdminHandler(env *testEnv) *AdminHandler {
	return NewAdminHandler(env.renderer, env.sm, env.inventory, env.account, env.purchase)
}

func TestUpdateVehicle(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAdminHandler(env)
	admin := env.createUser(t, "Admin", "admin-pass", model.RoleAdmin)
	v := testutil.CreateVehicle(t, env.db, "Make", "ModelX", 1, 1000)

	tests := []struct {
		name      string
		form      string
		wantFlash string
		wantType  string
	}{
		{"valid", "name=Make+ModelX&stock=5&price=15%2C000", "Vehicle updated", "success"},
		{"no space in name", "name=MakeModelX&stock=5&price=15000", "invalid name", "error"},
		{"negative stock", "name=Make+ModelX&stock=-1&price=15000", "invalid stock", "error"},
		{"bad price", "name=Make+ModelX&stock=1&price=abc", "invalid price", "error"},
		{"unknown vehicle", "name=Nope+Nothing&stock=1&price=1", "Vehicle not found", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.formRequest(t, RouteVehicleInventory, tt.form, &admin)
			w := env.serve(h.UpdateVehicle, r)

			assertRedirect(t, w, RouteVehicleInventory)
			msg, typ := env.flash(r)
			if !strings.HasPrefix(msg, tt.wantFlash) {
				t.Errorf("flash = %q; want prefix %q", msg, tt.wantFlash)
			}
			if typ != tt.wantType {
				t.Errorf("flash type = %q; want %q", typ, tt.wantType)
			}
		})
	}

	got, err := store.New(env.db).GetVehicle(context.Background(), v.VehicleID)
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	if got.Stock != 5 || got.Price != 15000 {
		t.Errorf("vehicle = %+v; want stock 5 price 15000", got)
	}
}

func TestVehicleInventoryPage(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAdminHandler(env)
	admin := env.createUser(t, "Admin", "admin-pass", model.RoleAdmin)
	testutil.CreateVehicle(t, env.db, "Toyota", "Corolla", 4, 21000)

	w := env.serve(h.VehicleInventory, env.newRequest(t, http.MethodGet, RouteVehicleInventory, nil, &admin))
	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), "<li>Toyota Corolla 4</li>") {
		t.Errorf("vehicle missing in %q", w.Body.String())
	}
}

func TestSalesReport(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAdminHandler(env)
	admin := env.createUser(t, "Admin", "admin-pass", model.RoleAdmin)
	buyer := env.createUser(t, "buyer", "buyer-pass", model.RoleCustomer)
	v := testutil.CreateVehicle(t, env.db, "One", "A", 2, 1000)

	for range 2 {
		env.purchase.Purchase(context.Background(), buyer.Username, service.PurchaseRequest{
			VehicleID:    v.VehicleID,
			VehicleName:  "One A",
			VehiclePrice: "1,000",
			DeliveryCode: model.NoPickupCode,
		})
	}

	w := env.serve(h.SalesReport, env.newRequest(t, http.MethodGet, RouteSalesReport, nil, &admin))
	assertStatus(t, w.Code, http.StatusOK)
	body := w.Body.String()
	if strings.Count(body, "<tr>One A</tr>") != 2 {
		t.Errorf("expected two order rows in %q", body)
	}
	if !strings.Contains(body, "total=$2,000") {
		t.Errorf("expected total in %q", body)
	}
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAdminHandler(env)
	admin := env.createUser(t, "Admin", "admin-pass", model.RoleAdmin)
	env.createUser(t, "existing_user", "pw123456", model.RoleCustomer)

	r := env.formRequest(t, RouteUpdateUser,
		"username=existing_user&first-name=NewFirst&last-name=NewLast&new-username=newuser&email=new%40example.com", &admin)
	w := env.serve(h.UpdateUser, r)

	assertRedirect(t, w, RouteUpdateUser)
	if msg, typ := env.flash(r); msg != "User newuser updated" || typ != "success" {
		t.Errorf("flash = %q/%q", msg, typ)
	}

	got, err := env.account.GetUser(context.Background(), "newuser")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.FirstName != "NewFirst" || got.LastName != "NewLast" || got.Email != "new@example.com" {
		t.Errorf("user = %+v", got)
	}
}

func TestUpdateUser_Errors(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAdminHandler(env)
	admin := env.createUser(t, "Admin", "admin-pass", model.RoleAdmin)
	env.createUser(t, "someone", "pw123456", model.RoleCustomer)

	tests := []struct {
		name      string
		form      string
		wantFlash string
	}{
		{"unknown user", "username=ghost&first-name=X", "User not found"},
		{"bad email", "username=someone&email=not-an-email", "invalid email"},
		{"bad new username", "username=someone&new-username=a", "invalid username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.formRequest(t, RouteUpdateUser, tt.form, &admin)
			w := env.serve(h.UpdateUser, r)
			assertRedirect(t, w, RouteUpdateUser)
			msg, typ := env.flash(r)
			if !strings.HasPrefix(msg, tt.wantFlash) || typ != "error" {
				t.Errorf("flash = %q/%q; want %q/error", msg, typ, tt.wantFlash)
			}
		})
	}
}

func TestUpdateUser_RenameSelfKeepsSession(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAdminHandler(env)
	admin := env.createUser(t, "Admin", "admin-pass", model.RoleAdmin)

	r := env.formRequest(t, RouteUpdateUser, "username=Admin&new-username=Boss", &admin)
	env.serve(h.UpdateUser, r)

	id, ok := session.Current(r.Context(), env.sm)
	if !ok || id.Username != "Boss" {
		t.Errorf("session identity = %+v, %v; want Boss", id, ok)
	}
}

func TestUpdateUser_RenamedUserSessionFollows(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAdminHandler(env)
	admin := env.createUser(t, "Admin", "admin-pass", model.RoleAdmin)
	u := env.createUser(t, "old_name", "pw123456", model.RoleCustomer)

	// the customer's session, saved before the rename
	before := env.newRequest(t, http.MethodGet, "/", nil, &u)
	token, _, err := env.sm.Commit(before.Context())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	w := env.serve(h.UpdateUser, env.formRequest(t, RouteUpdateUser, "username=old_name&new-username=new_name", &admin))
	assertRedirect(t, w, RouteUpdateUser)

	ctx, err := env.sm.Load(context.Background(), token)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var seen string
	env.serve(func(_ http.ResponseWriter, r *http.Request) {
		seen = middleware.GetUsername(r)
	}, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))

	if seen != "new_name" {
		t.Errorf("username seen by handler = %q; want new_name", seen)
	}
	if id, ok := session.Current(ctx, env.sm); !ok || id.Username != "new_name" || id.UserID != u.ID {
		t.Errorf("session identity = %+v, %v; want new_name", id, ok)
	}
}

func TestUpdateUserForm(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAdminHandler(env)
	admin := env.createUser(t, "Admin", "admin-pass", model.RoleAdmin)
	env.createUser(t, "listed", "pw123456", model.RoleCustomer)

	w := env.serve(h.UpdateUserForm, env.newRequest(t, http.MethodGet, RouteUpdateUser, nil, &admin))
	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), "<li>listed</li>") {
		t.Errorf("user list missing in %q", w.Body.String())
	}
}
