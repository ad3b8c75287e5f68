package handler

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/vsales/internal/auth"
	"github.com/olegiv/vsales/internal/middleware"
	"github.com/olegiv/vsales/internal/render"
	"github.com/olegiv/vsales/internal/service"
	"github.com/olegiv/vsales/internal/session"
	"github.com/olegiv/vsales/internal/store"
	"github.com/olegiv/vsales/internal/testutil"
)

// testCost keeps bcrypt fast in tests.
const testCost = 4

// testPages are minimal page templates; each prints the flash so tests
// can assert on it.
func testPages() fstest.MapFS {
	fsys := fstest.MapFS{
		"layouts/base.html": {Data: []byte(
			`{{define "base"}}<title>{{.Title}}</title>{{if .Flash}}<p class="flash {{.FlashType}}">{{.Flash}}</p>{{end}}{{template "content" .}}{{end}}`)},
	}
	for _, name := range []string{"home", "sign-in", "forgot-password", "purchase"} {
		fsys["pages/"+name+".html"] = &fstest.MapFile{Data: []byte(`{{define "content"}}` + name + `{{end}}`)}
	}
	fsys["pages/sign-up.html"] = &fstest.MapFile{Data: []byte(
		`{{define "content"}}sign-up{{with .Data}} value="{{.Username}}"{{end}}{{end}}`)}
	fsys["pages/update-payment.html"] = &fstest.MapFile{Data: []byte(
		`{{define "content"}}update-payment {{.Data.Address}}{{range .Data.Orders}}<tr>{{.Vehicle}}</tr>{{end}}{{end}}`)}
	fsys["pages/sales-report.html"] = &fstest.MapFile{Data: []byte(
		`{{define "content"}}{{range .Data.Orders}}<tr>{{.Vehicle}}</tr>{{end}}total={{formatPrice .Data.Total}}{{end}}`)}
	fsys["pages/vehicle-inventory.html"] = &fstest.MapFile{Data: []byte(
		`{{define "content"}}{{range .Data}}<li>{{.Make}} {{.Model}} {{.Stock}}</li>{{end}}{{end}}`)}
	fsys["pages/update-user.html"] = &fstest.MapFile{Data: []byte(
		`{{define "content"}}{{range .Data}}<li>{{.Username}}</li>{{end}}{{end}}`)}
	return fsys
}

// testEnv wires handlers to a migrated SQLite database and an in-memory
// session store.
type testEnv struct {
	db       *sql.DB
	sm       *scs.SessionManager
	renderer *render.Renderer
	sender   *testutil.CaptureSender

	inventory *service.InventoryService
	account   *service.AccountService
	purchase  *service.PurchaseService
	events    *service.EventService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	sm := session.NewMemory(true)
	renderer, err := render.New(render.Config{TemplatesFS: testPages(), SessionManager: sm, IsDev: true})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sender := &testutil.CaptureSender{}

	return &testEnv{
		db:        db,
		sm:        sm,
		renderer:  renderer,
		sender:    sender,
		inventory: service.NewInventoryService(db),
		account:   service.NewAccountService(db),
		purchase:  service.NewPurchaseService(db, sender, testutil.TestLoggerSilent()),
		events:    service.NewEventService(db),
	}
}

// createUser inserts a user with the given role and password.
func (e *testEnv) createUser(t *testing.T, username, password, role string) store.User {
	t.Helper()

	hash, err := auth.HashPassword(password, testCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u, err := store.New(e.db).CreateUser(context.Background(), store.CreateUserParams{
		FirstName:    "Test",
		LastName:     "User",
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// newRequest builds a request with a loaded session. A non-nil user is
// signed in.
func (e *testEnv) newRequest(t *testing.T, method, target string, body io.Reader, user *store.User) *http.Request {
	t.Helper()

	r := requestWithSession(e.sm, httptest.NewRequest(method, target, body))
	if user != nil {
		if err := session.Login(r.Context(), e.sm, session.Identity{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		}); err != nil {
			t.Fatalf("session.Login: %v", err)
		}
	}
	return r
}

// formRequest builds a POST with a urlencoded body.
func (e *testEnv) formRequest(t *testing.T, target, form string, user *store.User) *http.Request {
	t.Helper()
	r := e.newRequest(t, http.MethodPost, target, strings.NewReader(form), user)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// jsonRequest builds a POST with a JSON body.
func (e *testEnv) jsonRequest(t *testing.T, target, body string, user *store.User) *http.Request {
	t.Helper()
	r := e.newRequest(t, http.MethodPost, target, strings.NewReader(body), user)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// serve runs h behind LoadIdentity, as the router does.
func (e *testEnv) serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	middleware.LoadIdentity(e.sm, store.New(e.db))(h).ServeHTTP(w, r)
	return w
}

// flash returns the pending flash message of the request's session.
func (e *testEnv) flash(r *http.Request) (message, flashType string) {
	return e.sm.GetString(r.Context(), "flash"), e.sm.GetString(r.Context(), "flash_type")
}

// requestWithSession wraps a request with session context.
func requestWithSession(sm *scs.SessionManager, r *http.Request) *http.Request {
	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		return r
	}
	return r.WithContext(ctx)
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

// assertRedirect checks for a 303 to the given location.
func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	assertStatus(t, w.Code, http.StatusSeeOther)
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Location = %q; want %q", got, location)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
