package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/olegiv/vsales/internal/session"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": {Data: []byte(
			`{{define "base"}}<title>{{.Title}}</title>{{template "nav" .}}` +
				`{{if .Flash}}<div class="flash-{{.FlashType}}">{{.Flash}}</div>{{end}}` +
				`{{template "content" .}}<footer>{{.CurrentYear}}</footer>{{end}}`)},
		"partials/nav.html": {Data: []byte(
			`{{define "nav"}}{{if .Identity}}<span>{{.Identity.Username}}</span>{{else}}<a>Sign in</a>{{end}}{{end}}`)},
		"pages/home.html": {Data: []byte(
			`{{define "content"}}<p>{{.Data}}</p>{{end}}`)},
		"pages/price.html": {Data: []byte(
			`{{define "content"}}{{formatPrice .Data}}{{end}}`)},
	}
}

func TestNew(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !r.Has("home") || !r.Has("price") {
		t.Error("expected home and price pages to be parsed")
	}
	if r.Has("nav") {
		t.Error("partials should not be registered as pages")
	}
}

func TestNew_NoPages(t *testing.T) {
	fsys := fstest.MapFS{
		"layouts/base.html": {Data: []byte(`{{define "base"}}{{end}}`)},
	}
	if _, err := New(Config{TemplatesFS: fsys}); err == nil {
		t.Error("expected error when no pages exist")
	}
}

func TestNew_BadTemplate(t *testing.T) {
	fsys := testFS()
	fsys["pages/broken.html"] = &fstest.MapFile{Data: []byte(`{{define "content"}}{{.Data`)}
	if _, err := New(Config{TemplatesFS: fsys}); err == nil {
		t.Error("expected parse error")
	}
}

func TestRender(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := r.Render(w, req, "home", TemplateData{Title: "Home", Data: "<b>hi</b>"}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	body := w.Body.String()
	if !strings.Contains(body, "<title>Home</title>") {
		t.Errorf("missing title in %q", body)
	}
	if !strings.Contains(body, "&lt;b&gt;hi&lt;/b&gt;") {
		t.Errorf("data not escaped in %q", body)
	}
	if !strings.Contains(body, "Sign in") {
		t.Errorf("anonymous nav missing in %q", body)
	}
	if year := time.Now().Format("2006"); !strings.Contains(body, year) {
		t.Errorf("current year missing in %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := r.Render(w, req, "missing", TemplateData{}); err == nil {
		t.Error("expected error for unknown template")
	}
	if w.Body.Len() != 0 {
		t.Error("nothing should be written on error")
	}
}

func TestRender_FormatPrice(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := r.Render(w, req, "price", TemplateData{Data: int64(32000)}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(w.Body.String(), "$32,000") {
		t.Errorf("formatted price missing in %q", w.Body.String())
	}
}

func TestRender_FlashAndIdentity(t *testing.T) {
	sm := session.NewMemory(true)
	r, err := New(Config{TemplatesFS: testFS(), SessionManager: sm})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	if err := session.Login(ctx, sm, session.Identity{UserID: 7, Username: "jdoe", Role: "customer"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	r.SetFlash(req, "Account created", FlashSuccess)

	w := httptest.NewRecorder()
	if err := r.Render(w, req, "home", TemplateData{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	body := w.Body.String()
	if !strings.Contains(body, `<div class="flash-success">Account created</div>`) {
		t.Errorf("flash missing in %q", body)
	}
	if !strings.Contains(body, "<span>jdoe</span>") {
		t.Errorf("identity missing in %q", body)
	}

	// flash is consumed on first render
	w = httptest.NewRecorder()
	if err := r.Render(w, req, "home", TemplateData{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(w.Body.String(), "Account created") {
		t.Error("flash should be shown only once")
	}
}

func TestSetFlash_NoSessionManager(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// must not panic
	r.SetFlash(httptest.NewRequest(http.MethodGet, "/", nil), "x", FlashInfo)
}
