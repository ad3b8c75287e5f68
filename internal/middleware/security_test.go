package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func securityHeadersFor(t *testing.T, cfg SecurityHeadersConfig, path string) http.Header {
	t.Helper()
	rec := httptest.NewRecorder()
	SecurityHeaders(cfg)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Header()
}

func TestSecurityHeaders_Storefront(t *testing.T) {
	tests := []struct {
		name       string
		isDev      bool
		wantHSTS   string
		wantScript string
	}{
		{"production", false, "max-age=31536000; includeSubDomains", "script-src 'self';"},
		{"development", true, "", "script-src 'self' 'unsafe-inline';"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSecurityHeadersConfig(tt.isDev)

			// pages, checkout JSON and static assets are all covered
			for _, path := range []string{"/", "/purchase-info", "/static/js/purchase.js"} {
				h := securityHeadersFor(t, cfg, path)

				if got := h.Get("Strict-Transport-Security"); got != tt.wantHSTS {
					t.Errorf("%s: HSTS = %q, want %q", path, got, tt.wantHSTS)
				}
				if csp := h.Get("Content-Security-Policy"); !strings.Contains(csp, tt.wantScript) {
					t.Errorf("%s: CSP %q lacks %q", path, csp, tt.wantScript)
				}
				if got := h.Get("X-Content-Type-Options"); got != "nosniff" {
					t.Errorf("%s: X-Content-Type-Options = %q", path, got)
				}
				if got := h.Get("X-Frame-Options"); got != "SAMEORIGIN" {
					t.Errorf("%s: X-Frame-Options = %q", path, got)
				}
				if got := h.Get("Referrer-Policy"); got != "strict-origin-when-cross-origin" {
					t.Errorf("%s: Referrer-Policy = %q", path, got)
				}
			}
		})
	}
}

func TestDefaultCSP_SameOriginOnly(t *testing.T) {
	for _, isDev := range []bool{false, true} {
		csp := DefaultSecurityHeadersConfig(isDev).ContentSecurityPolicy

		for _, remote := range []string{"https:", "http:", "*"} {
			if strings.Contains(csp, remote) {
				t.Errorf("dev=%v: CSP allows %q sources: %s", isDev, remote, csp)
			}
		}
		if !strings.Contains(csp, "object-src 'none'") {
			t.Errorf("dev=%v: CSP should block plugins: %s", isDev, csp)
		}
		if !strings.Contains(csp, "form-action 'self'") {
			t.Errorf("dev=%v: sign-in and payment forms must post to the same origin: %s", isDev, csp)
		}
	}

	csp := DefaultSecurityHeadersConfig(false).ContentSecurityPolicy
	if !strings.HasPrefix(csp, "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:") {
		t.Errorf("CSP order = %s", csp)
	}
}

func TestDefaultPermissionsPolicy_DisablesPayment(t *testing.T) {
	pp := DefaultSecurityHeadersConfig(false).PermissionsPolicy
	for _, feature := range []string{"payment=()", "camera=()", "geolocation=()"} {
		if !strings.Contains(pp, feature) {
			t.Errorf("Permissions-Policy %q lacks %s", pp, feature)
		}
	}
}

func TestSecurityHeaders_HSTSOptions(t *testing.T) {
	tests := []struct {
		name string
		cfg  SecurityHeadersConfig
		want string
	}{
		{"max age only", SecurityHeadersConfig{HSTSMaxAge: 600}, "max-age=600"},
		{"preload", SecurityHeadersConfig{HSTSMaxAge: 63072000, HSTSIncludeSubDomains: true, HSTSPreload: true},
			"max-age=63072000; includeSubDomains; preload"},
		{"zero max age", SecurityHeadersConfig{HSTSIncludeSubDomains: true}, ""},
		{"development", SecurityHeadersConfig{IsDevelopment: true, HSTSMaxAge: 600}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := securityHeadersFor(t, tt.cfg, "/").Get("Strict-Transport-Security"); got != tt.want {
				t.Errorf("HSTS = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildCSP_UnknownDirectivesLast(t *testing.T) {
	got := buildCSP(map[string]string{
		"upgrade-insecure-requests": "",
		"img-src":                   "'self'",
		"default-src":               "'none'",
	})
	want := "default-src 'none'; img-src 'self'; upgrade-insecure-requests"
	if got != want {
		t.Errorf("buildCSP = %q, want %q", got, want)
	}
}
