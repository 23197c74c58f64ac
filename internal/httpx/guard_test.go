package httpx

import (
	"net/http"
	"testing"
)

func TestGuard(t *testing.T) {
	a := newTestAPI(t)
	tests := []struct {
		name      string
		header    string
		wantCode  int
		wantError string
	}{
		{"no header", "", http.StatusUnauthorized, "Access token required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Access token required"},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, "Invalid or expired token"},
		{"customer on admin route", "Bearer " + a.customer, http.StatusForbidden, "Admin access required"},
		{"admin", "Bearer " + a.admin, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(t, http.MethodGet, "/api/reports/summary", "", nil, "Authorization", tt.header)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body)
			}
			if tt.wantError != "" {
				if got := errorOf(t, rec); got != tt.wantError {
					t.Errorf("error = %q, want %q", got, tt.wantError)
				}
			}
		})
	}
}

func TestBearer(t *testing.T) {
	for in, want := range map[string]string{"Bearer abc": "abc", "bearer  xyz ": "xyz", "Bearer ": "", "abc": ""} {
		got, ok := bearer(in)
		if got != want || ok != (want != "") {
			t.Errorf("bearer(%q) = %q, %v", in, got, ok)
		}
	}
}

func TestHealthAndRoot(t *testing.T) {
	a := newTestAPI(t)
	if rec := a.do(t, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body)
	}
	rec := a.do(t, http.MethodGet, "/api/", "", nil, "Origin", "http://localhost:3000")
	if rec.Code != http.StatusOK {
		t.Fatalf("api root = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
