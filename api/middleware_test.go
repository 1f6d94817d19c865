package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garnizeh/frota/api"
	"github.com/garnizeh/frota/internal/auth"
	"github.com/garnizeh/frota/internal/policy"
	"github.com/garnizeh/frota/internal/tokenstore"
	"github.com/garnizeh/frota/pkg/models"
)

func TestLoggingMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	handler := api.LoggingMiddleware(next)
	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "ok" {
		t.Fatalf("unexpected body: %q", string(b))
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := api.CORSMiddleware(next)

	// OPTIONS should return 204 and not call next
	reqOpt := httptest.NewRequest(http.MethodOptions, "/cors", nil)
	wOpt := httptest.NewRecorder()
	handler.ServeHTTP(wOpt, reqOpt)
	resOpt := wOpt.Result()
	defer resOpt.Body.Close()
	if resOpt.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for OPTIONS, got %d", resOpt.StatusCode)
	}
	if got := resOpt.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header set, got %q", got)
	}

	// GET should pass through and set headers
	reqGet := httptest.NewRequest(http.MethodGet, "/cors", nil)
	wGet := httptest.NewRecorder()
	handler.ServeHTTP(wGet, reqGet)
	resGet := wGet.Result()
	defer resGet.Body.Close()
	if resGet.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for GET, got %d", resGet.StatusCode)
	}
	if got := resGet.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, "PATCH") {
		t.Fatalf("expected Allow-Methods to include PATCH, got %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	// handler that panics
	pan := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := api.RecoveryMiddleware(pan)
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 from panic recovery, got %d", res.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body.Error != "Internal Server Error" {
		t.Fatalf("unexpected body for recovery: %+v (%v)", body, err)
	}

	// normal handler should pass through
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler2 := api.RecoveryMiddleware(ok)
	w2 := httptest.NewRecorder()
	handler2.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w2.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for normal path, got %d", w2.Result().StatusCode)
	}
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("s3cr3t", time.Hour)
	revoker := tokenstore.NewMemory()

	var seen policy.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := api.ClaimsFrom(r.Context()); ok {
			seen = c.Actor()
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := api.JWTAuthMiddleware(tokens, revoker)(next)

	valid, claims, err := tokens.Issue(policy.Actor{AccountID: "acc-1", Email: "a@b.com", Role: models.RoleCompany, CompanyID: "co-1"})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	other, _, err := auth.NewTokenManager("other", time.Hour).Issue(policy.Actor{AccountID: "x", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	revokedTok, revokedClaims, err := tokens.Issue(policy.Actor{AccountID: "acc-2", Role: models.RoleDriver})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	if err := revoker.Revoke(context.Background(), revokedClaims.ID, revokedClaims.ExpiresAt.Time); err != nil {
		t.Fatalf("failed to revoke: %v", err)
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "role": "ADMIN", "exp": time.Now().Add(time.Hour).Unix()}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "MissingHeader", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "EmptyBearer", authHeader: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "WrongScheme", authHeader: "Basic " + valid, wantStatus: http.StatusUnauthorized},
		{name: "BadToken", authHeader: "Bearer bad.token.here", wantStatus: http.StatusUnauthorized},
		{name: "WrongSecret", authHeader: "Bearer " + other, wantStatus: http.StatusUnauthorized},
		{name: "AlgNone", authHeader: "Bearer " + unsigned, wantStatus: http.StatusUnauthorized},
		{name: "Revoked", authHeader: "Bearer " + revokedTok, wantStatus: http.StatusUnauthorized},
		{name: "Valid", authHeader: "Bearer " + valid, wantStatus: http.StatusOK},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/jwt", nil)
			if c.authHeader != "" {
				req.Header.Set("Authorization", c.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Result().StatusCode != c.wantStatus {
				t.Fatalf("%s: want %d got %d", c.name, c.wantStatus, w.Result().StatusCode)
			}
		})
	}

	if seen.AccountID != "acc-1" || seen.CompanyID != "co-1" || seen.Role != models.RoleCompany {
		t.Fatalf("claims not propagated: %+v (jti %s)", seen, claims.ID)
	}
}

func TestRequirePermission(t *testing.T) {
	tokens := auth.NewTokenManager("s3cr3t", time.Hour)
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	guarded := api.JWTAuthMiddleware(tokens, nil)(api.RequirePermission(policy.Vehicles, policy.List)(ok))

	cases := []struct {
		role models.Role
		want int
	}{
		{models.RoleAdmin, http.StatusOK},
		{models.RoleCompany, http.StatusForbidden},
		{models.RoleOperator, http.StatusForbidden},
		{models.RoleDriver, http.StatusForbidden},
	}
	for _, c := range cases {
		t.Run(string(c.role), func(t *testing.T) {
			tok, _, err := tokens.Issue(policy.Actor{AccountID: "a", Role: c.role})
			if err != nil {
				t.Fatalf("issue: %v", err)
			}
			req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			w := httptest.NewRecorder()
			guarded.ServeHTTP(w, req)
			if w.Code != c.want {
				t.Fatalf("want %d got %d", c.want, w.Code)
			}
			if c.want == http.StatusForbidden {
				b, _ := io.ReadAll(w.Body)
				if !strings.Contains(string(b), `"error"`) {
					t.Fatalf("expected error body, got %s", b)
				}
			}
		})
	}

	// Without claims in context the guard refuses outright.
	w := httptest.NewRecorder()
	api.RequirePermission(policy.Vehicles, policy.List)(ok)(w, httptest.NewRequest(http.MethodGet, "/vehicles", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", w.Code)
	}
}
