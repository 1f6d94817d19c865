package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	dbfs "github.com/garnizeh/frota/db"
	"github.com/garnizeh/frota/api"
	"github.com/garnizeh/frota/internal/auth"
	"github.com/garnizeh/frota/internal/config"
	dbpkg "github.com/garnizeh/frota/internal/db"
	"github.com/garnizeh/frota/internal/fleet"
	"github.com/garnizeh/frota/internal/imagestore"
	"github.com/garnizeh/frota/internal/provision"
	"github.com/garnizeh/frota/internal/repository/sqlstore"
	"github.com/garnizeh/frota/internal/tokenstore"
	"github.com/garnizeh/frota/internal/validate"
)

const (
	adminEmail    = "admin@frota.com"
	adminPassword = "12345678"
)

type testServer struct {
	*httptest.Server
	cfg *config.Config
	svc *provision.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	d, err := dbpkg.New(ctx, "sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	schemas, err := validate.New()
	if err != nil {
		t.Fatalf("failed to load schemas: %v", err)
	}

	cfg := &config.Config{Media: config.Media{Dir: t.TempDir()}}
	store := sqlstore.New(d, zap.NewNop())
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	revoker := tokenstore.NewMemory()

	ts := &testServer{cfg: cfg}
	srv := httptest.NewUnstartedServer(nil)
	cfg.Media.BaseURL = "http://" + srv.Listener.Addr().String() + "/media"
	images := imagestore.NewDisk(cfg.Media.Dir, cfg.Media.BaseURL)

	ts.svc = provision.New(store, tokens, images, revoker, zap.NewNop())
	srv.Config.Handler = api.SetupRoutes(cfg, "test", "now", api.Deps{
		Provision: ts.svc,
		Fleet:     fleet.New(store, zap.NewNop()),
		Tokens:    tokens,
		Revoker:   revoker,
		Schemas:   schemas,
		DB:        d.GetConn(),
	})
	srv.Start()
	ts.Server = srv
	t.Cleanup(srv.Close)

	if _, err := ts.svc.EnsureAdmin(ctx, provision.CreateAdminInput{
		NewAccount: provision.NewAccount{Name: "Admin", Email: adminEmail, Password: adminPassword},
	}); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	return ts
}

// do sends body as JSON and decodes the response into out when non-nil.
func (ts *testServer) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.send(t, req, token, out)
}

func (ts *testServer) send(t *testing.T, req *http.Request, token string, out any) int {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer res.Body.Close()
	b, _ := io.ReadAll(res.Body)
	if out != nil && len(b) > 0 {
		if err := json.Unmarshal(b, out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", req.Method, req.URL.Path, b, err)
		}
	}
	return res.StatusCode
}

type session struct {
	AccessToken string `json:"access_token"`
	CompanyID   string `json:"companyId"`
	DriverID    string `json:"driverId"`
}

func (ts *testServer) signin(t *testing.T, email, password string) session {
	t.Helper()
	var s session
	if code := ts.do(t, http.MethodPost, "/v1/auth/signin", "", map[string]string{"email": email, "password": password}, &s); code != http.StatusOK {
		t.Fatalf("signin %s: status %d", email, code)
	}
	return s
}

type errBody struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

type accountBody struct {
	ID      string         `json:"id"`
	Email   string         `json:"email"`
	Role    string         `json:"role"`
	Profile map[string]any `json:"profile"`
}

func (a accountBody) profileID() string {
	id, _ := a.Profile["id"].(string)
	return id
}
