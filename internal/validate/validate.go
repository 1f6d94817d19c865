// Package validate checks request bodies against the JSON schema registered
// for each operation.
package validate

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/frota/internal/apperr"
)

//go:embed schemas/*.json
var embedded embed.FS

// Operation names, one per schema file.
const (
	Signin         = "signin"
	Register       = "register"
	AdminCreate    = "admin-create"
	AdminUpdate    = "admin-update"
	CompanyCreate  = "company-create"
	CompanyUpdate  = "company-update"
	OperatorCreate = "operator-create"
	OperatorUpdate = "operator-update"
	DriverCreate   = "driver-create"
	DriverUpdate   = "driver-update"
	VehicleCreate  = "vehicle-create"
	VehicleUpdate  = "vehicle-update"
)

// Registry holds compiled schemas keyed by operation.
type Registry struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// New compiles the built-in schemas.
func New() (*Registry, error) {
	return Load(embedded, "schemas")
}

// Load compiles every *.json file under dir; the file name without
// extension becomes the operation name.
func Load(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read schemas dir: %w", err)
	}

	cache := make(map[string]*jsonschema.Schema, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		b, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", e.Name(), err)
		}
		cache[strings.TrimSuffix(e.Name(), ".json")] = rs
	}

	return &Registry{cache: cache}, nil
}

// GetSchema returns the compiled schema for an operation.
func (r *Registry) GetSchema(op string) (*jsonschema.Schema, bool) {
	r.mu.RLock()
	s, ok := r.cache[op]
	r.mu.RUnlock()

	return s, ok
}

// Validate checks body against the operation's schema. The first violation
// is returned as a BadRequest naming the offending field.
func (r *Registry) Validate(ctx context.Context, op string, body []byte) error {
	rs, ok := r.GetSchema(op)
	if !ok {
		return fmt.Errorf("no schema registered for %q", op)
	}

	keyErrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return apperr.BadRequest("invalid json body")
	}
	if len(keyErrs) == 0 {
		return nil
	}

	ke := keyErrs[0]
	return apperr.InvalidField(fieldOf(ke), ke.Message)
}

// fieldOf maps a key error to the request field it concerns. Missing
// required properties are reported at the root with the name quoted in the
// message.
func fieldOf(ke jsonschema.KeyError) string {
	field := strings.Trim(ke.PropertyPath, "/")
	if field != "" {
		return field
	}
	if _, rest, ok := strings.Cut(ke.Message, `"`); ok {
		if name, _, ok := strings.Cut(rest, `"`); ok {
			return name
		}
	}
	return ""
}
