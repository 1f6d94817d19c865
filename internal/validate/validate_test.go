package validate

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/garnizeh/frota/internal/apperr"
)

func TestNew_CompilesAllSchemas(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, op := range []string{Signin, Register, AdminCreate, AdminUpdate, CompanyCreate, CompanyUpdate, OperatorCreate, OperatorUpdate, DriverCreate, DriverUpdate, VehicleCreate, VehicleUpdate} {
		if _, ok := r.GetSchema(op); !ok {
			t.Fatalf("schema %q not registered", op)
		}
	}
}

func TestValidate(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name      string
		op        string
		body      string
		wantField string
		wantErr   bool
	}{
		{"admin ok", AdminCreate, `{"name":"Root","email":"root@example.com","password":"123456"}`, "", false},
		{"admin short password", AdminCreate, `{"name":"Root","email":"root@example.com","password":"123"}`, "password", true},
		{"admin missing email", AdminCreate, `{"name":"Root","password":"123456"}`, "email", true},
		{"company short password", CompanyCreate, `{"name":"Acme","email":"a@example.com","password":"1234567","cnpj":"12345678000199"}`, "password", true},
		{"company short cnpj", CompanyCreate, `{"name":"Acme","email":"a@example.com","password":"12345678","cnpj":"123"}`, "cnpj", true},
		{"driver bad status", DriverCreate, `{"name":"D","email":"d@example.com","password":"12345678","cnh":"1","status":"FLYING"}`, "status", true},
		{"register bad role", Register, `{"name":"X","email":"x@example.com","password":"123456","role":"ADMIN"}`, "role", true},
		{"update may be empty", DriverUpdate, `{}`, "", false},
		{"wrong type", DriverUpdate, `{"unassignVehicle":"yes"}`, "unassignVehicle", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Validate(context.Background(), tt.op, []byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, apperr.ErrBadRequest) {
				t.Fatalf("expected bad request, got %v", err)
			}
			var ae *apperr.Error
			if errors.As(err, &ae) && ae.Field != tt.wantField {
				t.Fatalf("field = %q, want %q (%s)", ae.Field, tt.wantField, ae.Message)
			}
		})
	}
}

func TestValidate_InvalidJSON(t *testing.T) {
	r, _ := New()
	err := r.Validate(context.Background(), Signin, []byte(`{not json`))
	if !errors.Is(err, apperr.ErrBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestLoad_RejectsBrokenSchema(t *testing.T) {
	fsys := fstest.MapFS{"s/broken.json": {Data: []byte(`{"type":`)}}
	if _, err := Load(fsys, "s"); err == nil {
		t.Fatalf("expected compile error")
	}
}
