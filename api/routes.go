package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/frota/internal/auth"
	"github.com/garnizeh/frota/internal/config"
	"github.com/garnizeh/frota/internal/fleet"
	"github.com/garnizeh/frota/internal/policy"
	"github.com/garnizeh/frota/internal/provision"
	"github.com/garnizeh/frota/internal/tokenstore"
	"github.com/garnizeh/frota/internal/validate"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Provision *provision.Service
	Fleet     *fleet.Service
	Tokens    *auth.TokenManager
	Revoker   tokenstore.Revoker
	Schemas   *validate.Registry
	// DB is pinged by /health when set.
	DB Pinger
}

func SetupRoutes(cfg *config.Config, version, buildTime string, deps Deps) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{DB: deps.DB}
	authHandler := NewAuthHandler(deps.Provision, deps.Schemas)
	admins := NewAdminsHandler(deps.Provision, deps.Schemas)
	companies := NewCompaniesHandler(deps.Provision, deps.Schemas)
	operators := NewOperatorsHandler(deps.Provision, deps.Schemas)
	drivers := NewDriversHandler(deps.Provision, deps.Schemas)
	vehicles := NewVehiclesHandler(deps.Fleet, deps.Schemas)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")
	r.HandleFunc("/v1/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/v1/drivers/public/{token}", drivers.Public).Methods("GET")
	if cfg != nil && cfg.Media.Dir != "" {
		r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.Media.Dir)))).Methods("GET")
	}

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddleware(deps.Tokens, deps.Revoker))

	can := func(res policy.Resource, act policy.Action, h http.HandlerFunc) http.HandlerFunc {
		return RequirePermission(res, act)(h)
	}

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")
	authV1.HandleFunc("/me", authHandler.Me).Methods("GET")

	// Admins
	apiV1.HandleFunc("/admins", can(policy.Admins, policy.Create, admins.Create)).Methods("POST")
	apiV1.HandleFunc("/admins", can(policy.Admins, policy.List, admins.List)).Methods("GET")
	apiV1.HandleFunc("/admins/by-account/{accountId}", can(policy.Admins, policy.Read, admins.GetByAccount)).Methods("GET")
	apiV1.HandleFunc("/admins/{id}", can(policy.Admins, policy.Read, admins.Get)).Methods("GET")
	apiV1.HandleFunc("/admins/{id}", can(policy.Admins, policy.Update, admins.Update)).Methods("PATCH", "PUT")
	apiV1.HandleFunc("/admins/{id}", can(policy.Admins, policy.Delete, admins.Remove)).Methods("DELETE")

	// Companies
	apiV1.HandleFunc("/companies", can(policy.Companies, policy.Create, companies.Create)).Methods("POST")
	apiV1.HandleFunc("/companies", can(policy.Companies, policy.List, companies.List)).Methods("GET")
	apiV1.HandleFunc("/companies/by-account/{accountId}", can(policy.Companies, policy.Read, companies.GetByAccount)).Methods("GET")
	apiV1.HandleFunc("/companies/{id}", can(policy.Companies, policy.Read, companies.Get)).Methods("GET")
	apiV1.HandleFunc("/companies/{id}", can(policy.Companies, policy.Update, companies.Update)).Methods("PATCH", "PUT")
	apiV1.HandleFunc("/companies/{id}", can(policy.Companies, policy.Delete, companies.Remove)).Methods("DELETE")

	// Operators
	apiV1.HandleFunc("/operators", can(policy.Operators, policy.Create, operators.Create)).Methods("POST")
	apiV1.HandleFunc("/operators", can(policy.Operators, policy.List, operators.List)).Methods("GET")
	apiV1.HandleFunc("/operators/by-company/{companyId}", can(policy.Operators, policy.List, operators.ListByCompany)).Methods("GET")
	apiV1.HandleFunc("/operators/{id}", can(policy.Operators, policy.Read, operators.Get)).Methods("GET")
	apiV1.HandleFunc("/operators/{id}", can(policy.Operators, policy.Update, operators.Update)).Methods("PATCH", "PUT")
	apiV1.HandleFunc("/operators/{id}", can(policy.Operators, policy.Delete, operators.Remove)).Methods("DELETE")

	// Drivers
	apiV1.HandleFunc("/drivers", can(policy.Drivers, policy.Create, drivers.Create)).Methods("POST")
	apiV1.HandleFunc("/drivers", can(policy.Drivers, policy.List, drivers.List)).Methods("GET")
	apiV1.HandleFunc("/drivers/by-company/{companyId}", can(policy.Drivers, policy.List, drivers.ListByCompany)).Methods("GET")
	apiV1.HandleFunc("/drivers/{id}", can(policy.Drivers, policy.Read, drivers.Get)).Methods("GET")
	apiV1.HandleFunc("/drivers/{id}", can(policy.Drivers, policy.Update, drivers.Update)).Methods("PATCH", "PUT")
	apiV1.HandleFunc("/drivers/{id}", can(policy.Drivers, policy.Delete, drivers.Remove)).Methods("DELETE")

	// Vehicles
	apiV1.HandleFunc("/vehicles", can(policy.Vehicles, policy.Create, vehicles.Create)).Methods("POST")
	apiV1.HandleFunc("/vehicles", can(policy.Vehicles, policy.List, vehicles.List)).Methods("GET")
	apiV1.HandleFunc("/vehicles/by-company", can(policy.VehiclesByCompany, policy.List, vehicles.ListByCompany)).Methods("GET")
	apiV1.HandleFunc("/vehicles/by-driver", can(policy.VehiclesByDriver, policy.List, vehicles.ListByDriver)).Methods("GET")
	apiV1.HandleFunc("/vehicles/{id}", can(policy.Vehicles, policy.Read, vehicles.Get)).Methods("GET")
	apiV1.HandleFunc("/vehicles/{id}", can(policy.Vehicles, policy.Update, vehicles.Update)).Methods("PATCH", "PUT")
	apiV1.HandleFunc("/vehicles/{id}", can(policy.Vehicles, policy.Delete, vehicles.Remove)).Methods("DELETE")

	return r
}
