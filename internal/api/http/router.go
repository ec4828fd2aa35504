package http

import (
	"net/http"

	"toolirent/internal/security"
	"toolirent/internal/service"

	"github.com/gorilla/mux"
)

// NewRouter wires every API route. Route-level auth gates mirror the
// original access rules: tool reads are public, tool mutations and
// customer management are admin-only, rentals require authentication
// with ownership enforced by the lifecycle service.
func NewRouter(
	tokens security.TokenManager,
	auth service.AuthService,
	tools service.ToolService,
	customers service.CustomerService,
	rentals service.RentalService,
	stats service.AdminSummaryService,
) *mux.Router {
	authMW := NewAuthMiddleware(tokens)

	authHandler := NewAuthHandler(auth)
	toolHandler := NewToolHandler(tools)
	customerHandler := NewCustomerHandler(customers)
	rentalHandler := NewRentalHandler(rentals)
	summaryHandler := NewAdminSummaryHandler(stats)

	r := mux.NewRouter()
	r.Use(RequestIDMiddleware, LoggingMiddleware)

	api := r.PathPrefix("/api").Subrouter()

	// Auth
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.Handle("/auth/me", authMW.Require(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)

	// Tools: public reads
	api.HandleFunc("/tools", toolHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/tools/available", toolHandler.Available).Methods(http.MethodGet)
	api.HandleFunc("/tools/filter", toolHandler.Filter).Methods(http.MethodGet)
	api.HandleFunc("/tools/categories", toolHandler.Categories).Methods(http.MethodGet)
	api.HandleFunc("/tools/{id:[0-9]+}", toolHandler.Get).Methods(http.MethodGet)

	// Tools: admin mutations
	api.Handle("/tools", authMW.RequireAdmin(http.HandlerFunc(toolHandler.Create))).Methods(http.MethodPost)
	api.Handle("/tools/{id:[0-9]+}", authMW.RequireAdmin(http.HandlerFunc(toolHandler.Update))).Methods(http.MethodPut)
	api.Handle("/tools/{id:[0-9]+}", authMW.RequireAdmin(http.HandlerFunc(toolHandler.Delete))).Methods(http.MethodDelete)
	api.Handle("/tools/{id:[0-9]+}/stock", authMW.RequireAdmin(http.HandlerFunc(toolHandler.AdjustStock))).Methods(http.MethodPatch)

	// Customers: admin only
	api.Handle("/customers", authMW.RequireAdmin(http.HandlerFunc(customerHandler.List))).Methods(http.MethodGet)
	api.Handle("/customers", authMW.RequireAdmin(http.HandlerFunc(customerHandler.Create))).Methods(http.MethodPost)
	api.Handle("/customers/{id:[0-9]+}", authMW.RequireAdmin(http.HandlerFunc(customerHandler.Get))).Methods(http.MethodGet)
	api.Handle("/customers/{id:[0-9]+}", authMW.RequireAdmin(http.HandlerFunc(customerHandler.Update))).Methods(http.MethodPut)
	api.Handle("/customers/{id:[0-9]+}", authMW.RequireAdmin(http.HandlerFunc(customerHandler.Delete))).Methods(http.MethodDelete)

	// Rentals: authenticated; ownership decided by the policy inside the service
	api.Handle("/rentals", authMW.Require(http.HandlerFunc(rentalHandler.List))).Methods(http.MethodGet)
	api.Handle("/rentals", authMW.Require(http.HandlerFunc(rentalHandler.Create))).Methods(http.MethodPost)
	api.Handle("/rentals/{id:[0-9]+}", authMW.Require(http.HandlerFunc(rentalHandler.Get))).Methods(http.MethodGet)
	api.Handle("/rentals/{id:[0-9]+}", authMW.Require(http.HandlerFunc(rentalHandler.Update))).Methods(http.MethodPut)
	api.Handle("/rentals/{id:[0-9]+}/return", authMW.Require(http.HandlerFunc(rentalHandler.Return))).Methods(http.MethodPost)
	api.Handle("/rentals/{id:[0-9]+}", authMW.RequireAdmin(http.HandlerFunc(rentalHandler.Delete))).Methods(http.MethodDelete)

	// Admin statistics
	api.Handle("/admin/summary", authMW.RequireAdmin(http.HandlerFunc(summaryHandler.Summary))).Methods(http.MethodGet)
	api.Handle("/admin/top-tools", authMW.RequireAdmin(http.HandlerFunc(summaryHandler.TopTools))).Methods(http.MethodGet)

	return r
}
