package http

import (
	"net/http"

	"pack-backend/internal/handlers"
	"pack-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	customerHandler *handlers.CustomerHandler,
	archiveHandler *handlers.ArchiveHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/api/health", healthHandler.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Protected API routes - Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.ListCustomers).Methods("GET")
	customersAPI.HandleFunc("", customerHandler.CreateCustomer).Methods("POST")
	customersAPI.HandleFunc("/{name}", customerHandler.GetCustomer).Methods("GET")
	customersAPI.HandleFunc("/{name}", authMiddleware.RequireRole("admin")(http.HandlerFunc(customerHandler.DeleteCustomer)).ServeHTTP).Methods("DELETE")
	customersAPI.HandleFunc("/{name}/panels", customerHandler.ListPanels).Methods("GET")
	customersAPI.HandleFunc("/{name}/status/refresh", customerHandler.RefreshStatus).Methods("POST")
	customersAPI.HandleFunc("/{name}/archive", customerHandler.ArchiveCustomer).Methods("POST")
	customersAPI.HandleFunc("/{name}/ship", customerHandler.ShipCustomer).Methods("POST")
	customersAPI.HandleFunc("/{name}/ship/cancel", customerHandler.CancelShipment).Methods("POST")

	// Protected API routes - Archive records
	archivesAPI := r.PathPrefix("/api/archives").Subrouter()
	archivesAPI.Use(authMiddleware.Authenticate)
	archivesAPI.HandleFunc("", archiveHandler.ListArchives).Methods("GET")
	archivesAPI.HandleFunc("/{id}", archiveHandler.GetArchive).Methods("GET")
	archivesAPI.HandleFunc("/{id}/restore", archiveHandler.RestoreArchive).Methods("POST")
	archivesAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(archiveHandler.DeleteArchive)).ServeHTTP).Methods("DELETE")

	return r
}
