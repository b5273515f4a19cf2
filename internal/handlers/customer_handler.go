package handlers

import (
	"encoding/json"
	"net/http"

	"pack-backend/internal/middleware"
	"pack-backend/internal/models"
	"pack-backend/internal/services"
	"pack-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// CustomerHandler exposes the customer lifecycle: intake, status lookup,
// scan reconciliation, archive and shipment commands. Customers are
// addressed by name, the identifier the floor operators actually use.
type CustomerHandler struct {
	Customers *services.CustomerService
	Packing   *services.PackingService
	Lifecycle *services.LifecycleService
	Archives  *services.ArchiveService
}

func NewCustomerHandler(customers *services.CustomerService, packing *services.PackingService, lifecycle *services.LifecycleService, archives *services.ArchiveService) *CustomerHandler {
	return &CustomerHandler{
		Customers: customers,
		Packing:   packing,
		Lifecycle: lifecycle,
		Archives:  archives,
	}
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	customer, err := h.Customers.CreateCustomer(r.Context(), &req)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	customer, err := h.Packing.GetCustomer(r.Context(), name)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Customers.ListCustomers(r.Context())
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) ListPanels(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	panels, err := h.Customers.ListPanels(r.Context(), name)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, panels)
}

// RefreshStatus re-reads the scan records in the customer's working
// directory and recomputes the packing status.
func (h *CustomerHandler) RefreshStatus(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	customer, err := h.Packing.CheckAndUpdateStatus(r.Context(), name, middleware.OperatorName(r.Context()))
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) ArchiveCustomer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req models.ArchiveRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // remark is optional
	}

	record, err := h.Archives.Archive(r.Context(), name, middleware.OperatorName(r.Context()), req.Remark)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, record)
}

func (h *CustomerHandler) ShipCustomer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req models.ShipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	customer, err := h.Lifecycle.ShipCustomer(r.Context(), name, req.Mode, middleware.OperatorName(r.Context()))
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) CancelShipment(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	customer, err := h.Lifecycle.MarkNotShipped(r.Context(), name, middleware.OperatorName(r.Context()))
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.Customers.DeleteCustomer(r.Context(), name); err != nil {
		utils.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
