package handlers

import (
	"net/http"
	"strconv"

	"pack-backend/internal/middleware"
	"pack-backend/internal/services"
	"pack-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type ArchiveHandler struct {
	Service *services.ArchiveService
}

func NewArchiveHandler(s *services.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{Service: s}
}

func (h *ArchiveHandler) ListArchives(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	records, total, err := h.Service.List(r.Context(), page, pageSize)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"total":   total,
	})
}

func (h *ArchiveHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid archive id", http.StatusBadRequest)
		return
	}

	record, err := h.Service.Detail(r.Context(), id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, record)
}

func (h *ArchiveHandler) RestoreArchive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid archive id", http.StatusBadRequest)
		return
	}

	customer, err := h.Service.Restore(r.Context(), id, middleware.OperatorName(r.Context()))
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, customer)
}

func (h *ArchiveHandler) DeleteArchive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid archive id", http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		utils.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
