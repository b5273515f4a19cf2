package handlers

import (
	"encoding/json"
	"net/http"

	"pack-backend/internal/models"
	"pack-backend/internal/services"
	"pack-backend/pkg/utils"
)

type AuthHandler struct {
	Service *services.UserService
}

func NewAuthHandler(s *services.UserService) *AuthHandler {
	return &AuthHandler{Service: s}
}

// Signup handles operator account registration
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.Service.Signup(r.Context(), &req)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, user)
}

// Login handles operator authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		// Uniform 401 so the response does not reveal which field failed.
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}
