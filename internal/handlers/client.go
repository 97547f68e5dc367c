package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/finleaf/finops/internal/httpx"
	"github.com/finleaf/finops/internal/services"
)

type ClientHandler struct {
	Svc *services.ClientService
	Log zerolog.Logger
}

func NewClientHandler(svc *services.ClientService, log zerolog.Logger) *ClientHandler {
	return &ClientHandler{Svc: svc, Log: log}
}

// queryID parses an "id" query parameter, writing the error response itself.
func queryID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	v := r.URL.Query().Get("id")
	if v == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(n), true
}

// List: GET /clients?status=active
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	clients, err := h.Svc.List(status)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": len(clients)})
}

// Create: POST /clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ClientInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	c, violations, err := h.Svc.Create(in)
	if len(violations) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("client create failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_client", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

// Get: GET /clients/get?id=
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Get(id)
	if errors.Is(err, services.ErrClientNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_get_client", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Update: POST /clients/update – partial update, absent fields untouched.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID uint `json:"id"`
		services.UpdateInput
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	c, err := h.Svc.Update(req.ID, req.UpdateInput)
	if errors.Is(err, services.ErrClientNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Uint("client_id", req.ID).Msg("client update failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_client", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// ReplacePhases: POST /clients/phases – atomic replacement of the phase list.
func (h *ClientHandler) ReplacePhases(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     uint                  `json:"id"`
		Phases []services.PhaseInput `json:"phases"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	c, err := h.Svc.ReplaceBillingPhases(req.ID, req.Phases)
	if errors.Is(err, services.ErrClientNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_replace_phases", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}
