package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/finleaf/finops/internal/billing"
	"github.com/finleaf/finops/internal/httpx"
	"github.com/finleaf/finops/internal/services"
)

type ReceivableHandler struct {
	Svc *services.ReceivableService
	Log zerolog.Logger
}

func NewReceivableHandler(svc *services.ReceivableService, log zerolog.Logger) *ReceivableHandler {
	return &ReceivableHandler{Svc: svc, Log: log}
}

// List: GET /receivables?client_id=&kind=mrr|one_time|mixed
func (h *ReceivableHandler) List(w http.ResponseWriter, r *http.Request) {
	cid, err := strconv.Atoi(r.URL.Query().Get("client_id"))
	if err != nil || cid <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_client_id", nil)
		return
	}
	var entries any
	var listErr error
	if kind := r.URL.Query().Get("kind"); kind != "" {
		switch billing.Kind(kind) {
		case billing.KindMRR, billing.KindOneTime, billing.KindMixed:
			entries, listErr = h.Svc.ListByKind(uint(cid), billing.Kind(kind))
		default:
			httpx.JSONError(w, http.StatusBadRequest, "invalid_kind", nil)
			return
		}
	} else {
		entries, listErr = h.Svc.List(uint(cid))
	}
	if listErr != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_receivables", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": entries})
}

// Regenerate: POST /receivables/regenerate – reprojects pending rows for a
// client. Rows already invoiced or paid are left untouched.
func (h *ReceivableHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID      uint   `json:"client_id"`
		StartMonth    string `json:"start_month"`
		HorizonMonths int    `json:"horizon_months"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ClientID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "missing_client_id", nil)
		return
	}
	start := billing.MonthOf(time.Now())
	if req.StartMonth != "" {
		m, err := billing.ParseMonth(req.StartMonth)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_start_month", map[string]string{"start_month": "expected YYYY-MM"})
			return
		}
		start = m
	}
	entries, err := h.Svc.Regenerate(req.ClientID, start, req.HorizonMonths)
	if errors.Is(err, services.ErrClientNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Uint("client_id", req.ClientID).Msg("receivable regeneration failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_regenerate", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": entries, "total": len(entries)})
}
