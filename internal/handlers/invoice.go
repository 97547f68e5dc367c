package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/finleaf/finops/internal/httpx"
	"github.com/finleaf/finops/internal/models"
	"github.com/finleaf/finops/internal/services"
)

type InvoiceHandler struct {
	Svc *services.InvoiceService
	Log zerolog.Logger
}

func NewInvoiceHandler(svc *services.InvoiceService, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{Svc: svc, Log: log}
}

// invoiceJSON decorates an invoice with its read-time display status.
// Overdue is derived here, never stored.
func invoiceJSON(inv *models.Invoice) map[string]any {
	return map[string]any{
		"invoice":        inv,
		"display_status": inv.DisplayStatus(time.Now()),
	}
}

// Create: POST /invoices – raise an invoice from a pending receivable.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReceivableID uint   `json:"receivable_id"`
		Terms        string `json:"terms"`
		DueInDays    int    `json:"due_in_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ReceivableID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "missing_receivable_id", nil)
		return
	}
	inv, err := h.Svc.CreateFromReceivable(req.ReceivableID, req.Terms, req.DueInDays)
	switch {
	case errors.Is(err, services.ErrReceivableNotFound):
		httpx.JSONError(w, http.StatusNotFound, "receivable_not_found", nil)
		return
	case errors.Is(err, services.ErrReceivableNotInvoicable):
		httpx.JSONError(w, http.StatusConflict, "receivable_not_invoicable", nil)
		return
	case err != nil:
		h.Log.Error().Err(err).Uint("receivable_id", req.ReceivableID).Msg("invoice creation failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoiceJSON(inv))
}

// Get: GET /invoices/get?id=
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r)
	if !ok {
		return
	}
	inv, err := h.Svc.Get(id)
	if errors.Is(err, services.ErrInvoiceNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_get_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, invoiceJSON(inv))
}

// List: GET /invoices?client_id=
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	var clientID uint
	if v := r.URL.Query().Get("client_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_client_id", nil)
			return
		}
		clientID = uint(n)
	}
	invs, err := h.Svc.List(clientID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	now := time.Now()
	items := make([]map[string]any, 0, len(invs))
	for i := range invs {
		items = append(items, map[string]any{
			"invoice":        invs[i],
			"display_status": invs[i].DisplayStatus(now),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

// Send: POST /invoices/send – draft to sent transition.
func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.Send)
}

// Void: POST /invoices/void
func (h *InvoiceHandler) Void(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.Void)
}

func (h *InvoiceHandler) transition(w http.ResponseWriter, r *http.Request, fn func(uint) (*models.Invoice, error)) {
	var req struct {
		ID uint `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	inv, err := fn(req.ID)
	switch {
	case errors.Is(err, services.ErrInvoiceNotFound):
		httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
		return
	case errors.Is(err, services.ErrInvalidStatusChange):
		httpx.JSONError(w, http.StatusConflict, "invalid_status_change", nil)
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "invoice_transition_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, invoiceJSON(inv))
}
