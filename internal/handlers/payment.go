package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/finleaf/finops/internal/httpx"
	"github.com/finleaf/finops/internal/services"
)

type PaymentHandler struct {
	Svc *services.PaymentService
	Log zerolog.Logger
}

func NewPaymentHandler(svc *services.PaymentService, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{Svc: svc, Log: log}
}

// Record: POST /payments – records a payment and reconciles its invoice.
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	var in services.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	payment, invoice, err := h.Svc.Record(in)
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_amount", map[string]string{"amount": "must_be_positive"})
		return
	case errors.Is(err, services.ErrInvoiceNotFound):
		httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
		return
	case errors.Is(err, services.ErrInvoiceNotPayable):
		httpx.JSONError(w, http.StatusConflict, "invoice_not_payable", nil)
		return
	case err != nil:
		h.Log.Error().Err(err).Uint("invoice_id", in.InvoiceID).Msg("payment record failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_record_payment", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"payment": payment, "invoice": invoice})
}

// Void: POST /payments/void – reverses a payment's effect on its invoice.
func (h *PaymentHandler) Void(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID uint `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	payment, invoice, err := h.Svc.Void(req.ID)
	switch {
	case errors.Is(err, services.ErrPaymentNotFound):
		httpx.JSONError(w, http.StatusNotFound, "payment_not_found", nil)
		return
	case errors.Is(err, services.ErrPaymentAlreadyVoid):
		httpx.JSONError(w, http.StatusConflict, "payment_already_void", nil)
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_void_payment", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payment": payment, "invoice": invoice})
}

// List: GET /payments?invoice_id=
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("invoice_id"))
	if err != nil || n <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_invoice_id", nil)
		return
	}
	payments, err := h.Svc.ListForInvoice(uint(n))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_payments", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": payments, "total": len(payments)})
}
