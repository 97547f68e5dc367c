package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/finleaf/finops/internal/ai"
	"github.com/finleaf/finops/internal/httpx"
	"github.com/finleaf/finops/internal/services"
)

// AssistHandler fronts the AI oracle. Everything the oracle returns crosses
// the schema boundary before it is shown to a caller, and nothing is
// persisted unless the caller explicitly asks for it.
type AssistHandler struct {
	Oracle  ai.Oracle
	Clients *services.ClientService
	Log     zerolog.Logger
}

func NewAssistHandler(oracle ai.Oracle, clients *services.ClientService, log zerolog.Logger) *AssistHandler {
	return &AssistHandler{Oracle: oracle, Clients: clients, Log: log}
}

// Extract: POST /extract – contract text in, validated extraction out.
func (h *AssistHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContractText string `json:"contract_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if strings.TrimSpace(req.ContractText) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"contract_text": "required"})
		return
	}
	raw, err := h.Oracle.ExtractContract(r.Context(), req.ContractText)
	if err != nil {
		h.Log.Error().Err(err).Msg("contract extraction call failed")
		httpx.JSONError(w, http.StatusBadGateway, "oracle_unavailable", nil)
		return
	}
	extraction, err := ai.ParseExtraction(raw)
	var schemaErr *ai.SchemaError
	if errors.As(err, &schemaErr) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "extraction_invalid", schemaErr.Issues)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "extraction_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, extraction)
}

// Chat: POST /clients/chat – natural-language client edit. The oracle
// proposes field changes; MRR and ARR are always recomputed server-side and
// oracle figures that disagree are reported, not applied.
func (h *AssistHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          uint   `json:"id"`
		Instruction string `json:"instruction"`
		Apply       bool   `json:"apply"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ID == 0 || strings.TrimSpace(req.Instruction) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"id": "required", "instruction": "required"})
		return
	}
	client, err := h.Clients.Get(req.ID)
	if errors.Is(err, services.ErrClientNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_get_client", nil)
		return
	}

	clientJSON, err := json.Marshal(client)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_get_client", nil)
		return
	}
	raw, err := h.Oracle.InterpretEdit(r.Context(), clientJSON, req.Instruction)
	if err != nil {
		h.Log.Error().Err(err).Uint("client_id", req.ID).Msg("chat interpretation call failed")
		httpx.JSONError(w, http.StatusBadGateway, "oracle_unavailable", nil)
		return
	}
	upd, err := ai.ParseChatUpdate(raw)
	var schemaErr *ai.SchemaError
	if errors.As(err, &schemaErr) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "chat_update_invalid", schemaErr.Issues)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "chat_update_failed", nil)
		return
	}
	if upd.ClarificationNeeded {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"clarification_needed":   true,
			"clarification_question": upd.ClarificationQuestion,
		})
		return
	}

	preview, mismatches := ai.Vet(*client, *upd)
	if len(mismatches) > 0 {
		h.Log.Warn().Uint("client_id", req.ID).Int("mismatches", len(mismatches)).
			Msg("oracle financial figures discarded in favor of recomputation")
	}
	if !req.Apply {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"preview":    preview,
			"reasoning":  upd.Reasoning,
			"mismatches": mismatches,
			"applied":    false,
		})
		return
	}
	saved, err := h.Clients.Update(req.ID, upd.Updates)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_client", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"client":     saved,
		"reasoning":  upd.Reasoning,
		"mismatches": mismatches,
		"applied":    true,
	})
}
