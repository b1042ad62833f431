package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/service"
)

// InventoryHandler handles inventory listing and selling endpoints.
type InventoryHandler struct {
	svc *service.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// ListInventory handles GET /inventory.
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	pulls, err := h.svc.List(r.Context(), accountID, queryLimit(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"pulls": pulls})
}

// sellRequest is the body of POST /inventory/sell.
type sellRequest struct {
	PullID uuid.UUID `json:"pull_id"`
}

// Sell handles POST /inventory/sell.
func (h *InventoryHandler) Sell(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req sellRequest
	if err := DecodeJSON(r, &req); err != nil || req.PullID == uuid.Nil {
		RespondError(w, domain.ErrValidation("pull_id is required"))
		return
	}

	result, err := h.svc.Sell(r.Context(), accountID, req.PullID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// bulkSellRequest is the body of POST /inventory/sell/bulk.
type bulkSellRequest struct {
	PullIDs []uuid.UUID `json:"pull_ids"`
}

// BulkSell handles POST /inventory/sell/bulk.
func (h *InventoryHandler) BulkSell(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req bulkSellRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.svc.BulkSell(r.Context(), accountID, req.PullIDs)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// SaleHistory handles GET /inventory/sales.
func (h *InventoryHandler) SaleHistory(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	sales, err := h.svc.SaleHistory(r.Context(), accountID, queryLimit(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"sales": sales})
}
