package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/service"
)

// BoxHandler handles box browsing and pack opening endpoints.
type BoxHandler struct {
	svc *service.PackService
}

// NewBoxHandler creates a new BoxHandler.
func NewBoxHandler(svc *service.PackService) *BoxHandler {
	return &BoxHandler{svc: svc}
}

// ListBoxes handles GET /boxes.
func (h *BoxHandler) ListBoxes(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.svc.ListBoxes(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"boxes": boxes})
}

// GetBox handles GET /boxes/{boxID}.
func (h *BoxHandler) GetBox(w http.ResponseWriter, r *http.Request) {
	boxID, err := uuid.Parse(chi.URLParam(r, "boxID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid box id"))
		return
	}

	box, err := h.svc.GetBox(r.Context(), boxID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, box)
}

// openRequest is the body of POST /boxes/{boxID}/open.
type openRequest struct {
	Quantity int `json:"quantity"`
}

// OpenBox handles POST /boxes/{boxID}/open.
func (h *BoxHandler) OpenBox(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	boxID, err := uuid.Parse(chi.URLParam(r, "boxID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid box id"))
		return
	}

	req := openRequest{Quantity: 1}
	if r.ContentLength > 0 {
		if err := DecodeJSON(r, &req); err != nil {
			RespondError(w, domain.ErrValidation("invalid request body"))
			return
		}
	}

	result, err := h.svc.Open(r.Context(), accountID, boxID, req.Quantity)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}
