package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/service"
)

// BattleHandler handles battle lifecycle endpoints.
type BattleHandler struct {
	svc *service.BattleService
}

// NewBattleHandler creates a new BattleHandler.
func NewBattleHandler(svc *service.BattleService) *BattleHandler {
	return &BattleHandler{svc: svc}
}

// Create handles POST /battles.
func (h *BattleHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input service.CreateInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	battle, err := h.svc.Create(r.Context(), accountID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, battle)
}

// List handles GET /battles with an optional status filter.
func (h *BattleHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.BattleStatus(r.URL.Query().Get("status"))
	battles, err := h.svc.List(r.Context(), status, queryLimit(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"battles": battles})
}

// Get handles GET /battles/{battleID}.
func (h *BattleHandler) Get(w http.ResponseWriter, r *http.Request) {
	battleID, err := battleIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	detail, err := h.svc.GetDetail(r.Context(), battleID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, detail)
}

// Join handles POST /battles/{battleID}/join.
func (h *BattleHandler) Join(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	battleID, err := battleIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	battle, err := h.svc.Join(r.Context(), battleID, accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, battle)
}

// Pull handles POST /battles/{battleID}/pull.
func (h *BattleHandler) Pull(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	battleID, err := battleIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.svc.PullRound(r.Context(), battleID, accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// Cancel handles POST /battles/{battleID}/cancel.
func (h *BattleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	battleID, err := battleIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	if err := h.svc.Cancel(r.Context(), battleID, accountID, roleFromContext(r)); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": string(domain.BattleCancelled)})
}

// Simulate handles POST /battles/{battleID}/simulate (admin only).
func (h *BattleHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	battleID, err := battleIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	battle, err := h.svc.Simulate(r.Context(), battleID, accountID, roleFromContext(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, battle)
}

func battleIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "battleID"))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid battle id")
	}
	return id, nil
}
