package handler

import (
	"net/http"
	"strconv"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/service"
)

// WalletHandler handles balance and ledger history endpoints.
type WalletHandler struct {
	svc *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc *service.WalletService) *WalletHandler {
	return &WalletHandler{svc: svc}
}

// balanceResponse is the shape of GET /wallet/balance.
type balanceResponse struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	Coins     int64  `json:"coins"`
}

// GetBalance handles GET /wallet/balance.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	account, err := h.svc.Balance(r.Context(), accountID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, balanceResponse{
		AccountID: account.ID.String(),
		Username:  account.Username,
		Coins:     account.Coins,
	})
}

// entriesResponse wraps the ledger history list.
type entriesResponse struct {
	Entries []domain.CoinEntry `json:"entries"`
}

// GetEntries handles GET /wallet/entries.
func (h *WalletHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	entries, err := h.svc.Entries(r.Context(), accountID, queryLimit(r))
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, entriesResponse{Entries: entries})
}

// queryLimit parses the optional limit query parameter; 0 means service default.
func queryLimit(r *http.Request) int {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0
	}
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
