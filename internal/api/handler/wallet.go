// internal/api/handler/wallet.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gigpay/internal/api/middleware"
	"gigpay/internal/api/types"
	"gigpay/internal/domain"
	"gigpay/internal/service"
	"gigpay/internal/util"
)

// WalletHandler handles HTTP requests for wallet reads, trusted money
// movements and settlement.
type WalletHandler struct {
	ledger     service.LedgerService
	settlement service.SettlementService
	logger     *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger service.LedgerService, settlement service.SettlementService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		ledger:     ledger,
		settlement: settlement,
		logger:     logger,
	}
}

// GetWallet returns the caller's wallet, creating it on first access.
// GET /wallet
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}

	wallet, err := h.ledger.GetOrCreateWallet(r.Context(), principal.UserID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, wallet)
}

// GetTransactions returns the caller's wallet history, newest first.
// GET /wallet/transactions
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	transactions, totalCount, err := h.ledger.Transactions(r.Context(), principal.UserID, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}

// AmountRequest represents the request body for deposit and withdraw.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Deposit credits a trusted amount to the caller's wallet.
// POST /wallet/deposit
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if !req.Amount.IsPositive() {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	wallet, transaction, err := h.ledger.Deposit(r.Context(), principal.UserID, req.Amount)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":     "Deposit successful",
		"wallet":      wallet,
		"transaction": transaction,
	})
}

// Withdraw debits a trusted amount from the caller's wallet.
// POST /wallet/withdraw
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if !req.Amount.IsPositive() {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	wallet, transaction, err := h.ledger.Withdraw(r.Context(), principal.UserID, req.Amount)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":     "Withdrawal successful",
		"wallet":      wallet,
		"transaction": transaction,
	})
}

// PaymentRequest represents the request body for settlement.
type PaymentRequest struct {
	ApplicationID uuid.UUID `json:"application_id"`
}

// ProcessPayment settles a completed gig's escrow onto the worker's wallet.
// Repeating the call after a successful settlement is a no-op success.
// POST /wallet/payment
func (h *WalletHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.PrincipalFromContext(r.Context()); !ok {
		respondWithError(w, h.logger, util.ErrUnauthorized)
		return
	}

	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ApplicationID == uuid.Nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	result, err := h.settlement.Settle(r.Context(), req.ApplicationID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	message := "Payment processed successfully"
	if result.AlreadyPaid {
		message = "Payment already processed"
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message": message,
		"result":  result,
	})
}
