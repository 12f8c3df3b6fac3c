package handler

import (
	"strings"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet-related endpoints.
type WalletHandler struct {
	ledgerSvc ports.LedgerService
	querySvc  ports.QueryService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc ports.LedgerService, querySvc ports.QueryService) *WalletHandler {
	return &WalletHandler{
		ledgerSvc: ledgerSvc,
		querySvc:  querySvc,
	}
}

// Get handles GET /api/wallets/user/:userId.
func (h *WalletHandler) Get(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		response.Error(c, apperror.ErrMissingUserID())
		return
	}

	wallet, err := h.querySvc.GetWallet(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewWalletResponse(wallet))
}

// AddMoney handles POST /api/wallets/add-money.
func (h *WalletHandler) AddMoney(c *gin.Context) {
	var req dto.WalletAmountRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd, err := req.ToTopUpCommand()
	if err != nil {
		response.Error(c, err)
		return
	}

	wallet, err := h.ledgerSvc.TopUp(c.Request.Context(), cmd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewWalletResponse(wallet))
}

// Withdraw handles POST /api/wallets/withdraw.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	var req dto.WalletAmountRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd, err := req.ToWithdrawCommand()
	if err != nil {
		response.Error(c, err)
		return
	}

	wallet, err := h.ledgerSvc.Withdraw(c.Request.Context(), cmd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewWalletResponse(wallet))
}
