package handler

import (
	"strings"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransactionHandler handles the transaction log endpoints.
type TransactionHandler struct {
	ledgerSvc ports.LedgerService
	querySvc  ports.QueryService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerSvc ports.LedgerService, querySvc ports.QueryService) *TransactionHandler {
	return &TransactionHandler{
		ledgerSvc: ledgerSvc,
		querySvc:  querySvc,
	}
}

// List handles GET /api/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	var q dto.TransactionListQuery
	_ = c.ShouldBindQuery(&q) // every field is a plain string

	params := ports.TransactionListParams{
		UserID: optional(q.UserID),
		Limit:  parseLimit(q.Limit),
	}
	if t := optional(q.Type); t != nil {
		txType := domain.TransactionType(*t)
		params.Type = &txType
	}
	if s := optional(q.Status); s != nil {
		status := domain.TransactionStatus(*s)
		params.Status = &status
	}

	h.list(c, params)
}

// ListByUser handles GET /api/transactions/user/:userId.
func (h *TransactionHandler) ListByUser(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		response.Error(c, apperror.ErrMissingUserID())
		return
	}

	h.list(c, ports.TransactionListParams{
		UserID: &userID,
		Limit:  parseLimit(c.Query("limit")),
	})
}

func (h *TransactionHandler) list(c *gin.Context, params ports.TransactionListParams) {
	txns, err := h.querySvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTransactionListResponse(txns))
}

// Create handles POST /api/transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req dto.TransferRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		response.Error(c, err)
		return
	}

	txn, err := h.ledgerSvc.Transfer(c.Request.Context(), cmd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewTransactionResponse(txn))
}
