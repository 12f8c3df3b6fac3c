package handler

import (
	"strconv"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// MerchantHandler serves the merchant directory.
type MerchantHandler struct {
	querySvc ports.QueryService
}

// NewMerchantHandler creates a new merchant handler.
func NewMerchantHandler(querySvc ports.QueryService) *MerchantHandler {
	return &MerchantHandler{querySvc: querySvc}
}

// List handles GET /api/merchants.
func (h *MerchantHandler) List(c *gin.Context) {
	var q dto.MerchantListQuery
	_ = c.ShouldBindQuery(&q) // every field is a plain string

	params := ports.MerchantListParams{
		Category: optional(q.Category),
		Search:   optional(q.Search),
		Limit:    parseLimit(q.Limit),
	}
	if q.Featured == "true" || q.Featured == "1" {
		featured := true
		params.Featured = &featured
	}

	merchants, err := h.querySvc.ListMerchants(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewMerchantListResponse(merchants))
}

// Get handles GET /api/merchants/:id.
func (h *MerchantHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, apperror.ErrInvalidID())
		return
	}

	merchant, err := h.querySvc.GetMerchant(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewMerchantResponse(merchant))
}
