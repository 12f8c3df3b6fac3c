package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// bindJSON decodes and trims the request body. It writes the error response
// itself and reports whether the handler should continue. Failed binding
// tags are left to the dto command builders, which check them again on the
// trimmed values and report them with stable codes.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			dto.SanitizeStruct(req)
			return true
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, apperror.New(apperror.CodeInvalidRequest, "Request body too large", http.StatusRequestEntityTooLarge))
			return false
		}
		response.Error(c, apperror.ErrInvalidRequest(err))
		return false
	}
	dto.SanitizeStruct(req)
	return true
}

// parseLimit falls back to the default for anything that is not a positive
// integer and caps the rest.
func parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
