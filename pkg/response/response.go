package response

import (
	"errors"
	"net/http"

	"wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error body returned to clients.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// InternalErrorResponse is written for every error that is not an AppError.
var InternalErrorResponse = ErrorResponse{
	Error: "Internal server error",
	Code:  apperror.CodeInternal,
}

// OK sends a 200 response with the bare data as body.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with the bare data as body.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500.
// Not-found bodies carry only the message.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		body := ErrorResponse{Error: appErr.Message, Code: appErr.Code}
		if appErr.HTTPStatus == http.StatusNotFound {
			body.Code = ""
		}
		c.JSON(appErr.HTTPStatus, body)
		return
	}

	c.JSON(http.StatusInternalServerError, InternalErrorResponse)
}

// Abort writes the error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
