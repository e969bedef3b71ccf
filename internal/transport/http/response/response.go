package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeBadRequest         = 40000
	CodeUsernameExists     = 40001
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeAuthorMismatch     = 40301
	CodeInternalServer     = 50000
	CodeStoreUnavailable   = 50001
)

// Machine-readable reasons carried in the "error" field.
const (
	ReasonValidation         = "validation_error"
	ReasonDuplicateUsername  = "duplicate_username"
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonUnauthorized       = "unauthorized"
	ReasonAuthorMismatch     = "author_mismatch"
	ReasonStoreUnavailable   = "store_unavailable"
	ReasonInternal           = "internal_error"
)

type APIError struct {
	Code    int    `json:"code"`
	Reason  string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// OK writes data as the bare response body.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func Error(c *gin.Context, httpStatus, code int, reason, message string) {
	c.JSON(httpStatus, APIError{
		Code:    code,
		Reason:  reason,
		Message: message,
	})
}

func Validation(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, APIError{
		Code:    CodeBadRequest,
		Reason:  ReasonValidation,
		Message: message,
		Field:   field,
	})
}
