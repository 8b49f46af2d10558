package handlers

import (
	"net/http"

	"intercity/internal/domain"
	"intercity/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses. Capacity gets its
// own code so clients can treat it as retryable against another departure;
// ledger corruption is reported without internal detail.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsCapacity(err):
		respondError(c, http.StatusBadRequest, "insufficient_capacity", err.Error(), nil)
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsCorruption(err):
		respondError(c, http.StatusInternalServerError, "ledger_corruption", "seat ledger inconsistency detected", nil)
	case domain.IsReferenceExhausted(err):
		respondError(c, http.StatusInternalServerError, "reference_exhausted", "could not allocate a booking reference", nil)
	case domain.IsTimeout(err):
		respondError(c, http.StatusServiceUnavailable, "transaction_timeout", "store busy, please retry", nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	}
}
