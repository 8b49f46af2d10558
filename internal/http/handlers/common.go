package handlers

import (
	"net/http"
	"strconv"

	"intercity/internal/http/middleware"
	"intercity/internal/services"

	"github.com/gin-gonic/gin"
)

var (
	jwtSecret = []byte("super-secret-key-change-me")
	notifier  services.Notifier
)

// SetJWTSecret wires the signing key shared with the auth middleware.
func SetJWTSecret(secret []byte) {
	if len(secret) > 0 {
		jwtSecret = secret
	}
}

// SetNotifier wires the outbound event publisher. nil disables emission.
func SetNotifier(n services.Notifier) {
	notifier = n
}

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondError(c, http.StatusBadRequest, "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid id", nil)
		return 0, false
	}
	return id, true
}

func bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{
		Notifier:  notifier,
		RequestID: middleware.GetRequestID(c),
	}
}

func scheduleService(c *gin.Context) services.ScheduleService {
	return services.ScheduleService{
		Notifier:  notifier,
		RequestID: middleware.GetRequestID(c),
	}
}
