package handlers

import (
	"net/http"

	"github.com/geocoder89/parkingcontrol/internal/domain/parkingspot"
	"github.com/geocoder89/parkingcontrol/internal/observability"
	"github.com/gin-gonic/gin"
)

// APIError is the body of every non-2xx answer, nested under "error".
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	reqID, _ := observability.RequestIDFrom(ctx.Request.Context())
	if reqID == "" {
		reqID = ctx.GetHeader("X-Request-Id")
	}

	ctx.JSON(status, errorEnvelope{Error: APIError{
		Code:      code,
		Message:   message,
		RequestID: reqID,
		Details:   details,
	}})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondInvalidID(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusBadRequest, "invalid_id", message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

// RespondConflict answers 409 with the conflict's own code and client message.
func RespondConflict(ctx *gin.Context, c parkingspot.Conflict) {
	RespondError(ctx, http.StatusConflict, c.Code(), c.Message(), nil)
}

func RespondPayloadTooLarge(ctx *gin.Context) {
	RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large", nil)
}

// RespondInternal keeps err out of the body; it goes to ctx.Errors for the access log.
func RespondInternal(ctx *gin.Context, message string, err error) {
	if err != nil {
		_ = ctx.Error(err)
	}
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}
