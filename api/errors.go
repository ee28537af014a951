package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/Domenick1991/bookingengine/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CodeValidation       = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeCapacity         = "INSUFFICIENT_SEATS"
	CodeSeatConflict     = "SEAT_CONFLICT"
	CodeForbidden        = "FORBIDDEN"
	CodeAlreadyCancelled = "ALREADY_CANCELLED"
	CodeContention       = "BOOKING_CONTENTION"
	CodeRateLimited      = "RATE_LIMITED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInternal         = "INTERNAL_ERROR"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// Classify maps a domain error to its HTTP status and error code.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrCapacity):
		return http.StatusConflict, CodeCapacity
	case errors.Is(err, domain.ErrSeatConflict):
		return http.StatusConflict, CodeSeatConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, domain.ErrAlreadyCancelled):
		return http.StatusConflict, CodeAlreadyCancelled
	case errors.Is(err, domain.ErrContention):
		return http.StatusConflict, CodeContention
	}
	return http.StatusInternalServerError, CodeInternal
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// writeError renders err in the error envelope. Internal errors are logged and
// their text is not sent to the client.
func writeError(c *gin.Context, err error) {
	status, code := Classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
		message = "internal error"
	}
	abortWithError(c, status, code, message)
}
