package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-storefront/internal/api/shared/errors"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
)

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, apiErr *apierrors.APIError) {
	c.JSON(statusCode, apierrors.Wrap(apiErr))
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondNotFound sends a 404 Not Found response
func respondNotFound(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusNotFound, apierrors.NewNotFoundError(message, details...))
}

// respondValidationError sends a 400 Bad Request with validation error
func respondValidationError(c *gin.Context, details string) {
	respondWithError(c, http.StatusBadRequest, apierrors.NewValidationError(details))
}

// respondTooManyRequests sends a 429 Too Many Requests response
func respondTooManyRequests(c *gin.Context, message string) {
	respondWithError(c, http.StatusTooManyRequests, apierrors.NewTooManyRequestsError(message))
}

// respondBidRejected sends the reject reason with 401 for anonymous bidders and 409 otherwise
func respondBidRejected(c *gin.Context, err error) {
	reason, _ := domain.RejectReason(err)
	status := http.StatusConflict
	if reason == domain.BidRejectUnauthenticated {
		status = http.StatusUnauthorized
	}
	respondWithError(c, status, apierrors.NewBidRejectedError(string(reason), err.Error()))
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.ErrorCtx(c.Request.Context(), err, fields...)
	respondWithError(c, http.StatusInternalServerError, apierrors.NewInternalError(message))
}
