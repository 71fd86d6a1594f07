package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/KXX-Hub/kxx-digital-album/internal/api/shared/errors"
	"github.com/KXX-Hub/kxx-digital-album/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, apierrors.NewValidationError(message))
}

// respondUnauthorized responds with an unauthorized error
func respondUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError(message))
}

// respondError maps an executor error to its status and responds with it.
// Unexpected errors are logged and hidden from the caller.
func respondError(c *gin.Context, err error, message string) {
	status, apiErr := apierrors.FromError(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.ErrorCtx(c.Request.Context(), err,
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}
	c.JSON(status, apiErr)
}
