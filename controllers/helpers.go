package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dealer-portal-api/services"
)

// respondError translates service errors onto the HTTP surface. Validation
// failures come back as a field-to-message map so the form can keep its state
// and show per-field messages.
func respondError(c *gin.Context, err error) {
	if verrs, ok := services.AsValidationErrors(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": verrs,
		})
		return
	}

	var storage *services.StorageError
	switch {
	case errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrAccessRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrOTPInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAccountInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrProtectedModule),
		errors.Is(err, services.ErrUnknownModule),
		errors.Is(err, services.ErrAccessRequestProcessed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &storage):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage failure, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
