package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinic-saas-api/internal/services"
)

// RespondError translates a domain error into an HTTP response.
// Unauthorized failures collapse to one generic message; internal errors
// never expose their cause.
func RespondError(c *gin.Context, err error) {
	var domainErr *services.DomainError
	if !errors.As(err, &domainErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	body := gin.H{"error": domainErr.Message}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}

	switch domainErr.Type {
	case services.ErrorTypeUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
	case services.ErrorTypeForbidden:
		c.JSON(http.StatusForbidden, body)
	case services.ErrorTypeNotFound:
		c.JSON(http.StatusNotFound, body)
	case services.ErrorTypeConflict:
		c.JSON(http.StatusConflict, body)
	case services.ErrorTypeValidation, services.ErrorTypeQuota:
		c.JSON(http.StatusBadRequest, body)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
