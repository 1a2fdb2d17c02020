package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinic-saas-api/internal/middleware"
	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/services"
)

type ActivationHandler struct {
	activation *services.ActivationService
}

func NewActivationHandler(activation *services.ActivationService) *ActivationHandler {
	return &ActivationHandler{activation: activation}
}

// Activate provisions a clinic for the authenticated director. The
// response carries fresh tokens reflecting the promoted role.
func (h *ActivationHandler) Activate(c *gin.Context) {
	var req models.ActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	resp, err := h.activation.Activate(c.Request.Context(), user, req)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
