package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinic-saas-api/internal/middleware"
	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/services"
)

type BranchHandler struct {
	branches *services.BranchService
}

func NewBranchHandler(branches *services.BranchService) *BranchHandler {
	return &BranchHandler{branches: branches}
}

func (h *BranchHandler) List(c *gin.Context) {
	branches, err := h.branches.List(c.Request.Context(), middleware.ClinicID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branches": branches})
}

func (h *BranchHandler) Create(c *gin.Context) {
	var req models.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	branch, err := h.branches.Create(c.Request.Context(), middleware.ClinicID(c), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, branch)
}

func (h *BranchHandler) Deactivate(c *gin.Context) {
	branchID, err := uuid.Parse(c.Param("branch_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid branch id"})
		return
	}

	if err := h.branches.Deactivate(c.Request.Context(), middleware.ClinicID(c), branchID); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
