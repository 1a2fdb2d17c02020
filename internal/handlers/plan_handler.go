package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/repository"
	"github.com/clinic-saas-api/internal/services"
)

// PlanHandler exposes the public plan catalog and the system admin CRUD.
type PlanHandler struct {
	plans  *repository.PlanRepository
	logger *zap.Logger
}

func NewPlanHandler(plans *repository.PlanRepository, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{plans: plans, logger: logger}
}

// List returns active plans for the public catalog
func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context(), true)
	if err != nil {
		RespondError(c, services.WrapInternal("failed to list plans", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// ListAll returns every plan including deactivated ones
func (h *PlanHandler) ListAll(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context(), false)
	if err != nil {
		RespondError(c, services.WrapInternal("failed to list plans", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *PlanHandler) Create(c *gin.Context) {
	var req models.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.plans.Create(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}

	h.logger.Info("plan created", zap.String("plan_id", plan.ID.String()), zap.String("slug", plan.Slug))
	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) Get(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}

	plan, err := h.plans.GetByID(c.Request.Context(), planID)
	if err != nil {
		RespondError(c, services.WrapInternal("failed to get plan", err))
		return
	}
	if plan == nil {
		RespondError(c, services.ErrPlanNotFound)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Update applies partial plan changes. Lowering a limit never removes
// existing resources; it only blocks new ones.
func (h *PlanHandler) Update(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}

	var req models.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.plans.Update(c.Request.Context(), planID, req)
	if err != nil {
		RespondError(c, services.WrapInternal("failed to update plan", err))
		return
	}
	if plan == nil {
		RespondError(c, services.ErrPlanNotFound)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Deactivate hides the plan from new activations
func (h *PlanHandler) Deactivate(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}

	if err := h.plans.Deactivate(c.Request.Context(), planID); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
