package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinic-saas-api/internal/middleware"
	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/repository"
	"github.com/clinic-saas-api/internal/services"
)

type StaffHandler struct {
	staff *services.StaffService
	users *repository.UserRepository
}

func NewStaffHandler(staff *services.StaffService, users *repository.UserRepository) *StaffHandler {
	return &StaffHandler{staff: staff, users: users}
}

func (h *StaffHandler) List(c *gin.Context) {
	clinicID := middleware.ClinicID(c)

	users, err := h.users.ListStaffByClinic(c.Request.Context(), clinicID)
	if err != nil {
		RespondError(c, services.WrapInternal("failed to list staff", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": users})
}

func (h *StaffHandler) Create(c *gin.Context) {
	var req models.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.staff.Create(c.Request.Context(), middleware.ClinicID(c), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *StaffHandler) Update(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req models.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.staff.Update(c.Request.Context(), middleware.ClinicID(c), userID, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *StaffHandler) Delete(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	caller := middleware.CurrentUser(c)
	if err := h.staff.Delete(c.Request.Context(), caller, middleware.ClinicID(c), userID); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
