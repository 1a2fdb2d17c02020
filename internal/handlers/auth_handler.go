package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/middleware"
	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/repository"
	"github.com/clinic-saas-api/internal/services"
	"github.com/clinic-saas-api/internal/utils"
)

type AuthHandler struct {
	users    *repository.UserRepository
	tokens   *services.TokenService
	recovery *services.RecoveryService
	logger   *zap.Logger
}

func NewAuthHandler(users *repository.UserRepository, tokens *services.TokenService, recovery *services.RecoveryService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, recovery: recovery, logger: logger}
}

func newAuthResponse(user *models.User, access, refresh string) models.AuthResponse {
	resp := models.AuthResponse{AccessToken: access, RefreshToken: refresh}
	resp.User.ID = user.ID
	resp.User.Email = user.Email
	resp.User.FullName = user.FullName
	resp.User.Role = user.Role
	resp.User.ClinicID = user.ClinicID
	resp.User.BranchID = user.BranchID
	return resp
}

// Register creates a pending director account. The account can log in
// right away but holds no clinic authority until activation.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := utils.NormalizeEmail(req.Email)
	existing, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		RespondError(c, services.WrapInternal("failed to check email", err))
		return
	}
	if existing != nil {
		RespondError(c, services.ErrDuplicateEmail)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		RespondError(c, services.WrapInternal("failed to hash password", err))
		return
	}

	user, err := h.users.CreatePending(c.Request.Context(), email, req.Phone, req.FullName, hash)
	if err != nil {
		RespondError(c, services.WrapInternal("failed to create user", err))
		return
	}

	pair, err := h.tokens.Issue(user)
	if err != nil {
		RespondError(c, err)
		return
	}

	h.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	c.JSON(http.StatusCreated, newAuthResponse(user, pair.AccessToken, pair.RefreshToken))
}

// Login checks credentials and issues a token pair. Unknown email, wrong
// password and blocked account all produce the same 401.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), utils.NormalizeEmail(req.Email))
	if err != nil {
		RespondError(c, services.WrapInternal("failed to look up user", err))
		return
	}
	if user == nil || !user.IsActive || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		RespondError(c, services.ErrInvalidCredentials)
		return
	}

	pair, err := h.tokens.Issue(user)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(user, pair.AccessToken, pair.RefreshToken))
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh exchanges a refresh token for a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	access, err := h.tokens.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, user)
}

// ForgotPassword issues a reset code. The response is identical whether
// or not the email exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.recovery.RequestReset(c.Request.Context(), req.Email); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a reset code has been sent"})
}

// ResetPassword consumes a reset code, sets the new password and returns
// a fresh token pair.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, pair, err := h.recovery.ConfirmReset(c.Request.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(user, pair.AccessToken, pair.RefreshToken))
}
