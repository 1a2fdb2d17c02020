package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/cache"
	"github.com/clinic-saas-api/internal/config"
	"github.com/clinic-saas-api/internal/database"
	"github.com/clinic-saas-api/internal/handlers"
	"github.com/clinic-saas-api/internal/middleware"
	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/queue"
	"github.com/clinic-saas-api/internal/repository"
	"github.com/clinic-saas-api/internal/services"
)

func main() {
	// Load .env if present; real deployments rely on the environment
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	dbManager := database.GetManager(cfg)
	if err := dbManager.InitPool(ctx); err != nil {
		logger.Fatal("Failed to initialize database pool", zap.Error(err))
	}
	pool := dbManager.GetPool()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}

	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to initialize Redis client", zap.Error(err))
	}

	queueClient := queue.NewClient(&cfg.Redis, logger)

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	clinicRepo := repository.NewClinicRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	branchRepo := repository.NewBranchRepository(pool)
	planRepo := repository.NewPlanRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool, redisClient, logger)
	resetCodeRepo := repository.NewResetCodeRepository(pool)
	patientRepo := repository.NewPatientRepository(pool)
	usageRepo := repository.NewUsageRepository(pool)

	// Services
	tokenService := services.NewTokenService(userRepo, cfg, logger)
	scopeService := services.NewScopeService(clinicRepo, assignmentRepo)
	quotaService := services.NewQuotaService(subscriptionRepo, planRepo, usageRepo, logger)
	recoveryService := services.NewRecoveryService(userRepo, resetCodeRepo, tokenService, queueClient, logger)
	activationService := services.NewActivationService(planRepo, clinicRepo, quotaService, clinicRepo, tokenService, logger)
	staffService := services.NewStaffService(userRepo, branchRepo, quotaService, clinicRepo, logger)
	branchService := services.NewBranchService(branchRepo, quotaService, clinicRepo, logger)
	patientService := services.NewPatientService(patientRepo, branchRepo, quotaService, clinicRepo, logger)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, tokenService, recoveryService, logger)
	activationHandler := handlers.NewActivationHandler(activationService)
	planHandler := handlers.NewPlanHandler(planRepo, logger)
	staffHandler := handlers.NewStaffHandler(staffService, userRepo)
	branchHandler := handlers.NewBranchHandler(branchService)
	patientHandler := handlers.NewPatientHandler(patientService)
	billingHandler := handlers.NewBillingHandler(subscriptionService, logger)

	router := setupRouter(tokenService, scopeService,
		authHandler, activationHandler, planHandler,
		staffHandler, branchHandler, patientHandler, billingHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("API listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("API forced to shutdown", zap.Error(err))
	}

	queueClient.Close()
	redisClient.Close()
	dbManager.Close()

	logger.Info("API exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.App.Env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func setupRouter(
	tokens *services.TokenService,
	scope *services.ScopeService,
	authHandler *handlers.AuthHandler,
	activationHandler *handlers.ActivationHandler,
	planHandler *handlers.PlanHandler,
	staffHandler *handlers.StaffHandler,
	branchHandler *handlers.BranchHandler,
	patientHandler *handlers.PatientHandler,
	billingHandler *handlers.BillingHandler,
) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "clinic-api"})
	})

	public := router.Group("/api/v1")
	{
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/refresh", authHandler.Refresh)
		public.POST("/auth/forgot-password", authHandler.ForgotPassword)
		public.POST("/auth/reset-password", authHandler.ResetPassword)
		public.GET("/plans", planHandler.List)
		public.POST("/billing/webhook", billingHandler.Webhook)
	}

	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(tokens))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/activate", activationHandler.Activate)
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleSystemAdmin))
	{
		admin.GET("/plans", planHandler.ListAll)
		admin.POST("/plans", planHandler.Create)
		admin.GET("/plans/:plan_id", planHandler.Get)
		admin.PATCH("/plans/:plan_id", planHandler.Update)
		admin.DELETE("/plans/:plan_id", planHandler.Deactivate)
	}

	clinic := protected.Group("/clinics/:clinic_id")
	clinic.Use(middleware.RequireClinicAccess(scope))
	{
		manage := clinic.Group("")
		manage.Use(middleware.RequireRole(
			models.RoleSystemAdmin, models.RoleClinicDirector, models.RoleClinicAdmin))
		{
			manage.GET("/staff", staffHandler.List)
			manage.POST("/staff", staffHandler.Create)
			manage.PATCH("/staff/:user_id", staffHandler.Update)
			manage.DELETE("/staff/:user_id", staffHandler.Delete)

			manage.GET("/branches", branchHandler.List)
			manage.POST("/branches", branchHandler.Create)
			manage.DELETE("/branches/:branch_id", branchHandler.Deactivate)
		}

		clinic.GET("/patients", patientHandler.List)
		clinic.POST("/patients", patientHandler.Create)
		clinic.DELETE("/patients/:patient_id", patientHandler.Deactivate)
	}

	return router
}
