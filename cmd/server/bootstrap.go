package main

import (
	"github.com/claridoc/backend/internal/config"
	"github.com/claridoc/backend/internal/handlers"
	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/internal/services"
	"github.com/claridoc/backend/internal/utils"
	"github.com/claridoc/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	taskQueue   services.TaskQueue
	worker      *services.Worker
	authHandler *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize audit logger and retention cleanup
	services.InitAuditLogger(models.GetDB())
	services.StartAuditCleanupScheduler(models.GetDB())

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	emailService := services.NewEmailService(models.GetDB())
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(emailService.ProcessInvitationEmail)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(emailService.ProcessInvitationEmail)
			worker.Start()
		}
	}

	// Create default admin user
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		taskQueue:   taskQueue,
		worker:      worker,
		authHandler: authHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	services.StopAuditCleanupScheduler()
	logger.Info().Msg("Schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
