package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lifelog/lifelog/internal/config"
	"github.com/lifelog/lifelog/internal/db"
	"github.com/lifelog/lifelog/internal/repository"
	"github.com/lifelog/lifelog/internal/service"
	"github.com/lifelog/lifelog/internal/storage"
	"github.com/lifelog/lifelog/internal/validation"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	Storage           *storage.S3Storage
	AuthService       *service.AuthService
	EventService      *service.EventService
	AttachmentService *service.AttachmentService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	eventRepository := repository.NewEventRepository(database)
	attachmentRepository := repository.NewAttachmentRepository(database)

	// Storage gateway, constructed once and handed to the coordinator
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	attachmentService := service.NewAttachmentService(
		eventRepository,
		attachmentRepository,
		fileStorage,
		validation.NewUploadConstraints(cfg.AllowedMimeTypes, cfg.FileMaxBytes),
		cfg.AttachmentMaxPerEvent,
		cfg.PresignExpiry,
	)
	eventService := service.NewEventService(eventRepository, attachmentService)
	authService := service.NewAuthService(cfg.AdminPassword, cfg.SessionSecret, cfg.SessionExpiry)

	return &App{
		Cfg:               cfg,
		DB:                database,
		Storage:           fileStorage,
		AuthService:       authService,
		EventService:      eventService,
		AttachmentService: attachmentService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
