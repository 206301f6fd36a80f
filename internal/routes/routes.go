package routes

import (
	"net/http"

	"github.com/lifelog/lifelog/internal/app"
	"github.com/lifelog/lifelog/internal/handler"
	"github.com/lifelog/lifelog/internal/metrics"
	"github.com/lifelog/lifelog/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.Cfg.AppName)
	auth := handler.NewAuthHandler(app.AuthService, app.Cfg.SessionExpiry, app.Cfg.IsProduction())
	event := handler.NewEventHandler(app.EventService)
	attachment := handler.NewAttachmentHandler(app.AttachmentService)
	export := handler.NewExportHandler(app.EventService)

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /{$}", health.Root)
	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /api/auth/login", auth.Login)

	// API (bearer token or session cookie)
	guard := middleware.NewAuth(app.Cfg.APIToken, app.AuthService)

	mux.HandleFunc("POST /api/events", guard.Require(event.Create))
	mux.HandleFunc("GET /api/events", guard.Require(event.List))
	mux.HandleFunc("GET /api/events/{id}", guard.Require(event.Get))
	mux.HandleFunc("PATCH /api/events/{id}", guard.Require(event.Update))
	mux.HandleFunc("DELETE /api/events/{id}", guard.Require(event.Delete))

	mux.HandleFunc("POST /api/events/{id}/attachments", guard.Require(attachment.Upload))
	mux.HandleFunc("GET /api/attachments/{key}", guard.Require(attachment.GetURL))

	mux.HandleFunc("GET /api/export", guard.Require(export.Export))

	return middleware.Chain(mux,
		middleware.RequestLogging,
	)
}
