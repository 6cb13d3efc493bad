// Package server assembles the fiber app: middleware, handlers and routes.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/config"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/handlers"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/services/auth"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/services/bids"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/services/gigs"
)

type Deps struct {
	Config config.Config
	DB     *gorm.DB
	Hub    *realtime.Hub

	// Notifier receives hire events; nil means the local hub.
	Notifier bids.Notifier

	// AccessLog enables the request logger.
	AccessLog bool
}

func New(d Deps) *fiber.App {
	cfg := d.Config

	app := fiber.New(fiber.Config{
		AppName:      "gigflow",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	if d.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true, // cookie session
	}))

	notifier := d.Notifier
	if notifier == nil {
		notifier = d.Hub
	}

	authSvc := auth.NewAuthService(d.DB, cfg.JWTSecret, cfg.JWTExpiresMin)
	gigSvc := gigs.NewGigService(d.DB)
	bidSvc := bids.NewBidService(d.DB, notifier)

	authH := handlers.NewAuthHandler(authSvc, cfg.CookieSecure)
	gigH := handlers.NewGigHandler(gigSvc)
	bidH := handlers.NewBidHandler(bidSvc)
	rtH := handlers.NewRealtimeHandler(d.Hub)

	requireAuth := middleware.RequireAuth(authSvc)

	api := app.Group("/api")
	authH.Routes(api, requireAuth)
	gigH.Routes(api, requireAuth)
	bidH.Routes(api, requireAuth)

	if cfg.GoogleClientID != "" {
		googleH := &handlers.GoogleOAuthHandler{
			Auth:            authSvc,
			Session:         authH,
			GoogleClientID:  cfg.GoogleClientID,
			GoogleSecret:    cfg.GoogleSecret,
			GoogleRedirect:  cfg.GoogleRedirect,
			FrontendBaseURL: cfg.FrontendBaseURL,
		}
		googleH.Routes(api)
	}

	rtH.Routes(app, middleware.OptionalJWT(authSvc))

	return app
}
