package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"doulaops-backend/config"
	"doulaops-backend/database"
	"doulaops-backend/middlewares"
	"doulaops-backend/reconciliation"
	"doulaops-backend/routes"
	"doulaops-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	log := config.GetLogger()

	// ---- Databases: primary + PHI-segregated mirror
	database.Connect()
	database.AutoMigrate()
	database.ConnectCloudSQL()
	if err := database.MigrateCloudSQL(); err != nil {
		log.WithError(err).Fatal("cloud sql migration failed")
	}

	// ---- External clients, constructed once at the composition root
	deps := routes.Deps{
		Recon:      reconciliation.NewEngine(reconciliation.NewCloudSQLStore(database.CloudSQL)),
		Stripe:     services.NewStripeFromEnv(nil),
		ESign:      services.NewESignFromEnv(nil),
		QuickBooks: services.NewQuickBooksFromEnv(context.Background()),
	}

	// ---- Limits (configurable via env)
	bodyLimitBytes := envInt("BODY_LIMIT_BYTES", 0)
	if bodyLimitBytes <= 0 {
		bodyLimitBytes = envInt("BODY_LIMIT_MB", 4) * 1024 * 1024
	}

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    bodyLimitBytes,
	})

	// ---- CORS
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))

	// ---- Global rate limiter (applies to all routes; tune via env)
	rlMax := envInt("RATE_LIMIT_MAX", 60)
	rlWindow := time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second
	app.Use(limiter.New(limiter.Config{
		Max:        rlMax,
		Expiration: rlWindow,
	}))

	// ---- Routes
	routes.Register(app, deps)

	// ---- Start
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("api server starting")
	if err := app.Listen(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
