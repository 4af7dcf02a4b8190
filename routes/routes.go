package routes

import (
	"retailforecast/handlers"
	"retailforecast/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App, auth *handlers.AuthHandler, reports *handlers.ReportHandler) {
	api := app.Group("/api/v1")

	api.Get("/health", handlers.HandleHealth)

	// --- Authentication Routes ---
	authGroup := api.Group("/auth")
	authGroup.Post("/login", auth.HandleLogin)

	// --- Merchant Routes ---
	merchant := api.Group("/merchant", middleware.JWTMiddleware, middleware.MerchantRequired)

	// Reports & forecasting
	rep := merchant.Group("/reports")
	rep.Get("/sales", reports.HandleGetSalesReport)
	rep.Get("/items/:itemId/history", reports.HandleGetItemHistory)
	rep.Get("/forecast", reports.HandleGetSalesForecast)
}
