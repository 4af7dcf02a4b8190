package main

import (
	"context"
	"log"

	"retailforecast/config"
	"retailforecast/database"
	"retailforecast/forecast"
	"retailforecast/handlers"
	"retailforecast/insights"
	"retailforecast/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.AppConfig = cfg

	ctx := context.Background()

	// Initialize database
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer database.Close()

	var narrator insights.Narrator
	if cfg.GeminiAPIKey != "" {
		gemini, err := insights.NewGeminiNarrator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("⚠️  Gemini disabled: %v", err)
		} else {
			defer gemini.Close()
			narrator = gemini
		}
	} else {
		log.Println("GEMINI_API_KEY is not set, forecasts are served without AI analysis")
	}

	auth := handlers.NewAuthHandler(database.NewUserRepository(pool), cfg.JWTSecret)
	reports := handlers.NewReportHandler(database.NewSalesRepository(pool), narrator, forecast.SystemClock{}, cfg.LookbackDays)

	app := fiber.New()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// Setup routes
	routes.SetupRoutes(app, auth, reports)

	// Start server
	log.Fatal(app.Listen(":" + cfg.Port))
}
