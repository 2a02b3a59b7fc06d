package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/example/parkbay/internal/config"
	"github.com/example/parkbay/internal/database"
	"github.com/example/parkbay/internal/handlers"
	"github.com/example/parkbay/internal/middleware"
	"github.com/example/parkbay/internal/routes"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName:      "Parkbay Backend",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger))

	routes.Register(app, db, cfg, logger)

	logger.Infof("starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
