package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/RenewalHub/RenewalHub/app/repository"
	"github.com/RenewalHub/RenewalHub/internal/pkg/cache"
	"github.com/RenewalHub/RenewalHub/internal/pkg/database"
	"github.com/RenewalHub/RenewalHub/internal/pkg/env"
	"github.com/RenewalHub/RenewalHub/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())
	if cache.Enabled() {
		cache.SetupCache()
	}

	app := fiber.New(fiber.Config{
		AppName: "RenewalHub",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
