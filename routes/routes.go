package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	controller "github.com/Motimate/extant-email/controllers"
)

// SetupRoutes registers the check API. checkLimiter guards every endpoint that
// reaches the network and may be nil.
func SetupRoutes(app *fiber.App, vc *controller.VerificationController, checkLimiter fiber.Handler) {
	app.Get("/", vc.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		Output: logrus.StandardLogger().Writer(),
	}))

	checks := []fiber.Handler{}
	if checkLimiter != nil {
		checks = append(checks, checkLimiter)
	}

	api.Post("/email_check", append(checks, vc.EmailCheck)...)
	api.Post("/v1/email_check", append(checks, vc.EmailCheckWithStats)...)
	api.Get("/domain/:domain", append(checks, vc.DomainInfo)...)

	logrus.Info("Verification routes initialized successfully")
}
