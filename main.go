package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/Motimate/extant-email/config"
	controller "github.com/Motimate/extant-email/controllers"
	"github.com/Motimate/extant-email/middleware"
	"github.com/Motimate/extant-email/routes"
	"github.com/Motimate/extant-email/utils"
	"github.com/Motimate/extant-email/verifier"
	"github.com/Motimate/extant-email/worker"
)

func main() {
	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := &config.AppConfig
	cfg.ConfigureLogger()

	if err := utils.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		logrus.Warnf("Sentry initialization failed: %v", err)
	}
	defer utils.FlushSentry(2 * time.Second)

	log := logrus.WithField("app", "extant")

	engine, err := verifier.NewEngine(cfg.EngineConfig(log))
	if err != nil {
		logrus.Fatalf("Failed to create verification engine: %v", err)
	}
	defer engine.Close()

	app := fiber.New(fiber.Config{
		AppName:               "extant",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(compress.New())

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	app.Use(middleware.CORS(corsCfg))

	storage := middleware.RateLimitStorage(cfg.Redis)
	if storage != nil {
		defer storage.Close()
	}
	limiter := middleware.CheckRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow, storage)

	vc := controller.NewVerificationController(engine, engine.Resolver, cfg.RequestOptions(), cfg.MaxAttempts, log)
	routes.SetupRoutes(app, vc, limiter)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start cache reporter
	reporter := worker.NewCacheReporter(engine, cfg.CacheReportInterval, log)
	go reporter.Start(ctx)

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.Errorf("Server shutdown failed: %v", err)
		}
	}()

	logrus.Infof("🚀 Server starting on %s", cfg.Addr())
	if err := app.Listen(cfg.Addr()); err != nil {
		utils.LogError("server_listen", err, map[string]interface{}{"addr": cfg.Addr()})
		cancel()
	}
}
