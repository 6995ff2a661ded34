package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"github.com/Motimate/extant-email/config"
	"github.com/Motimate/extant-email/serverless"
	"github.com/Motimate/extant-email/utils"
	"github.com/Motimate/extant-email/verifier"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ConfigureLogger()

	if err := utils.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		logrus.Warnf("Sentry initialization failed: %v", err)
	}

	log := logrus.WithField("app", "extant-lambda")
	engine, err := verifier.NewEngine(cfg.EngineConfig(log))
	if err != nil {
		logrus.Fatalf("Failed to create verification engine: %v", err)
	}

	handler := serverless.NewHandler(engine, cfg.RequestOptions(), cfg.MaxAttempts, log)
	lambda.Start(handler.Handle)
}
