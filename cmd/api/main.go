package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"alfredoptarigan/internship-predictor/internal/app"
	"alfredoptarigan/internship-predictor/internal/config"
	"alfredoptarigan/internship-predictor/internal/handlers"
	"alfredoptarigan/internship-predictor/internal/logger"
)

func main() {
	envFile := pflag.String("env-file", ".env", "path to an env file")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.LogFormat, cfg.Server.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log, app.Options{Persistence: true})
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer a.Close()

	routes := handlers.Routes{
		Predict: handlers.NewPredictHandler(a.Predictor, cfg.Storage.MaxFileSize, log),
		Health: handlers.NewHealthHandler(
			a.Predictor,
			a.Companies,
			a.Bundle.FeatureInfo != nil,
			a.Worker != nil,
		),
	}

	if a.Worker != nil {
		a.Worker.Start(ctx)
		defer a.Worker.Stop()

		routes.Upload = handlers.NewUploadHandler(a.Predictor, a.Worker, cfg.Storage.MaxFileSize, log)
		routes.Result = handlers.NewResultHandler(a.Predictor, log)
	} else {
		log.Info("persistence disabled, async prediction routes not registered")
	}

	server := fiber.New(fiber.Config{
		AppName:      "Internship Predictor API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    handlers.BodyLimit(cfg.Storage.MaxFileSize),
		ErrorHandler: handlers.NewErrorHandler(cfg.Storage.MaxFileSize),
	})

	server.Use(recover.New())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	routes.Register(server)

	go func() {
		<-ctx.Done()
		log.Info("shutting down server")
		if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting",
		zap.String("addr", addr),
		zap.Bool("model_loaded", a.Predictor.ModelLoaded()),
	)

	return server.Listen(addr)
}
