package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/classpulse/grading-gateway/internal/config"
	"github.com/classpulse/grading-gateway/internal/database"
	"github.com/classpulse/grading-gateway/internal/grader"
	"github.com/classpulse/grading-gateway/internal/handler"
	"github.com/classpulse/grading-gateway/internal/middleware"
	"github.com/classpulse/grading-gateway/internal/notify"
	"github.com/classpulse/grading-gateway/internal/router"
	"github.com/classpulse/grading-gateway/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, serving without view cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, grading events stay in-process")
		} else {
			defer natsConn.Close()
		}
	}

	graderClient, err := grader.New(grader.Config{
		BaseURL: cfg.GraderBaseURL,
		Token:   cfg.GraderToken,
		Timeout: cfg.GraderTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create grading service client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	broker := notify.NewBroker(natsConn, cfg.EventSubject, logger)

	gradebookService := service.NewGradebookService(graderClient, redisClient, cfg.ViewCacheTTL, cfg.HintSuggestionLimit, logger)
	overrideService := service.NewOverrideService(graderClient, gradebookService, validate, broker, logger)
	insightsService := service.NewInsightsService(graderClient, redisClient, cfg.ViewCacheTTL, logger)

	gradebookHandler := handler.NewGradebookHandler(gradebookService, overrideService, logger)
	insightsHandler := handler.NewInsightsHandler(insightsService, logger)
	eventsHandler := handler.NewEventsHandler(broker, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		GradebookHandler: gradebookHandler,
		InsightsHandler:  insightsHandler,
		EventsHandler:    eventsHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
