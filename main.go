package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Changaizkhan/autopair-final/database"
	"github.com/Changaizkhan/autopair-final/internal/config"
	"github.com/Changaizkhan/autopair-final/internal/handlers"
	"github.com/Changaizkhan/autopair-final/internal/jobs"
	"github.com/Changaizkhan/autopair-final/internal/middleware"
	"github.com/Changaizkhan/autopair-final/internal/routes"
	"github.com/Changaizkhan/autopair-final/internal/services"
	"github.com/Changaizkhan/autopair-final/internal/storage"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	setLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy := services.NewRetryPolicy(cfg.Retry)

	// Initialize storage
	var (
		leads      storage.LeadStore
		activities storage.ActivityStore
		db         *gorm.DB
	)
	if cfg.UseMemoryStore {
		log.Warn("⚠️  Using in-memory storage (not for production!)")
		mem := storage.NewMemoryStore()
		leads = mem
		activities = mem
	} else {
		log.Info("📦 Connecting to PostgreSQL database...")
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to database: %v", err)
		}
		activities = storage.NewDatabaseStore(db)
		leads = services.NewHubSpotClient(cfg.HubSpot.BaseURL, cfg.HubSpot.APIKey, policy)
		log.Info("✅ Using HubSpot leads with PostgreSQL activity journal")
	}

	twilioService, err := services.NewTwilioService(cfg.Twilio, policy)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Twilio service: %v", err)
	}
	log.Info("✅ Twilio service initialized")

	completer, err := services.NewCompleter(ctx, cfg.AI, policy)
	if err != nil {
		log.Fatalf("❌ Failed to initialize %s completion: %v", cfg.AI.Provider, err)
	}

	journal := services.NewJournal(activities)
	knowledge := services.NewKnowledgeService(completer)
	voice := services.NewVoiceService(leads, journal, cfg.Voice, cfg.PublicBaseURL)

	var scheduler services.CallbackScheduler
	var worker *jobs.CallbackWorker
	if cfg.Scheduler.Enabled() {
		queue, err := jobs.NewCallbackQueue(cfg.Scheduler)
		if err != nil {
			log.Fatalf("❌ Failed to initialize callback queue: %v", err)
		}
		defer queue.Close()
		scheduler = queue

		worker, err = jobs.NewCallbackWorker(cfg.Scheduler, leads, twilioService, voice, journal)
		if err != nil {
			log.Fatalf("❌ Failed to initialize callback worker: %v", err)
		}
		log.Infof("✅ Scheduled callbacks enabled on queue %q", cfg.Scheduler.Queue)
	} else {
		log.Warn("⚠️  REDIS_URL not set - scheduled callbacks are recorded but not dialed")
	}

	conversation := services.NewConversationService(leads, twilioService, knowledge, voice, scheduler, journal)

	guard := jobs.NewDedupGuard()
	dispatcher := jobs.NewDispatcher()
	processor := jobs.NewLeadProcessor(leads, services.NewQualificationNotifier(twilioService), guard, journal)
	poller := jobs.NewLeadPoller(leads, processor, dispatcher, cfg.Poller)

	app := fiber.New(fiber.Config{
		AppName:      "Autopair Lead Service v" + version,
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	var twilioAuth fiber.Handler
	if cfg.DisableWebhookValidation || cfg.IsDevelopment() {
		log.Warn("⚠️  Twilio signature validation disabled")
	} else {
		twilioAuth = middleware.ValidateTwilioSignature(cfg.Twilio.AuthToken, cfg.PublicBaseURL)
	}

	routes.SetupRoutes(app, routes.Dependencies{
		Webhooks:   handlers.NewWebhookHandler(conversation, voice),
		Leads:      handlers.NewLeadHandler(processor, dispatcher, activities),
		Health:     handlers.NewHealthHandler(version, db, poller, guard, dispatcher),
		TwilioAuth: twilioAuth,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return poller.Run(gctx)
	})
	if worker != nil {
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}
	g.Go(func() error {
		log.Infof("🚀 Autopair lead service starting on port %s", cfg.Port)
		log.Infof("🌍 Environment: %s, public URL: %s", cfg.Env, cfg.PublicBaseURL)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("🛑 Gracefully shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Errorf("❌ Service stopped with error: %v", err)
	}

	log.Info("⏹️  Waiting for in-flight lead tasks...")
	dispatcher.Wait()
	log.Info("👋 Bye")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "warn":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	default:
		log.SetLevel(log.LevelInfo)
	}
}
