package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/consumers"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/events"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/extraction"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/extractor"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/handler"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/repository"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/service"
	"github.com/trackshelf/trackshelf-backend/pkg/auth"
	"github.com/trackshelf/trackshelf-backend/pkg/config"
	"github.com/trackshelf/trackshelf-backend/pkg/database"
	"github.com/trackshelf/trackshelf-backend/pkg/httputil"
	"github.com/trackshelf/trackshelf-backend/pkg/i18n"
	"github.com/trackshelf/trackshelf-backend/pkg/logger"
	"github.com/trackshelf/trackshelf-backend/pkg/messaging"
	"github.com/trackshelf/trackshelf-backend/pkg/metrics"
)

const serviceName = "shelf-service"

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting Shelf Service")

	loc, err := cfg.Shelf.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timezone")
	}
	catalog, err := domain.NewCatalog(cfg.Shelf.Units, cfg.Shelf.Categories, cfg.Shelf.DefaultUnit, cfg.Shelf.CatchAllCategory)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid catalog")
	}
	normalizer, err := extraction.NewNormalizer(catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to compile extraction schema")
	}
	defaults := domain.Thresholds{SoonDays: cfg.Shelf.SoonDays, ExpiredGraceDays: cfg.Shelf.ExpiredGraceDays}.Clamp()

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := db.Migrate(context.Background(), repository.Migrations)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Int("applied", applied).Msg("migrations complete")
	}

	// Events are optional; without RabbitMQ they are dropped.
	var (
		rmq *messaging.RabbitMQ
		pub messaging.EventPublisher
	)
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		p, err := messaging.NewPublisher(rmq, cfg.RabbitMQ.Exchange, serviceName, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
		pub = p
	}
	publisher := events.NewShelfEventPublisher(pub, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize repositories
	itemRepo := repository.NewItemRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	shoppingRepo := repository.NewShoppingRepository(db)

	// Initialize services
	clock := service.NewClock(time.Now, loc)
	llm := extractor.New(cfg.LLM, catalog, normalizer.Schema(), log.WithComponent("extractor"))
	shelfService := service.NewShelfService(itemRepo, settingsRepo, catalog, clock, defaults, publisher, log)
	extractionService := service.NewExtractionService(llm, normalizer, clock, m, log)
	shoppingService := service.NewShoppingService(shoppingRepo, publisher, log)

	scanner := service.NewExpiryScanner(itemRepo, shelfService, clock, publisher, m, log.WithComponent("expiry"))
	scheduler := service.NewExpiryScheduler(scanner, cfg.Shelf.ScanInterval, log.WithComponent("expiry"))

	// Initialize handlers
	handlers := &handler.Handlers{
		Items:      handler.NewItemHandler(shelfService, catalog, log),
		Settings:   handler.NewSettingsHandler(shelfService, log),
		Extraction: handler.NewExtractionHandler(extractionService, catalog, cfg.Server.MaxUploadBytes, log),
		Shopping:   handler.NewShoppingHandler(shoppingService, log),
		Catalog:    handler.NewCatalogHandler(catalog, defaults),
	}

	var verifier *auth.Verifier
	if cfg.JWT.Enabled {
		verifier = auth.NewVerifier(&cfg.JWT)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Shelf.ScanInterval > 0 {
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	// Purge shelves of deleted accounts
	if rmq != nil {
		if err := rmq.DeclareDeadLetterQueue(serviceName); err != nil {
			log.Fatal().Err(err).Msg("failed to declare dead letter queue")
		}
		ownerConsumer, err := consumers.NewOwnerEventConsumer(rmq, cfg.RabbitMQ.UserExchange, cfg.RabbitMQ.Queue,
			repository.NewOwnerRepository(db), log.WithComponent("consumer"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create owner event consumer")
		}
		if err := ownerConsumer.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start owner event consumer")
		}
	}

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log, m))
	r.Use(httputil.Recoverer(log))
	r.Use(httputil.CORS(cfg.CORS))
	r.Use(i18n.Middleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":   "healthy",
			"service":  serviceName,
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			status["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, status)
	})
	r.Handle("/metrics", m.Handler())

	// API routes
	r.Group(func(r chi.Router) {
		r.Use(httputil.OwnerMiddleware(verifier))
		handlers.Routes(r)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Stop the expiry scheduler
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
