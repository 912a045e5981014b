package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/plateful/restaurant-ops/internal/auth"
	"github.com/plateful/restaurant-ops/internal/config"
	"github.com/plateful/restaurant-ops/internal/events"
	"github.com/plateful/restaurant-ops/internal/handlers"
	"github.com/plateful/restaurant-ops/internal/middleware"
	"github.com/plateful/restaurant-ops/internal/models"
	"github.com/plateful/restaurant-ops/internal/repository"
	"github.com/plateful/restaurant-ops/internal/workflow"
	"github.com/plateful/restaurant-ops/pkg/logger"
)

func main() {
	// A .env file is optional; real deployments set variables directly.
	_ = godotenv.Load()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting restaurant operations server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	ctx := context.Background()

	// Initialize stores: Postgres when configured, in-memory otherwise
	var stores *repository.Stores
	if cfg.Database.URL != "" {
		pg, err := repository.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()

		if err := pg.Bootstrap(ctx); err != nil {
			log.Error("failed to bootstrap database schema", "error", err)
			os.Exit(1)
		}
		stores = pg.Stores()
		log.Info("using postgres stores")
	} else {
		stores = repository.NewMemoryStores()
		log.Info("no DATABASE_URL configured, using in-memory stores")
	}

	// Initialize event publisher
	var publisher events.Publisher = events.Noop{}
	if cfg.Events.RabbitURL != "" {
		amqpPublisher, err := events.Dial(cfg.Events.RabbitURL, log)
		if err != nil {
			log.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Info("publishing status events to RabbitMQ")
	}

	// Initialize auth service and seed the bootstrap admin
	authService := auth.NewService(stores.Users, cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		log.Error("failed to seed admin account", "error", err)
		os.Exit(1)
	}

	// Initialize workflow coordinator
	coordinator := workflow.NewCoordinator(stores, publisher, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, log)
	menuHandler := handlers.NewMenuHandler(stores.Menu, log)
	tableHandler := handlers.NewTableHandler(stores.Tables, coordinator, log)
	orderHandler := handlers.NewOrderHandler(stores.Orders, stores.Menu, coordinator, log)
	reservationHandler := handlers.NewReservationHandler(stores.Reservations, coordinator, log)
	userHandler := handlers.NewUserHandler(stores.Users, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signin", authHandler.SignIn)

		// Everything below requires an authenticated session
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(authService))

			r.With(middleware.RequireRole(models.RoleAdmin)).
				Post("/auth/signup", authHandler.SignUp)
			r.With(middleware.RequireRole(models.RoleAdmin)).
				Get("/users", userHandler.ListUsers)

			// Menu endpoints
			r.Route("/menu/items", func(r chi.Router) {
				r.Get("/", menuHandler.ListItems)
				r.Get("/available", menuHandler.ListAvailable)
				r.Get("/category/{category}", menuHandler.ListByCategory)
				r.Get("/{menuItemId}", menuHandler.GetItem)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(models.RoleManager))
					r.Post("/", menuHandler.CreateItem)
					r.Put("/{menuItemId}", menuHandler.UpdateItem)
					r.Delete("/{menuItemId}", menuHandler.DeleteItem)
				})
			})

			// Table endpoints
			r.Route("/tables", func(r chi.Router) {
				r.Get("/", tableHandler.ListTables)
				r.Get("/status/{status}", tableHandler.ListByStatus)
				r.Get("/capacity/{capacity}", tableHandler.ListByCapacity)
				r.Get("/{tableId}", tableHandler.GetTable)
				r.Post("/", tableHandler.CreateTable)
				r.Put("/{tableId}", tableHandler.UpdateTable)
				r.Put("/{tableId}/status", tableHandler.UpdateStatus)
				r.With(middleware.RequireRole(models.RoleManager)).
					Delete("/{tableId}", tableHandler.DeleteTable)
			})

			// Order endpoints
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.ListOrders)
				r.Get("/status/{status}", orderHandler.ListByStatus)
				r.Get("/{orderId}", orderHandler.GetOrder)
				r.Post("/", orderHandler.CreateOrder)
				r.Put("/{orderId}/status", orderHandler.UpdateStatus)
				r.With(middleware.RequireRole(models.RoleManager)).
					Delete("/{orderId}", orderHandler.DeleteOrder)
			})

			// Reservation endpoints
			r.Route("/reservations", func(r chi.Router) {
				r.Get("/", reservationHandler.ListReservations)
				r.Get("/status/{status}", reservationHandler.ListByStatus)
				r.Get("/{reservationId}", reservationHandler.GetReservation)
				r.Post("/", reservationHandler.CreateReservation)
				r.Put("/{reservationId}", reservationHandler.UpdateReservation)
				r.Put("/{reservationId}/status", reservationHandler.UpdateStatus)
			})
		})
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
