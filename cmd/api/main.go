package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/atlastrek/tours/internal/domain"
	"github.com/atlastrek/tours/internal/http/handlers"
	authmw "github.com/atlastrek/tours/internal/http/middleware"
	"github.com/atlastrek/tours/internal/platform/auth"
	"github.com/atlastrek/tours/internal/platform/mailer"
	"github.com/atlastrek/tours/internal/platform/payments"
	"github.com/atlastrek/tours/internal/repo/postgres"
	"github.com/atlastrek/tours/internal/repo/redisstore"
	"github.com/atlastrek/tours/internal/service"
	"github.com/atlastrek/tours/pkg/config"
	"github.com/atlastrek/tours/pkg/database"
	"github.com/atlastrek/tours/pkg/events"
	"github.com/atlastrek/tours/pkg/logger"
	mw "github.com/atlastrek/tours/pkg/middleware"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := redisstore.Connect(cfg.Redis.URL)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	tourRepo := postgres.NewTourRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	idemStore := redisstore.NewIdempotencyStore(redisClient)

	// Platform
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.HashMemoryKiB, cfg.Auth.HashIterations, cfg.Auth.HashParallelism)
	mail := selectMailer(cfg)
	sessions := payments.NewStripeCreator(cfg.Stripe.SecretKey, cfg.Stripe.Currency)

	// Services
	authService := service.NewAuthService(userRepo, tokens, hasher, mail, eventBus, cfg.Auth.ResetTTL, cfg.App.PublicBaseURL)
	userService := service.NewUserService(userRepo, eventBus)
	tourService := service.NewTourService(tourRepo)
	bookingService := service.NewBookingService(bookingRepo, tourRepo, sessions, eventBus, cfg.App.PublicBaseURL)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.Auth.CookieName, cfg.Auth.TokenTTL)
	userHandler := handlers.NewUserHandler(userService)
	tourHandler := handlers.NewTourHandler(tourService, bookingService)
	bookingHandler := handlers.NewBookingHandler(bookingService)

	requireAuth := authmw.RequireAuth(authService, cfg.Auth.CookieName)
	optionalAuth := authmw.OptionalAuth(authService, cfg.Auth.CookieName)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Get("/logout", authHandler.Logout)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Patch("/reset-password/{token}", authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Patch("/update-password", authHandler.UpdatePassword)
				r.Get("/me", userHandler.Me)
				r.Patch("/me", userHandler.UpdateMe)
				r.Delete("/me", userHandler.DeleteMe)

				r.Group(func(r chi.Router) {
					r.Use(authmw.RequireRoles(domain.RoleAdmin))
					r.Get("/", userHandler.List)
					r.Get("/{id}", userHandler.Get)
					r.Patch("/{id}", userHandler.Update)
					r.Delete("/{id}", userHandler.Delete)
				})
			})
		})

		r.Route("/tours", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/", tourHandler.List)
				r.Get("/stats", tourHandler.Stats)
				r.Get("/slug/{slug}", tourHandler.GetBySlug)
				r.Get("/{id}", tourHandler.Get)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Use(authmw.RequireRoles(domain.RoleAdmin, domain.RoleLeadGuide))
				r.Post("/", tourHandler.Create)
				r.Patch("/{id}", tourHandler.Update)
				r.Delete("/{id}", tourHandler.Delete)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/checkout-session/{tourID}", bookingHandler.CheckoutSession)
			r.Get("/confirm", bookingHandler.ConfirmCheckout)
			r.Get("/me", bookingHandler.MyBookings)

			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireRoles(domain.RoleAdmin, domain.RoleLeadGuide))
				r.With(mw.Idempotency(idemStore)).Post("/", bookingHandler.Create)
				r.Get("/", bookingHandler.List)
				r.Get("/{id}", bookingHandler.Get)
				r.Patch("/{id}", bookingHandler.Update)
				r.Delete("/{id}", bookingHandler.Delete)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func selectMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.DevMode:
		return mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.SMTPFrom)
	default:
		return mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass)
	}
}
