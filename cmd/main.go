// Package main provides the entry point for the storefront gateway.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/config"
	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/gateway"
	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/handler"
	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/logger"
	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/session"
)

// Run is the testable entrypoint for the application.
func Run(ctx context.Context) error {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()
	log := logger.New(cfg.Env)
	log.Info("Starting storefront gateway",
		zap.String("addr", cfg.Addr),
		zap.String("api", cfg.APIBaseURL))

	api := gateway.New(cfg, log)
	sessions := session.NewStore(cfg, log)
	validate := validator.New()
	_ = validate.RegisterValidation("phoneformat", handler.PhoneValidator)

	h := handler.New(log, api, sessions, validate)

	r := chi.NewRouter()
	r.Use(handler.RouteGuard)
	r.Get("/healthz", h.Healthz)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/verify", h.VerifyUser)
		r.Post("/auth/register", h.RegisterUser)
		r.Post("/auth/logout", h.Logout)
		r.Get("/session", h.Session)
		r.Get("/products/new", h.NewProducts)
		r.Post("/purchase", h.PurchaseProduct)
		r.Get("/orders", h.UserOrders)
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := Run(ctx); err != nil {
		os.Exit(1)
	}
}
