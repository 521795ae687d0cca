package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventlive/config"
	_ "eventlive/docs"
	"eventlive/internal/adapters/auth"
	"eventlive/internal/adapters/email"
	"eventlive/internal/adapters/storage"
	"eventlive/internal/clock"
	delivery "eventlive/internal/delivery/http"
	"eventlive/internal/delivery/http/controllers"
	"eventlive/internal/delivery/http/middleware"
	"eventlive/internal/repository/postgres"
	"eventlive/internal/services"
)

const (
	serviceTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
	bcryptCost      = 12
)

// @title EventLive API
// @version 1.0
// @description Event listing and ticketing platform for online events.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	userRepo := postgres.NewUserRepository(db)

	clk := clock.NewSystem()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	}, logger)
	if err != nil {
		logger.Error("init mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	imageStore := storage.NewLocalImageStore(cfg.UploadDir)

	hasher := auth.NewBcryptHasher(bcryptCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	registrationService := services.NewRegistrationService(eventRepo, ticketRepo, userRepo, emailService, clk, logger, serviceTimeout)
	listingService := services.NewListingService(eventRepo, ticketRepo, categoryRepo, clk, serviceTimeout)
	managementService := services.NewManagementService(eventRepo, ticketRepo, categoryRepo, imageStore, clk, logger, serviceTimeout)
	authService := services.NewAuthService(userRepo, hasher, issuer, cfg.TokenExpiry, clk)

	mux := delivery.NewRouter(
		controllers.NewEventController(logger, listingService, categoryRepo),
		controllers.NewTicketController(logger, registrationService),
		controllers.NewManageController(logger, managementService, listingService),
		controllers.NewAuthController(logger, authService),
		verifier,
	)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, mux))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown", "err", err)
	}
	logger.Info("server stopped")
}
