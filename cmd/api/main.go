package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contact-intake-api/config"
	"contact-intake-api/controllers"
	"contact-intake-api/middleware"
	"contact-intake-api/routes"
	"contact-intake-api/services"
	"contact-intake-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	configFile := flag.String("config", os.Getenv("CONFIG_FILE"), "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, logCloser := config.InitLogging(cfg.Log)
	if logCloser != nil {
		defer logCloser.Close()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Credential store failure is fatal: without it no admin can log in.
	creds, err := cfg.OpenCredentialStore()
	if err != nil {
		fatal(logger, "open credential store", err)
	}
	authService, err := services.NewAuthService(creds, cfg.Auth.JWTSecret, logger)
	if err != nil {
		fatal(logger, "init auth service", err)
	}
	if err := authService.EnsureAdmin(context.Background()); err != nil {
		fatal(logger, "ensure admin credentials", err)
	}

	submissionStore, closeStore, err := cfg.OpenSubmissionStore()
	if err != nil {
		fatal(logger, "open submission store", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("close submission store", "error", err)
		}
	}()

	submissionService := services.NewSubmissionService(submissionStore, buildNotifier(cfg, logger), logger)

	router := routes.NewRouter(routes.Dependencies{
		Logger:         logger,
		Production:     cfg.IsProduction(),
		AllowedOrigins: cfg.Origins(),
		TrustedProxies: cfg.Server.TrustedProxies,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window),
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Verifier:       authService,
		Auth:           controllers.NewAuthController(authService, logger),
		Submissions:    controllers.NewSubmissionController(submissionService, logger),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"addr", cfg.Addr(),
			"environment", cfg.Server.Environment,
			"store", cfg.Storage.Driver,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
}

// buildNotifier returns a mail notifier when SMTP and recipients are
// configured, otherwise a no-op.
func buildNotifier(cfg *config.Config, logger *slog.Logger) services.Notifier {
	mailer := config.NewMailer(cfg.SMTP)
	if !mailer.Configured() || len(cfg.SMTP.NotifyTo) == 0 {
		return services.NopNotifier{}
	}

	var recipients []string
	for _, addr := range cfg.SMTP.NotifyTo {
		if !utils.ValidateEmail(addr) {
			logger.Warn("ignoring invalid NOTIFY_TO address", "address", addr)
			continue
		}
		recipients = append(recipients, addr)
	}
	if len(recipients) == 0 {
		return services.NopNotifier{}
	}
	logger.Info("submission mail notifications enabled", "recipients", len(recipients))
	return services.NewMailNotifier(mailer, recipients)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
