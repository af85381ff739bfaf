package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reporthub/internal/config"
	"reporthub/internal/database"
	"reporthub/internal/handlers"
	"reporthub/internal/metrics"
	"reporthub/internal/realtime"
	"reporthub/internal/repository"
	"reporthub/internal/roster"
	"reporthub/internal/security"
	"reporthub/internal/service"
	"reporthub/internal/webpush"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

func main() {
	configFile := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	base, err := roster.LoadBaseFile(cfg.RosterPath)
	if err != nil {
		log.Fatalf("Failed to load base roster: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	reportRepo := repository.NewReportRepository(db)
	superintendentRepo := repository.NewSuperintendentRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)
	pushRepo := repository.NewPushRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Metrics
	registry := metrics.NewRegistry()
	m := &metrics.Metrics{}
	m.Register(registry)

	hub := realtime.NewHub(m)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize services
	authService := service.NewAuthService(db, userRepo, emailService, cfg.SessionDuration, cfg.AuthTimeout)
	if err := authService.SeedAllowlist(ctx, cfg.AdminEmails); err != nil {
		log.Fatalf("Failed to seed admin allowlist: %v", err)
	}

	rosterService := service.NewRosterService(base, reportRepo, rosterRepo, overrideRepo, superintendentRepo)
	if err := rosterService.SeedSuperintendents(ctx); err != nil {
		log.Fatalf("Failed to seed superintendents: %v", err)
	}

	publicKey, privateKey, err := resolveVAPIDKeys(ctx, cfg, settingsRepo)
	if err != nil {
		log.Fatalf("Failed to resolve VAPID keys: %v", err)
	}
	sender, err := webpush.NewSender(publicKey, privateKey, cfg.VAPIDSubject, cfg.PushTTL, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		log.Fatalf("Failed to initialize push sender: %v", err)
	}

	flagCache := service.NewFlagCache(service.DefaultFlagTTL)
	pushService := service.NewPushService(pushRepo, flagCache, sender.PublicKey(), cfg.Debug)
	broadcastService := service.NewBroadcastService(pushRepo, sender, m)
	reportService := service.NewReportService(reportRepo, superintendentRepo, pushService, hub, m)
	exportService := service.NewExportService(reportRepo)
	attendanceService := service.NewAttendanceService(attendanceRepo)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: googleUserInfoURL,
		},
	}

	limiter := security.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	defer limiter.Stop()

	csrfSecret := cfg.CSRFSecret
	if csrfSecret == "" {
		csrfSecret = security.GenerateSessionID()
		log.Println("No CSRF secret configured, generated one for this process")
	}
	csrf := security.NewCSRFGenerator(csrfSecret)

	// Initialize handlers
	router := &handlers.Router{
		Middleware: handlers.NewMiddleware(authService, csrf, limiter),
		Auth:       handlers.NewAuthHandler(authService, pushService, csrf, oauthProviders, cfg.OAuthRedirectBaseURL),
		Reports:    handlers.NewReportHandler(reportService, exportService),
		Roster:     handlers.NewRosterHandler(rosterService),
		Push:       handlers.NewPushHandler(pushService, broadcastService),
		Attendance: handlers.NewAttendanceHandler(attendanceService),
		Accounts:   handlers.NewAccountHandler(authService),
		Realtime:   hub.ServeWS,
		Metrics:    metrics.Handler(registry),
		Static:     handlers.NewSPAHandler(cfg.StaticFilesPath),
	}

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handlers.Logging(router.Mux()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		cleanupLoop(gctx, authService, flagCache)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Server stopped with error: %v", err)
		os.Exit(1)
	}
	log.Println("Server stopped")
}

// resolveVAPIDKeys prefers configured keys, then keys stored in the database.
// A fresh pair is generated and stored on first start so subscriptions
// survive restarts.
func resolveVAPIDKeys(ctx context.Context, cfg *config.Config, settings *repository.SettingsRepository) (string, string, error) {
	if cfg.PushEnabled() {
		return cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, nil
	}

	public, private, err := settings.VAPIDKeys(ctx)
	if err != nil {
		return "", "", err
	}
	if public != "" && private != "" {
		return public, private, nil
	}

	public, private, err = webpush.GenerateVAPIDKeys()
	if err != nil {
		return "", "", err
	}
	if err := settings.SaveVAPIDKeys(ctx, public, private); err != nil {
		return "", "", err
	}
	log.Println("Generated and stored a new VAPID key pair")
	return public, private, nil
}

// cleanupLoop periodically removes expired sessions and reported flags
func cleanupLoop(ctx context.Context, authService *service.AuthService, flags *service.FlagCache) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authService.CleanupExpired(ctx); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			} else {
				log.Println("Expired sessions cleaned up")
			}
			flags.Prune()
		}
	}
}
