package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/quizdeck/quizdeck/internal/quizdeck/http"
	"github.com/quizdeck/quizdeck/internal/quizdeck/mailer"
	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/internal/quizdeck/store"
	"github.com/quizdeck/quizdeck/internal/quizdeck/store/drivers/sqlite"
	"github.com/quizdeck/quizdeck/pkg/cryptox"
	"github.com/quizdeck/quizdeck/pkg/jwtx"
	"github.com/quizdeck/quizdeck/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the quiz service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.EdDSASigner
	mail   mailer.Mailer

	authService         *service.AuthService
	inviteService       *service.InviteService
	accountService      *service.AccountService
	categoryService     *service.CategoryService
	questionService     *service.QuestionService
	quizService         *service.QuizService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "quizdeck",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	// Signing keys are ephemeral: a restart invalidates all outstanding
	// tokens, which the stateless token design accepts.
	signer, verifier, err := jwtx.NewEphemeralEdDSA("quizdeck-1", cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signing key: %w", err)
	}
	app.signer = signer

	app.initMailer()
	app.initServices()
	app.initHTTP(verifier)

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("quizdeck starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops the housekeeping worker, and
// closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down quizdeck...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("quizdeck stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initMailer() {
	if app.cfg.SendGridAPIKey == "" {
		app.logger.Warn("SENDGRID_API_KEY not set, email delivery disabled")
		app.mail = &mailer.LogMailer{Logger: app.logger}
		return
	}

	app.mail = mailer.NewSendGrid(
		app.cfg.SendGridAPIKey,
		app.cfg.MailFromName,
		app.cfg.MailFromEmail,
		app.logger,
	)
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:     app.db,
		Signer:    app.signer,
		Mailer:    app.mail,
		Issuer:    app.cfg.Issuer,
		AccessTTL: app.cfg.AccessTTL,
	}

	app.inviteService = &service.InviteService{Store: app.db, Mailer: app.mail}
	app.accountService = &service.AccountService{Store: app.db}
	app.categoryService = &service.CategoryService{Store: app.db}
	app.questionService = &service.QuestionService{Store: app.db}
	app.quizService = &service.QuizService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP(verifier jwtx.Verifier) {
	router := httpapi.NewRouter(
		verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.InviteService = app.inviteService
	router.AccountService = app.accountService
	router.CategoryService = app.categoryService
	router.QuestionService = app.questionService
	router.QuizService = app.quizService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
