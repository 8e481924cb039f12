// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "gigpay/internal/api"
	"gigpay/internal/api/handler"
	"gigpay/internal/api/middleware"
	"gigpay/internal/config"
	"gigpay/internal/repository"
	"gigpay/internal/repository/postgres"
	"gigpay/internal/service"
	"gigpay/internal/util"
	"gigpay/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository
	GigRepository         repository.GigRepository
	ApplicationRepository repository.ApplicationRepository

	// Services
	LedgerService     service.LedgerService
	EscrowService     service.EscrowService
	SettlementService service.SettlementService
	GigService        service.GigService

	// HTTP API
	Authenticator *middleware.Authenticator
	HTTPHandler   http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database and apply migrations
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if err := db.RunMigrations(app.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Logger.Info("Database migrations applied.")

	// 4. Initialize Repositories
	app.WalletRepository = postgres.NewWalletRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.GigRepository = postgres.NewGigRepository(app.DB)
	app.ApplicationRepository = postgres.NewApplicationRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Services
	app.LedgerService = service.NewLedgerService(
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		app.Logger,
	)
	app.EscrowService = service.NewEscrowService(app.LedgerService)
	app.SettlementService = service.NewSettlementService(
		app.DB,
		app.ApplicationRepository,
		app.GigRepository,
		app.LedgerService,
		app.Logger,
	)
	app.GigService = service.NewGigService(
		app.DB,
		app.GigRepository,
		app.ApplicationRepository,
		app.EscrowService,
		app.Logger,
	)
	app.Logger.Info("Services initialized.")

	// 6. Initialize HTTP Handlers and Router
	app.Authenticator = middleware.NewAuthenticator(app.Config.JWTSecret)
	walletHandler := handler.NewWalletHandler(app.LedgerService, app.SettlementService, app.Logger)
	gigHandler := handler.NewGigHandler(app.GigService, app.Logger)
	applicationHandler := handler.NewApplicationHandler(app.GigService, app.SettlementService, app.Logger)
	app.HTTPHandler = router.NewRouter(app.Authenticator, walletHandler, gigHandler, applicationHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
