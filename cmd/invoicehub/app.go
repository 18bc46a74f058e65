package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agamariel/invoicehub/internal/auth"
	"github.com/agamariel/invoicehub/internal/config"
	"github.com/agamariel/invoicehub/internal/documents"
	"github.com/agamariel/invoicehub/internal/handlers"
	"github.com/agamariel/invoicehub/internal/importer"
	"github.com/agamariel/invoicehub/internal/logger"
	"github.com/agamariel/invoicehub/internal/mailer"
	"github.com/agamariel/invoicehub/internal/migrations"
	"github.com/agamariel/invoicehub/internal/models"
	"github.com/agamariel/invoicehub/internal/services"
	"github.com/agamariel/invoicehub/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Запас сверх лимита документов на поля multipart-формы.
const bodyLimit = "12M"

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	dbPool *pgxpool.Pool
	echo   *echo.Echo
	tokens *auth.TokenManager

	// Handlers
	userHandler       *handlers.UserHandler
	invoiceHandler    *handlers.InvoiceHandler
	bulkImportHandler *handlers.BulkImportHandler
	documentHandler   *handlers.DocumentHandler
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{
		cfg: cfg,
		log: log,
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initDependencies(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app.initServer()

	return app, nil
}

// initDatabase инициализирует подключение к базе данных и выполняет миграции.
func (app *App) initDatabase(ctx context.Context) error {
	if app.cfg.DatabaseURI == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}

	app.log.Info("running database migrations")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Run(ctx, sqlDB, app.log.Named("migrations")); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if version, err := migrations.Version(ctx, sqlDB); err == nil {
		app.log.Info("migrations completed", zap.Int64("version", version))
	}

	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return fmt.Errorf("unable to ping database: %w", err)
	}

	app.dbPool = dbPool
	app.log.Info("connected to database")

	return nil
}

// initDependencies инициализирует storage, services и handlers.
func (app *App) initDependencies(ctx context.Context) error {
	// Storage layer
	userStorage := storage.NewPostgresUserStorage(app.dbPool)
	orderStorage := storage.NewPostgresOrderStorage(app.dbPool)
	invoiceStorage := storage.NewPostgresInvoiceStorage(app.dbPool)
	bulkStorage := storage.NewPostgresBulkInvoiceStorage(app.dbPool, app.log.Named("bulk_storage"))

	// Почта необязательна: без SMTP заявки принимаются, письма не уходят.
	var sender mailer.EmailSender
	if app.cfg.MailEnabled() {
		smtpSender, err := mailer.NewSMTPSender(app.cfg.SMTPHost, app.cfg.SMTPPort, app.cfg.SMTPUser, app.cfg.SMTPPass, app.cfg.MailFrom)
		if err != nil {
			return fmt.Errorf("failed to configure mailer: %w", err)
		}
		sender = smtpSender
		app.log.Info("mailer configured", zap.String("host", app.cfg.SMTPHost))
	} else {
		app.log.Warn("SMTP is not configured, email notifications are disabled")
	}

	// Service layer
	app.tokens = auth.NewTokenManager(app.cfg.JWTSecret, app.cfg.TokenExpiration)
	if app.cfg.StaffInviteCode == "" {
		app.log.Warn("STAFF_INVITE_CODE is not configured, staff registration is closed")
	}

	parser := importer.NewParser(app.cfg.ImportMaxFileBytes, app.cfg.ImportMaxRows)
	notificationService := services.NewNotificationService(sender, orderStorage, userStorage, app.log.Named("notifications"))
	userService := services.NewUserService(userStorage, app.tokens, app.cfg.StaffInviteCode, app.log.Named("users"))
	invoiceService := services.NewInvoiceService(orderStorage, invoiceStorage, userStorage, services.NewOrderMatcher(), notificationService, app.log.Named("invoices"))
	bulkService := services.NewBulkImportService(parser, bulkStorage, app.log.Named("bulk_import"), app.cfg.ImportTimeout)

	// Handler layer
	app.userHandler = handlers.NewUserHandler(userService)
	app.invoiceHandler = handlers.NewInvoiceHandler(invoiceService, notificationService)
	app.bulkImportHandler = handlers.NewBulkImportHandler(bulkService)

	if app.cfg.DocumentsEnabled() {
		store, err := documents.NewS3Store(ctx, app.cfg.DocumentsBucket, app.cfg.S3Endpoint)
		if err != nil {
			return fmt.Errorf("failed to configure documents storage: %w", err)
		}
		app.documentHandler = handlers.NewDocumentHandler(documents.NewService(store, app.log.Named("documents")))
		app.log.Info("documents storage configured", zap.String("bucket", app.cfg.DocumentsBucket))
	} else {
		app.log.Warn("DOCUMENTS_BUCKET is not configured, document upload is disabled")
	}

	return nil
}

// initServer инициализирует HTTP-сервер и настраивает маршруты.
func (app *App) initServer() {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.ErrorHandler(app.log)

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(logger.RequestLogger(app.log))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	authenticated := auth.Authenticate(app.tokens)
	staffOnly := auth.RequireRole(models.RoleStaff)

	// Публичные маршруты (не требуют аутентификации)
	e.POST("/api/user/register", app.userHandler.Register)
	e.POST("/api/user/login", app.userHandler.Login)
	e.POST("/api/invoices/request", app.invoiceHandler.RequestInvoice, auth.OptionalAuthenticate(app.tokens))
	e.POST("/api/invoices/notify", app.invoiceHandler.Notify)

	// Любой авторизованный пользователь
	e.GET("/api/user/me", app.userHandler.Me, authenticated)
	invoices := e.Group("/api/invoices", authenticated)
	invoices.GET("", app.invoiceHandler.ListInvoices)

	// Только сотрудники
	bulk := invoices.Group("/bulk-import", staffOnly)
	bulk.GET("/template", app.bulkImportHandler.Template)
	bulk.POST("/validate", app.bulkImportHandler.Validate)
	bulk.POST("", app.bulkImportHandler.Import)
	bulk.POST("/file", app.bulkImportHandler.ImportFile)

	e.POST("/api/invoice/send", app.invoiceHandler.SendOrderInvoice, authenticated, staffOnly)

	if app.documentHandler != nil {
		docs := e.Group("/api/documents", authenticated, staffOnly)
		docs.POST("", app.documentHandler.Upload)
		docs.GET("", app.documentHandler.List)
		docs.DELETE("/:name", app.documentHandler.Delete)
	}

	app.echo = e
}

// Start запускает HTTP-сервер.
func (app *App) Start() error {
	app.log.Info("starting server", zap.String("address", app.cfg.RunAddress))
	if err := app.echo.Start(app.cfg.RunAddress); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Shutdown корректно завершает работу приложения.
func (app *App) Shutdown(ctx context.Context) error {
	app.log.Info("shutting down server")

	if err := app.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	app.log.Info("server gracefully stopped")
	return nil
}
