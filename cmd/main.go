package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"avtosalon/api/handler"
	apiMiddleware "avtosalon/api/middleware"
	"avtosalon/api/routes"
	"avtosalon/config"
	"avtosalon/internal/cache"
	"avtosalon/internal/metrics"
	"avtosalon/internal/repository"
	"avtosalon/internal/service"
	"avtosalon/internal/storage"
	"avtosalon/internal/utils"
)

func main() {
	cfg := config.MustLoad()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	db, err := config.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	logger.Info("connected to database")

	var catalogCache *cache.Cache
	if cfg.Redis.Addr != "" {
		catalogCache, err = cache.New(context.Background(), cfg.Redis)
		if err != nil {
			logger.WithError(err).Fatal("redis connection failed")
		}
		logger.Info("connected to redis")
	}

	tokens := &utils.TokenManager{
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		Issuer:        cfg.JWT.Issuer,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	carRepo := repository.NewCarRepository(db)
	carDetailsRepo := repository.NewCarDetailsRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	mailSender := service.NewResendEmailSender(cfg.Mail.ResendAPIKey, cfg.Mail.From)
	if mailSender == nil {
		logger.Warn("mail relay not configured, verification emails disabled")
	}

	authService := service.NewAuthService(
		userRepo,
		auditRepo,
		emailSenderOrNil(mailSender),
		service.BcryptPasswordHasher{Cost: 12},
		tokens,
		service.RealClock{},
		logger,
		service.WithCodeTTL(cfg.VerificationCodeTTL),
	)

	images := storage.NewImageStore(cfg.UploadDir)
	catalogService := service.NewCatalogService(categoryRepo, carRepo, carDetailsRepo, images, catalogCache, logger)

	validate := validator.New()
	authHandler := handler.NewAuthHandler(authService, validate)
	authHandler.CookieDomain = cfg.CookieDomain
	authHandler.SecureCookies = cfg.IsProduction()

	categoryHandler := handler.NewCategoryHandler(catalogService, cfg.BaseURL)
	carHandler := handler.NewCarHandler(catalogService, cfg.BaseURL)
	carDetailsHandler := handler.NewCarDetailsHandler(catalogService, cfg.BaseURL)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger, cfg.IsProduction())
	app.Use(echoMiddleware.Recover())
	app.Use(metrics.New(prometheus.DefaultRegisterer).Middleware())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	guard := apiMiddleware.AccessGuard{Tokens: tokens}
	router := routes.NewRouter(app, authHandler, categoryHandler, carHandler, carDetailsHandler, guard, cfg.UploadDir)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

// emailSenderOrNil keeps a typed-nil *ResendEmailSender from reaching the
// service as a non-nil interface.
func emailSenderOrNil(sender *service.ResendEmailSender) service.EmailSender {
	if sender == nil {
		return nil
	}
	return sender
}
