package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/accounts/internal/config"
	"github.com/templui/accounts/internal/db"
	"github.com/templui/accounts/internal/imaging"
	"github.com/templui/accounts/internal/repository"
	"github.com/templui/accounts/internal/service"
	"github.com/templui/accounts/internal/storage"
	"golang.org/x/sync/semaphore"
)

type App struct {
	Cfg          *config.Config
	DB           *sqlx.DB
	Storage      storage.Storage
	AuthService  *service.AuthService
	UserService  *service.UserService
	EmailService *service.EmailService
	FileService  *service.FileService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.AutoMigrate {
		err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
		if err != nil {
			_ = db.Close(database)
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	a, err := NewWithDB(ctx, cfg, database)
	if err != nil {
		_ = db.Close(database)
		return nil, err
	}
	return a, nil
}

// NewWithDB wires services on an already opened and migrated database.
func NewWithDB(ctx context.Context, cfg *config.Config, database *sqlx.DB) (*App, error) {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	tokenRepository := repository.NewTokenRepository(database)

	// Storage
	fileStorage, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// bcrypt and image resizing share one limiter
	workers := semaphore.NewWeighted(int64(cfg.Workers))

	sender, err := newSender(cfg)
	if err != nil {
		return nil, err
	}

	// Services
	emailService := service.NewEmailService(sender, cfg.AppURL, cfg.AppName)
	fileService := service.NewFileService(fileStorage, imaging.NewProcessor(0), cfg.AvatarSize, workers)
	authService := service.NewAuthService(
		userRepository,
		tokenRepository,
		service.NewPasswordHasher(cfg.BcryptCost, workers),
		service.NewSessionIssuer(cfg.JWTSecret, cfg.JWTExpiry),
		emailService,
	)
	userService := service.NewUserService(userRepository, fileService)

	return &App{
		Cfg:          cfg,
		DB:           database,
		Storage:      fileStorage,
		AuthService:  authService,
		UserService:  userService,
		EmailService: emailService,
		FileService:  fileService,
	}, nil
}

func newSender(cfg *config.Config) (service.Sender, error) {
	switch cfg.EmailProvider {
	case config.EmailProviderResend:
		return service.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom), nil
	case config.EmailProviderSMTP:
		return service.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom), nil
	case config.EmailProviderLog:
		return service.LogSender{}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.EmailProvider)
	}
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
