package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apiHttp "github.com/vibe-gaming/notes/internal/api/http"
	"github.com/vibe-gaming/notes/internal/cache"
	"github.com/vibe-gaming/notes/internal/config"
	"github.com/vibe-gaming/notes/internal/db"
	"github.com/vibe-gaming/notes/internal/migration"
	"github.com/vibe-gaming/notes/internal/oauth"
	"github.com/vibe-gaming/notes/internal/queue/asynqserver"
	"github.com/vibe-gaming/notes/internal/queue/client"
	"github.com/vibe-gaming/notes/internal/repository"
	"github.com/vibe-gaming/notes/internal/server"
	"github.com/vibe-gaming/notes/internal/service"
	"github.com/vibe-gaming/notes/internal/worker"
	"github.com/vibe-gaming/notes/pkg/auth"
	"github.com/vibe-gaming/notes/pkg/email"
	"github.com/vibe-gaming/notes/pkg/email/smtp"
	"github.com/vibe-gaming/notes/pkg/logger"
	"github.com/vibe-gaming/notes/pkg/otp"

	"go.uber.org/zap"
)

const serviceName = "notes-api"

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	// Dependencies
	if err := logger.Setup(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		ServiceName: serviceName,
	}); err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting notes api", zap.String("env", cfg.Env))
	logger.Debug("debug messages are enabled")

	// Init database
	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		logger.Fatal("mysql connect problem", zap.Error(err))
	}
	defer func() {
		if err := dbMySQL.Close(); err != nil {
			logger.Error("error when closing", zap.Error(err))
		}
	}()
	logger.Info("mysql connection done")

	if cfg.Database.AutoMigrate {
		if err := migration.NewMigrator(dbMySQL).Up(); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		logger.Info("migrations applied")
	}

	// Init redis
	rdb, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		logger.Fatal("redis connect problem", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("error when closing redis", zap.Error(err))
		}
	}()

	queueClient := client.New(cfg.Cache)
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Error("error when closing queue client", zap.Error(err))
		}
	}()

	tokenManager, err := auth.NewManager(cfg.Auth.JWT)
	if err != nil {
		logger.Fatal("auth manager creation err", zap.Error(err))
	}

	otpGenerator := otp.NewGOTPGenerator(otp.DefaultLength)

	// Services, Repos & API Handlers
	repos := repository.NewRepositories(dbMySQL)
	services := service.NewServices(service.Deps{
		Config:           cfg,
		TokenManager:     tokenManager,
		OtpGenerator:     otpGenerator,
		Repos:            repos,
		Transactor:       db.NewTransactor(dbMySQL),
		IdentityProvider: oauth.NewGoogle(cfg.Google),
		OAuthStates:      oauth.NewRedisStateStore(rdb, cfg.Google.StateTTL),
		Enqueuer:         queueClient,
	})
	handlers := apiHttp.NewHandlers(services, cfg)

	// Background workers
	var emailSender email.Sender
	if cfg.Email.Enabled {
		smtpSender, err := smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
		if err != nil {
			logger.Fatal("smtp sender creation failed", zap.Error(err))
		}
		emailSender = smtpSender
	}
	workers := worker.NewWorkers(worker.Deps{
		Repos:         repos,
		EmailProvider: emailSender,
		Config:        cfg,
	})

	queueServer, mux := asynqserver.New(cfg, workers)
	if err := queueServer.Start(mux); err != nil {
		logger.Fatal("queue server start failed", zap.Error(err))
	}

	scheduler, err := asynqserver.NewScheduler(cfg)
	if err != nil {
		logger.Fatal("queue scheduler creation failed", zap.Error(err))
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal("queue scheduler start failed", zap.Error(err))
	}
	logger.Info("queue workers started")

	// HTTP Server
	srv := server.NewServer(cfg, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("port", cfg.HttpServer.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	ctx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	if err := srv.Stop(ctx); err != nil {
		logger.Error("failed to stop server", zap.Error(err))
	}

	scheduler.Shutdown()
	queueServer.Shutdown()

	logger.Info("app stopped")
}
