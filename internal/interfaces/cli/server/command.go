// Package server implements the CLI command that wires and runs the HTTP
// server.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	auditapp "pharos/internal/application/audit"
	consentapp "pharos/internal/application/consent"
	"pharos/internal/application/erasure"
	interactionapp "pharos/internal/application/interaction"
	"pharos/internal/application/subject/usecases"
	"pharos/internal/infrastructure/cache"
	"pharos/internal/infrastructure/config"
	"pharos/internal/infrastructure/database"
	"pharos/internal/infrastructure/migration"
	"pharos/internal/infrastructure/repository"
	"pharos/internal/infrastructure/vault"
	httpRouter "pharos/internal/interfaces/http"
	"pharos/internal/interfaces/http/handlers/auditlog"
	consentHandler "pharos/internal/interfaces/http/handlers/consent"
	"pharos/internal/interfaces/http/handlers/gdpr"
	interactionHandler "pharos/internal/interfaces/http/handlers/interaction"
	subjectHandler "pharos/internal/interfaces/http/handlers/subject"
	"pharos/internal/interfaces/http/middleware"
	"pharos/internal/shared/db"
	"pharos/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the Pharos trust layer HTTP server with the specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	log.Infow("starting server", "environment", env, "auto_migrate", autoMigrate)

	gin.SetMode(mapEnvToGinMode(env))
	gin.DefaultWriter = io.Discard

	// The vault is checked before anything else: without key material the
	// process must not come up at all.
	fieldVault, err := vault.New(&cfg.Vault)
	if err != nil {
		return fmt.Errorf("failed to initialize field vault: %w", err)
	}

	gormDB, err := database.Connect(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(gormDB); err != nil {
			log.Errorw("failed to close database", "error", err)
		}
	}()

	if autoMigrate {
		if err := migration.Run(gormDB); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		log.Infow("consent status cache enabled", "addr", cfg.Redis.Addr)
	}
	statusCache := cache.NewConsentStatusCache(redisClient)

	subjectRepo := repository.NewSubjectRepository(gormDB)
	consentRepo := repository.NewConsentRecordRepository(gormDB)
	interactionRepo := repository.NewInteractionRepository(gormDB)
	auditRepo := repository.NewAuditEntryRepository(gormDB)
	txManager := db.NewTransactionManager(gormDB)

	trail := auditapp.NewTrail(auditRepo, log)
	ledger := consentapp.NewLedger(consentRepo, subjectRepo, trail, txManager, statusCache, log)

	handlers := httpRouter.Handlers{
		Subject: subjectHandler.NewHandler(
			usecases.NewCreateSubjectUseCase(subjectRepo, fieldVault, trail, txManager, log),
			usecases.NewGetSubjectUseCase(subjectRepo, fieldVault, trail, log),
			usecases.NewUpdateSubjectUseCase(subjectRepo, fieldVault, trail, txManager, log),
			usecases.NewSearchSubjectsUseCase(subjectRepo, fieldVault, log),
			usecases.NewSoftDeleteSubjectUseCase(subjectRepo, trail, txManager, log),
			log,
		),
		Consent: consentHandler.NewHandler(ledger, log),
		Interaction: interactionHandler.NewHandler(
			interactionapp.NewRecordInteractionUseCase(interactionRepo, subjectRepo, ledger, trail, txManager, log),
			log,
		),
		AuditLog: auditlog.NewHandler(trail, log),
		GDPR: gdpr.NewHandler(
			erasure.NewAnonymizeSubjectUseCase(subjectRepo, fieldVault, trail, txManager, statusCache, log),
			erasure.NewGenerateReportUseCase(subjectRepo, consentRepo, interactionRepo, trail, log),
			log,
		),
	}

	auth := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret, log)
	router := httpRouter.NewRouter(handlers, auth, log)
	router.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
