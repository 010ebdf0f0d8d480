package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/haneulpark/idolbase-backend/api/controllers"
	"github.com/haneulpark/idolbase-backend/api/routes"
	"github.com/haneulpark/idolbase-backend/internal/audit"
	"github.com/haneulpark/idolbase-backend/internal/auth"
	"github.com/haneulpark/idolbase-backend/internal/catalog"
	"github.com/haneulpark/idolbase-backend/internal/moderation"
	"github.com/haneulpark/idolbase-backend/internal/notifications"
	"github.com/haneulpark/idolbase-backend/internal/social"
	"github.com/haneulpark/idolbase-backend/internal/submissions"
	"github.com/haneulpark/idolbase-backend/internal/users"
	"github.com/haneulpark/idolbase-backend/pkg/auth/session"
	"github.com/haneulpark/idolbase-backend/pkg/config"
	"github.com/haneulpark/idolbase-backend/pkg/db"
	"github.com/haneulpark/idolbase-backend/pkg/logger"
	"github.com/haneulpark/idolbase-backend/pkg/migrate"
	"github.com/haneulpark/idolbase-backend/pkg/outbox"
	"github.com/haneulpark/idolbase-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	adminRegisterService, err := auth.NewAdminRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create admin register service", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	submissionsRepo := submissions.NewRepository(dbClient.DB())
	submissionsService, err := submissions.NewService(submissions.ServiceParams{
		Repo:    submissionsRepo,
		Catalog: catalogService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create submissions service", err)
		os.Exit(1)
	}

	auditRepo := audit.NewRepository(dbClient.DB())
	auditService, err := audit.NewService(auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	moderationService, err := moderation.NewService(moderation.ServiceParams{
		DB:          dbClient,
		Submissions: submissionsRepo,
		Catalog:     catalogRepo,
		Audit:       auditRepo,
		Outbox:      outboxService,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create moderation service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo:       notifications.NewRepository(dbClient.DB()),
		Recipients: userRepo,
		Logger:     logg,
		ChunkSize:  cfg.Moderation.BroadcastChunkSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	socialService, err := social.NewService(social.ServiceParams{
		DB:       dbClient,
		Repo:     social.NewRepository(dbClient.DB()),
		Users:    userRepo,
		Notifier: notificationsService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create social service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:               cfg,
			Logger:               logg,
			Redis:                redisClient,
			SessionManager:       sessionManager,
			AuthService:          authService,
			RegisterService:      registerService,
			AdminRegisterService: adminRegisterService,
			CatalogService:       catalogService,
			SubmissionsService:   submissionsService,
			ModerationService:    moderationService,
			SocialService:        socialService,
			NotificationsService: notificationsService,
			AuditService:         auditService,
			Readiness:            controllers.HealthReady(cfg, logg, controllers.ReadinessDeps(dbClient, redisClient)),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
