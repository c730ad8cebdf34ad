package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"praytogether-backend/config"
	"praytogether-backend/database"
	"praytogether-backend/handlers"
	"praytogether-backend/kvstore"
	"praytogether-backend/logger"
	"praytogether-backend/observability"
	"praytogether-backend/repository"
	"praytogether-backend/service"
	"praytogether-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLog.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitOTel(ctx, appLog, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		Environment: cfg.Environment,
		Version:     version,
		Endpoint:    cfg.OtelEndpoint,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})

	if cfg.RunMigrations {
		if err := database.RunMigrations(cfg.DatabaseURL, appLog); err != nil {
			appLog.Fatal("Failed to run migrations", "error", err)
		}
	}

	db, err := database.NewPool(ctx, cfg.DatabaseURL, appLog)
	if err != nil {
		appLog.Fatal("Failed to initialize Postgres", "error", err)
	}
	defer db.Close()

	fileStorage, err := storage.NewStorage(ctx, storage.ConfigFromEnv())
	if err != nil {
		appLog.Fatal("Failed to initialize storage", "error", err)
	}
	appLog.Info("Storage initialized")

	planKV, err := kvstore.New(ctx, kvstore.Config{
		Type:          kvstore.Type(cfg.PlanStoreType),
		SQLitePath:    cfg.PlanStorePath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		appLog.Fatal("Failed to open plan store", "error", err)
	}
	defer planKV.Close()
	appLog.Info("Plan store opened", "type", cfg.PlanStoreType)

	geminiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		appLog.Fatal("Failed to initialize Gemini", "error", err)
	}
	defer geminiClient.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	fileRepo := repository.NewFileRepository(db)

	// Services
	profileService := service.NewProfileService(
		service.WithProfileRepository(profileRepo),
		service.WithFileRepository(fileRepo),
		service.WithStorage(fileStorage),
		service.WithPublicBaseURL(cfg.PublicBaseURL),
		service.ProfileWithLogger(appLog),
	)

	authOpts := []service.AuthServiceOption{
		service.WithUserRepository(userRepo),
		service.WithNewUserChecker(profileService),
		service.WithJWT(cfg.JWTSecret, cfg.TokenTTL),
		service.AuthWithLogger(appLog),
	}
	if cfg.GoogleOAuthEnabled() {
		google := service.NewGoogleOAuth(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		authOpts = append(authOpts, service.WithOAuthProvider(google))
		appLog.Info("Google sign-in enabled")
	}
	authService := service.NewAuthService(authOpts...)

	planService := service.NewPlanService(
		service.PlanWithGenerator(service.NewGeminiGenerator(geminiClient, cfg.GeminiModel)),
		service.PlanWithLogger(appLog),
	)
	planStore := service.NewPlanStore(planKV, service.PlanStoreWithLogger(appLog))

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(authService, appLog),
		Plans:          handlers.NewPlanHandler(planService, planStore, profileService, appLog),
		Profile:        handlers.NewProfileHandler(profileService, appLog),
		Files:          handlers.NewFileHandler(profileService, appLog),
		Catalog:        handlers.NewCatalogHandler(),
		Authn:          authService,
		Log:            appLog,
		CORSOrigins:    cfg.CORSOrigins,
		Tracing:        cfg.OtelEnabled,
		MaxUploadBytes: service.MaxPhotoSize,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("Server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLog.Warn("Tracer shutdown failed", "error", err)
	}
}
