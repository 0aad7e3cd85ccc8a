package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	libredis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	_ "github.com/sharedsaver/shared_saver_app/cmd/docs"
	portsrepo "github.com/sharedsaver/shared_saver_app/internal/core/ports/repositories"
	portssvc "github.com/sharedsaver/shared_saver_app/internal/core/ports/services"
	"github.com/sharedsaver/shared_saver_app/internal/core/services"
	"github.com/sharedsaver/shared_saver_app/internal/handlers"
	"github.com/sharedsaver/shared_saver_app/internal/middleware"
	"github.com/sharedsaver/shared_saver_app/internal/platform/config"
	"github.com/sharedsaver/shared_saver_app/internal/repositories/database/pgsql"
	"github.com/sharedsaver/shared_saver_app/internal/utils"
	"github.com/sharedsaver/shared_saver_app/pkg/database"
)

// @title Shared Saver Backend API
// @version 1.0
// @description Shared savings accounts with pooled contributions and interest-free member loans.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting, analytics)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimit(newRateLimiter(cfg, logger)))
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := buildServices(repos)

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server exited.")
}

// buildServices wires the repository provider into the service layer.
func buildServices(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	accountSvc := services.NewAccountService(repos.AccountRepo, repos.LoanRepo, repos.TransactionRepo)
	transactionSvc := services.NewTransactionService(repos.TransactionRepo, repos.AccountRepo)
	loanSvc := services.NewLoanService(repos.LoanRepo, repos.AccountRepo, repos.UserRepo, accountSvc)
	userSvc := services.NewUserService(repos.UserRepo)

	return &portssvc.ServiceContainer{
		Account:     accountSvc,
		Transaction: transactionSvc,
		Loan:        loanSvc,
		User:        userSvc,
	}
}

// newRateLimiter builds the global request limiter. A Redis-backed store is
// used when REDIS_URL is configured so limits hold across replicas; otherwise
// a per-process in-memory store is used.
func newRateLimiter(cfg *config.Config, logger *slog.Logger) *limiter.Limiter {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Warn("Invalid rate limit format, falling back to 100-M", slog.String("configured", cfg.RateLimit), slog.String("error", err.Error()))
		rate = limiter.Rate{Period: time.Minute, Limit: 100}
	}

	if cfg.RedisURL != "" {
		opts, err := libredis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("Invalid Redis URL for rate limiter", slog.String("error", err.Error()))
			os.Exit(1)
		}
		client := libredis.NewClient(opts)
		store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix: "ssa_ratelimit",
		})
		if err != nil {
			logger.Error("Failed to create Redis rate limit store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Rate limiter using Redis store")
		return limiter.New(store, rate)
	}

	return limiter.New(memory.NewStore(), rate)
}

// runMigrations applies pending schema migrations using a temporary
// database/sql connection compatible with the pgx pool.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
