package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"finance-serverless/internal/auth"
	"finance-serverless/internal/config"
	"finance-serverless/internal/db"
	"finance-serverless/internal/movement"
	"finance-serverless/internal/observability"
	"finance-serverless/internal/web"
)

type Options struct {
	LoadDotEnv    bool
	RunMigrations bool
}

type Runtime struct {
	Handler http.Handler
	Config  *config.Config
	Close   func() error
}

// Build wires the whole application: configuration, database, token
// service, gate, and handlers. Every route is registered through the gate so
// a route that is not explicitly public cannot be reached without a token.
func Build(options Options) (*Runtime, error) {
	if options.LoadDotEnv {
		_ = godotenv.Load()
	}

	logger := observability.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := observability.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		logger.Error("init_sentry_failed", observability.Fields{"error": err.Error()})
	}

	database, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	database.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	database.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if options.RunMigrations {
		if err := db.RunMigrations(database); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	tokenService, err := auth.NewTokenService(auth.TokenConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Expiry:   cfg.TokenExpiry(),
	})
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("init token service: %w", err)
	}

	userStore := auth.NewRepository(database)
	authHandler := auth.NewHandler(userStore, tokenService, logger, cfg.TokenExpiresMinutes, cfg.AdminAPIKey)

	movementStore := movement.NewRepository(database)
	movementHandler := movement.NewHandler(movementStore, logger)

	gate := auth.NewGate(tokenService, logger, "Login", "Register", "Health")

	mux := http.NewServeMux()
	mux.Handle("POST /auth/login", gate.Protect("Login", http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /auth/register", gate.Protect("Register", http.HandlerFunc(authHandler.Register)))
	mux.Handle("GET /health", gate.Protect("Health", healthHandler(database)))
	mux.Handle("POST /movements", gate.Protect("CreateMovement", http.HandlerFunc(movementHandler.Create)))
	mux.Handle("GET /movements", gate.Protect("GetMovements", http.HandlerFunc(movementHandler.List)))
	mux.Handle("GET /movements/by-month", gate.Protect("GetMovementsByMonth", http.HandlerFunc(movementHandler.ListByMonth)))
	mux.Handle("DELETE /movements", gate.Protect("DeleteMovement", http.HandlerFunc(movementHandler.Delete)))

	handler := observability.RecoverMiddleware(logger, observability.RequestLoggingMiddleware(logger, mux))

	return &Runtime{
		Handler: handler,
		Config:  cfg,
		Close: func() error {
			observability.FlushSentry()
			return database.Close()
		},
	}, nil
}

func healthHandler(database *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]any{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}
		if err := database.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body = map[string]any{"status": "degraded", "time": time.Now().UTC().Format(time.RFC3339)}
		}

		web.WriteJSON(w, status, body)
	}
}
