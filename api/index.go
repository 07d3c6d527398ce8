package api

import (
	"net/http"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"finance-serverless/internal/app"
	"finance-serverless/internal/config"
	"finance-serverless/internal/web"
)

var (
	initOnce   sync.Once
	apiRuntime *app.Runtime
	initErr    error
)

// Handler is the serverless entrypoint. The application is built once per
// instance and reused across invocations.
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(func() {
		apiRuntime, initErr = app.Build(app.Options{
			LoadDotEnv:    false,
			RunMigrations: config.EnvBoolOrDefault("RUN_MIGRATIONS_ON_STARTUP", false),
		})
	})

	if initErr != nil {
		web.WriteMessage(w, http.StatusInternalServerError, "application bootstrap failed")
		return
	}

	apiRuntime.Handler.ServeHTTP(w, r)
}
