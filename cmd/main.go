package main

//
//  @title           tradeflow API
//  @version         1.0
//  @description     Escrow lifecycle service for commodity trades between buyers and suppliers.
//  @termsOfService  https://github.com/guttosm/tradeflow
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/tradeflow
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        trades
//  @tag.description Trade creation and escrow lifecycle transitions
//
//  @tag.name        admin
//  @tag.description Platform settings managed by administrators
//
//  @tag.name        events
//  @tag.description Live lifecycle notifications over websocket
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/tradeflow/config"
	"github.com/guttosm/tradeflow/db"
	_ "github.com/guttosm/tradeflow/docs" // swagger docs
	"github.com/guttosm/tradeflow/internal/app"
	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/guttosm/tradeflow/internal/ingestion"
	"github.com/guttosm/tradeflow/internal/logger"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// runImport bulk-creates trades from the CSV files in dir on behalf of adminID.
func runImport(ctx context.Context, cfg config.Config, dir, adminID string, parallel int) (ingestion.Summary, error) {
	if adminID == "" {
		if len(cfg.Server.AdminUserIDs) == 0 {
			return ingestion.Summary{}, errors.New("import requires --as or ADMIN_USER_IDS")
		}
		adminID = cfg.Server.AdminUserIDs[0]
	}

	comps, err := app.Build(cfg)
	if err != nil {
		return ingestion.Summary{}, err
	}
	defer func() { _ = comps.Close() }()

	return ingestion.ImportDirectory(ctx, dir, comps.Service, models.Caller{ID: adminID, Admin: true}, parallel)
}

// runMigrate applies the embedded schema to the configured database.
func runMigrate(cfg config.Config) error {
	conn, err := app.InitPostgres(cfg)
	if err != nil {
		return fmt.Errorf("db connect error: %w", err)
	}
	defer func() { _ = conn.Close() }()
	return db.Migrate(conn)
}

// main is the entry point of the tradeflow application.
//
// Modes (selected via --mode flag):
//   - api:     Starts the REST API and the websocket event stream.
//   - migrate: Applies database migrations and exits.
//   - import:  Bulk-creates trades from ;-separated CSV files.
//
// Flags:
//   - --mode:     Execution mode ("api", "migrate" or "import"). Default: "api".
//   - --dir:      Directory containing .csv files for import. Default: "./data/input".
//   - --parallel: Files imported concurrently (0=auto up to CPU, max 8).
//   - --as:       Admin user ID recorded as the importer. Defaults to the first ADMIN_USER_IDS entry.
//   - --port:     Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	mode := flag.String("mode", "api", "Mode: api, migrate or import")
	dir := flag.String("dir", "./data/input", "Directory with .csv files")
	parallel := flag.Int("parallel", 0, "How many files to import concurrently (0=auto up to CPU, max 8)")
	as := flag.String("as", "", "Admin user ID performing the import")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "api":
		logger.L().Info().Str("store", config.AppConfig.Store.Driver).Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	case "migrate":
		if err := runMigrate(config.AppConfig); err != nil {
			logger.L().Fatal().Err(err).Msg("migration failed")
		}
		logger.L().Info().Msg("migrations applied")

	case "import":
		logger.L().Info().Str("dir", *dir).Msg("running import")
		sum, err := runImport(ctx, config.AppConfig, *dir, *as, *parallel)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("import failed")
		}
		logger.L().Info().
			Int("files", sum.Files).
			Int("imported", sum.Imported).
			Int("rejected", sum.Rejected).
			Msg("import completed")

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
