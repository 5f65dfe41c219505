/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the vacation tracker server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration (.env honored locally)
  2. Open the vacation store and the credential store
  3. Pick the notifier (SMTP when configured, log sink otherwise)
  4. Optionally provision employees from a seed file
  5. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -seed    Path to a JSON seed file of employees (optional). Each entry:
           {"id","name","email","role","hire_date","assigned"}. Existing
           balance records are left untouched, so re-seeding is safe.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for active
  requests, close both stores, exit.

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/vacation-tracker/api"
	"github.com/warp/vacation-tracker/auth"
	"github.com/warp/vacation-tracker/config"
	"github.com/warp/vacation-tracker/notify"
	"github.com/warp/vacation-tracker/store/sqlite"
	"github.com/warp/vacation-tracker/vacation"
	"go.uber.org/zap"
)

func main() {
	seedPath := flag.String("seed", "", "path to employee seed file (JSON)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open vacation store", zap.Error(err))
	}
	defer store.Close()

	credStore, err := auth.NewSQLiteStore(cfg.AuthDBPath)
	if err != nil {
		logger.Fatal("failed to open credential store", zap.Error(err))
	}
	defer credStore.Close()

	var notifier vacation.Notifier
	if cfg.MailConfigured() {
		notifier = notify.NewSMTP(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		})
		logger.Info("mail notifications enabled", zap.String("host", cfg.SMTPHost))
	} else {
		notifier = notify.NewLog(logger)
		logger.Info("SMTP not configured, notifications go to the log")
	}

	workflow := vacation.NewWorkflow(store, notifier, logger)
	authSvc := auth.NewService(credStore, store, notifier, []byte(cfg.JWTSecret), logger)

	if *seedPath != "" {
		if err := seed(context.Background(), *seedPath, store, workflow.Ledger()); err != nil {
			logger.Fatal("seeding failed", zap.Error(err))
		}
	}

	handler := api.NewHandler(workflow, store, authSvc, logger)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

type seedEntry struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	HireDate string  `json:"hire_date"`
	Assigned float64 `json:"assigned"`
}

// seed provisions employees and their balance records from a JSON file.
// Existing balances are not touched; employee fields are upserted.
func seed(ctx context.Context, path string, store vacation.Store, ledger *vacation.Ledger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var entries []seedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	for _, e := range entries {
		hireDate, err := vacation.ParseDate(e.HireDate)
		if err != nil {
			return err
		}
		emp := vacation.Employee{
			ID:       e.ID,
			Name:     e.Name,
			Email:    e.Email,
			Role:     vacation.Role(e.Role),
			HireDate: hireDate,
		}
		if err := store.SaveEmployee(ctx, emp); err != nil {
			return err
		}
		assigned := vacation.DefaultAssignedDays
		if e.Assigned > 0 {
			assigned = decimal.NewFromFloat(e.Assigned)
		}
		if err := ledger.Provision(ctx, emp, assigned); err != nil {
			return err
		}
	}
	return nil
}
