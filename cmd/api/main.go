package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/jairoandre/maggie/internal/adapter/handler"
	"github.com/jairoandre/maggie/internal/adapter/middleware"
	"github.com/jairoandre/maggie/internal/adapter/storage"
	"github.com/jairoandre/maggie/internal/core/config"
	"github.com/jairoandre/maggie/internal/core/worker"
)

func main() {
	// 1. Load Config
	cfg := config.LoadConfig()

	// 2. Setup Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 3. Connect to Database
	dbPool, err := storage.ConnectDB(cfg)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	// Closed manually on shutdown, after the server drains.

	// 4. Setup Repo & Handlers
	ledgerRepo := storage.NewLedgerRepository(dbPool, cfg.WebhookURL)

	accountHandler := &handler.AccountHandler{Repo: ledgerRepo}
	transactionHandler := &handler.TransactionHandler{Repo: ledgerRepo}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	app.Use(middleware.RequestID())

	// 6. Routes
	clientes := app.Group("/clientes")
	clientes.Get("/:id/extrato", accountHandler.GetStatement)
	clientes.Post("/:id/transacoes", middleware.Idempotency(dbPool), transactionHandler.PostTransaction)

	// 7. Start Worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	if cfg.WebhookURL != "" {
		worker.StartOutbox(workerCtx, dbPool, cfg.WebhookSecret)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("🚀 Server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutting down server...")

	stopWorker()

	// Finish active requests before cutting the database out from under them.
	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	dbPool.Close()

	slog.Info("Server exited")
}
