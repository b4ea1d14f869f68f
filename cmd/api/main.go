package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/pcaldeira/attest/internal/config"
	"github.com/pcaldeira/attest/internal/database"
	attestHttp "github.com/pcaldeira/attest/internal/http"
	importHandler "github.com/pcaldeira/attest/internal/http/importcsv"
	incomeHandler "github.com/pcaldeira/attest/internal/http/income"
	"github.com/pcaldeira/attest/internal/importer"
	"github.com/pcaldeira/attest/internal/income"
	incomeStore "github.com/pcaldeira/attest/internal/income/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		incomeService = income.NewService(incomeStore.New(db), income.DefaultPolicy())
		importService = importer.NewService()
	)

	var (
		incomeH = incomeHandler.NewHandler(incomeService)
		importH = importHandler.NewHandler(importService, incomeService)
	)

	router := attestHttp.New(incomeH, importH, cfg.Auth.Secret)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "app", cfg.App.Name, "addr", server.Addr)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
