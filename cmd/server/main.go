package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	api "toolirent/internal/api/http"
	"toolirent/internal/config"
	"toolirent/internal/logger"
	"toolirent/internal/repository/postgres"
	"toolirent/internal/security"
	"toolirent/internal/service"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded, relying on environment")
	}

	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting TooLiRent backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	authSvc := service.NewAuthService(store.UserRepository, store.CustomerRepository, tokenManager, cfg.Seed)
	toolSvc := service.NewToolService(store.ToolRepository)
	customerSvc := service.NewCustomerService(store.CustomerRepository)
	rentalSvc := service.NewRentalService(
		store.RentalRepository,
		store.ToolRepository,
		store.CustomerRepository,
		time.Duration(cfg.Rental.StartGraceHours)*time.Hour,
	)
	statsSvc := service.NewAdminSummaryService(store.SummaryRepository)

	// Provision the bootstrap admin and member identities
	if err := authSvc.EnsureSeedUsers(context.Background()); err != nil {
		logger.Error("Failed to seed identities", "error", err)
		log.Fatalf("Failed to seed identities: %v", err)
	}

	router := api.NewRouter(tokenManager, authSvc, toolSvc, customerSvc, rentalSvc, statsSvc)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
