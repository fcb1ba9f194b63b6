package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/lumafin/credit-service/internal/config"
	"github.com/lumafin/credit-service/internal/handler"
	"github.com/lumafin/credit-service/internal/integrations/boe"
	"github.com/lumafin/credit-service/internal/repository"
	"github.com/lumafin/credit-service/internal/service"
	"github.com/lumafin/credit-service/internal/utils/email"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage
	var store repository.Store
	if cfg.DBConn == "memory" {
		store = repository.NewMemoryStore()
		logger.Warn("Using in-memory store, data will not survive a restart")
	} else {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		store = repository.NewRepository(db)
	}

	// Initialize layers
	var notifier service.Notifier
	if cfg.SMTPHost != "" && cfg.RewardNotifyEmail != "" {
		notifier = email.NewSender(cfg, logger)
	}
	svc := service.NewService(store, logger, cfg, notifier)
	h := handler.NewHandler(svc)
	rateClient := boe.NewClient(cfg, logger)

	// Schedule the daily accrual batch
	scheduler := cron.New()
	spec := fmt.Sprintf("0 %d * * *", cfg.AccrualHour)
	if _, err := scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := svc.RunDailyAccrual(ctx); err != nil {
			logger.Errorf("Daily accrual batch failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule accrual job: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	// Base rate endpoint
	r.HandleFunc("/base-rate", func(w http.ResponseWriter, r *http.Request) {
		rate, err := rateClient.GetBaseRate()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get base rate: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"base_rate": rate})
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
