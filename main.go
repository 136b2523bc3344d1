package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/db"
	"github.com/nijaru/yt-transcript/handlers"
	"github.com/nijaru/yt-transcript/logger"
	"github.com/nijaru/yt-transcript/transcription"
	"github.com/nijaru/yt-transcript/youtube"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()

	if err := config.ValidateConfig(cfg); err != nil {
		log.Fatalf("FATAL: Invalid configuration: %v", err)
	}

	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}

	var auditor handlers.Auditor
	if cfg.AuditDBPath != "" {
		store, err := db.InitializeDB(cfg.AuditDBPath)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize audit database")
		}
		defer func() {
			if err := store.Close(); err != nil {
				appLogger.WithError(err).Error("Failed to close audit database")
			}
		}()
		auditor = store
	}

	client := youtube.NewClient(youtube.Config{
		BaseURL:        cfg.YouTubeBaseURL,
		AcceptLanguage: cfg.YouTubeAcceptLanguage,
		HTTPClient:     &http.Client{Timeout: cfg.HTTPClientTimeout},
	})
	selector := transcription.NewSelector(client, cfg.LanguagePriority, appLogger)
	handler := handlers.NewHandler(selector, auditor, appLogger, cfg.RequestTimeout)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		appLogger.WithFields(logrus.Fields{
			"port":      cfg.ServerPort,
			"languages": cfg.LanguagePriority,
			"audit":     auditor != nil,
		}).Info("Listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatalf("Could not listen on :%s", cfg.ServerPort)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop

	appLogger.Info("Shutting down the server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Server shutdown failed")
	}
}
