package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"plantracker/internal/database"
	"plantracker/internal/logging"
	"plantracker/internal/notify"
	"plantracker/internal/server"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := logging.Setup(os.Getenv("PLANTRACKER_LOG_LEVEL"), os.Getenv("PLANTRACKER_LOG_FORMAT"))

	port := env("PLANTRACKER_PORT", "8080")
	dbPath := env("PLANTRACKER_DB_PATH", "plantracker.db")
	botToken := os.Getenv("PLANTRACKER_BOT_TOKEN")
	jwtSecret := os.Getenv("PLANTRACKER_JWT_SECRET")

	if botToken == "" {
		logger.Error("PLANTRACKER_BOT_TOKEN is required")
		os.Exit(1)
	}
	if jwtSecret == "" {
		logger.Error("PLANTRACKER_JWT_SECRET is required")
		os.Exit(1)
	}

	initDataMaxAge, err := time.ParseDuration(env("PLANTRACKER_INITDATA_MAX_AGE", "1h"))
	if err != nil {
		logger.Error("invalid PLANTRACKER_INITDATA_MAX_AGE", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var notifier notify.Notifier
	notifier, err = notify.NewTelegram(botToken)
	if err != nil {
		// The bot is only needed for outgoing messages; keep serving.
		logger.Warn("telegram bot unavailable, list sending disabled", "error", err)
		notifier = notify.Nop{}
	}

	srv := server.New(db, server.Config{
		BotToken:       botToken,
		JWTSecret:      jwtSecret,
		TokenTTL:       30 * 24 * time.Hour,
		InitDataMaxAge: initDataMaxAge,
	}, notifier, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Periodic rate limiter cleanup
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()

	go func() {
		logger.Info("listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	close(cleanupDone)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
