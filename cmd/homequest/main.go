package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hollisdean/homequest/internal/database"
	"github.com/hollisdean/homequest/internal/handler"
	"github.com/hollisdean/homequest/internal/logging"
	"github.com/hollisdean/homequest/internal/server"
	"github.com/hollisdean/homequest/internal/store"
)

func main() {
	logger := logging.Setup(os.Getenv("HOMEQUEST_LOG_LEVEL"))

	port := os.Getenv("HOMEQUEST_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("HOMEQUEST_DB_PATH")
	if dbPath == "" {
		dbPath = "homequest.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	settingsStore := store.NewSettingsStore(db)
	if err := handler.EnsureDefaultPIN(settingsStore, logger); err != nil {
		log.Fatalf("failed to ensure parent PIN: %v", err)
	}

	srv := server.New(db, logger)

	// Expired parent sessions and stale rate-limit buckets are swept hourly.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Warn("session cleanup failed", "error", err)
				} else if n > 0 {
					logger.Debug("expired sessions removed", "count", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("HomeQuest running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
