// Command devapi serves a local Activities API backed by SQLite.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"activityboard/internal/adapters/devapi"
	"activityboard/internal/adapters/storage"
	activityStore "activityboard/internal/adapters/storage/activity"
	"activityboard/internal/application/orchestrators"
	"activityboard/internal/config"
)

func main() {
	cfg, err := config.LoadDevAPI()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	store := activityStore.NewSQLiteStore(storage.NewTimedDB(db, storage.DefaultSlowQuery))
	if err := orchestrators.ExecuteSeedActivities(context.Background(), orchestrators.SeedActivitiesDeps{Store: store}); err != nil {
		log.Fatalf("failed to seed activities: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           devapi.NewRouter(store),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("Activities API starting on %s (db=%s)", cfg.Addr, cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
