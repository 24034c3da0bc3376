package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"activityboard/internal/adapters/activitiesapi"
	emailPkg "activityboard/internal/adapters/email"
	web "activityboard/internal/adapters/http"
	"activityboard/internal/application/board"
	"activityboard/internal/application/orchestrators"
	"activityboard/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	csrfKey, generated, err := cfg.CSRFKey()
	if err != nil {
		log.Fatalf("invalid CSRF key: %v", err)
	}
	if generated {
		log.Println("BOARD_CSRF_KEY is not set; using a random key (forms break across restarts)")
	}

	deps := board.Deps{API: activitiesapi.NewClient(cfg.APIURL, cfg.APITimeout)}
	if cfg.NotifyParticipants {
		deps.Notifier = newNotifier(cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := board.NewRegistry(deps, cfg.SessionTTL)
	go registry.Run(ctx, time.Minute)

	web.RateLimitPerSecond = cfg.RateLimit
	mux := web.NewMux(ctx, web.Options{
		CSRFKey:        csrfKey,
		Secure:         cfg.IsProduction(),
		TrustedOrigins: cfg.TrustedOrigins,
		SessionTTL:     cfg.SessionTTL,
		SlowRequest:    cfg.SlowRequestThreshold(),
	}, registry)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Board renders wait on the Activities API.
		WriteTimeout: cfg.APITimeout*3 + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Activity board %s starting on %s (env=%s, api=%s)", version, cfg.Addr, cfg.Env, cfg.APIURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func newNotifier(cfg config.Config) orchestrators.Notifier {
	if cfg.ResendKey != "" {
		log.Println("Participant notices configured (Resend)")
		return emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
	}
	if cfg.IsProduction() {
		log.Println("WARNING: BOARD_RESEND_KEY is not set, participant notices are only logged")
	} else {
		log.Println("Participant notices configured (noop, set BOARD_RESEND_KEY for real delivery)")
	}
	return emailPkg.NewNoopSender()
}
