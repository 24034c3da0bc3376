package web

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"activityboard/internal/adapters/http/middleware"
	"activityboard/internal/application/board"
	"activityboard/internal/observability"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Options configures the board's HTTP surface.
type Options struct {
	// CSRFKey is the 32-byte gorilla/csrf secret.
	CSRFKey        []byte
	Secure         bool
	TrustedOrigins []string
	SessionTTL     time.Duration
	SlowRequest    time.Duration
}

// Global board registry (set by NewMux)
var boards *board.Registry

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// NewMux wires HTTP handlers for the board. Background sweepers stop when
// ctx is done.
// PRE: registry is non-nil; opts.CSRFKey is 32 bytes
// POST: Returns the fully wrapped handler
func NewMux(ctx context.Context, opts Options, registry *board.Registry) http.Handler {
	boards = registry
	middleware.SecureCookies = opts.Secure

	mux := http.NewServeMux()
	registerRoutes(mux)

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)
	go limiter.Run(ctx)

	// Apply middleware: Timing -> RateLimit -> Visitor -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, middleware.CSRFOptions{
			Secure:         opts.Secure,
			TrustedOrigins: opts.TrustedOrigins,
		}),
		middleware.Visitor(opts.SessionTTL),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.SlowRequest, observability.ObserveHTTPRequest),
	)
}

func registerRoutes(mux *http.ServeMux) {
	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", handleHealthz)

	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("GET /board", handleBoardJSON)
	mux.HandleFunc("POST /signup", handleSignup)
	mux.HandleFunc("POST /remove", handleRemove)
}
