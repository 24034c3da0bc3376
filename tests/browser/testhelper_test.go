package browser_test

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"activityboard/internal/adapters/activitiesapi"
	"activityboard/internal/adapters/devapi"
	web "activityboard/internal/adapters/http"
	"activityboard/internal/adapters/storage"
	activityStore "activityboard/internal/adapters/storage/activity"
	"activityboard/internal/application/board"
	"activityboard/internal/application/orchestrators"
)

// testCSRFKey is a fixed 32-byte key for browser tests.
var testCSRFKey = []byte("0123456789abcdef0123456789abcdef")

// testApp holds the running servers and Playwright handles.
type testApp struct {
	BaseURL string
	API     *httptest.Server
	Store   *activityStore.SQLiteStore
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
}

// newTestApp starts an Activities API over a temp SQLite DB, a board server
// in front of it, and a headless Chromium.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init test DB: %v", err)
	}
	store := activityStore.NewSQLiteStore(db)
	ctx, cancel := context.WithCancel(context.Background())
	if err := orchestrators.ExecuteSeedActivities(ctx, orchestrators.SeedActivitiesDeps{Store: store}); err != nil {
		t.Fatalf("failed to seed activities: %v", err)
	}
	api := httptest.NewServer(devapi.NewRouter(store))

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	// Browser tests fire requests faster than a person clicks
	web.RateLimitPerSecond = 1000

	registry := board.NewRegistry(board.Deps{API: activitiesapi.NewClient(api.URL, 5*time.Second)}, board.DefaultTTL)
	mux := web.NewMux(ctx, web.Options{
		CSRFKey: testCSRFKey,
		TrustedOrigins: []string{
			fmt.Sprintf("127.0.0.1:%d", port),
			fmt.Sprintf("localhost:%d", port),
		},
		SessionTTL: board.DefaultTTL,
	}, registry)
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	// Start Playwright
	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		API:     api,
		Store:   store,
		Server:  srv,
		PW:      pw,
		Browser: browser,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		api.Close()
		cancel()
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// openBoard navigates to the board and waits for the cards.
func (a *testApp) openBoard(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/"); err != nil {
		t.Fatalf("failed to navigate to board: %v", err)
	}
	if err := page.Locator(".activity-card").First().WaitFor(); err != nil {
		t.Fatalf("activity cards did not render: %v", err)
	}
}

// card returns the locator of one activity card.
func card(page playwright.Page, name string) playwright.Locator {
	return page.Locator(fmt.Sprintf(`.activity-card[data-activity=%q]`, name))
}
