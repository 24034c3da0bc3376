package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"activityboard/internal/adapters/activitiesapi"
	"activityboard/internal/adapters/http/middleware"
	appBoard "activityboard/internal/application/board"
	"activityboard/internal/domain/activity"
	"activityboard/internal/domain/board"
)

// mockActivitiesAPI is an in-memory Activities API.
type mockActivitiesAPI struct {
	mu        sync.Mutex
	catalog   activity.Catalog
	listErr   error
	signupErr error
	signups   []string
	removals  []string
}

func newMockAPI() *mockActivitiesAPI {
	return &mockActivitiesAPI{catalog: activity.Catalog{
		"Chess Club": {
			Name:            "Chess Club",
			Description:     "Learn **strategies** and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "john.doe@mergington.edu"},
		},
		"Art Club": {
			Name:            "Art Club",
			Description:     "Painting and drawing",
			Schedule:        "Mondays",
			MaxParticipants: 18,
		},
	}}
}

// ListActivities implements the board API for testing.
func (m *mockActivitiesAPI) ListActivities(_ context.Context) (activity.Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyCatalog(m.catalog), m.listErr
}

// Signup implements the board API for testing.
// POST: Participant is appended unless signupErr is set
func (m *mockActivitiesAPI) Signup(_ context.Context, name, email string) (activitiesapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signups = append(m.signups, name+"|"+email)
	if m.signupErr != nil {
		return activitiesapi.Message{}, m.signupErr
	}
	a := m.catalog[name]
	a.Participants = append(a.Participants, email)
	m.catalog[name] = a
	return activitiesapi.Message{Message: "Signed up!"}, nil
}

// RemoveParticipant implements the board API for testing.
// POST: Participant is removed from the roster
func (m *mockActivitiesAPI) RemoveParticipant(_ context.Context, name, email string) (activitiesapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removals = append(m.removals, name+"|"+email)
	a := m.catalog[name]
	var kept []string
	for _, p := range a.Participants {
		if p != email {
			kept = append(kept, p)
		}
	}
	a.Participants = kept
	m.catalog[name] = a
	return activitiesapi.Message{Message: "Removed " + email + " from " + name}, nil
}

// copyCatalog returns a deep copy so tests can mutate the source freely.
func copyCatalog(c activity.Catalog) activity.Catalog {
	out := make(activity.Catalog, len(c))
	for name, a := range c {
		a.Participants = append([]string(nil), a.Participants...)
		out[name] = a
	}
	return out
}

const testVisitor = "0b9a3c2e-5d4f-4e1a-9b8c-7d6e5f4a3b2c"

func setupBoards(api *mockActivitiesAPI) {
	boards = appBoard.NewRegistry(appBoard.Deps{API: api}, time.Minute)
}

func newRequest(method, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.ContextWithVisitor(req.Context(), testVisitor))
}

func newFormRequest(target string, form url.Values) *http.Request {
	req := newRequest("POST", target, form.Encode())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	return req
}

// TestGetIndex renders the sorted board.
func TestGetIndex(t *testing.T) {
	setupBoards(newMockAPI())

	rec := httptest.NewRecorder()
	handleIndex(rec, newRequest("GET", "/", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d. Body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	art := strings.Index(body, "<h4>Art Club</h4>")
	chess := strings.Index(body, "<h4>Chess Club</h4>")
	if art < 0 || chess < 0 || art > chess {
		t.Errorf("cards missing or out of order (art=%d chess=%d)", art, chess)
	}
	for _, want := range []string{
		"Participants (2)",
		`<span class="spots-left">10</span>`,
		">JD</span>",
		"No participants yet",
		"<strong>strategies</strong>",
		"-- Select an activity --",
		"Remove michael@mergington.edu from Chess Club?",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

// TestGetIndexLoadFailure shows the error placeholder.
func TestGetIndexLoadFailure(t *testing.T) {
	api := newMockAPI()
	api.listErr = errors.New("connection refused")
	setupBoards(api)

	rec := httptest.NewRecorder()
	handleIndex(rec, newRequest("GET", "/", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to load activities. Please try again later.") {
		t.Error("missing load failure placeholder")
	}
}

// TestPostSignup covers HTML form submissions.
func TestPostSignup(t *testing.T) {
	tests := []struct {
		name        string
		formData    url.Values
		signupErr   error
		wantSignups int
		wantToast   string
		wantSticky  string
	}{
		{
			name:        "valid sign-up",
			formData:    url.Values{"email": {"new.kid@mergington.edu"}, "activity": {"Chess Club"}},
			wantSignups: 1,
			wantToast:   "Signed up!",
		},
		{
			name:        "empty email",
			formData:    url.Values{"email": {"   "}, "activity": {"Chess Club"}},
			wantSignups: 0,
			wantToast:   "Please provide a valid email",
		},
		{
			name:        "missing activity",
			formData:    url.Values{"email": {"a@mergington.edu"}},
			wantSignups: 0,
			wantToast:   "Please select an activity",
			wantSticky:  "a@mergington.edu",
		},
		{
			name:        "rejected by API",
			formData:    url.Values{"email": {"zoe@mergington.edu"}, "activity": {"Chess Club"}},
			signupErr:   &activitiesapi.APIError{StatusCode: 400, Detail: "Already registered"},
			wantSignups: 1,
			wantToast:   "Already registered",
			wantSticky:  "zoe@mergington.edu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newMockAPI()
			api.signupErr = tt.signupErr
			setupBoards(api)

			rec := httptest.NewRecorder()
			handleSignup(rec, newFormRequest("/signup", tt.formData))

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("got status %d, want 303. Body: %s", rec.Code, rec.Body.String())
			}
			if loc := rec.Header().Get("Location"); loc != "/" {
				t.Errorf("got redirect %q, want /", loc)
			}
			if len(api.signups) != tt.wantSignups {
				t.Errorf("signups = %d, want %d", len(api.signups), tt.wantSignups)
			}

			page := httptest.NewRecorder()
			handleIndex(page, newRequest("GET", "/", ""))
			body := page.Body.String()
			if !strings.Contains(body, tt.wantToast) {
				t.Errorf("page missing toast %q", tt.wantToast)
			}
			if tt.wantSticky != "" && !strings.Contains(body, `value="`+tt.wantSticky+`"`) {
				t.Errorf("form should keep %q", tt.wantSticky)
			}

			again := httptest.NewRecorder()
			handleIndex(again, newRequest("GET", "/", ""))
			if strings.Contains(again.Body.String(), `data-dismiss-ms`) {
				t.Error("toast should be shown only once")
			}
		})
	}
}

// TestPostSignupJSON covers JSON clients.
func TestPostSignupJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		signupErr  error
		wantStatus int
		wantKey    string
		wantText   string
	}{
		{"success", `{"email":"a@x.com","activity":"Chess Club"}`, nil, http.StatusOK, "message", "Signed up!"},
		{"validation", `{"email":"","activity":"Chess Club"}`, nil, http.StatusBadRequest, "detail", "Please provide a valid email"},
		{"api error", `{"email":"a@x.com","activity":"Chess Club"}`, &activitiesapi.APIError{StatusCode: 400, Detail: "Activity is full"}, http.StatusBadRequest, "detail", "Activity is full"},
		{"transport", `{"email":"a@x.com","activity":"Chess Club"}`, errors.New("dial tcp: refused"), http.StatusBadGateway, "detail", "Failed to sign up. Please try again."},
		{"unknown field", `{"email":"a@x.com","bogus":1}`, nil, http.StatusBadRequest, "detail", "Invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newMockAPI()
			api.signupErr = tt.signupErr
			setupBoards(api)

			req := newRequest("POST", "/signup", tt.body)
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			handleSignup(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d. Body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var got map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got[tt.wantKey] != tt.wantText {
				t.Errorf("%s = %q, want %q", tt.wantKey, got[tt.wantKey], tt.wantText)
			}
		})
	}
}

// TestPostSignupJSONReturnsPatchedView returns the optimistic row before reconciliation.
func TestPostSignupJSONReturnsPatchedView(t *testing.T) {
	api := newMockAPI()
	setupBoards(api)
	boards.Get(testVisitor).Refresh(context.Background())

	req := newRequest("POST", "/signup", `{"email":"zoe.smith@mergington.edu","activity":"Art Club"}`)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handleSignup(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d. Body: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Message string     `json:"message"`
		View    board.View `json:"view"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	card, ok := got.View.Card("Art Club")
	if !ok || len(card.Participants) != 1 {
		t.Fatalf("card = %+v, want the new participant", card)
	}
	if p := card.Participants[0]; p.Email != "zoe.smith@mergington.edu" || p.Initials != "ZS" || !p.Pending {
		t.Errorf("participant = %+v, want pending ZS row", p)
	}
	if card.SpotsLeft != 17 {
		t.Errorf("spots left = %d, want 17", card.SpotsLeft)
	}
	if len(got.View.Pending) != 1 {
		t.Errorf("pending = %v, want one patch", got.View.Pending)
	}
	if pending := boards.Get(testVisitor).View().Pending; len(pending) != 0 {
		t.Errorf("board still pending after reconciliation: %v", pending)
	}
}

// TestPostRemoveWithoutConfirmation shows the confirmation page and issues no DELETE.
func TestPostRemoveWithoutConfirmation(t *testing.T) {
	api := newMockAPI()
	setupBoards(api)

	rec := httptest.NewRecorder()
	handleRemove(rec, newFormRequest("/remove", url.Values{"email": {"michael@mergington.edu"}, "activity": {"Chess Club"}}))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d. Body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Remove michael@mergington.edu from Chess Club?") {
		t.Error("confirmation prompt missing")
	}
	if !strings.Contains(rec.Body.String(), `name="confirm" value="yes"`) {
		t.Error("confirmation form missing")
	}
	if len(api.removals) != 0 {
		t.Errorf("removals = %v, want none", api.removals)
	}
}

// TestPostRemoveConfirmed removes and redirects.
func TestPostRemoveConfirmed(t *testing.T) {
	api := newMockAPI()
	setupBoards(api)

	rec := httptest.NewRecorder()
	handleRemove(rec, newFormRequest("/remove", url.Values{"email": {"michael@mergington.edu"}, "activity": {"Chess Club"}, "confirm": {"yes"}}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got status %d, want 303", rec.Code)
	}
	if len(api.removals) != 1 || api.removals[0] != "Chess Club|michael@mergington.edu" {
		t.Errorf("removals = %v", api.removals)
	}

	page := httptest.NewRecorder()
	handleIndex(page, newRequest("GET", "/", ""))
	body := page.Body.String()
	if !strings.Contains(body, "Removed michael@mergington.edu from Chess Club") {
		t.Error("removal toast missing")
	}
	if !strings.Contains(body, "Participants (1)") {
		t.Error("roster not refreshed after removal")
	}
}

// TestPostRemoveJSON covers JSON clients, including the 409 for unconfirmed clicks.
func TestPostRemoveJSON(t *testing.T) {
	api := newMockAPI()
	setupBoards(api)

	req := newRequest("POST", "/remove", `{"email":"michael@mergington.edu","activity":"Chess Club"}`)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handleRemove(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("unconfirmed: got status %d, want 409", rec.Code)
	}

	req = newRequest("POST", "/remove", `{"email":"michael@mergington.edu","activity":"Chess Club","confirm":true}`)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	handleRemove(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("confirmed: got status %d, want 200", rec.Code)
	}
	if len(api.removals) != 1 {
		t.Errorf("removals = %d, want 1", len(api.removals))
	}
}

// TestGetBoardJSON returns the rendered view.
func TestGetBoardJSON(t *testing.T) {
	setupBoards(newMockAPI())

	rec := httptest.NewRecorder()
	handleBoardJSON(rec, newRequest("GET", "/board", ""))

	var got struct {
		View struct {
			Status string `json:"status"`
			Cards  []struct {
				Name      string `json:"name"`
				SpotsLeft int    `json:"spots_left"`
			} `json:"cards"`
		} `json:"view"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.View.Status != "loaded" || len(got.View.Cards) != 2 || got.View.Cards[0].Name != "Art Club" {
		t.Errorf("view = %+v", got.View)
	}
}

// TestHandlersRequireVisitor verifies a missing session is an internal error.
func TestHandlersRequireVisitor(t *testing.T) {
	setupBoards(newMockAPI())
	rec := httptest.NewRecorder()
	handleIndex(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("got status %d, want 500", rec.Code)
	}
}

// TestNewMuxRoutes exercises the wrapped mux end to end.
func TestNewMuxRoutes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	RateLimitPerSecond = 1000
	registry := appBoard.NewRegistry(appBoard.Deps{API: newMockAPI()}, time.Minute)
	handler := NewMux(ctx, Options{CSRFKey: make([]byte, 32), SessionTTL: time.Minute}, registry)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/", http.StatusOK, "Chess Club"},
		{"/healthz", http.StatusOK, "ok"},
		{"/static/board.js", http.StatusOK, "window.confirm"},
		{"/static/styles.css", http.StatusOK, ".participant-badge"},
		{"/metrics", http.StatusOK, "activity_board_"},
		{"/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body missing %q", tt.wantBody)
			}
			if rec.Header().Get("X-Frame-Options") != "DENY" {
				t.Error("security headers missing")
			}
		})
	}
	if registry.Len() == 0 {
		t.Error("visitor board was not created")
	}
}

// TestNewMuxRejectsFormWithoutCSRF verifies form posts need a token.
func TestNewMuxRejectsFormWithoutCSRF(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	api := newMockAPI()
	handler := NewMux(ctx, Options{CSRFKey: make([]byte, 32), SessionTTL: time.Minute}, appBoard.NewRegistry(appBoard.Deps{API: api}, time.Minute))

	req := httptest.NewRequest("POST", "/signup", strings.NewReader("email=a%40x.com&activity=Chess+Club"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("got status %d, want 403", rec.Code)
	}
	if len(api.signups) != 0 {
		t.Error("sign-up reached the API without a CSRF token")
	}
}
