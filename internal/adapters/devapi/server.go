// Package devapi is a reference Activities API backed by SQLite, used for
// local development and tests.
package devapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	domain "activityboard/internal/domain/activity"
)

// Store is the persistence the API needs.
type Store interface {
	List(ctx context.Context) (domain.Catalog, error)
	AddParticipant(ctx context.Context, name, email string) error
	RemoveParticipant(ctx context.Context, name, email string) error
}

// Error details returned by the API.
const (
	DetailActivityNotFound = "Activity not found"
	DetailAlreadySignedUp  = "Student is already signed up"
	DetailActivityFull     = "Activity is full"
	DetailEmailRequired    = "email is required"
	DetailNotSignedUp      = "Student is not signed up for this activity"
)

type server struct {
	store Store
}

// NewRouter returns the Activities API routes.
func NewRouter(store Store) http.Handler {
	s := &server{store: store}
	r := mux.NewRouter()
	r.HandleFunc("/activities", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/activities/{name}/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/activities/{name}/participants", s.handleRemove).Methods(http.MethodDelete)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	cat, err := s.store.List(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (s *server) handleSignup(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeDetail(w, http.StatusUnprocessableEntity, DetailEmailRequired)
		return
	}
	if err := s.store.AddParticipant(r.Context(), name, email); err != nil {
		s.writeStoreError(w, err)
		return
	}
	slog.Info("devapi_event", "event", "signed_up", "activity", name)
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Signed up %s for %s", email, name)})
}

func (s *server) handleRemove(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeDetail(w, http.StatusUnprocessableEntity, DetailEmailRequired)
		return
	}
	if err := s.store.RemoveParticipant(r.Context(), name, email); err != nil {
		s.writeStoreError(w, err)
		return
	}
	slog.Info("devapi_event", "event", "removed", "activity", name)
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Removed %s from %s", email, name)})
}

func (s *server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		writeDetail(w, http.StatusNotFound, DetailActivityNotFound)
	case errors.Is(err, domain.ErrAlreadySignedUp):
		writeDetail(w, http.StatusBadRequest, DetailAlreadySignedUp)
	case errors.Is(err, domain.ErrActivityFull):
		writeDetail(w, http.StatusBadRequest, DetailActivityFull)
	case errors.Is(err, domain.ErrNotSignedUp):
		writeDetail(w, http.StatusBadRequest, DetailNotSignedUp)
	default:
		s.internalError(w, err)
	}
}

func (s *server) internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
