package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"activityboard/internal/adapters/activitiesapi"
	"activityboard/internal/adapters/http/middleware"
	appBoard "activityboard/internal/application/board"
	"activityboard/internal/domain/activity"
	"activityboard/internal/domain/board"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	funcMap := template.FuncMap{
		"csrfToken":     func() string { return csrf.Token(r) },
		"confirmPrompt": board.ConfirmPrompt,
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(assets, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}

// visitorBoard returns the board of the requesting visitor.
func visitorBoard(r *http.Request) (*appBoard.Board, error) {
	id, ok := middleware.VisitorFromContext(r.Context())
	if !ok {
		return nil, errors.New("request has no visitor session")
	}
	return boards.Get(id), nil
}

// handleIndex fetches the catalog and renders the board page with any pending toast.
func handleIndex(w http.ResponseWriter, r *http.Request) {
	b, err := visitorBoard(r)
	if err != nil {
		internalError(w, err)
		return
	}

	view := b.Refresh(r.Context())
	data := map[string]any{
		"View":               view,
		"Form":               b.Form(),
		"LoadingText":        board.LoadingText,
		"NoParticipantsText": board.NoParticipantsText,
	}
	if toast, ok := b.TakeToast(); ok {
		data["Toast"] = toast
		data["DismissMs"] = toast.RemainingMs(timeNow())
	}
	renderTemplate(w, r, "index.html", data)
}

// handleBoardJSON returns the visitor's board after a fetch.
func handleBoardJSON(w http.ResponseWriter, r *http.Request) {
	b, err := visitorBoard(r)
	if err != nil {
		internalError(w, err)
		return
	}
	view := b.Refresh(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"view": view,
		"form": b.Form(),
	})
}

// handleSignup submits the sign-up form.
// HTML clients are redirected to the board; JSON clients get {message, view}
// or {detail}.
func handleSignup(w http.ResponseWriter, r *http.Request) {
	b, err := visitorBoard(r)
	if err != nil {
		internalError(w, err)
		return
	}

	var form board.SignupForm
	if isJSONBody(r) {
		if err := strictDecode(r, &form); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid request"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		form.Email = r.FormValue("email")
		form.Activity = r.FormValue("activity")
	}

	res, err := b.Signup(r.Context(), form)
	if isHTMLRequest(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		writeJSON(w, failureStatus(err), map[string]string{"detail": res.Message})
		return
	}
	// view carries the optimistic row; GET /board returns the reconciled one.
	writeJSON(w, http.StatusOK, map[string]any{"message": res.Message, "view": res.Patched})
}

// handleRemove removes a participant. Without confirm=yes an HTML
// confirmation page is shown and no request reaches the Activities API.
func handleRemove(w http.ResponseWriter, r *http.Request) {
	b, err := visitorBoard(r)
	if err != nil {
		internalError(w, err)
		return
	}

	var click board.RemoveClick
	if isJSONBody(r) {
		if err := strictDecode(r, &click); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid request"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		click.Email = r.FormValue("email")
		click.Activity = r.FormValue("activity")
		click.Confirmed = r.FormValue("confirm") == "yes"
	}

	res, err := b.Remove(r.Context(), click)
	if errors.Is(err, board.ErrNotConfirmed) {
		prompt := board.ConfirmPrompt(click.Email, click.Activity)
		if isHTMLRequest(r) {
			renderTemplate(w, r, "confirm_remove.html", map[string]any{
				"Prompt":   prompt,
				"Email":    click.Email,
				"Activity": click.Activity,
			})
			return
		}
		writeJSON(w, http.StatusConflict, map[string]string{"detail": prompt})
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		writeJSON(w, failureStatus(err), map[string]string{"detail": res.Message})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": res.Message})
}

// failureStatus maps a board operation error to the status returned to JSON clients.
func failureStatus(err error) int {
	if _, ok := activity.ValidationMessage(err); ok {
		return http.StatusBadRequest
	}
	if apiErr, ok := activitiesapi.AsAPIError(err); ok {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
