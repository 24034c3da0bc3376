// Package activitiesapi is the HTTP client for the Activities API.
package activitiesapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"activityboard/internal/domain/activity"
	"activityboard/internal/observability"
)

// Operation names used in logs and metrics.
const (
	OpListActivities    = "list_activities"
	OpSignup            = "signup"
	OpRemoveParticipant = "remove_participant"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Message is the success body of the mutating endpoints.
type Message struct {
	Message string `json:"message"`
}

// APIError is returned when the API answers with a non-2xx status.
// Detail is the server's "detail" field, empty when absent or not a string.
type APIError struct {
	Operation  string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("activities api %s: status %d: %s", e.Operation, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("activities api %s: status %d", e.Operation, e.StatusCode)
}

// Client talks to the Activities API. Every request disables caching.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL with the given request timeout.
// PRE: baseURL is an absolute http(s) URL
// POST: Returns a ready-to-use client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a client that uses hc for transport.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// ListActivities fetches the full catalog.
// POST: Returns the catalog with Name populated from the keys
func (c *Client) ListActivities(ctx context.Context) (activity.Catalog, error) {
	var cat activity.Catalog
	if err := c.do(ctx, OpListActivities, http.MethodGet, "/activities", nil, &cat); err != nil {
		return nil, err
	}
	if cat == nil {
		cat = activity.Catalog{}
	}
	return cat, nil
}

// Signup registers email for the named activity.
// PRE: activityName and email are non-empty
// POST: Returns the server message, or *APIError on a rejected sign-up
func (c *Client) Signup(ctx context.Context, activityName, email string) (Message, error) {
	var msg Message
	path := "/activities/" + url.PathEscape(activityName) + "/signup"
	err := c.do(ctx, OpSignup, http.MethodPost, path, url.Values{"email": {email}}, &msg)
	return msg, err
}

// RemoveParticipant unregisters email from the named activity.
// PRE: activityName and email are non-empty
// POST: Returns the server message, or *APIError on a rejected removal
func (c *Client) RemoveParticipant(ctx context.Context, activityName, email string) (Message, error) {
	var msg Message
	path := "/activities/" + url.PathEscape(activityName) + "/participants"
	err := c.do(ctx, OpRemoveParticipant, http.MethodDelete, path, url.Values{"email": {email}}, &msg)
	return msg, err
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return fmt.Errorf("activities api %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.ObserveAPICall(op, observability.OutcomeTransport, time.Since(start))
		slog.Error("activities_api_error", "operation", op, "error", err)
		return fmt.Errorf("activities api %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		observability.ObserveAPICall(op, observability.OutcomeTransport, time.Since(start))
		return fmt.Errorf("activities api %s: read body: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observability.ObserveAPICall(op, observability.OutcomeHTTPError, time.Since(start))
		apiErr := &APIError{Operation: op, StatusCode: resp.StatusCode, Detail: detailOf(body)}
		slog.Warn("activities_api_rejected", "operation", op, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			observability.ObserveAPICall(op, observability.OutcomeDecode, time.Since(start))
			return fmt.Errorf("activities api %s: decode body: %w", op, err)
		}
	}
	observability.ObserveAPICall(op, observability.OutcomeOK, time.Since(start))
	return nil
}

// detailOf extracts a string "detail" field from an error body.
func detailOf(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return detail
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
