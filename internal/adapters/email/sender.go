package email

import (
	"context"
	"time"
)

// SendRequest is one outgoing participant notice.
type SendRequest struct {
	To      []string // Recipient addresses
	From    string   // Overrides the sender default when set
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers notices through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
