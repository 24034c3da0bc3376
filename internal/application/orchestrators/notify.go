package orchestrators

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"

	emailAdapter "activityboard/internal/adapters/email"
)

// Notifier sends participant notices. A nil Notifier disables them.
type Notifier interface {
	Send(ctx context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error)
}

type noticeKind int

const (
	noticeSignedUp noticeKind = iota
	noticeRemoved
)

var noticeTemplate = template.Must(template.New("notice").Parse(
	`<p>Hello,</p>
{{if .SignedUp}}<p>You are signed up for <strong>{{.Activity}}</strong>.</p>
{{else}}<p>You have been removed from <strong>{{.Activity}}</strong>.</p>
{{end}}<p>See the activity board for the schedule and the current roster.</p>`))

// noticeRequest builds the notice for one participant.
func noticeRequest(kind noticeKind, participant, activityName string) (emailAdapter.SendRequest, error) {
	var buf bytes.Buffer
	data := struct {
		SignedUp bool
		Activity string
	}{kind == noticeSignedUp, activityName}
	if err := noticeTemplate.Execute(&buf, data); err != nil {
		return emailAdapter.SendRequest{}, err
	}
	subject := "Signed up for " + activityName
	if kind == noticeRemoved {
		subject = "Removed from " + activityName
	}
	return emailAdapter.SendRequest{
		To:      []string{participant},
		Subject: subject,
		HTML:    buf.String(),
	}, nil
}

// notifyParticipant sends a notice; failures are logged and never change the
// outcome of the board operation.
func notifyParticipant(ctx context.Context, n Notifier, kind noticeKind, participant, activityName string) {
	if n == nil {
		return
	}
	req, err := noticeRequest(kind, participant, activityName)
	if err != nil {
		slog.Error("notify_failed", "stage", "render", "error", err)
		return
	}
	if _, err := n.Send(ctx, req); err != nil {
		slog.Error("notify_failed", "stage", "send", "activity", activityName, "error", err)
	}
}
