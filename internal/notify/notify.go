// Package notify defines the user-facing side channels the tracker core
// talks to: toast-style notifications and destructive-action confirmation.
// The widgets themselves live in the presentation layer; these are the ports.
package notify

import (
	"context"
	"log/slog"
)

// Severity classifies a notification for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type (
	// Notifier delivers a one-shot message to the user.
	Notifier interface {
		Notify(ctx context.Context, title, message string, severity Severity)
	}

	// Confirmer asks the user to approve a destructive action. The answer
	// is resolved by the user, so implementations may block.
	Confirmer interface {
		ConfirmDestructive(ctx context.Context, title, message string) bool
	}
)

// LogNotifier writes notifications to the structured log. It is the default
// when no richer channel is wired.
type LogNotifier struct{}

var _ Notifier = LogNotifier{}

func (LogNotifier) Notify(ctx context.Context, title, message string, severity Severity) {
	switch severity {
	case SeverityError:
		slog.ErrorContext(ctx, title, "message", message)
	case SeverityWarning:
		slog.WarnContext(ctx, title, "message", message)
	default:
		slog.InfoContext(ctx, title, "message", message, "severity", string(severity))
	}
}

// ApproveAll confirms every destructive action. Used where confirmation has
// already happened upstream, e.g. the web UI shows its own dialog before the
// request ever reaches the server.
type ApproveAll struct{}

var _ Confirmer = ApproveAll{}

func (ApproveAll) ConfirmDestructive(context.Context, string, string) bool { return true }
