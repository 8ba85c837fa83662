// Package notify carries the side-channel outputs of the donation
// lifecycle: in-app notifications to participants and out-of-band
// alerts to operators. Both are fire-and-forget from the state
// machine's point of view: a failed delivery is logged, never allowed
// to roll back a transition.
package notify

import (
	"context"

	"github.com/shareeat/shareeat/internal/models"
)

// Notifier delivers an in-app notification to one user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message string, severity models.NotificationSeverity, link string) error
}

// AlertSink receives operator escalation alerts (email, chat ops
// channel). Implementations are best-effort.
type AlertSink interface {
	Alert(ctx context.Context, subject, body string) error
}

// EscalationTargets resolves which users must be told when a donation
// needs manual assignment. Injected into the state machine so the core
// never queries a particular user store shape itself.
type EscalationTargets interface {
	AdminUserIDs(ctx context.Context) ([]int64, error)
}

// NopSink discards alerts. Used when no ops channel is configured.
type NopSink struct{}

func (NopSink) Alert(context.Context, string, string) error { return nil }
