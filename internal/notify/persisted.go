package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/shareeat/shareeat/internal/models"
	"github.com/shareeat/shareeat/internal/repository"
)

// PersistedNotifier stores notifications in the database for the
// surrounding API layer to surface in-app.
type PersistedNotifier struct {
	notifications repository.NotificationRepository
}

// NewPersistedNotifier creates a database-backed notifier.
func NewPersistedNotifier(notifications repository.NotificationRepository) *PersistedNotifier {
	return &PersistedNotifier{notifications: notifications}
}

// Notify writes one notification row.
func (n *PersistedNotifier) Notify(ctx context.Context, userID int64, title, message string, severity models.NotificationSeverity, link string) error {
	_, err := n.notifications.Create(ctx, &models.Notification{
		UserID:      userID,
		Title:       title,
		Message:     message,
		Severity:    severity,
		RelatedLink: link,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to persist notification for user %d: %w", userID, err)
	}
	return nil
}
