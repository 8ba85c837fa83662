package models

import "time"

// NotificationSeverity controls how a notification is rendered
type NotificationSeverity string

const (
	SeverityInfo    NotificationSeverity = "info"
	SeveritySuccess NotificationSeverity = "success"
	SeverityWarning NotificationSeverity = "warning"
	SeverityError   NotificationSeverity = "error"
)

// Notification is an in-app message delivered to a user.
type Notification struct {
	ID          int64                `json:"id" db:"id"`
	UserID      int64                `json:"user_id" db:"user_id"`
	Title       string               `json:"title" db:"title"`
	Message     string               `json:"message" db:"message"`
	Severity    NotificationSeverity `json:"severity" db:"severity"`
	RelatedLink string               `json:"related_link" db:"related_link"`
	IsRead      bool                 `json:"is_read" db:"is_read"`
	CreatedAt   time.Time            `json:"created_at" db:"created_at"`
}
