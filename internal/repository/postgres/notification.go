package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shareeat/shareeat/internal/models"
)

type notificationRepository struct {
	q querier
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	query := `INSERT INTO notifications (user_id, title, message, severity, related_link, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		RETURNING id`
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	err := r.q.QueryRowContext(ctx, query,
		notification.UserID, notification.Title, notification.Message,
		notification.Severity, notification.RelatedLink, notification.CreatedAt,
	).Scan(&notification.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return notification, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*models.Notification, error) {
	query := `SELECT id, user_id, title, message, severity, related_link, is_read, created_at
		FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Title, &n.Message, &n.Severity,
			&n.RelatedLink, &n.IsRead, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1`
	if _, err := r.q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
