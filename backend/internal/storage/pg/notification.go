package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Mecho90/BuildingManagement/shared/domain"
	internal_errors "github.com/Mecho90/BuildingManagement/shared/errors"
	"github.com/lib/pq"
)

const notificationColumns = `
	n.id, n.user_id, n.key, n.category, n.level, n.title, n.body,
	n.snoozed_until, n.expires_at, n.first_seen_at, n.acknowledged_at,
	n.created_at, n.updated_at`

func (s *Storage) CreateNotification(ctx context.Context, n domain.Notification) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO notifications (user_id, key, category, level, title, body, snoozed_until, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
	`, n.UserId, n.Key, n.Category, n.Level, n.Title, n.Body, n.SnoozedUntil, n.ExpiresAt).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &internal_errors.ErrorWithStatusCode{Message: "Notification with this key already exists", StatusCode: http.StatusConflict}
		}
		return 0, fmt.Errorf("failed to create notification: %w", err)
	}
	return id, nil
}

// UpdateNotification rewrites the mutable sync fields and bumps updated_at.
func (s *Storage) UpdateNotification(ctx context.Context, n domain.Notification) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE notifications
	SET level = $1, title = $2, body = $3, snoozed_until = $4, expires_at = $5, updated_at = now()
	WHERE id = $6
	`, n.Level, n.Title, n.Body, n.SnoozedUntil, n.ExpiresAt, n.Id)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return requireRow(res, "Notification not found")
}

// NotificationsByCategory returns every notification in a category for a
// user, acknowledged ones included, so a sync can diff against what exists.
func (s *Storage) NotificationsByCategory(ctx context.Context, userId int64, category string) ([]domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT `+notificationColumns+`
	FROM notifications n
	WHERE n.user_id = $1 AND n.category = $2
	ORDER BY n.id
	`, userId, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	return collectNotifications(rows)
}

// ActiveNotifications returns the notifications to show a user on the given
// day, newest first. A snooze that ends today no longer hides its
// notification.
func (s *Storage) ActiveNotifications(ctx context.Context, userId int64, on time.Time) ([]domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT `+notificationColumns+`
	FROM notifications n
	WHERE n.user_id = $1
	  AND n.acknowledged_at IS NULL
	  AND (n.snoozed_until IS NULL OR n.snoozed_until <= $2)
	  AND (n.expires_at IS NULL OR n.expires_at > $2)
	ORDER BY n.created_at DESC, n.id DESC
	`, userId, on)
	if err != nil {
		return nil, fmt.Errorf("failed to list active notifications: %w", err)
	}
	defer rows.Close()

	return collectNotifications(rows)
}

// DeleteNotificationsOutsideKeys removes a user's notifications in a category
// whose key is not in keep. Syncs call it to drop alerts whose source went
// away. An empty keep clears the whole category.
func (s *Storage) DeleteNotificationsOutsideKeys(ctx context.Context, userId int64, category string, keep []string) error {
	_, err := s.db.ExecContext(ctx, `
	DELETE FROM notifications
	WHERE user_id = $1 AND category = $2 AND key <> ALL($3)
	`, userId, category, pq.Array(keep))
	if err != nil {
		return fmt.Errorf("failed to prune stale notifications: %w", err)
	}
	return nil
}

// AcknowledgeNotifications marks the given notifications as acknowledged and
// returns how many actually changed. Ids belonging to other users are
// ignored.
func (s *Storage) AcknowledgeNotifications(ctx context.Context, userId int64, ids []int64) (int, error) {
	res, err := s.db.ExecContext(ctx, `
	UPDATE notifications
	SET acknowledged_at = now(), updated_at = now()
	WHERE user_id = $1 AND id = ANY($2) AND acknowledged_at IS NULL
	`, userId, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to acknowledge notifications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Storage) SnoozeNotification(ctx context.Context, userId, id int64, until time.Time) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE notifications
	SET snoozed_until = $1, updated_at = now()
	WHERE user_id = $2 AND id = $3 AND acknowledged_at IS NULL
	`, until, userId, id)
	if err != nil {
		return fmt.Errorf("failed to snooze notification: %w", err)
	}
	return requireRow(res, "Notification not found")
}

// MarkNotificationsSeen stamps first_seen_at on notifications the user has
// now been shown. Already-seen ones keep their original timestamp.
func (s *Storage) MarkNotificationsSeen(ctx context.Context, userId int64, ids []int64) error {
	_, err := s.db.ExecContext(ctx, `
	UPDATE notifications
	SET first_seen_at = now()
	WHERE user_id = $1 AND id = ANY($2) AND first_seen_at IS NULL
	`, userId, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to mark notifications seen: %w", err)
	}
	return nil
}

// ClearExpiredSnoozes lifts every snooze that has run out as of today,
// across all users.
func (s *Storage) ClearExpiredSnoozes(ctx context.Context, today time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
	UPDATE notifications
	SET snoozed_until = NULL, updated_at = now()
	WHERE snoozed_until IS NOT NULL AND snoozed_until <= $1
	`, today)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired snoozes: %w", err)
	}
	return res.RowsAffected()
}

// DeleteExpiredNotifications removes notifications past their expiry, across
// all users.
func (s *Storage) DeleteExpiredNotifications(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
	DELETE FROM notifications
	WHERE expires_at IS NOT NULL AND expires_at < $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	return res.RowsAffected()
}

// PruneAcknowledged deletes a user's notifications acknowledged before the
// cutoff.
func (s *Storage) PruneAcknowledged(ctx context.Context, userId int64, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
	DELETE FROM notifications
	WHERE user_id = $1 AND acknowledged_at IS NOT NULL AND acknowledged_at < $2
	`, userId, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune acknowledged notifications: %w", err)
	}
	return res.RowsAffected()
}

func collectNotifications(rows *sql.Rows) ([]domain.Notification, error) {
	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		err := rows.Scan(&n.Id, &n.UserId, &n.Key, &n.Category, &n.Level, &n.Title, &n.Body,
			&n.SnoozedUntil, &n.ExpiresAt, &n.FirstSeenAt, &n.AcknowledgedAt,
			&n.CreatedAt, &n.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// Notification fetches one notification scoped to its owner.
func (s *Storage) Notification(ctx context.Context, userId, id int64) (*domain.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+notificationColumns+`
	FROM notifications n
	WHERE n.user_id = $1 AND n.id = $2
	`, userId, id)

	var n domain.Notification
	err := row.Scan(&n.Id, &n.UserId, &n.Key, &n.Category, &n.Level, &n.Title, &n.Body,
		&n.SnoozedUntil, &n.ExpiresAt, &n.FirstSeenAt, &n.AcknowledgedAt,
		&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Notification not found", StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("failed to fetch notification: %w", err)
	}
	return &n, nil
}
