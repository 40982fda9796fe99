package service

import (
	"context"
	"net/http"
	"time"

	"github.com/Mecho90/BuildingManagement/shared/domain"
	"github.com/Mecho90/BuildingManagement/shared/errors"
)

type NotificationService interface {
	Active(ctx context.Context, userId int64, today time.Time) ([]domain.Notification, error)
	Snooze(ctx context.Context, userId, notificationId int64, until time.Time) error
	Acknowledge(ctx context.Context, userId int64, keys []string, today time.Time) (int, error)
}

// Notification serves the user-facing notification endpoints. It only reads
// and flags existing rows; building them is NotificationSync's job.
type Notification struct {
	storage NotificationStorage
}

type NotificationStorage interface {
	ActiveNotifications(ctx context.Context, userId int64, on time.Time) ([]domain.Notification, error)
	MarkNotificationsSeen(ctx context.Context, userId int64, ids []int64) error
	SnoozeNotification(ctx context.Context, userId, id int64, until time.Time) error
	AcknowledgeNotifications(ctx context.Context, userId int64, ids []int64) (int, error)
}

func NewNotification(storage NotificationStorage) *Notification {
	return &Notification{storage: storage}
}

// Active returns the notifications to show the user today and stamps
// first_seen_at on the ones they have not been shown before.
func (s *Notification) Active(ctx context.Context, userId int64, today time.Time) ([]domain.Notification, error) {
	notifications, err := s.storage.ActiveNotifications(ctx, userId, today)
	if err != nil {
		return nil, err
	}

	var unseen []int64
	for _, n := range notifications {
		if n.FirstSeenAt == nil {
			unseen = append(unseen, n.Id)
		}
	}
	if len(unseen) > 0 {
		if err := s.storage.MarkNotificationsSeen(ctx, userId, unseen); err != nil {
			return nil, err
		}
	}
	return notifications, nil
}

// Snooze hides a notification until the given date. The date is inclusive:
// once it arrives the notification shows again.
func (s *Notification) Snooze(ctx context.Context, userId, notificationId int64, until time.Time) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if until.Before(today) {
		return &errors.ErrorWithStatusCode{Message: "Snooze date cannot be in the past", StatusCode: http.StatusBadRequest}
	}
	return s.storage.SnoozeNotification(ctx, userId, notificationId, until)
}

// Acknowledge dismisses the named notifications for good and returns how
// many were actually dismissed. Keys that do not resolve to an active
// notification of this user are ignored, so stale client state cannot fail
// the whole batch.
func (s *Notification) Acknowledge(ctx context.Context, userId int64, keys []string, today time.Time) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	active, err := s.storage.ActiveNotifications(ctx, userId, today)
	if err != nil {
		return 0, err
	}
	byKey := make(map[string]int64, len(active))
	for _, n := range active {
		byKey[n.Key] = n.Id
	}

	var ids []int64
	for _, key := range keys {
		if id, ok := byKey[key]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return s.storage.AcknowledgeNotifications(ctx, userId, ids)
}
