package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Mecho90/BuildingManagement/shared/domain"
	"github.com/Mecho90/BuildingManagement/shared/logger"
	"github.com/Mecho90/BuildingManagement/shared/utils"
)

const (
	categoryDeadline   = "deadline"
	categoryMassAssign = "mass_assign"

	// At most this many deadline alerts per priority per user; beyond that
	// the list stops being readable.
	deadlineAlertsPerPriority = 10

	massAssignedWindowDays = 7
	massAssignedLimit      = 10

	pruneAcknowledgedAfterDays = 30
)

// deadlineWindows is how many days before its deadline an order starts
// alerting. Low priority gets a long runway; high and medium share the
// short one.
var deadlineWindows = map[domain.WorkOrderPriority]int{
	domain.PriorityHigh:   7,
	domain.PriorityMedium: 7,
	domain.PriorityLow:    30,
}

var deadlineLevels = map[domain.WorkOrderPriority]domain.NotificationLevel{
	domain.PriorityHigh:   domain.LevelDanger,
	domain.PriorityMedium: domain.LevelWarning,
	domain.PriorityLow:    domain.LevelInfo,
}

type NotificationSyncStorage interface {
	ActiveUsers(ctx context.Context) ([]domain.User, error)
	DeadlineWorkOrders(ctx context.Context, visibleIds []int64, from, to time.Time) ([]domain.WorkOrder, error)
	MassAssignedSince(ctx context.Context, visibleIds []int64, since time.Time, limit int) ([]domain.WorkOrder, error)

	CreateNotification(ctx context.Context, n domain.Notification) (int64, error)
	UpdateNotification(ctx context.Context, n domain.Notification) error
	NotificationsByCategory(ctx context.Context, userId int64, category string) ([]domain.Notification, error)
	DeleteNotificationsOutsideKeys(ctx context.Context, userId int64, category string, keep []string) error
	ClearExpiredSnoozes(ctx context.Context, today time.Time) (int64, error)
	DeleteExpiredNotifications(ctx context.Context, now time.Time) (int64, error)
	PruneAcknowledged(ctx context.Context, userId int64, before time.Time) (int64, error)
}

// NotificationSync rebuilds each user's persistent notifications from the
// current work order state. Every step upserts or deletes against what is
// already there, so a run can be repeated (or crash halfway and be re-run)
// without producing duplicates. The admin CLI drives it from cron.
type NotificationSync struct {
	storage NotificationSyncStorage
	authz   AuthzService
}

func NewNotificationSync(storage NotificationSyncStorage, authz AuthzService) *NotificationSync {
	return &NotificationSync{storage: storage, authz: authz}
}

// SyncAll refreshes notifications for every active user as of today.
func (s *NotificationSync) SyncAll(ctx context.Context, today time.Time) error {
	today = today.UTC().Truncate(24 * time.Hour)

	cleared, err := s.storage.ClearExpiredSnoozes(ctx, today)
	if err != nil {
		return err
	}
	expired, err := s.storage.DeleteExpiredNotifications(ctx, today)
	if err != nil {
		return err
	}

	users, err := s.storage.ActiveUsers(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		if err := s.SyncUser(ctx, user, today); err != nil {
			return fmt.Errorf("failed to sync notifications for user %d: %w", user.Id, err)
		}
	}

	logger.Log.Info("notification sync finished",
		"users", len(users), "snoozes_cleared", cleared, "expired_deleted", expired)
	return nil
}

// SyncUser refreshes one user's notifications: drops old acknowledged rows,
// then rebuilds the deadline and mass-assign categories against the orders
// the user can see.
func (s *NotificationSync) SyncUser(ctx context.Context, user domain.User, today time.Time) error {
	today = today.UTC().Truncate(24 * time.Hour)

	access, err := s.authz.Access(ctx, user)
	if err != nil {
		return err
	}

	cutoff := today.AddDate(0, 0, -pruneAcknowledgedAfterDays)
	if _, err := s.storage.PruneAcknowledged(ctx, user.Id, cutoff); err != nil {
		return err
	}
	if err := s.syncDeadlines(ctx, access, user, today); err != nil {
		return err
	}
	return s.syncMassAssigned(ctx, access, user, today)
}

// syncDeadlines upserts one alert per active order due within its priority
// window and deletes alerts whose order no longer qualifies. A snooze the
// user set into the future survives the rebuild.
func (s *NotificationSync) syncDeadlines(ctx context.Context, access *Access, user domain.User, today time.Time) error {
	maxWindow := 0
	for _, days := range deadlineWindows {
		if days > maxWindow {
			maxWindow = days
		}
	}

	orders, err := s.storage.DeadlineWorkOrders(ctx, access.VisibleBuildingIds(), today, today.AddDate(0, 0, maxWindow))
	if err != nil {
		return err
	}
	existing, err := s.notificationsByKey(ctx, user.Id, categoryDeadline)
	if err != nil {
		return err
	}

	counts := make(map[domain.WorkOrderPriority]int)
	keep := []string{}
	for i := range orders {
		w := &orders[i]
		window, known := deadlineWindows[w.Priority]
		if !known {
			continue
		}
		daysLeft, ok := w.DaysUntilDeadline(today)
		if !ok || daysLeft > window || counts[w.Priority] >= deadlineAlertsPerPriority {
			continue
		}
		counts[w.Priority]++

		key := fmt.Sprintf("wo-deadline-%d", w.Id)
		keep = append(keep, key)
		body := deadlineMessage(w, daysLeft, user.Admin)
		level := deadlineLevels[w.Priority]

		note, found := existing[key]
		if !found {
			_, err := s.storage.CreateNotification(ctx, domain.Notification{
				UserId:       user.Id,
				Key:          key,
				Category:     categoryDeadline,
				Level:        level,
				Title:        w.Title,
				Body:         body,
				SnoozedUntil: &today,
			})
			if err != nil {
				return err
			}
			continue
		}

		updated := note
		updated.Level = level
		updated.Title = w.Title
		updated.Body = body
		if note.SnoozedUntil == nil || !note.SnoozedUntil.After(today) {
			updated.SnoozedUntil = &today
		}
		if notificationChanged(note, updated) {
			if err := s.storage.UpdateNotification(ctx, updated); err != nil {
				return err
			}
		}
	}

	return s.storage.DeleteNotificationsOutsideKeys(ctx, user.Id, categoryDeadline, keep)
}

// syncMassAssigned keeps one info alert per recent mass-assigned order.
// Acknowledged alerts stay acknowledged; alerts for orders older than the
// window are dropped.
func (s *NotificationSync) syncMassAssigned(ctx context.Context, access *Access, user domain.User, today time.Time) error {
	since := today.AddDate(0, 0, -massAssignedWindowDays)
	orders, err := s.storage.MassAssignedSince(ctx, access.VisibleBuildingIds(), since, massAssignedLimit)
	if err != nil {
		return err
	}
	existing, err := s.notificationsByKey(ctx, user.Id, categoryMassAssign)
	if err != nil {
		return err
	}

	keep := []string{}
	for i := range orders {
		w := &orders[i]
		key := fmt.Sprintf("wo-mass-%d", w.Id)
		keep = append(keep, key)

		note, found := existing[key]
		if found && note.AcknowledgedAt != nil {
			continue
		}

		body := massAssignedMessage(w)
		if !found {
			_, err := s.storage.CreateNotification(ctx, domain.Notification{
				UserId:   user.Id,
				Key:      key,
				Category: categoryMassAssign,
				Level:    domain.LevelInfo,
				Title:    w.Title,
				Body:     body,
			})
			if err != nil {
				return err
			}
			continue
		}

		updated := note
		updated.Level = domain.LevelInfo
		updated.Title = w.Title
		updated.Body = body
		if notificationChanged(note, updated) {
			if err := s.storage.UpdateNotification(ctx, updated); err != nil {
				return err
			}
		}
	}

	return s.storage.DeleteNotificationsOutsideKeys(ctx, user.Id, categoryMassAssign, keep)
}

func (s *NotificationSync) notificationsByKey(ctx context.Context, userId int64, category string) (map[string]domain.Notification, error) {
	notifications, err := s.storage.NotificationsByCategory(ctx, userId, category)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]domain.Notification, len(notifications))
	for _, n := range notifications {
		byKey[n.Key] = n
	}
	return byKey, nil
}

func notificationChanged(prev, next domain.Notification) bool {
	return prev.Level != next.Level ||
		prev.Title != next.Title ||
		prev.Body != next.Body ||
		!equalDates(prev.SnoozedUntil, next.SnoozedUntil)
}

func equalDates(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func deadlineMessage(w *domain.WorkOrder, daysLeft int, admin bool) string {
	buildingName := "your building"
	if w.BuildingId != nil && w.BuildingName != "" {
		buildingName = w.BuildingName
	}

	var due string
	switch daysLeft {
	case 0:
		due = "due today"
	case 1:
		due = "due tomorrow"
	default:
		due = fmt.Sprintf("due in %d days", daysLeft)
	}

	msg := fmt.Sprintf("%s priority work order %q in %s is %s (deadline %s)",
		w.Priority.Display(), w.Title, buildingName, due, utils.DateDisplay(*w.Deadline))
	if admin && w.BuildingId != nil && w.BuildingOwnerName != "" {
		msg += fmt.Sprintf(" (owner: %s)", w.BuildingOwnerName)
	}
	return msg + "."
}

func massAssignedMessage(w *domain.WorkOrder) string {
	buildingName := "your building"
	if w.BuildingId != nil && w.BuildingName != "" {
		buildingName = w.BuildingName
	}
	if w.Deadline == nil {
		return fmt.Sprintf("A new mass-assigned work order %q was created for %s.", w.Title, buildingName)
	}
	return fmt.Sprintf("A new mass-assigned work order %q was created for %s (deadline %s).",
		w.Title, buildingName, utils.DateDisplay(*w.Deadline))
}
