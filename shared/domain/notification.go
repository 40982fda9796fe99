package domain

import "time"

type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
	LevelDanger  NotificationLevel = "danger"
)

// Notification is one persisted alert for one user. Key is unique per user
// and makes repeated syncs idempotent: resyncing updates in place instead of
// stacking duplicates.
type Notification struct {
	Id             int64
	UserId         int64
	Key            string
	Category       string
	Level          NotificationLevel
	Title          string
	Body           string
	SnoozedUntil   *time.Time // date precision
	ExpiresAt      *time.Time
	FirstSeenAt    *time.Time
	AcknowledgedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ActiveOn reports whether the notification should be shown on the given day.
// Snoozed-into-the-future, expired and acknowledged notifications are hidden.
func (n *Notification) ActiveOn(day time.Time) bool {
	if n.AcknowledgedAt != nil {
		return false
	}
	d := truncateToDate(day)
	if n.SnoozedUntil != nil && truncateToDate(*n.SnoozedUntil).After(d) {
		return false
	}
	if n.ExpiresAt != nil && !n.ExpiresAt.After(d) {
		return false
	}
	return true
}
