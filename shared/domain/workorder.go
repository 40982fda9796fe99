package domain

import "time"

type WorkOrderStatus string

const (
	StatusOpen             WorkOrderStatus = "OPEN"
	StatusInProgress       WorkOrderStatus = "IN_PROGRESS"
	StatusAwaitingApproval WorkOrderStatus = "AWAITING_APPROVAL"
	StatusApproved         WorkOrderStatus = "APPROVED"
	StatusRejected         WorkOrderStatus = "REJECTED"
	StatusDone             WorkOrderStatus = "DONE"
)

// WorkOrderStatuses lists the valid statuses in lifecycle order.
var WorkOrderStatuses = []WorkOrderStatus{
	StatusOpen, StatusInProgress, StatusAwaitingApproval,
	StatusApproved, StatusRejected, StatusDone,
}

func (s WorkOrderStatus) Valid() bool {
	for _, known := range WorkOrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Active statuses participate in deadline notifications; approved, rejected
// and done orders are settled and never nag.
func (s WorkOrderStatus) Active() bool {
	return s == StatusOpen || s == StatusInProgress
}

func (s WorkOrderStatus) Display() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "In progress"
	case StatusAwaitingApproval:
		return "Awaiting approval"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

type WorkOrderPriority string

const (
	PriorityLow    WorkOrderPriority = "low"
	PriorityMedium WorkOrderPriority = "medium"
	PriorityHigh   WorkOrderPriority = "high"
)

var WorkOrderPriorities = []WorkOrderPriority{PriorityHigh, PriorityMedium, PriorityLow}

func (p WorkOrderPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Rank orders priorities for listing: high sorts before medium before low.
func (p WorkOrderPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

func (p WorkOrderPriority) Display() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	}
	return string(p)
}

// WorkOrder may belong to a building without a specific unit. A deleted unit
// keeps the order alive with UnitId set to nil.
type WorkOrder struct {
	Id           int64
	BuildingId   *int64
	UnitId       *int64
	Title        string
	Description  string
	Status       WorkOrderStatus
	Priority     WorkOrderPriority
	Deadline     *time.Time // date precision
	MassAssigned bool
	ArchivedAt   *time.Time
	CreatedBy    *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Populated when fetched with related details.
	BuildingName      string
	BuildingOwnerId   *int64
	BuildingOwnerName string
	UnitNumber        string
	AttachmentCount   int
}

func (w *WorkOrder) Archived() bool {
	return w.ArchivedAt != nil
}

// DaysUntilDeadline returns whole days from today to the deadline,
// negative when overdue. ok is false when no deadline is set.
func (w *WorkOrder) DaysUntilDeadline(today time.Time) (days int, ok bool) {
	if w.Deadline == nil {
		return 0, false
	}
	t := truncateToDate(today)
	d := truncateToDate(*w.Deadline)
	return int(d.Sub(t).Hours() / 24), true
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
