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

// WorkOrderQuery filters and pages the work order list. A nil VisibleIds
// means no visibility restriction (admins and global viewers).
type WorkOrderQuery struct {
	VisibleIds []int64
	Search     string
	Status     domain.WorkOrderStatus
	OwnerId    *int64
	BuildingId *int64
	Archived   bool
	Sort       string
	Page       int
	PerPage    int
}

const workOrderColumns = `
	w.id, w.building_id, w.unit_id, w.title, w.description, w.status, w.priority,
	w.deadline, w.mass_assigned, w.archived_at, w.created_by, w.created_at, w.updated_at,
	COALESCE(b.name, ''), b.owner_id,
	COALESCE(NULLIF(TRIM(o.first_name || ' ' || o.last_name), ''), o.email, ''),
	COALESCE(u.number, ''),
	(SELECT COUNT(*) FROM attachments a WHERE a.work_order_id = w.id)`

const workOrderJoins = `
	LEFT JOIN buildings b ON b.id = w.building_id
	LEFT JOIN users o ON o.id = b.owner_id
	LEFT JOIN units u ON u.id = w.unit_id`

// priorityRank sorts high before medium before low.
const priorityRank = `CASE w.priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 WHEN 'low' THEN 2 ELSE 3 END`

// workOrderSorts maps a sort key to its ORDER BY clause, mirroring the list
// page choices. Unknown keys fall back to "priority".
var workOrderSorts = map[string]string{
	"priority":      priorityRank + `, w.deadline ASC NULLS LAST, w.id DESC`,
	"priority_desc": priorityRank + ` DESC, w.deadline DESC NULLS LAST, w.id DESC`,
	"deadline":      `w.deadline ASC NULLS LAST, ` + priorityRank + `, w.id DESC`,
	"deadline_desc": `w.deadline DESC NULLS LAST, ` + priorityRank + `, w.id DESC`,
	"created":       `w.created_at DESC`,
	"created_asc":   `w.created_at ASC`,
	"building":      `b.name ASC, ` + priorityRank + `, w.deadline ASC NULLS LAST, w.id DESC`,
	"building_desc": `b.name DESC, ` + priorityRank + `, w.deadline ASC NULLS LAST, w.id DESC`,
	"owner":         `o.email ASC NULLS LAST, ` + priorityRank + `, w.deadline ASC NULLS LAST, w.id DESC`,
	"owner_desc":    `o.email DESC NULLS LAST, ` + priorityRank + `, w.deadline ASC NULLS LAST, w.id DESC`,
}

func (s *Storage) CreateWorkOrder(ctx context.Context, w domain.WorkOrder) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO work_orders (building_id, unit_id, title, description, status, priority, deadline, mass_assigned, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id
	`, w.BuildingId, w.UnitId, w.Title, w.Description, w.Status, w.Priority, w.Deadline, w.MassAssigned, w.CreatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create work order: %w", err)
	}
	return id, nil
}

func (s *Storage) WorkOrder(ctx context.Context, id int64) (*domain.WorkOrder, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+workOrderColumns+`
	FROM work_orders w`+workOrderJoins+`
	WHERE w.id = $1
	`, id)

	w, err := scanWorkOrder(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Work order not found", StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("failed to fetch work order: %w", err)
	}
	return w, nil
}

// WorkOrders lists one page of work orders plus the unpaged total.
func (s *Storage) WorkOrders(ctx context.Context, q WorkOrderQuery) ([]domain.WorkOrder, int, error) {
	where, args := workOrderFilter(q)

	var total int
	countQuery := `
	SELECT COUNT(*)
	FROM work_orders w` + workOrderJoins + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count work orders: %w", err)
	}

	orderBy, ok := workOrderSorts[q.Sort]
	if !ok {
		orderBy = workOrderSorts["priority"]
	}

	query := `
	SELECT ` + workOrderColumns + `
	FROM work_orders w` + workOrderJoins + where + `
	ORDER BY ` + orderBy
	if q.PerPage > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		args = append(args, q.PerPage, (page-1)*q.PerPage)
		query += fmt.Sprintf(`
	LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list work orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectWorkOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func workOrderFilter(q WorkOrderQuery) (string, []interface{}) {
	where := `
	WHERE TRUE`
	var args []interface{}

	if q.Archived {
		where += ` AND w.archived_at IS NOT NULL`
	} else {
		where += ` AND w.archived_at IS NULL`
	}
	if q.VisibleIds != nil {
		args = append(args, pq.Array(q.VisibleIds))
		where += fmt.Sprintf(` AND w.building_id = ANY($%d)`, len(args))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		where += fmt.Sprintf(` AND (w.title ILIKE $%d OR w.description ILIKE $%d)`, len(args), len(args))
	}
	if q.Status != "" {
		args = append(args, q.Status)
		where += fmt.Sprintf(` AND w.status = $%d`, len(args))
	}
	if q.OwnerId != nil {
		args = append(args, *q.OwnerId)
		where += fmt.Sprintf(` AND b.owner_id = $%d`, len(args))
	}
	if q.BuildingId != nil {
		args = append(args, *q.BuildingId)
		where += fmt.Sprintf(` AND w.building_id = $%d`, len(args))
	}
	return where, args
}

func collectWorkOrders(rows *sql.Rows) ([]domain.WorkOrder, error) {
	var orders []domain.WorkOrder
	for rows.Next() {
		w, err := scanWorkOrder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work order: %w", err)
		}
		orders = append(orders, *w)
	}
	return orders, rows.Err()
}

func scanWorkOrder(scan func(dest ...interface{}) error) (*domain.WorkOrder, error) {
	var w domain.WorkOrder
	var buildingId, unitId, ownerId, createdBy sql.NullInt64
	var deadline, archivedAt sql.NullTime

	err := scan(&w.Id, &buildingId, &unitId, &w.Title, &w.Description, &w.Status, &w.Priority,
		&deadline, &w.MassAssigned, &archivedAt, &createdBy, &w.CreatedAt, &w.UpdatedAt,
		&w.BuildingName, &ownerId, &w.BuildingOwnerName, &w.UnitNumber, &w.AttachmentCount)
	if err != nil {
		return nil, err
	}

	if buildingId.Valid {
		w.BuildingId = &buildingId.Int64
	}
	if unitId.Valid {
		w.UnitId = &unitId.Int64
	}
	if ownerId.Valid {
		w.BuildingOwnerId = &ownerId.Int64
	}
	if createdBy.Valid {
		w.CreatedBy = &createdBy.Int64
	}
	if deadline.Valid {
		d := deadline.Time
		w.Deadline = &d
	}
	if archivedAt.Valid {
		a := archivedAt.Time
		w.ArchivedAt = &a
	}
	return &w, nil
}

func (s *Storage) UpdateWorkOrder(ctx context.Context, w domain.WorkOrder) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE work_orders
	SET unit_id = $1, title = $2, description = $3, status = $4, priority = $5,
	    deadline = $6, archived_at = $7, updated_at = now()
	WHERE id = $8
	`, w.UnitId, w.Title, w.Description, w.Status, w.Priority, w.Deadline, w.ArchivedAt, w.Id)
	if err != nil {
		return fmt.Errorf("failed to update work order: %w", err)
	}
	return requireRow(res, "Work order not found")
}

func (s *Storage) DeleteWorkOrder(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM work_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete work order: %w", err)
	}
	return requireRow(res, "Work order not found")
}

// ArchiveWorkOrder stamps archived_at; archiving twice is a no-op.
func (s *Storage) ArchiveWorkOrder(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
	UPDATE work_orders
	SET archived_at = now(), updated_at = now()
	WHERE id = $1 AND archived_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("failed to archive work order: %w", err)
	}
	return nil
}

// MassAssign creates one identical work order per building, skipping
// buildings that already carry an open mass-assigned order with this title.
func (s *Storage) MassAssign(ctx context.Context, buildingIds []int64, title, description string, deadline time.Time) (created, skipped int, err error) {
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		for _, buildingId := range buildingIds {
			var exists bool
			err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM work_orders
				WHERE building_id = $1 AND title = $2 AND mass_assigned
				  AND status IN ($3, $4) AND archived_at IS NULL
			)
			`, buildingId, title, domain.StatusOpen, domain.StatusInProgress).Scan(&exists)
			if err != nil {
				return fmt.Errorf("failed to check existing mass-assigned order: %w", err)
			}
			if exists {
				skipped++
				continue
			}

			_, err = tx.ExecContext(ctx, `
			INSERT INTO work_orders (building_id, title, description, status, priority, deadline, mass_assigned)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE)
			`, buildingId, title, description, domain.StatusOpen, domain.PriorityLow, deadline)
			if err != nil {
				return fmt.Errorf("failed to create mass-assigned order: %w", err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, skipped, nil
}

// WorkOrderOwnerIds returns the distinct building owners appearing in the
// caller's active work order list, for the owner filter choices.
func (s *Storage) WorkOrderOwnerIds(ctx context.Context, visibleIds []int64) ([]int64, error) {
	query := `
	SELECT DISTINCT b.owner_id
	FROM work_orders w
	JOIN buildings b ON b.id = w.building_id
	WHERE w.archived_at IS NULL AND b.owner_id IS NOT NULL`
	var args []interface{}
	if visibleIds != nil {
		args = append(args, pq.Array(visibleIds))
		query += ` AND w.building_id = ANY($1)`
	}
	query += `
	ORDER BY b.owner_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list work order owners: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan owner id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeadlineWorkOrders returns active orders whose deadline falls in
// [from, to], ordered soonest first, for the deadline notification sync.
func (s *Storage) DeadlineWorkOrders(ctx context.Context, visibleIds []int64, from, to time.Time) ([]domain.WorkOrder, error) {
	query := `
	SELECT ` + workOrderColumns + `
	FROM work_orders w` + workOrderJoins + `
	WHERE w.archived_at IS NULL
	  AND w.status IN ($1, $2)
	  AND w.deadline >= $3 AND w.deadline <= $4`
	args := []interface{}{domain.StatusOpen, domain.StatusInProgress, from, to}
	if visibleIds != nil {
		args = append(args, pq.Array(visibleIds))
		query += fmt.Sprintf(` AND w.building_id = ANY($%d)`, len(args))
	}
	query += `
	ORDER BY w.deadline ASC, w.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deadline work orders: %w", err)
	}
	defer rows.Close()

	return collectWorkOrders(rows)
}

// MassAssignedSince returns the latest mass-assigned orders created at or
// after since, newest first.
func (s *Storage) MassAssignedSince(ctx context.Context, visibleIds []int64, since time.Time, limit int) ([]domain.WorkOrder, error) {
	query := `
	SELECT ` + workOrderColumns + `
	FROM work_orders w` + workOrderJoins + `
	WHERE w.mass_assigned AND w.created_at >= $1`
	args := []interface{}{since}
	if visibleIds != nil {
		args = append(args, pq.Array(visibleIds))
		query += fmt.Sprintf(` AND w.building_id = ANY($%d)`, len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(`
	ORDER BY w.created_at DESC
	LIMIT $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list mass-assigned work orders: %w", err)
	}
	defer rows.Close()

	return collectWorkOrders(rows)
}
