package service

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Mecho90/BuildingManagement/shared/config"
	"github.com/Mecho90/BuildingManagement/shared/domain"
	"github.com/Mecho90/BuildingManagement/shared/errors"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Mecho90/BuildingManagement/backend/internal/storage/pg"
)

const ownerChoicesCacheSize = 256

// perPageChoices are the page sizes the list UI offers; anything else falls
// back to the configured default.
var perPageChoices = map[int]bool{10: true, 20: true, 50: true, 100: true}

// WorkOrderListQuery carries the list filters as they arrive from the
// request; List sanitizes them.
type WorkOrderListQuery struct {
	Search     string
	Status     string
	OwnerId    *int64
	BuildingId *int64
	Archived   bool
	Sort       string
	Page       int
	PerPage    int
}

type WorkOrderService interface {
	List(ctx context.Context, access *Access, q WorkOrderListQuery) ([]domain.WorkOrder, int, error)
	Get(ctx context.Context, access *Access, id int64) (*domain.WorkOrder, error)
	Create(ctx context.Context, access *Access, w domain.WorkOrder) (int64, error)
	Update(ctx context.Context, access *Access, w domain.WorkOrder) error
	Delete(ctx context.Context, access *Access, id int64) error
	Archive(ctx context.Context, access *Access, id int64) error
	MassAssign(ctx context.Context, access *Access, buildingIds []int64, title, description string, deadline *time.Time) (int, int, error)
	OwnerChoices(ctx context.Context, access *Access) ([]domain.User, error)
}

type WorkOrder struct {
	storage WorkOrderStorage
	cfg     *config.Public
	owners  *lru.Cache[string, []domain.User]
}

type WorkOrderStorage interface {
	CreateWorkOrder(ctx context.Context, w domain.WorkOrder) (int64, error)
	WorkOrder(ctx context.Context, id int64) (*domain.WorkOrder, error)
	WorkOrders(ctx context.Context, q pg.WorkOrderQuery) ([]domain.WorkOrder, int, error)
	UpdateWorkOrder(ctx context.Context, w domain.WorkOrder) error
	DeleteWorkOrder(ctx context.Context, id int64) error
	ArchiveWorkOrder(ctx context.Context, id int64) error
	MassAssign(ctx context.Context, buildingIds []int64, title, description string, deadline time.Time) (int, int, error)
	WorkOrderOwnerIds(ctx context.Context, visibleIds []int64) ([]int64, error)
	UsersByIds(ctx context.Context, ids []int64) ([]domain.User, error)
	Unit(ctx context.Context, id int64) (*domain.Unit, error)
	BuildingVisible(ctx context.Context, id int64, visibleIds []int64) (bool, error)
}

func NewWorkOrder(storage WorkOrderStorage, cfg *config.Public) (*WorkOrder, error) {
	owners, err := lru.New[string, []domain.User](ownerChoicesCacheSize)
	if err != nil {
		return nil, err
	}
	return &WorkOrder{storage: storage, cfg: cfg, owners: owners}, nil
}

var workOrderNotFound = &errors.ErrorWithStatusCode{Message: "Work order not found", StatusCode: http.StatusNotFound}

// List returns one page of work orders plus the unpaged total. Invalid
// status and sort values are dropped rather than rejected, and restricted
// callers may only apply the owner filter to themselves.
func (s *WorkOrder) List(ctx context.Context, access *Access, q WorkOrderListQuery) ([]domain.WorkOrder, int, error) {
	query := pg.WorkOrderQuery{
		VisibleIds: access.VisibleBuildingIds(),
		Search:     strings.TrimSpace(q.Search),
		BuildingId: q.BuildingId,
		Archived:   q.Archived,
		Sort:       q.Sort,
		Page:       q.Page,
		PerPage:    q.PerPage,
	}

	if status := domain.WorkOrderStatus(strings.ToUpper(q.Status)); status.Valid() {
		query.Status = status
	}
	if q.OwnerId != nil && (access.Unrestricted() || *q.OwnerId == access.UserId) {
		query.OwnerId = q.OwnerId
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if !perPageChoices[query.PerPage] {
		query.PerPage = s.cfg.WorkOrdersPerPage
	}

	return s.storage.WorkOrders(ctx, query)
}

func (s *WorkOrder) Get(ctx context.Context, access *Access, id int64) (*domain.WorkOrder, error) {
	w, err := s.storage.WorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewWorkOrder(w) {
		return nil, workOrderNotFound
	}
	return w, nil
}

func (s *WorkOrder) Create(ctx context.Context, access *Access, w domain.WorkOrder) (int64, error) {
	if w.BuildingId == nil {
		if !access.Admin {
			return 0, &errors.ErrorWithStatusCode{Message: "Building is required", StatusCode: http.StatusBadRequest}
		}
	} else {
		visible, err := s.storage.BuildingVisible(ctx, *w.BuildingId, access.VisibleBuildingIds())
		if err != nil {
			return 0, err
		}
		if !visible {
			return 0, buildingNotFound
		}
		if !access.Can(domain.CapCreateWorkOrders, w.BuildingId) {
			return 0, forbidden
		}
	}
	if err := s.checkUnit(ctx, w.UnitId, w.BuildingId); err != nil {
		return 0, err
	}

	if w.Status == "" {
		w.Status = domain.StatusOpen
	}
	if w.Priority == "" {
		w.Priority = domain.PriorityMedium
	}
	w.CreatedBy = &access.UserId

	return s.storage.CreateWorkOrder(ctx, w)
}

// checkUnit rejects units that belong to a different building than the
// work order.
func (s *WorkOrder) checkUnit(ctx context.Context, unitId, buildingId *int64) error {
	if unitId == nil {
		return nil
	}
	unit, err := s.storage.Unit(ctx, *unitId)
	if err != nil {
		return err
	}
	if buildingId == nil || unit.BuildingId != *buildingId {
		return &errors.ErrorWithStatusCode{Message: "Unit does not belong to the selected building", StatusCode: http.StatusBadRequest}
	}
	return nil
}

// Update rewrites the mutable fields. Approval transitions need the approve
// capability, and any status other than done takes the order back out of
// the archive.
func (s *WorkOrder) Update(ctx context.Context, access *Access, w domain.WorkOrder) error {
	current, err := s.Get(ctx, access, w.Id)
	if err != nil {
		return err
	}
	if !access.Can(domain.CapCreateWorkOrders, current.BuildingId) {
		return forbidden
	}
	if approvalTransition(current.Status, w.Status) && !access.Can(domain.CapApproveWorkOrders, current.BuildingId) {
		return forbidden
	}
	if err := s.checkUnit(ctx, w.UnitId, current.BuildingId); err != nil {
		return err
	}

	w.ArchivedAt = current.ArchivedAt
	if w.Status != domain.StatusDone {
		w.ArchivedAt = nil
	}
	return s.storage.UpdateWorkOrder(ctx, w)
}

func approvalTransition(from, to domain.WorkOrderStatus) bool {
	if from == to {
		return false
	}
	return to == domain.StatusApproved || to == domain.StatusRejected
}

func (s *WorkOrder) Delete(ctx context.Context, access *Access, id int64) error {
	current, err := s.Get(ctx, access, id)
	if err != nil {
		return err
	}
	if !access.Can(domain.CapManageBuildings, current.BuildingId) {
		return forbidden
	}
	return s.storage.DeleteWorkOrder(ctx, id)
}

// Archive moves a completed order out of the active list. Archiving an
// already archived order succeeds without change.
func (s *WorkOrder) Archive(ctx context.Context, access *Access, id int64) error {
	current, err := s.Get(ctx, access, id)
	if err != nil {
		return err
	}
	if !access.Can(domain.CapManageBuildings, current.BuildingId) {
		return forbidden
	}
	if current.Status != domain.StatusDone {
		return &errors.ErrorWithStatusCode{Message: "Only completed work orders can be archived", StatusCode: http.StatusBadRequest}
	}
	return s.storage.ArchiveWorkOrder(ctx, id)
}

// MassAssign creates one identical low-priority order per building,
// skipping buildings that already have an open copy. Admin only.
func (s *WorkOrder) MassAssign(ctx context.Context, access *Access, buildingIds []int64, title, description string, deadline *time.Time) (int, int, error) {
	if !access.Admin {
		return 0, 0, forbidden
	}
	due := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 30)
	if deadline != nil {
		due = *deadline
	}
	return s.storage.MassAssign(ctx, buildingIds, title, description, due)
}

// OwnerChoices returns the building owners appearing in the caller's work
// order list, for the owner filter dropdown. The result is cached per
// distinct owner-id set because the same handful of sets dominates.
func (s *WorkOrder) OwnerChoices(ctx context.Context, access *Access) ([]domain.User, error) {
	ids, err := s.storage.WorkOrderOwnerIds(ctx, access.VisibleBuildingIds())
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	key := ownerChoicesKey(ids)
	if cached, ok := s.owners.Get(key); ok {
		return cached, nil
	}

	users, err := s.storage.UsersByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	s.owners.Add(key, users)
	return users, nil
}

func ownerChoicesKey(ids []int64) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", id)
	}
	return b.String()
}
