package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Mecho90/BuildingManagement/shared/config"
	"github.com/Mecho90/BuildingManagement/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mecho90/BuildingManagement/backend/internal/storage/pg"
)

// --- Mocks ---

type mockWorkOrderStorage struct {
	getFunc      func(ctx context.Context, id int64) (*domain.WorkOrder, error)
	listFunc     func(ctx context.Context, q pg.WorkOrderQuery) ([]domain.WorkOrder, int, error)
	createFunc   func(ctx context.Context, w domain.WorkOrder) (int64, error)
	unitFunc     func(ctx context.Context, id int64) (*domain.Unit, error)
	visibleFunc  func(ctx context.Context, id int64, visibleIds []int64) (bool, error)
	ownerIdsFunc func(ctx context.Context, visibleIds []int64) ([]int64, error)
	usersFunc    func(ctx context.Context, ids []int64) ([]domain.User, error)

	queries         []pg.WorkOrderQuery
	created         []domain.WorkOrder
	updated         []domain.WorkOrder
	deletedIds      []int64
	archivedIds     []int64
	massDeadline    time.Time
	massBuildingIds []int64
	userCalls       int
}

func (m *mockWorkOrderStorage) CreateWorkOrder(ctx context.Context, w domain.WorkOrder) (int64, error) {
	m.created = append(m.created, w)
	if m.createFunc != nil {
		return m.createFunc(ctx, w)
	}
	return int64(len(m.created)), nil
}

func (m *mockWorkOrderStorage) WorkOrder(ctx context.Context, id int64) (*domain.WorkOrder, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return &domain.WorkOrder{
		Id: id, BuildingId: int64Ptr(1), Title: "Fix leak",
		Status: domain.StatusOpen, Priority: domain.PriorityMedium,
	}, nil
}

func (m *mockWorkOrderStorage) WorkOrders(ctx context.Context, q pg.WorkOrderQuery) ([]domain.WorkOrder, int, error) {
	m.queries = append(m.queries, q)
	if m.listFunc != nil {
		return m.listFunc(ctx, q)
	}
	return nil, 0, nil
}

func (m *mockWorkOrderStorage) UpdateWorkOrder(ctx context.Context, w domain.WorkOrder) error {
	m.updated = append(m.updated, w)
	return nil
}

func (m *mockWorkOrderStorage) DeleteWorkOrder(ctx context.Context, id int64) error {
	m.deletedIds = append(m.deletedIds, id)
	return nil
}

func (m *mockWorkOrderStorage) ArchiveWorkOrder(ctx context.Context, id int64) error {
	m.archivedIds = append(m.archivedIds, id)
	return nil
}

func (m *mockWorkOrderStorage) MassAssign(ctx context.Context, buildingIds []int64, title, description string, deadline time.Time) (int, int, error) {
	m.massBuildingIds = buildingIds
	m.massDeadline = deadline
	return 2, 1, nil
}

func (m *mockWorkOrderStorage) WorkOrderOwnerIds(ctx context.Context, visibleIds []int64) ([]int64, error) {
	if m.ownerIdsFunc != nil {
		return m.ownerIdsFunc(ctx, visibleIds)
	}
	return nil, nil
}

func (m *mockWorkOrderStorage) UsersByIds(ctx context.Context, ids []int64) ([]domain.User, error) {
	m.userCalls++
	if m.usersFunc != nil {
		return m.usersFunc(ctx, ids)
	}
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, domain.User{Id: id})
	}
	return users, nil
}

func (m *mockWorkOrderStorage) Unit(ctx context.Context, id int64) (*domain.Unit, error) {
	if m.unitFunc != nil {
		return m.unitFunc(ctx, id)
	}
	return &domain.Unit{Id: id, BuildingId: 1, Number: "2B"}, nil
}

func (m *mockWorkOrderStorage) BuildingVisible(ctx context.Context, id int64, visibleIds []int64) (bool, error) {
	if m.visibleFunc != nil {
		return m.visibleFunc(ctx, id, visibleIds)
	}
	if visibleIds == nil {
		return true, nil
	}
	for _, visible := range visibleIds {
		if visible == id {
			return true, nil
		}
	}
	return false, nil
}

// --- Helpers ---

func newWorkOrderService(t *testing.T, storage *mockWorkOrderStorage) *WorkOrder {
	t.Helper()
	service, err := NewWorkOrder(storage, &config.Public{WorkOrdersPerPage: 20})
	require.NoError(t, err)
	return service
}

// backofficeAccess holds every building capability on the given building,
// approval included.
func backofficeAccess(buildingId int64) *Access {
	m := domain.Membership{UserId: 6, BuildingId: int64Ptr(buildingId), Role: domain.RoleBackoffice}
	return ResolveAccess(6, false, []domain.Membership{m}, nil)
}

func ownedAccess(buildingIds ...int64) *Access {
	return ResolveAccess(5, false, nil, buildingIds)
}

// --- Tests ---

func TestWorkOrderListSanitizesQuery(t *testing.T) {
	t.Run("valid filters pass through", func(t *testing.T) {
		storage := &mockWorkOrderStorage{}
		service := newWorkOrderService(t, storage)

		_, _, err := service.List(context.Background(), ownedAccess(1), WorkOrderListQuery{
			Search:   "  leak  ",
			Status:   "open",
			Archived: true,
			Sort:     "deadline",
			Page:     2,
			PerPage:  50,
		})
		require.NoError(t, err)

		require.Len(t, storage.queries, 1)
		q := storage.queries[0]
		assert.Equal(t, []int64{1}, q.VisibleIds)
		assert.Equal(t, "leak", q.Search, "search is trimmed")
		assert.Equal(t, domain.StatusOpen, q.Status, "status is case-insensitive")
		assert.True(t, q.Archived)
		assert.Equal(t, "deadline", q.Sort)
		assert.Equal(t, 2, q.Page)
		assert.Equal(t, 50, q.PerPage)
	})

	t.Run("junk filters fall back", func(t *testing.T) {
		storage := &mockWorkOrderStorage{}
		service := newWorkOrderService(t, storage)

		_, _, err := service.List(context.Background(), adminAccess(), WorkOrderListQuery{
			Status:  "PAUSED",
			Page:    -3,
			PerPage: 33,
		})
		require.NoError(t, err)

		q := storage.queries[0]
		assert.Nil(t, q.VisibleIds, "admins list without restriction")
		assert.Empty(t, q.Status, "unknown status is dropped, not rejected")
		assert.Equal(t, 1, q.Page)
		assert.Equal(t, 20, q.PerPage, "page size falls back to the configured default")
	})

	t.Run("owner filter is self-only for restricted callers", func(t *testing.T) {
		storage := &mockWorkOrderStorage{}
		service := newWorkOrderService(t, storage)
		access := ownedAccess(1) // user id 5

		_, _, err := service.List(context.Background(), access, WorkOrderListQuery{OwnerId: int64Ptr(7)})
		require.NoError(t, err)
		assert.Nil(t, storage.queries[0].OwnerId, "foreign owner filter is dropped")

		_, _, err = service.List(context.Background(), access, WorkOrderListQuery{OwnerId: int64Ptr(5)})
		require.NoError(t, err)
		require.NotNil(t, storage.queries[1].OwnerId)
		assert.Equal(t, int64(5), *storage.queries[1].OwnerId)

		_, _, err = service.List(context.Background(), adminAccess(), WorkOrderListQuery{OwnerId: int64Ptr(7)})
		require.NoError(t, err)
		require.NotNil(t, storage.queries[2].OwnerId)
		assert.Equal(t, int64(7), *storage.queries[2].OwnerId)
	})
}

func TestWorkOrderGet(t *testing.T) {
	storage := &mockWorkOrderStorage{}
	service := newWorkOrderService(t, storage)

	w, err := service.Get(context.Background(), ownedAccess(1), 11)
	require.NoError(t, err)
	assert.Equal(t, int64(11), w.Id)

	_, err = service.Get(context.Background(), strangerAccess(), 11)
	requireStatusError(t, err, http.StatusNotFound, "Work order not found")
}

func TestWorkOrderCreate(t *testing.T) {
	t.Run("defaults applied and creator stamped", func(t *testing.T) {
		storage := &mockWorkOrderStorage{}
		service := newWorkOrderService(t, storage)

		id, err := service.Create(context.Background(), ownedAccess(1), domain.WorkOrder{
			BuildingId: int64Ptr(1),
			Title:      "Fix leak",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)

		require.Len(t, storage.created, 1)
		created := storage.created[0]
		assert.Equal(t, domain.StatusOpen, created.Status)
		assert.Equal(t, domain.PriorityMedium, created.Priority)
		require.NotNil(t, created.CreatedBy)
		assert.Equal(t, int64(5), *created.CreatedBy)
	})

	t.Run("building required unless admin", func(t *testing.T) {
		storage := &mockWorkOrderStorage{}
		service := newWorkOrderService(t, storage)

		_, err := service.Create(context.Background(), ownedAccess(1), domain.WorkOrder{Title: "No building"})
		requireStatusError(t, err, http.StatusBadRequest, "Building is required")
		assert.Empty(t, storage.created)

		_, err = service.Create(context.Background(), adminAccess(), domain.WorkOrder{Title: "Portfolio wide"})
		require.NoError(t, err)
		require.Len(t, storage.created, 1)
		assert.Nil(t, storage.created[0].BuildingId)
	})

	t.Run("invisible building hides as not found", func(t *testing.T) {
		storage := &mockWorkOrderStorage{}
		service := newWorkOrderService(t, storage)

		_, err := service.Create(context.Background(), ownedAccess(1), domain.WorkOrder{
			BuildingId: int64Ptr(2), Title: "Not mine",
		})
		requireStatusError(t, err, http.StatusNotFound, "Building not found.")
	})

	t.Run("viewer may not create", func(t *testing.T) {
		storage := &mockWorkOrderStorage{}
		service := newWorkOrderService(t, storage)

		_, err := service.Create(context.Background(), viewerAccess(1), domain.WorkOrder{
			BuildingId: int64Ptr(1), Title: "Nope",
		})
		requireStatusError(t, err, http.StatusForbidden, "Forbidden")
	})

	t.Run("unit must belong to the building", func(t *testing.T) {
		storage := &mockWorkOrderStorage{
			unitFunc: func(ctx context.Context, id int64) (*domain.Unit, error) {
				return &domain.Unit{Id: id, BuildingId: 2}, nil
			},
		}
		service := newWorkOrderService(t, storage)

		_, err := service.Create(context.Background(), ownedAccess(1), domain.WorkOrder{
			BuildingId: int64Ptr(1), UnitId: int64Ptr(3), Title: "Wrong unit",
		})
		requireStatusError(t, err, http.StatusBadRequest, "Unit does not belong to the selected building")
		assert.Empty(t, storage.created)
	})
}

func TestWorkOrderUpdate(t *testing.T) {
	t.Run("plain transition allowed for creators", func(t *testing.T) {
		storage := &mockWorkOrderStorage{}
		service := newWorkOrderService(t, storage)

		err := service.Update(context.Background(), managerAccess(1), domain.WorkOrder{
			Id: 11, Title: "Fix leak", Status: domain.StatusInProgress, Priority: domain.PriorityHigh,
		})
		require.NoError(t, err)
		require.Len(t, storage.updated, 1)
		assert.Equal(t, domain.StatusInProgress, storage.updated[0].Status)
	})

	t.Run("approval transitions need the approve capability", func(t *testing.T) {
		storage := &mockWorkOrderStorage{
			getFunc: func(ctx context.Context, id int64) (*domain.WorkOrder, error) {
				return &domain.WorkOrder{Id: id, BuildingId: int64Ptr(1), Status: domain.StatusAwaitingApproval}, nil
			},
		}
		service := newWorkOrderService(t, storage)
		order := domain.WorkOrder{Id: 11, Title: "Fix leak", Status: domain.StatusApproved}

		err := service.Update(context.Background(), managerAccess(1), order)
		requireStatusError(t, err, http.StatusForbidden, "Forbidden")
		assert.Empty(t, storage.updated)

		require.NoError(t, service.Update(context.Background(), backofficeAccess(1), order))
		require.Len(t, storage.updated, 1)

		// Rejections are approval transitions too.
		order.Status = domain.StatusRejected
		err = service.Update(context.Background(), managerAccess(1), order)
		requireStatusError(t, err, http.StatusForbidden, "Forbidden")
	})

	t.Run("keeping an approved status is not a transition", func(t *testing.T) {
		storage := &mockWorkOrderStorage{
			getFunc: func(ctx context.Context, id int64) (*domain.WorkOrder, error) {
				return &domain.WorkOrder{Id: id, BuildingId: int64Ptr(1), Status: domain.StatusApproved}, nil
			},
		}
		service := newWorkOrderService(t, storage)

		err := service.Update(context.Background(), managerAccess(1), domain.WorkOrder{
			Id: 11, Title: "Retitled", Status: domain.StatusApproved,
		})
		require.NoError(t, err)
	})

	t.Run("leaving done unarchives", func(t *testing.T) {
		archivedAt := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
		storage := &mockWorkOrderStorage{
			getFunc: func(ctx context.Context, id int64) (*domain.WorkOrder, error) {
				return &domain.WorkOrder{
					Id: id, BuildingId: int64Ptr(1), Status: domain.StatusDone, ArchivedAt: &archivedAt,
				}, nil
			},
		}
		service := newWorkOrderService(t, storage)

		require.NoError(t, service.Update(context.Background(), managerAccess(1), domain.WorkOrder{
			Id: 11, Title: "Back to work", Status: domain.StatusInProgress,
		}))
		require.Len(t, storage.updated, 1)
		assert.Nil(t, storage.updated[0].ArchivedAt, "reopened orders leave the archive")

		require.NoError(t, service.Update(context.Background(), managerAccess(1), domain.WorkOrder{
			Id: 11, Title: "Still done", Status: domain.StatusDone,
		}))
		require.NotNil(t, storage.updated[1].ArchivedAt)
		assert.True(t, storage.updated[1].ArchivedAt.Equal(archivedAt))
	})
}

func TestWorkOrderDelete(t *testing.T) {
	storage := &mockWorkOrderStorage{}
	service := newWorkOrderService(t, storage)

	err := service.Delete(context.Background(), managerAccess(1), 11)
	requireStatusError(t, err, http.StatusForbidden, "Forbidden")
	assert.Empty(t, storage.deletedIds)

	require.NoError(t, service.Delete(context.Background(), ownedAccess(1), 11))
	assert.Equal(t, []int64{11}, storage.deletedIds)
}

func TestWorkOrderArchive(t *testing.T) {
	t.Run("only completed orders archive", func(t *testing.T) {
		storage := &mockWorkOrderStorage{}
		service := newWorkOrderService(t, storage)

		err := service.Archive(context.Background(), ownedAccess(1), 11)
		requireStatusError(t, err, http.StatusBadRequest, "Only completed work orders can be archived")
		assert.Empty(t, storage.archivedIds)
	})

	t.Run("done order archives", func(t *testing.T) {
		storage := &mockWorkOrderStorage{
			getFunc: func(ctx context.Context, id int64) (*domain.WorkOrder, error) {
				return &domain.WorkOrder{Id: id, BuildingId: int64Ptr(1), Status: domain.StatusDone}, nil
			},
		}
		service := newWorkOrderService(t, storage)

		require.NoError(t, service.Archive(context.Background(), ownedAccess(1), 11))
		assert.Equal(t, []int64{11}, storage.archivedIds)

		err := service.Archive(context.Background(), managerAccess(1), 11)
		requireStatusError(t, err, http.StatusForbidden, "Forbidden")
	})
}

func TestWorkOrderMassAssign(t *testing.T) {
	t.Run("admin only", func(t *testing.T) {
		storage := &mockWorkOrderStorage{}
		service := newWorkOrderService(t, storage)

		_, _, err := service.MassAssign(context.Background(), ownedAccess(1), []int64{1}, "Inspection", "", nil)
		requireStatusError(t, err, http.StatusForbidden, "Forbidden")
	})

	t.Run("explicit deadline passes through", func(t *testing.T) {
		storage := &mockWorkOrderStorage{}
		service := newWorkOrderService(t, storage)
		due := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)

		created, skipped, err := service.MassAssign(context.Background(), adminAccess(), []int64{1, 2, 3}, "Inspection", "Annual", &due)
		require.NoError(t, err)
		assert.Equal(t, 2, created)
		assert.Equal(t, 1, skipped)
		assert.Equal(t, []int64{1, 2, 3}, storage.massBuildingIds)
		assert.True(t, storage.massDeadline.Equal(due))
	})

	t.Run("missing deadline defaults to thirty days out", func(t *testing.T) {
		storage := &mockWorkOrderStorage{}
		service := newWorkOrderService(t, storage)

		_, _, err := service.MassAssign(context.Background(), adminAccess(), []int64{1}, "Inspection", "", nil)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 30), storage.massDeadline, 24*time.Hour)
	})
}

func TestWorkOrderOwnerChoices(t *testing.T) {
	storage := &mockWorkOrderStorage{
		ownerIdsFunc: func(ctx context.Context, visibleIds []int64) ([]int64, error) {
			return []int64{9, 4}, nil
		},
		usersFunc: func(ctx context.Context, ids []int64) ([]domain.User, error) {
			assert.Equal(t, []int64{4, 9}, ids, "ids are sorted before the lookup")
			return []domain.User{{Id: 4, FirstName: "Dana"}, {Id: 9, FirstName: "Ola"}}, nil
		},
	}
	service := newWorkOrderService(t, storage)

	owners, err := service.OwnerChoices(context.Background(), adminAccess())
	require.NoError(t, err)
	require.Len(t, owners, 2)
	assert.Equal(t, 1, storage.userCalls)

	// Same id set again comes from the cache.
	_, err = service.OwnerChoices(context.Background(), adminAccess())
	require.NoError(t, err)
	assert.Equal(t, 1, storage.userCalls)

	// A different id set is a different cache key.
	storage.ownerIdsFunc = func(ctx context.Context, visibleIds []int64) ([]int64, error) {
		return []int64{4}, nil
	}
	storage.usersFunc = nil
	_, err = service.OwnerChoices(context.Background(), adminAccess())
	require.NoError(t, err)
	assert.Equal(t, 2, storage.userCalls)
}

func TestWorkOrderOwnerChoicesEmpty(t *testing.T) {
	storage := &mockWorkOrderStorage{}
	service := newWorkOrderService(t, storage)

	owners, err := service.OwnerChoices(context.Background(), ownedAccess(1))
	require.NoError(t, err)
	assert.Nil(t, owners)
	assert.Zero(t, storage.userCalls)
}
