package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type mockBuildingStorage struct {
	buildingFunc func(ctx context.Context, id int64) (*domain.Building, error)
	unitFunc     func(ctx context.Context, id int64) (*domain.Unit, error)
	visibleFunc  func(ctx context.Context, id int64, visibleIds []int64) (bool, error)

	createdBuildings []domain.Building
	updatedBuildings []domain.Building
	deletedBuildings []int64
	createdUnits     []domain.Unit
	updatedUnits     []domain.Unit
	deletedUnits     []int64
	setTenants       []domain.Tenant
	removedTenants   []int64

	listVisibleIds      [][]int64
	summaryVisibleIds   [][]int64
	unitSummaryArgs     []*int64
	unitsByBuildingArgs []int64
}

func (m *mockBuildingStorage) CreateBuilding(ctx context.Context, b domain.Building) (int64, error) {
	m.createdBuildings = append(m.createdBuildings, b)
	return int64(len(m.createdBuildings)), nil
}

func (m *mockBuildingStorage) Building(ctx context.Context, id int64) (*domain.Building, error) {
	if m.buildingFunc != nil {
		return m.buildingFunc(ctx, id)
	}
	return &domain.Building{Id: id, Name: "Maple Court", Address: "12 Maple St", OwnerId: int64Ptr(5)}, nil
}

func (m *mockBuildingStorage) Buildings(ctx context.Context, visibleIds []int64) ([]domain.Building, error) {
	m.listVisibleIds = append(m.listVisibleIds, visibleIds)
	return nil, nil
}

func (m *mockBuildingStorage) UpdateBuilding(ctx context.Context, b domain.Building) error {
	m.updatedBuildings = append(m.updatedBuildings, b)
	return nil
}

func (m *mockBuildingStorage) DeleteBuilding(ctx context.Context, id int64) error {
	m.deletedBuildings = append(m.deletedBuildings, id)
	return nil
}

func (m *mockBuildingStorage) BuildingSummaries(ctx context.Context, visibleIds []int64) ([]api.BuildingSummary, error) {
	m.summaryVisibleIds = append(m.summaryVisibleIds, visibleIds)
	return nil, nil
}

func (m *mockBuildingStorage) BuildingVisible(ctx context.Context, id int64, visibleIds []int64) (bool, error) {
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

func (m *mockBuildingStorage) CreateUnit(ctx context.Context, u domain.Unit) (int64, error) {
	m.createdUnits = append(m.createdUnits, u)
	return int64(len(m.createdUnits)), nil
}

func (m *mockBuildingStorage) Unit(ctx context.Context, id int64) (*domain.Unit, error) {
	if m.unitFunc != nil {
		return m.unitFunc(ctx, id)
	}
	return &domain.Unit{Id: id, BuildingId: 1, Number: "2B"}, nil
}

func (m *mockBuildingStorage) UnitsByBuilding(ctx context.Context, buildingId int64) ([]domain.Unit, error) {
	m.unitsByBuildingArgs = append(m.unitsByBuildingArgs, buildingId)
	return nil, nil
}

func (m *mockBuildingStorage) UpdateUnit(ctx context.Context, u domain.Unit) error {
	m.updatedUnits = append(m.updatedUnits, u)
	return nil
}

func (m *mockBuildingStorage) DeleteUnit(ctx context.Context, id int64) error {
	m.deletedUnits = append(m.deletedUnits, id)
	return nil
}

func (m *mockBuildingStorage) SetTenant(ctx context.Context, t domain.Tenant) error {
	m.setTenants = append(m.setTenants, t)
	return nil
}

func (m *mockBuildingStorage) RemoveTenant(ctx context.Context, unitId int64) error {
	m.removedTenants = append(m.removedTenants, unitId)
	return nil
}

func (m *mockBuildingStorage) UnitSummaries(ctx context.Context, visibleIds []int64, buildingId *int64) ([]api.UnitSummary, error) {
	m.unitSummaryArgs = append(m.unitSummaryArgs, buildingId)
	return nil, nil
}

type mockInvalidator struct {
	invalidated    []int64
	invalidatedAll int
}

func (m *mockInvalidator) Invalidate(userId int64) { m.invalidated = append(m.invalidated, userId) }
func (m *mockInvalidator) InvalidateAll()          { m.invalidatedAll++ }

// --- Tests ---

func TestBuildingList(t *testing.T) {
	storage := &mockBuildingStorage{}
	service := NewBuilding(storage, &mockInvalidator{})

	_, err := service.Buildings(context.Background(), ownedAccess(1))
	require.NoError(t, err)
	_, err = service.Buildings(context.Background(), adminAccess())
	require.NoError(t, err)

	require.Len(t, storage.listVisibleIds, 2)
	assert.Equal(t, []int64{1}, storage.listVisibleIds[0])
	assert.Nil(t, storage.listVisibleIds[1], "admins list without restriction")
}

func TestBuildingGet(t *testing.T) {
	storage := &mockBuildingStorage{}
	service := NewBuilding(storage, &mockInvalidator{})

	b, err := service.Building(context.Background(), ownedAccess(1), 1)
	require.NoError(t, err)
	assert.Equal(t, "Maple Court", b.Name)

	_, err = service.Building(context.Background(), ownedAccess(1), 2)
	requireStatusError(t, err, http.StatusNotFound, "Building not found.")
}

func TestBuildingCreate(t *testing.T) {
	t.Run("non-admins own what they create", func(t *testing.T) {
		storage := &mockBuildingStorage{}
		authz := &mockInvalidator{}
		service := NewBuilding(storage, authz)

		_, err := service.Create(context.Background(), ownedAccess(1), domain.Building{
			Name: "New Block", OwnerId: int64Ptr(99),
		})
		require.NoError(t, err)

		require.Len(t, storage.createdBuildings, 1)
		require.NotNil(t, storage.createdBuildings[0].OwnerId)
		assert.Equal(t, int64(5), *storage.createdBuildings[0].OwnerId, "owner is forced to the caller")
		assert.Equal(t, 1, authz.invalidatedAll, "new ownership invalidates cached access")
	})

	t.Run("admins assign any owner", func(t *testing.T) {
		storage := &mockBuildingStorage{}
		service := NewBuilding(storage, &mockInvalidator{})

		_, err := service.Create(context.Background(), adminAccess(), domain.Building{
			Name: "New Block", OwnerId: int64Ptr(99),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(99), *storage.createdBuildings[0].OwnerId)
	})
}

func TestBuildingUpdate(t *testing.T) {
	t.Run("owner keeps current ownership", func(t *testing.T) {
		storage := &mockBuildingStorage{}
		authz := &mockInvalidator{}
		service := NewBuilding(storage, authz)

		err := service.Update(context.Background(), ownedAccess(1), domain.Building{
			Id: 1, Name: "Renamed", OwnerId: int64Ptr(99),
		})
		require.NoError(t, err)

		require.Len(t, storage.updatedBuildings, 1)
		assert.Equal(t, int64(5), *storage.updatedBuildings[0].OwnerId, "only admins reassign ownership")
		assert.Equal(t, 1, authz.invalidatedAll)
	})

	t.Run("admin reassigns ownership", func(t *testing.T) {
		storage := &mockBuildingStorage{}
		service := NewBuilding(storage, &mockInvalidator{})

		err := service.Update(context.Background(), adminAccess(), domain.Building{
			Id: 1, Name: "Renamed", OwnerId: int64Ptr(99),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(99), *storage.updatedBuildings[0].OwnerId)
	})

	t.Run("viewer gets forbidden, stranger not found", func(t *testing.T) {
		storage := &mockBuildingStorage{}
		service := NewBuilding(storage, &mockInvalidator{})
		b := domain.Building{Id: 1, Name: "Renamed"}

		err := service.Update(context.Background(), viewerAccess(1), b)
		requireStatusError(t, err, http.StatusForbidden, "Forbidden")

		err = service.Update(context.Background(), strangerAccess(), b)
		requireStatusError(t, err, http.StatusNotFound, "Building not found.")
		assert.Empty(t, storage.updatedBuildings)
	})
}

func TestBuildingDelete(t *testing.T) {
	storage := &mockBuildingStorage{}
	authz := &mockInvalidator{}
	service := NewBuilding(storage, authz)

	err := service.Delete(context.Background(), viewerAccess(1), 1)
	requireStatusError(t, err, http.StatusForbidden, "Forbidden")

	require.NoError(t, service.Delete(context.Background(), ownedAccess(1), 1))
	assert.Equal(t, []int64{1}, storage.deletedBuildings)
	assert.Equal(t, 1, authz.invalidatedAll)
}

func TestBuildingSummaries(t *testing.T) {
	storage := &mockBuildingStorage{}
	service := NewBuilding(storage, &mockInvalidator{})

	_, err := service.Summaries(context.Background(), ownedAccess(1, 3))
	require.NoError(t, err)
	require.Len(t, storage.summaryVisibleIds, 1)
	assert.Equal(t, []int64{1, 3}, storage.summaryVisibleIds[0])
}

func TestBuildingUnits(t *testing.T) {
	storage := &mockBuildingStorage{}
	service := NewBuilding(storage, &mockInvalidator{})

	_, err := service.Units(context.Background(), ownedAccess(1), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, storage.unitsByBuildingArgs)

	_, err = service.Units(context.Background(), ownedAccess(1), 2)
	requireStatusError(t, err, http.StatusNotFound, "Building not found.")
}

func TestUnitGet(t *testing.T) {
	storage := &mockBuildingStorage{}
	service := NewBuilding(storage, &mockInvalidator{})

	unit, err := service.Unit(context.Background(), viewerAccess(1), 3)
	require.NoError(t, err)
	assert.Equal(t, "2B", unit.Number)

	// The unit exists but its building is out of scope.
	_, err = service.Unit(context.Background(), strangerAccess(), 3)
	requireStatusError(t, err, http.StatusNotFound, "Unit not found")
}

func TestUnitCreate(t *testing.T) {
	storage := &mockBuildingStorage{}
	service := NewBuilding(storage, &mockInvalidator{})
	unit := domain.Unit{BuildingId: 1, Number: "3A", Floor: 3}

	_, err := service.CreateUnit(context.Background(), viewerAccess(1), unit)
	requireStatusError(t, err, http.StatusForbidden, "Forbidden")

	id, err := service.CreateUnit(context.Background(), ownedAccess(1), unit)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.Len(t, storage.createdUnits, 1)
	assert.Equal(t, "3A", storage.createdUnits[0].Number)
}

func TestUnitUpdateDelete(t *testing.T) {
	storage := &mockBuildingStorage{}
	service := NewBuilding(storage, &mockInvalidator{})

	err := service.UpdateUnit(context.Background(), viewerAccess(1), domain.Unit{Id: 3, Number: "2C"})
	requireStatusError(t, err, http.StatusForbidden, "Forbidden")

	require.NoError(t, service.UpdateUnit(context.Background(), ownedAccess(1), domain.Unit{Id: 3, Number: "2C"}))
	require.Len(t, storage.updatedUnits, 1)

	err = service.DeleteUnit(context.Background(), viewerAccess(1), 3)
	requireStatusError(t, err, http.StatusForbidden, "Forbidden")

	require.NoError(t, service.DeleteUnit(context.Background(), ownedAccess(1), 3))
	assert.Equal(t, []int64{3}, storage.deletedUnits)
}

func TestTenantAssignment(t *testing.T) {
	storage := &mockBuildingStorage{}
	service := NewBuilding(storage, &mockInvalidator{})
	tenant := domain.Tenant{UnitId: 3, FullName: "Ola Berg", Email: "ola@example.com", Phone: "555-0101"}

	err := service.SetTenant(context.Background(), viewerAccess(1), tenant)
	requireStatusError(t, err, http.StatusForbidden, "Forbidden")

	require.NoError(t, service.SetTenant(context.Background(), ownedAccess(1), tenant))
	require.Len(t, storage.setTenants, 1)
	assert.Equal(t, "Ola Berg", storage.setTenants[0].FullName)

	err = service.RemoveTenant(context.Background(), viewerAccess(1), 3)
	requireStatusError(t, err, http.StatusForbidden, "Forbidden")

	require.NoError(t, service.RemoveTenant(context.Background(), ownedAccess(1), 3))
	assert.Equal(t, []int64{3}, storage.removedTenants)
}

func TestUnitSummaries(t *testing.T) {
	t.Run("building filter must be visible", func(t *testing.T) {
		storage := &mockBuildingStorage{}
		service := NewBuilding(storage, &mockInvalidator{})

		_, err := service.UnitSummaries(context.Background(), ownedAccess(1), int64Ptr(1))
		require.NoError(t, err)
		require.Len(t, storage.unitSummaryArgs, 1)
		assert.Equal(t, int64(1), *storage.unitSummaryArgs[0])

		_, err = service.UnitSummaries(context.Background(), ownedAccess(1), int64Ptr(2))
		requireStatusError(t, err, http.StatusNotFound, "Building not found.")
	})

	t.Run("no filter lists the whole scope", func(t *testing.T) {
		storage := &mockBuildingStorage{}
		service := NewBuilding(storage, &mockInvalidator{})

		_, err := service.UnitSummaries(context.Background(), ownedAccess(1), nil)
		require.NoError(t, err)
		require.Len(t, storage.unitSummaryArgs, 1)
		assert.Nil(t, storage.unitSummaryArgs[0])
	})
}
