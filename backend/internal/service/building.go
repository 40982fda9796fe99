package service

import (
	"context"
	"net/http"

	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/domain"
	"github.com/Mecho90/BuildingManagement/shared/errors"
)

type BuildingService interface {
	Buildings(ctx context.Context, access *Access) ([]domain.Building, error)
	Building(ctx context.Context, access *Access, id int64) (*domain.Building, error)
	Create(ctx context.Context, access *Access, b domain.Building) (int64, error)
	Update(ctx context.Context, access *Access, b domain.Building) error
	Delete(ctx context.Context, access *Access, id int64) error
	Summaries(ctx context.Context, access *Access) ([]api.BuildingSummary, error)

	Units(ctx context.Context, access *Access, buildingId int64) ([]domain.Unit, error)
	Unit(ctx context.Context, access *Access, id int64) (*domain.Unit, error)
	CreateUnit(ctx context.Context, access *Access, u domain.Unit) (int64, error)
	UpdateUnit(ctx context.Context, access *Access, u domain.Unit) error
	DeleteUnit(ctx context.Context, access *Access, id int64) error
	SetTenant(ctx context.Context, access *Access, t domain.Tenant) error
	RemoveTenant(ctx context.Context, access *Access, unitId int64) error
	UnitSummaries(ctx context.Context, access *Access, buildingId *int64) ([]api.UnitSummary, error)
}

type Building struct {
	storage BuildingStorage
	authz   AccessInvalidator
}

type BuildingStorage interface {
	CreateBuilding(ctx context.Context, b domain.Building) (int64, error)
	Building(ctx context.Context, id int64) (*domain.Building, error)
	Buildings(ctx context.Context, visibleIds []int64) ([]domain.Building, error)
	UpdateBuilding(ctx context.Context, b domain.Building) error
	DeleteBuilding(ctx context.Context, id int64) error
	BuildingSummaries(ctx context.Context, visibleIds []int64) ([]api.BuildingSummary, error)
	BuildingVisible(ctx context.Context, id int64, visibleIds []int64) (bool, error)

	CreateUnit(ctx context.Context, u domain.Unit) (int64, error)
	Unit(ctx context.Context, id int64) (*domain.Unit, error)
	UnitsByBuilding(ctx context.Context, buildingId int64) ([]domain.Unit, error)
	UpdateUnit(ctx context.Context, u domain.Unit) error
	DeleteUnit(ctx context.Context, id int64) error
	SetTenant(ctx context.Context, t domain.Tenant) error
	RemoveTenant(ctx context.Context, unitId int64) error
	UnitSummaries(ctx context.Context, visibleIds []int64, buildingId *int64) ([]api.UnitSummary, error)
}

// AccessInvalidator drops cached authorization state after mutations that
// change ownership or memberships.
type AccessInvalidator interface {
	Invalidate(userId int64)
	InvalidateAll()
}

func NewBuilding(storage BuildingStorage, authz AccessInvalidator) *Building {
	return &Building{storage: storage, authz: authz}
}

var buildingNotFound = &errors.ErrorWithStatusCode{Message: "Building not found.", StatusCode: http.StatusNotFound}
var forbidden = &errors.ErrorWithStatusCode{Message: "Forbidden", StatusCode: http.StatusForbidden}

// requireVisibleBuilding hides buildings outside the caller's scope behind
// the same 404 a missing building produces.
func (s *Building) requireVisibleBuilding(ctx context.Context, access *Access, id int64) error {
	visible, err := s.storage.BuildingVisible(ctx, id, access.VisibleBuildingIds())
	if err != nil {
		return err
	}
	if !visible {
		return buildingNotFound
	}
	return nil
}

// requireManageBuilding answers 404 for invisible buildings and 403 for
// visible ones the caller cannot manage.
func (s *Building) requireManageBuilding(ctx context.Context, access *Access, id int64) error {
	if err := s.requireVisibleBuilding(ctx, access, id); err != nil {
		return err
	}
	if !access.Can(domain.CapManageBuildings, &id) {
		return forbidden
	}
	return nil
}

func (s *Building) Buildings(ctx context.Context, access *Access) ([]domain.Building, error) {
	return s.storage.Buildings(ctx, access.VisibleBuildingIds())
}

func (s *Building) Building(ctx context.Context, access *Access, id int64) (*domain.Building, error) {
	if err := s.requireVisibleBuilding(ctx, access, id); err != nil {
		return nil, err
	}
	return s.storage.Building(ctx, id)
}

// Create adds a building. Non-admin callers always become the owner, so a
// user cannot create buildings on someone else's behalf.
func (s *Building) Create(ctx context.Context, access *Access, b domain.Building) (int64, error) {
	if !access.Admin {
		b.OwnerId = &access.UserId
	}
	id, err := s.storage.CreateBuilding(ctx, b)
	if err != nil {
		return 0, err
	}
	s.authz.InvalidateAll()
	return id, nil
}

func (s *Building) Update(ctx context.Context, access *Access, b domain.Building) error {
	if err := s.requireManageBuilding(ctx, access, b.Id); err != nil {
		return err
	}
	if !access.Admin {
		// Only admins may reassign ownership.
		current, err := s.storage.Building(ctx, b.Id)
		if err != nil {
			return err
		}
		b.OwnerId = current.OwnerId
	}
	if err := s.storage.UpdateBuilding(ctx, b); err != nil {
		return err
	}
	s.authz.InvalidateAll()
	return nil
}

func (s *Building) Delete(ctx context.Context, access *Access, id int64) error {
	if err := s.requireManageBuilding(ctx, access, id); err != nil {
		return err
	}
	if err := s.storage.DeleteBuilding(ctx, id); err != nil {
		return err
	}
	s.authz.InvalidateAll()
	return nil
}

func (s *Building) Summaries(ctx context.Context, access *Access) ([]api.BuildingSummary, error) {
	return s.storage.BuildingSummaries(ctx, access.VisibleBuildingIds())
}

func (s *Building) Units(ctx context.Context, access *Access, buildingId int64) ([]domain.Unit, error) {
	if err := s.requireVisibleBuilding(ctx, access, buildingId); err != nil {
		return nil, err
	}
	return s.storage.UnitsByBuilding(ctx, buildingId)
}

func (s *Building) Unit(ctx context.Context, access *Access, id int64) (*domain.Unit, error) {
	unit, err := s.storage.Unit(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanView(unit.BuildingId) {
		return nil, &errors.ErrorWithStatusCode{Message: "Unit not found", StatusCode: http.StatusNotFound}
	}
	return unit, nil
}

func (s *Building) CreateUnit(ctx context.Context, access *Access, u domain.Unit) (int64, error) {
	if err := s.requireManageBuilding(ctx, access, u.BuildingId); err != nil {
		return 0, err
	}
	return s.storage.CreateUnit(ctx, u)
}

func (s *Building) UpdateUnit(ctx context.Context, access *Access, u domain.Unit) error {
	current, err := s.Unit(ctx, access, u.Id)
	if err != nil {
		return err
	}
	if !access.Can(domain.CapManageBuildings, &current.BuildingId) {
		return forbidden
	}
	return s.storage.UpdateUnit(ctx, u)
}

func (s *Building) DeleteUnit(ctx context.Context, access *Access, id int64) error {
	current, err := s.Unit(ctx, access, id)
	if err != nil {
		return err
	}
	if !access.Can(domain.CapManageBuildings, &current.BuildingId) {
		return forbidden
	}
	return s.storage.DeleteUnit(ctx, id)
}

func (s *Building) SetTenant(ctx context.Context, access *Access, t domain.Tenant) error {
	current, err := s.Unit(ctx, access, t.UnitId)
	if err != nil {
		return err
	}
	if !access.Can(domain.CapManageBuildings, &current.BuildingId) {
		return forbidden
	}
	return s.storage.SetTenant(ctx, t)
}

func (s *Building) RemoveTenant(ctx context.Context, access *Access, unitId int64) error {
	current, err := s.Unit(ctx, access, unitId)
	if err != nil {
		return err
	}
	if !access.Can(domain.CapManageBuildings, &current.BuildingId) {
		return forbidden
	}
	return s.storage.RemoveTenant(ctx, unitId)
}

// UnitSummaries serves the units JSON API. With a building filter the
// building must be visible; without one the caller's whole scope is listed.
func (s *Building) UnitSummaries(ctx context.Context, access *Access, buildingId *int64) ([]api.UnitSummary, error) {
	if buildingId != nil {
		if err := s.requireVisibleBuilding(ctx, access, *buildingId); err != nil {
			return nil, err
		}
	}
	return s.storage.UnitSummaries(ctx, access.VisibleBuildingIds(), buildingId)
}
