package service

import (
	"context"
	"sort"

	"github.com/Mecho90/BuildingManagement/shared/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

const accessCacheSize = 256

// Access is one user's resolved authorization state: which buildings they
// can see and what they may do where. Admins and global administrators are
// unrestricted; everyone else sees the union of buildings they own and
// buildings they hold a membership in.
type Access struct {
	UserId int64
	Admin  bool

	global      map[domain.Capability]bool
	perBuilding map[int64]map[domain.Capability]bool
	owned       map[int64]bool
	visible     []int64
}

// Unrestricted reports whether the user sees every building.
func (a *Access) Unrestricted() bool {
	return a.Admin || a.global[domain.CapViewAllBuildings]
}

// VisibleBuildingIds returns the buildings the user may see, nil meaning no
// restriction. Storage queries treat nil the same way.
func (a *Access) VisibleBuildingIds() []int64 {
	if a.Unrestricted() {
		return nil
	}
	return a.visible
}

func (a *Access) CanView(buildingId int64) bool {
	if a.Unrestricted() {
		return true
	}
	for _, id := range a.visible {
		if id == buildingId {
			return true
		}
	}
	return false
}

// Can reports whether the user holds a capability, optionally scoped to one
// building. Owners hold every building-scoped capability on their own
// buildings.
func (a *Access) Can(cap domain.Capability, buildingId *int64) bool {
	if a.Admin {
		return true
	}
	if a.global[cap] {
		return true
	}
	if buildingId == nil {
		return false
	}
	if a.owned[*buildingId] && cap != domain.CapViewAllBuildings {
		return true
	}
	return a.perBuilding[*buildingId][cap]
}

// CanManageAttachments gates uploads and deletes on a work order. Orders
// without a building are managed by admins only.
func (a *Access) CanManageAttachments(w *domain.WorkOrder) bool {
	if a.Admin {
		return true
	}
	if w.BuildingId == nil {
		return false
	}
	return a.Can(domain.CapManageAttachments, w.BuildingId)
}

// CanViewWorkOrder mirrors list visibility for a single order.
func (a *Access) CanViewWorkOrder(w *domain.WorkOrder) bool {
	if a.Unrestricted() {
		return true
	}
	if w.BuildingId == nil {
		return false
	}
	return a.CanView(*w.BuildingId)
}

type AuthzService interface {
	Access(ctx context.Context, user domain.User) (*Access, error)
	Invalidate(userId int64)
	InvalidateAll()
}

type Authz struct {
	storage AuthzStorage
	cache   *lru.Cache[int64, *Access]
}

type AuthzStorage interface {
	MembershipsByUser(ctx context.Context, userId int64) ([]domain.Membership, error)
	OwnedBuildingIds(ctx context.Context, ownerId int64) ([]int64, error)
}

func NewAuthz(storage AuthzStorage) (*Authz, error) {
	cache, err := lru.New[int64, *Access](accessCacheSize)
	if err != nil {
		return nil, err
	}
	return &Authz{storage: storage, cache: cache}, nil
}

// Access resolves (and caches) the user's authorization state. Mutations
// that change memberships or building ownership must Invalidate.
func (a *Authz) Access(ctx context.Context, user domain.User) (*Access, error) {
	if cached, ok := a.cache.Get(user.Id); ok && cached.Admin == user.Admin {
		return cached, nil
	}

	access, err := a.resolve(ctx, user)
	if err != nil {
		return nil, err
	}
	a.cache.Add(user.Id, access)
	return access, nil
}

func (a *Authz) resolve(ctx context.Context, user domain.User) (*Access, error) {
	if user.Admin {
		return ResolveAccess(user.Id, true, nil, nil), nil
	}

	memberships, err := a.storage.MembershipsByUser(ctx, user.Id)
	if err != nil {
		return nil, err
	}
	ownedIds, err := a.storage.OwnedBuildingIds(ctx, user.Id)
	if err != nil {
		return nil, err
	}
	return ResolveAccess(user.Id, false, memberships, ownedIds), nil
}

// ResolveAccess derives an Access from memberships and owned buildings. It
// is a pure function so callers outside the cache path (tests, the admin
// CLI) can build the same state the service resolves.
func ResolveAccess(userId int64, admin bool, memberships []domain.Membership, ownedIds []int64) *Access {
	access := &Access{
		UserId:      userId,
		Admin:       admin,
		global:      make(map[domain.Capability]bool),
		perBuilding: make(map[int64]map[domain.Capability]bool),
		owned:       make(map[int64]bool),
	}
	if admin {
		return access
	}

	for _, m := range memberships {
		caps := m.ResolvedCapabilities()
		if m.Global() {
			for _, c := range caps {
				access.global[c] = true
			}
			continue
		}
		byBuilding := access.perBuilding[*m.BuildingId]
		if byBuilding == nil {
			byBuilding = make(map[domain.Capability]bool)
			access.perBuilding[*m.BuildingId] = byBuilding
		}
		for _, c := range caps {
			byBuilding[c] = true
		}
	}

	for _, id := range ownedIds {
		access.owned[id] = true
	}

	seen := make(map[int64]bool)
	for id := range access.perBuilding {
		seen[id] = true
	}
	for id := range access.owned {
		seen[id] = true
	}
	access.visible = make([]int64, 0, len(seen))
	for id := range seen {
		access.visible = append(access.visible, id)
	}
	sort.Slice(access.visible, func(i, j int) bool { return access.visible[i] < access.visible[j] })

	return access
}

func (a *Authz) Invalidate(userId int64) {
	a.cache.Remove(userId)
}

func (a *Authz) InvalidateAll() {
	a.cache.Purge()
}
