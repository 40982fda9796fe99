package api

// Form limits mirrored by the validate tags below; templates read these to
// set maxlength attributes.
const (
	BuildingNameMaxLen = 200
	AddressMaxLen      = 300
	UnitNumberMaxLen   = 50
)

// Request DTOs shared by backend and frontend handlers

type CreateBuildingRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Address     string `json:"address" validate:"required,max=300"`
	Description string `json:"description,omitempty"`
	OwnerId     *int64 `json:"owner_id,omitempty"`
}

type UpdateBuildingRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Address     string `json:"address" validate:"required,max=300"`
	Description string `json:"description,omitempty"`
	OwnerId     *int64 `json:"owner_id,omitempty"`
}

type CreateUnitRequest struct {
	Number      string `json:"number" validate:"required,max=50"`
	Floor       int    `json:"floor" validate:"min=-5"`
	IsOccupied  bool   `json:"is_occupied,omitempty"`
	Description string `json:"description,omitempty"`
}

type UpdateUnitRequest struct {
	Number      string `json:"number" validate:"required,max=50"`
	Floor       int    `json:"floor" validate:"min=-5"`
	IsOccupied  bool   `json:"is_occupied,omitempty"`
	Description string `json:"description,omitempty"`
}

// SetTenantRequest assigns or replaces the tenant of a unit.
type SetTenantRequest struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,max=50"`
}

// Response DTOs

// BuildingSummary is the building list projection.
type BuildingSummary struct {
	Id      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	OwnerId *int64 `json:"owner_id"`
}

// BuildingResponse is the full building projection with unit stats.
type BuildingResponse struct {
	Id            int64  `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	Description   string `json:"description,omitempty"`
	OwnerId       *int64 `json:"owner_id"`
	OwnerName     string `json:"owner_name,omitempty"`
	TotalUnits    int    `json:"total_units"`
	OccupiedUnits int    `json:"occupied_units"`
	VacantUnits   int    `json:"vacant_units"`
	CreatedAt     string `json:"created_at"`
}

type BuildingListResponse struct {
	Buildings []BuildingResponse `json:"buildings"`
}

type BuildingChoicesResponse struct {
	Buildings []BuildingSummary `json:"buildings"`
}

type TenantResponse struct {
	Id       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type UnitResponse struct {
	Id          int64           `json:"id"`
	BuildingId  int64           `json:"building_id"`
	Number      string          `json:"number"`
	Floor       int             `json:"floor"`
	IsOccupied  bool            `json:"is_occupied"`
	Description string          `json:"description,omitempty"`
	Tenant      *TenantResponse `json:"tenant,omitempty"`
}

type UnitListResponse struct {
	Units []UnitResponse `json:"units"`
}

type UnitChoicesResponse struct {
	Units []UnitSummary `json:"units"`
}

// UnitSummary is the unit list projection. OwnerName carries the occupant
// display name, "" for vacant units.
type UnitSummary struct {
	Id         int64  `json:"id"`
	Number     string `json:"number"`
	Floor      int    `json:"floor"`
	OwnerName  string `json:"owner_name"`
	BuildingId int64  `json:"building_id"`
}
