package domain

type Unit struct {
	Id          int64
	BuildingId  int64
	Number      string
	Floor       int
	IsOccupied  bool
	Description string

	// Populated when fetched with building/tenant details.
	BuildingName string
	Tenant       *Tenant
}

// OccupantName returns the tenant's name for occupied units, "" otherwise.
func (u *Unit) OccupantName() string {
	if u.Tenant == nil {
		return ""
	}
	return u.Tenant.FullName
}

type Tenant struct {
	Id       int64
	UnitId   int64
	FullName string
	Email    string
	Phone    string
}
