package domain

import "time"

type Building struct {
	Id          int64
	Name        string
	Address     string
	Description string
	OwnerId     *int64
	CreatedAt   time.Time

	// Unit stats, populated by list queries so pages can render
	// occupancy numbers without extra roundtrips.
	TotalUnits    int
	OccupiedUnits int

	// Populated when fetched with owner details.
	OwnerName string
}

func (b *Building) VacantUnits() int {
	return b.TotalUnits - b.OccupiedUnits
}

// OccupancyRate returns the occupied fraction in [0, 1].
// Empty buildings report 0 rather than dividing by zero.
func (b *Building) OccupancyRate() float64 {
	if b.TotalUnits == 0 {
		return 0
	}
	return float64(b.OccupiedUnits) / float64(b.TotalUnits)
}
