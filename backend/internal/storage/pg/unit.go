package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/domain"
	internal_errors "github.com/Mecho90/BuildingManagement/shared/errors"
	"github.com/lib/pq"
)

func (s *Storage) CreateUnit(ctx context.Context, u domain.Unit) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO units (building_id, number, floor, is_occupied, description)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`, u.BuildingId, u.Number, u.Floor, u.IsOccupied, u.Description).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &internal_errors.ErrorWithStatusCode{Message: "Unit with this number already exists in the building", StatusCode: http.StatusConflict}
		}
		return 0, fmt.Errorf("failed to create unit: %w", err)
	}
	return id, nil
}

func (s *Storage) Unit(ctx context.Context, id int64) (*domain.Unit, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT u.id, u.building_id, u.number, u.floor, u.is_occupied, u.description,
	       b.name,
	       t.id, t.full_name, t.email, t.phone
	FROM units u
	JOIN buildings b ON b.id = u.building_id
	LEFT JOIN tenants t ON t.unit_id = u.id
	WHERE u.id = $1
	`, id)

	var u domain.Unit
	var tenantId sql.NullInt64
	var tenantName, tenantEmail, tenantPhone sql.NullString
	err := row.Scan(&u.Id, &u.BuildingId, &u.Number, &u.Floor, &u.IsOccupied, &u.Description,
		&u.BuildingName, &tenantId, &tenantName, &tenantEmail, &tenantPhone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Unit not found", StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("failed to fetch unit: %w", err)
	}
	if tenantId.Valid {
		u.Tenant = &domain.Tenant{
			Id:       tenantId.Int64,
			UnitId:   u.Id,
			FullName: tenantName.String,
			Email:    tenantEmail.String,
			Phone:    tenantPhone.String,
		}
	}
	return &u, nil
}

func (s *Storage) UnitsByBuilding(ctx context.Context, buildingId int64) ([]domain.Unit, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT u.id, u.building_id, u.number, u.floor, u.is_occupied, u.description,
	       b.name,
	       t.id, t.full_name, t.email, t.phone
	FROM units u
	JOIN buildings b ON b.id = u.building_id
	LEFT JOIN tenants t ON t.unit_id = u.id
	WHERE u.building_id = $1
	ORDER BY u.floor, u.number, u.id
	`, buildingId)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	var units []domain.Unit
	for rows.Next() {
		var u domain.Unit
		var tenantId sql.NullInt64
		var tenantName, tenantEmail, tenantPhone sql.NullString
		if err := rows.Scan(&u.Id, &u.BuildingId, &u.Number, &u.Floor, &u.IsOccupied, &u.Description,
			&u.BuildingName, &tenantId, &tenantName, &tenantEmail, &tenantPhone); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		if tenantId.Valid {
			u.Tenant = &domain.Tenant{Id: tenantId.Int64, UnitId: u.Id, FullName: tenantName.String, Email: tenantEmail.String, Phone: tenantPhone.String}
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (s *Storage) UpdateUnit(ctx context.Context, u domain.Unit) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE units
	SET number = $1, floor = $2, is_occupied = $3, description = $4
	WHERE id = $5
	`, u.Number, u.Floor, u.IsOccupied, u.Description, u.Id)
	if err != nil {
		if isUniqueViolation(err) {
			return &internal_errors.ErrorWithStatusCode{Message: "Unit with this number already exists in the building", StatusCode: http.StatusConflict}
		}
		return fmt.Errorf("failed to update unit: %w", err)
	}
	return requireRow(res, "Unit not found")
}

func (s *Storage) DeleteUnit(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM units WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete unit: %w", err)
	}
	return requireRow(res, "Unit not found")
}

// SetTenant replaces the unit's tenant and marks the unit occupied. The
// one-tenant-per-unit constraint makes this an upsert on unit_id.
func (s *Storage) SetTenant(ctx context.Context, t domain.Tenant) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO tenants (unit_id, full_name, email, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (unit_id) DO UPDATE
		SET full_name = EXCLUDED.full_name, email = EXCLUDED.email, phone = EXCLUDED.phone
		`, t.UnitId, t.FullName, t.Email, t.Phone)
		if err != nil {
			return fmt.Errorf("failed to set tenant: %w", err)
		}
		_, err = tx.ExecContext(ctx, `UPDATE units SET is_occupied = TRUE WHERE id = $1`, t.UnitId)
		if err != nil {
			return fmt.Errorf("failed to mark unit occupied: %w", err)
		}
		return nil
	})
}

// RemoveTenant clears the unit's tenant and marks it vacant.
func (s *Storage) RemoveTenant(ctx context.Context, unitId int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tenants WHERE unit_id = $1`, unitId); err != nil {
			return fmt.Errorf("failed to remove tenant: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE units SET is_occupied = FALSE WHERE id = $1`, unitId); err != nil {
			return fmt.Errorf("failed to mark unit vacant: %w", err)
		}
		return nil
	})
}

// UnitSummaries returns the flat unit projection for the units JSON API,
// optionally filtered to one building. owner_name is the tenant's name when
// the unit is occupied, otherwise empty.
func (s *Storage) UnitSummaries(ctx context.Context, visibleIds []int64, buildingId *int64) ([]api.UnitSummary, error) {
	query := `
	SELECT u.id, u.number, u.floor, COALESCE(t.full_name, ''), u.building_id
	FROM units u
	LEFT JOIN tenants t ON t.unit_id = u.id
	WHERE TRUE`
	var args []interface{}
	if visibleIds != nil {
		args = append(args, pq.Array(visibleIds))
		query += fmt.Sprintf(` AND u.building_id = ANY($%d)`, len(args))
	}
	if buildingId != nil {
		args = append(args, *buildingId)
		query += fmt.Sprintf(` AND u.building_id = $%d`, len(args))
	}
	query += `
	ORDER BY u.building_id, u.number, u.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list unit summaries: %w", err)
	}
	defer rows.Close()

	summaries := []api.UnitSummary{}
	for rows.Next() {
		var u api.UnitSummary
		if err := rows.Scan(&u.Id, &u.Number, &u.Floor, &u.OwnerName, &u.BuildingId); err != nil {
			return nil, fmt.Errorf("failed to scan unit summary: %w", err)
		}
		summaries = append(summaries, u)
	}
	return summaries, rows.Err()
}
