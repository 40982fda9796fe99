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

// buildingColumns selects a building with unit stats and the owner's display
// fields. Kept as one fragment so list and get stay in sync.
const buildingColumns = `
	b.id, b.name, b.address, b.description, b.owner_id, b.created_at,
	COALESCE(us.total_units, 0), COALESCE(us.occupied_units, 0),
	COALESCE(NULLIF(TRIM(o.first_name || ' ' || o.last_name), ''), o.email, '')`

const buildingJoins = `
	LEFT JOIN (
		SELECT building_id, COUNT(*) AS total_units,
		       COUNT(*) FILTER (WHERE is_occupied) AS occupied_units
		FROM units
		GROUP BY building_id
	) us ON us.building_id = b.id
	LEFT JOIN users o ON o.id = b.owner_id`

func (s *Storage) CreateBuilding(ctx context.Context, b domain.Building) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO buildings (name, address, description, owner_id)
	VALUES ($1, $2, $3, $4)
	RETURNING id
	`, b.Name, b.Address, b.Description, b.OwnerId).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create building: %w", err)
	}
	return id, nil
}

func (s *Storage) Building(ctx context.Context, id int64) (*domain.Building, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+buildingColumns+`
	FROM buildings b`+buildingJoins+`
	WHERE b.id = $1
	`, id)

	b, err := scanBuilding(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Building not found.", StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("failed to fetch building: %w", err)
	}
	return b, nil
}

// Buildings lists buildings with their unit stats, ordered by name. A nil
// visibleIds means no visibility restriction.
func (s *Storage) Buildings(ctx context.Context, visibleIds []int64) ([]domain.Building, error) {
	query := `
	SELECT ` + buildingColumns + `
	FROM buildings b` + buildingJoins
	var args []interface{}
	if visibleIds != nil {
		query += `
	WHERE b.id = ANY($1)`
		args = append(args, pq.Array(visibleIds))
	}
	query += `
	ORDER BY b.name, b.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}
	defer rows.Close()

	var buildings []domain.Building
	for rows.Next() {
		b, err := scanBuilding(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan building: %w", err)
		}
		buildings = append(buildings, *b)
	}
	return buildings, rows.Err()
}

func scanBuilding(scan func(dest ...interface{}) error) (*domain.Building, error) {
	var b domain.Building
	err := scan(&b.Id, &b.Name, &b.Address, &b.Description, &b.OwnerId, &b.CreatedAt,
		&b.TotalUnits, &b.OccupiedUnits, &b.OwnerName)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Storage) UpdateBuilding(ctx context.Context, b domain.Building) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE buildings
	SET name = $1, address = $2, description = $3, owner_id = $4
	WHERE id = $5
	`, b.Name, b.Address, b.Description, b.OwnerId, b.Id)
	if err != nil {
		return fmt.Errorf("failed to update building: %w", err)
	}
	return requireRow(res, "Building not found.")
}

func (s *Storage) DeleteBuilding(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM buildings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete building: %w", err)
	}
	return requireRow(res, "Building not found.")
}

// BuildingSummaries returns the flat projection served by the buildings JSON
// API, ordered by name.
func (s *Storage) BuildingSummaries(ctx context.Context, visibleIds []int64) ([]api.BuildingSummary, error) {
	query := `
	SELECT id, name, address, owner_id
	FROM buildings`
	var args []interface{}
	if visibleIds != nil {
		query += `
	WHERE id = ANY($1)`
		args = append(args, pq.Array(visibleIds))
	}
	query += `
	ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list building summaries: %w", err)
	}
	defer rows.Close()

	summaries := []api.BuildingSummary{}
	for rows.Next() {
		var b api.BuildingSummary
		if err := rows.Scan(&b.Id, &b.Name, &b.Address, &b.OwnerId); err != nil {
			return nil, fmt.Errorf("failed to scan building summary: %w", err)
		}
		summaries = append(summaries, b)
	}
	return summaries, rows.Err()
}

// OwnedBuildingIds returns the ids of buildings owned by the given user.
func (s *Storage) OwnedBuildingIds(ctx context.Context, ownerId int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id
	FROM buildings
	WHERE owner_id = $1
	ORDER BY id
	`, ownerId)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned buildings: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan building id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BuildingVisible reports whether a building exists inside the caller's
// visibility scope.
func (s *Storage) BuildingVisible(ctx context.Context, id int64, visibleIds []int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM buildings WHERE id = $1`
	args := []interface{}{id}
	if visibleIds != nil {
		query += ` AND id = ANY($2)`
		args = append(args, pq.Array(visibleIds))
	}
	query += `)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check building visibility: %w", err)
	}
	return exists, nil
}

// requireRow converts a no-op write into a 404.
func requireRow(res sql.Result, message string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound}
	}
	return nil
}
