package pg

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Mecho90/BuildingManagement/shared/domain"
	internal_errors "github.com/Mecho90/BuildingManagement/shared/errors"
)

func (s *Storage) AddMembership(ctx context.Context, m domain.Membership) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO memberships (user_id, building_id, role)
	VALUES ($1, $2, $3)
	RETURNING id
	`, m.UserId, m.BuildingId, m.Role).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &internal_errors.ErrorWithStatusCode{Message: "User already has a membership for this scope", StatusCode: http.StatusConflict}
		}
		return 0, fmt.Errorf("failed to create membership: %w", err)
	}
	return id, nil
}

// MembershipsByUser returns every membership a user holds, global ones first.
func (s *Storage) MembershipsByUser(ctx context.Context, userId int64) ([]domain.Membership, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, user_id, building_id, role, created_at
	FROM memberships
	WHERE user_id = $1
	ORDER BY building_id NULLS FIRST, id
	`, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.Id, &m.UserId, &m.BuildingId, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (s *Storage) DeleteMembership(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return requireRow(res, "Membership not found")
}
