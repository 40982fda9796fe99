package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/Mecho90/BuildingManagement/shared/domain"
	internal_errors "github.com/Mecho90/BuildingManagement/shared/errors"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *Storage) SaveUser(ctx context.Context, user domain.User) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO users (email, pass_hash, first_name, last_name, is_admin)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`, user.Email, user.PassHash, user.FirstName, user.LastName, user.Admin).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &internal_errors.ErrorWithStatusCode{Message: "User with this email already exists", StatusCode: http.StatusConflict}
		}
		return 0, fmt.Errorf("failed to save user: %w", err)
	}
	return id, nil
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
	SELECT id, email, pass_hash, first_name, last_name, is_admin, created_at
	FROM users
	WHERE email = $1 AND is_active
	`, email))
}

func (s *Storage) UserById(ctx context.Context, id int64) (domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
	SELECT id, email, pass_hash, first_name, last_name, is_admin, created_at
	FROM users
	WHERE id = $1 AND is_active
	`, id))
}

func (s *Storage) scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.Id, &u.Email, &u.PassHash, &u.FirstName, &u.LastName, &u.Admin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.User{}, fmt.Errorf("failed to fetch user: %w", err)
	}
	return u, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRow(res, "User not found")
}

// ActiveUsers returns every active account, the population the notification
// sync walks.
func (s *Storage) ActiveUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, email, pass_hash, first_name, last_name, is_admin, created_at
	FROM users
	WHERE is_active
	ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Id, &u.Email, &u.PassHash, &u.FirstName, &u.LastName, &u.Admin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UsersByIds returns the given users ordered by name, for the owner filter
// choices on the work order list.
func (s *Storage) UsersByIds(ctx context.Context, ids []int64) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, email, pass_hash, first_name, last_name, is_admin, created_at
	FROM users
	WHERE id = ANY($1)
	ORDER BY first_name, last_name, email
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Id, &u.Email, &u.PassHash, &u.FirstName, &u.LastName, &u.Admin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
