package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/Mecho90/BuildingManagement/shared/domain"
	internal_errors "github.com/Mecho90/BuildingManagement/shared/errors"
)

const attachmentColumns = `
	a.id, a.work_order_id, a.original_name, a.stored_path, a.content_type,
	a.size_bytes, a.image_width, a.image_height, a.uploaded_by, a.created_at`

func (s *Storage) CreateAttachment(ctx context.Context, a domain.Attachment) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO attachments (work_order_id, original_name, stored_path, content_type, size_bytes, image_width, image_height, uploaded_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
	`, a.WorkOrderId, a.OriginalName, a.StoredPath, a.ContentType, a.SizeBytes, a.ImageWidth, a.ImageHeight, a.UploadedBy).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &internal_errors.ErrorWithStatusCode{Message: "Attachment with this stored path already exists", StatusCode: http.StatusConflict}
		}
		return 0, fmt.Errorf("failed to create attachment: %w", err)
	}
	return id, nil
}

func (s *Storage) Attachment(ctx context.Context, id int64) (*domain.Attachment, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+attachmentColumns+`
	FROM attachments a
	WHERE a.id = $1
	`, id)

	a, err := scanAttachment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Attachment not found.", StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("failed to fetch attachment: %w", err)
	}
	return a, nil
}

// WorkOrderAttachments lists a work order's attachments newest first.
func (s *Storage) WorkOrderAttachments(ctx context.Context, workOrderId int64) ([]domain.Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT `+attachmentColumns+`
	FROM attachments a
	WHERE a.work_order_id = $1
	ORDER BY a.created_at DESC, a.id DESC
	`, workOrderId)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []domain.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, *a)
	}
	return attachments, rows.Err()
}

// AttachmentStoredPaths lists every stored path the metadata still
// references, for the orphan sweeper.
func (s *Storage) AttachmentStoredPaths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT stored_path FROM attachments`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan stored path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *Storage) DeleteAttachment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return requireRow(res, "Attachment not found.")
}

func scanAttachment(scan func(dest ...interface{}) error) (*domain.Attachment, error) {
	var a domain.Attachment
	var width, height sql.NullInt64
	var uploadedBy sql.NullInt64

	err := scan(&a.Id, &a.WorkOrderId, &a.OriginalName, &a.StoredPath, &a.ContentType,
		&a.SizeBytes, &width, &height, &uploadedBy, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	if width.Valid {
		w := int(width.Int64)
		a.ImageWidth = &w
	}
	if height.Valid {
		h := int(height.Int64)
		a.ImageHeight = &h
	}
	if uploadedBy.Valid {
		a.UploadedBy = &uploadedBy.Int64
	}
	return &a, nil
}
