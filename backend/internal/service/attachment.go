package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/config"
	"github.com/Mecho90/BuildingManagement/shared/domain"
	"github.com/Mecho90/BuildingManagement/shared/errors"
	"github.com/Mecho90/BuildingManagement/shared/logger"
	"github.com/Mecho90/BuildingManagement/shared/middleware/metrics"
	"github.com/Mecho90/BuildingManagement/shared/utils"
	"github.com/Mecho90/BuildingManagement/shared/validation"
	"github.com/google/uuid"
)

type AttachmentService interface {
	List(ctx context.Context, access *Access, workOrderId int64) ([]api.AttachmentMetadata, error)
	Upload(ctx context.Context, access *Access, workOrderId int64, files []*multipart.FileHeader) (*api.UploadResponse, error)
	Delete(ctx context.Context, access *Access, workOrderId, attachmentId int64) error
	Open(ctx context.Context, access *Access, workOrderId, attachmentId int64) (*domain.Attachment, io.ReadCloser, error)
}

type Attachment struct {
	storage AttachmentStorage
	objects ObjectStorage
	gate    validation.Config
	apiBase string
}

type AttachmentStorage interface {
	CreateAttachment(ctx context.Context, a domain.Attachment) (int64, error)
	Attachment(ctx context.Context, id int64) (*domain.Attachment, error)
	WorkOrderAttachments(ctx context.Context, workOrderId int64) ([]domain.Attachment, error)
	DeleteAttachment(ctx context.Context, id int64) error
	WorkOrder(ctx context.Context, id int64) (*domain.WorkOrder, error)
}

func NewAttachment(storage AttachmentStorage, objects ObjectStorage, gate validation.Config, cfg *config.Public) *Attachment {
	return &Attachment{
		storage: storage,
		objects: objects,
		gate:    gate,
		apiBase: strings.TrimRight(cfg.APIBaseURL, "/"),
	}
}

var attachmentNotFound = &errors.ErrorWithStatusCode{Message: "Attachment not found.", StatusCode: http.StatusNotFound}

// viewWorkOrder resolves the owning work order, answering 404 for orders the
// caller may not see so their existence stays hidden.
func (s *Attachment) viewWorkOrder(ctx context.Context, access *Access, workOrderId int64) (*domain.WorkOrder, error) {
	w, err := s.storage.WorkOrder(ctx, workOrderId)
	if err != nil {
		return nil, err
	}
	if !access.CanViewWorkOrder(w) {
		return nil, workOrderNotFound
	}
	return w, nil
}

func (s *Attachment) manageWorkOrder(ctx context.Context, access *Access, workOrderId int64) (*domain.WorkOrder, error) {
	w, err := s.viewWorkOrder(ctx, access, workOrderId)
	if err != nil {
		return nil, err
	}
	if !access.CanManageAttachments(w) {
		return nil, forbidden
	}
	return w, nil
}

func (s *Attachment) List(ctx context.Context, access *Access, workOrderId int64) ([]api.AttachmentMetadata, error) {
	w, err := s.viewWorkOrder(ctx, access, workOrderId)
	if err != nil {
		return nil, err
	}

	attachments, err := s.storage.WorkOrderAttachments(ctx, workOrderId)
	if err != nil {
		return nil, err
	}

	canManage := access.CanManageAttachments(w)
	out := make([]api.AttachmentMetadata, 0, len(attachments))
	for i := range attachments {
		out = append(out, s.metadata(&attachments[i], canManage))
	}
	return out, nil
}

// Upload validates and stores a batch of files. Files pass or fail
// independently: the response carries accepted metadata next to per-file
// rejection reasons, and a storage failure on one file never rolls back
// another. The caller picks the response status from the mix.
func (s *Attachment) Upload(ctx context.Context, access *Access, workOrderId int64, files []*multipart.FileHeader) (*api.UploadResponse, error) {
	w, err := s.manageWorkOrder(ctx, access, workOrderId)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &errors.ErrorWithStatusCode{Message: "No files were uploaded", StatusCode: http.StatusBadRequest}
	}

	resp := &api.UploadResponse{
		Attachments: []api.AttachmentMetadata{},
		Errors:      []api.UploadError{},
	}
	for _, header := range files {
		pending, err := validation.ValidateAttachment(s.gate, header)
		if err != nil {
			metrics.AttachmentUploadsTotal.WithLabelValues("rejected").Inc()
			resp.Errors = append(resp.Errors, api.UploadError{Filename: header.Filename, Errors: []string{err.Error()}})
			continue
		}

		attachment, err := s.saveUpload(ctx, access, w.Id, pending)
		pending.Data.Close()
		if err != nil {
			logger.Log.Error("failed to store attachment",
				"work_order_id", w.Id, "filename", pending.OriginalName, "error", err.Error())
			metrics.AttachmentUploadsTotal.WithLabelValues("rejected").Inc()
			resp.Errors = append(resp.Errors, api.UploadError{Filename: header.Filename, Errors: []string{"Failed to store file, try again later"}})
			continue
		}

		metrics.AttachmentUploadsTotal.WithLabelValues("accepted").Inc()
		metrics.AttachmentUploadBytes.Observe(float64(attachment.SizeBytes))
		resp.Attachments = append(resp.Attachments, s.metadata(attachment, true))
	}
	return resp, nil
}

// saveUpload writes the object first and the metadata row second. When the
// row cannot be written the object is removed again so no orphan bytes stay
// behind; the object store tolerates double deletes, so a failed cleanup is
// only logged.
func (s *Attachment) saveUpload(ctx context.Context, access *Access, workOrderId int64, pending *domain.PendingUpload) (*domain.Attachment, error) {
	storedPath := storedPathFor(workOrderId, pending.OriginalName)
	if err := s.objects.Save(ctx, pending.Data, storedPath); err != nil {
		return nil, err
	}

	id, err := s.storage.CreateAttachment(ctx, domain.Attachment{
		WorkOrderId:  workOrderId,
		OriginalName: pending.OriginalName,
		StoredPath:   storedPath,
		ContentType:  pending.ContentType,
		SizeBytes:    pending.SizeBytes,
		ImageWidth:   pending.ImageWidth,
		ImageHeight:  pending.ImageHeight,
		UploadedBy:   &access.UserId,
	})
	if err != nil {
		if cleanupErr := s.objects.Delete(ctx, storedPath); cleanupErr != nil {
			logger.Log.Error("failed to remove orphaned object", "stored_path", storedPath, "error", cleanupErr.Error())
		}
		return nil, err
	}
	return s.storage.Attachment(ctx, id)
}

// storedPathFor builds a fresh object key. The original filename contributes
// only its extension, so path characters or collisions in user names cannot
// leak into storage.
func storedPathFor(workOrderId int64, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("work-orders/%d/%s%s", workOrderId, uuid.NewString(), ext)
}

// Delete removes the object before the metadata row. When the backend
// refuses to drop the object the row survives, so the attachment stays
// listed and the delete can be retried.
func (s *Attachment) Delete(ctx context.Context, access *Access, workOrderId, attachmentId int64) error {
	if _, err := s.manageWorkOrder(ctx, access, workOrderId); err != nil {
		return err
	}
	attachment, err := s.attachmentOf(ctx, workOrderId, attachmentId)
	if err != nil {
		return err
	}

	if err := s.objects.Delete(ctx, attachment.StoredPath); err != nil {
		metrics.AttachmentDeletesTotal.WithLabelValues("error").Inc()
		logger.Log.Error("failed to delete object", "stored_path", attachment.StoredPath, "error", err.Error())
		return &errors.ErrorWithStatusCode{Message: "Failed to delete file, try again later", StatusCode: http.StatusInternalServerError}
	}
	if err := s.storage.DeleteAttachment(ctx, attachment.Id); err != nil {
		metrics.AttachmentDeletesTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.AttachmentDeletesTotal.WithLabelValues("ok").Inc()
	return nil
}

// Open streams a stored object for callers that proxy media instead of
// linking to it.
func (s *Attachment) Open(ctx context.Context, access *Access, workOrderId, attachmentId int64) (*domain.Attachment, io.ReadCloser, error) {
	if _, err := s.viewWorkOrder(ctx, access, workOrderId); err != nil {
		return nil, nil, err
	}
	attachment, err := s.attachmentOf(ctx, workOrderId, attachmentId)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.objects.Open(ctx, attachment.StoredPath)
	if err != nil {
		return nil, nil, err
	}
	return attachment, reader, nil
}

// attachmentOf fetches an attachment and checks it belongs to the given work
// order, so ids cannot be probed across orders.
func (s *Attachment) attachmentOf(ctx context.Context, workOrderId, attachmentId int64) (*domain.Attachment, error) {
	attachment, err := s.storage.Attachment(ctx, attachmentId)
	if err != nil {
		return nil, err
	}
	if attachment.WorkOrderId != workOrderId {
		return nil, attachmentNotFound
	}
	return attachment, nil
}

func (s *Attachment) metadata(a *domain.Attachment, canManage bool) api.AttachmentMetadata {
	m := api.AttachmentMetadata{
		Id:             a.Id,
		Name:           a.OriginalName,
		Url:            s.objects.URL(a.StoredPath),
		SizeDisplay:    utils.SizeDisplay(a.SizeBytes),
		ContentType:    a.ContentType,
		Category:       a.Category(),
		IsImage:        a.IsImage(),
		Extension:      a.Extension(),
		CreatedDisplay: utils.CreatedDisplay(a.CreatedAt),
	}
	if canManage {
		m.DeleteUrl = fmt.Sprintf("%s/work-orders/%d/attachments/%d", s.apiBase, a.WorkOrderId, a.Id)
	}
	return m
}
