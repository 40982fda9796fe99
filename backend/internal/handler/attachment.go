package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/errors"
	"github.com/Mecho90/BuildingManagement/shared/logger"
	"github.com/Mecho90/BuildingManagement/shared/utils"
	"github.com/Mecho90/BuildingManagement/shared/validation"
)

// uploadFilesField is the multipart field carrying the selected files.
const uploadFilesField = "files"

func (h *Handler) GetAttachments(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	workOrderId, err := idParam(r, "workOrderId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	attachments, err := h.attachments.List(r.Context(), access, workOrderId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string][]api.AttachmentMetadata{"attachments": attachments})
}

// UploadAttachments accepts a multipart batch. Files pass or fail the
// validation gate independently; the response reconciles both sides and the
// status is 201 when at least one file was stored, 400 when none were.
func (h *Handler) UploadAttachments(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	workOrderId, err := idParam(r, "workOrderId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := validation.ValidateAndParseMultipart(r, w, h.cfg.Public.Attachments.MaxRequestBytes); err != nil {
		maxMB := float64(h.cfg.Public.Attachments.MaxRequestBytes) / (1 << 20)
		utils.WriteErrorAndStatusCode(w, &errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("Upload too large. The request may not exceed %.0f MB.", maxMB),
			StatusCode: http.StatusRequestEntityTooLarge,
		})
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[uploadFilesField]
	if len(files) == 0 {
		utils.WriteErrorAndStatusCode(w, &errors.ErrorWithStatusCode{
			Message:    "No files were provided.",
			StatusCode: http.StatusBadRequest,
		})
		return
	}

	resp, err := h.attachments.Upload(r.Context(), access, workOrderId, files)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	status := http.StatusCreated
	if len(resp.Attachments) == 0 {
		status = http.StatusBadRequest
	}
	utils.WriteJSON(w, status, resp)
}

func (h *Handler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	workOrderId, err := idParam(r, "workOrderId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	attachmentId, err := idParam(r, "attachmentId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.attachments.Delete(r.Context(), access, workOrderId, attachmentId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Attachment deleted."})
}

// GetAttachmentContent streams the stored object. The frontend proxies this
// for same-origin document previews; direct media links bypass it.
func (h *Handler) GetAttachmentContent(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	workOrderId, err := idParam(r, "workOrderId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	attachmentId, err := idParam(r, "attachmentId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	attachment, reader, err := h.attachments.Open(r.Context(), access, workOrderId, attachmentId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(attachment.SizeBytes, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", attachment.OriginalName))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, reader); err != nil {
		logger.Log.Error("streaming attachment content", "attachment_id", attachmentId, "error", err)
	}
}
