package handler

import (
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/logger"
	"github.com/Mecho90/BuildingManagement/shared/utils"
)

// uploadFilesField is the multipart field carrying the selected files, shared
// with the upload form template.
const uploadFilesField = "files"

// AttachmentsGetHandler feeds gallery refreshes with the same JSON the
// backend serves, with manage links pointed at this origin.
func (h *Handler) AttachmentsGetHandler(w http.ResponseWriter, r *http.Request) {
	workOrderId, ok := idParam(r, "workOrderId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	attachments, err := h.APIClient.GetAttachments(r, workOrderId)
	if err != nil {
		logger.Log.Error("relaying attachment list", "workOrderId", workOrderId, "error", err)
		http.Error(w, "Internal error: backend unavailable", http.StatusInternalServerError)
		return
	}

	rewriteDeleteUrls(workOrderId, attachments)
	utils.WriteJSON(w, http.StatusOK, map[string][]api.AttachmentMetadata{"attachments": attachments})
}

// AttachmentsUploadHandler relays a multipart batch to the backend. Requests
// authenticated by the CSRF header arrive with an unread body and stream
// through untouched. Plain form posts were already parsed for the token, so
// the batch is re-encoded from the parsed form and the outcome becomes a
// flash message instead of JSON.
func (h *Handler) AttachmentsUploadHandler(w http.ResponseWriter, r *http.Request) {
	workOrderId, ok := idParam(r, "workOrderId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if r.MultipartForm != nil {
		h.uploadFromForm(w, r, workOrderId)
		return
	}

	resp, err := h.APIClient.UploadAttachments(r, workOrderId, r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		logger.Log.Error("relaying upload", "workOrderId", workOrderId, "error", err)
		http.Error(w, "Internal error: backend unavailable", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	h.relayUploadResponse(w, resp, workOrderId)
}

func (h *Handler) uploadFromForm(w http.ResponseWriter, r *http.Request, workOrderId int64) {
	targetURL := safeNext(r.FormValue("next"), fmt.Sprintf("/work-orders/%d", workOrderId))
	files := r.MultipartForm.File[uploadFilesField]

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		err := encodeFiles(form, files)
		pw.CloseWithError(err)
	}()

	resp, err := h.APIClient.UploadAttachments(r, workOrderId, form.FormDataContentType(), pr)
	if err != nil {
		logger.Log.Error("relaying form upload", "workOrderId", workOrderId, "error", err)
		h.redirectWithFlash(w, r, targetURL, flashCookieError, "Internal error: backend unavailable.")
		return
	}
	defer resp.Body.Close()

	if !isJSON(resp) {
		body, _ := io.ReadAll(resp.Body)
		h.redirectWithFlash(w, r, targetURL, flashCookieError, template.HTMLEscapeString(strings.TrimSpace(string(body))))
		return
	}

	var up api.UploadResponse
	if err := utils.Decode(resp.Body, &up); err != nil {
		logger.Log.Error("decoding upload response", "workOrderId", workOrderId, "error", err)
		h.redirectWithFlash(w, r, targetURL, flashCookieError, "Internal error: backend unavailable.")
		return
	}

	if len(up.Attachments) > 0 {
		noun := "attachment"
		if len(up.Attachments) > 1 {
			noun = "attachments"
		}
		h.setFlash(w, flashCookieSuccess, fmt.Sprintf("Uploaded %d %s.", len(up.Attachments), noun))
	}
	if len(up.Errors) > 0 {
		h.setFlash(w, flashCookieError, template.HTMLEscapeString(rejectionSummary(up.Errors)))
	}
	http.Redirect(w, r, targetURL, http.StatusSeeOther)
}

// encodeFiles rebuilds the multipart body part by part, keeping each file's
// original headers so the validation gate sees what the browser sent.
func encodeFiles(form *multipart.Writer, files []*multipart.FileHeader) error {
	for _, fh := range files {
		part, err := form.CreatePart(fh.Header)
		if err != nil {
			return err
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		_, err = io.Copy(part, f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return form.Close()
}

func rejectionSummary(uploadErrors []api.UploadError) string {
	parts := make([]string, len(uploadErrors))
	for i, e := range uploadErrors {
		parts[i] = fmt.Sprintf("%s: %s", e.Filename, strings.Join(e.Errors, " "))
	}
	return strings.Join(parts, " ")
}

func (h *Handler) relayUploadResponse(w http.ResponseWriter, resp *http.Response, workOrderId int64) {
	if !isJSON(resp) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			logger.Log.Error("relaying upload response", "workOrderId", workOrderId, "error", err)
		}
		return
	}

	var up api.UploadResponse
	if err := utils.Decode(resp.Body, &up); err != nil {
		logger.Log.Error("decoding upload response", "workOrderId", workOrderId, "error", err)
		http.Error(w, "Internal error: backend unavailable", http.StatusInternalServerError)
		return
	}
	rewriteDeleteUrls(workOrderId, up.Attachments)
	utils.WriteJSON(w, resp.StatusCode, up)
}

// AttachmentDeleteHandler relays a widget-issued delete, passing the
// backend's verdict straight back.
func (h *Handler) AttachmentDeleteHandler(w http.ResponseWriter, r *http.Request) {
	workOrderId, ok := idParam(r, "workOrderId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	attachmentId, ok := idParam(r, "attachmentId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	resp, err := h.APIClient.DeleteAttachment(r, workOrderId, attachmentId)
	if err != nil {
		logger.Log.Error("relaying attachment delete", "attachmentId", attachmentId, "error", err)
		http.Error(w, "Internal error: backend unavailable", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.Log.Error("relaying delete response", "attachmentId", attachmentId, "error", err)
	}
}

// AttachmentDeleteFormHandler is the no-script variant of delete: same relay,
// but the outcome lands in a flash message on the work order page.
func (h *Handler) AttachmentDeleteFormHandler(w http.ResponseWriter, r *http.Request) {
	workOrderId, ok := idParam(r, "workOrderId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	attachmentId, ok := idParam(r, "attachmentId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	targetURL := safeNext(r.FormValue("next"), fmt.Sprintf("/work-orders/%d", workOrderId))

	resp, err := h.APIClient.DeleteAttachment(r, workOrderId, attachmentId)
	if err != nil {
		logger.Log.Error("relaying attachment delete", "attachmentId", attachmentId, "error", err)
		h.redirectWithFlash(w, r, targetURL, flashCookieError, "Internal error: backend unavailable.")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("Backend returned status %d.", resp.StatusCode)
		}
		h.redirectWithFlash(w, r, targetURL, flashCookieError, template.HTMLEscapeString(msg))
		return
	}

	h.redirectWithFlash(w, r, targetURL, flashCookieSuccess, "Attachment deleted.")
}

// AttachmentPreviewHandler streams attachment bytes through the backend's
// authorization check so the document modal can embed them same-origin.
func (h *Handler) AttachmentPreviewHandler(w http.ResponseWriter, r *http.Request) {
	workOrderId, ok := idParam(r, "workOrderId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	attachmentId, ok := idParam(r, "attachmentId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	resp, err := h.APIClient.OpenAttachment(r, workOrderId, attachmentId)
	if err != nil {
		logger.Log.Error("relaying attachment content", "attachmentId", attachmentId, "error", err)
		http.Error(w, "Internal error: backend unavailable", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		http.Error(w, strings.TrimSpace(string(body)), resp.StatusCode)
		return
	}

	for _, header := range []string{"Content-Type", "Content-Length", "Content-Disposition", "X-Content-Type-Options"} {
		if v := resp.Header.Get(header); v != "" {
			w.Header().Set(header, v)
		}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.Log.Error("streaming attachment content", "attachmentId", attachmentId, "error", err)
	}
}

func rewriteDeleteUrls(workOrderId int64, attachments []api.AttachmentMetadata) {
	for i := range attachments {
		if attachments[i].DeleteUrl != "" {
			attachments[i].DeleteUrl = fmt.Sprintf("/work-orders/%d/attachments/%d", workOrderId, attachments[i].Id)
		}
	}
}

func isJSON(resp *http.Response) bool {
	return strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json")
}
