package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/Mecho90/BuildingManagement/shared/logger"

	frontend_domain "github.com/Mecho90/BuildingManagement/frontend/internal/domain"
	"github.com/Mecho90/BuildingManagement/frontend/internal/middleware"
	"github.com/Mecho90/BuildingManagement/shared/api"
	mw "github.com/Mecho90/BuildingManagement/shared/middleware"
)

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common frontend_domain.CommonTemplateData
}

// initCommonTemplateData assembles the fields every page template expects:
// the signed-in user, the CSRF token for forms, form limits, and any one-shot
// flash messages left by a previous redirect (consumed here).
func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request) frontend_domain.CommonTemplateData {
	return frontend_domain.CommonTemplateData{
		Error:            h.consumeFlash(w, r, flashCookieError),
		Success:          h.consumeFlash(w, r, flashCookieSuccess),
		EmailPlaceholder: h.consumeFlash(w, r, emailPrefillCookie),
		User:             mw.GetUserFromContext(r),
		CSRFToken:        middleware.GetCSRFTokenFromContext(r),
		Validation: frontend_domain.ValidationData{
			BuildingNameMaxLen:        api.BuildingNameMaxLen,
			AddressMaxLen:             api.AddressMaxLen,
			UnitNumberMaxLen:          api.UnitNumberMaxLen,
			WorkOrderTitleMaxLen:      api.WorkOrderTitleMaxLen,
			MaxAttachmentSizeBytes:    h.Public.Attachments.MaxSizeBytes,
			AllowedAttachmentTypes:    h.Public.Attachments.AllowedTypes,
			AllowedAttachmentPrefixes: h.Public.Attachments.AllowedPrefixes,
		},
	}
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	h.renderTemplateWithError(w, r, name, data, "")
}

func (h *Handler) renderTemplateWithError(w http.ResponseWriter, r *http.Request, name string, data any, errMsg string) {
	tmpl, ok := h.getTemplate(name)
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	common := h.initCommonTemplateData(w, r)
	if errMsg != "" {
		common.Error = errMsg
	}

	wrapped := TemplateData{
		Data:   data,
		Common: common,
	}

	// Pages vary by session cookie and carry flash state, so shared caches
	// must revalidate every time.
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Vary", "Cookie")

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, wrapped); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	_, _ = buf.WriteTo(w)
}
