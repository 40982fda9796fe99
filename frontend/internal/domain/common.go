package frontend_domain

import "github.com/Mecho90/BuildingManagement/shared/domain"

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Error            string
	Success          string
	User             *domain.User
	Validation       ValidationData
	CSRFToken        string // CSRF token for form submissions
	EmailPlaceholder string // Pre-filled email for the login form (from cookie, not URL)
}

// ValidationData holds all validation constants needed by templates.
// This provides a single source of truth for form limits across all handlers.
type ValidationData struct {
	// Building/unit forms
	BuildingNameMaxLen int
	AddressMaxLen      int
	UnitNumberMaxLen   int

	// Work order forms
	WorkOrderTitleMaxLen int

	// Attachment upload hints rendered next to the file picker
	MaxAttachmentSizeBytes    int64
	AllowedAttachmentTypes    []string
	AllowedAttachmentPrefixes []string
}
