package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	frontend_domain "github.com/Mecho90/BuildingManagement/frontend/internal/domain"
	"github.com/Mecho90/BuildingManagement/shared/api"
)

// idParam parses a route parameter as a positive int64.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// formInt64 parses an optional numeric form value; empty or invalid yields nil.
func formInt64(r *http.Request, name string) *int64 {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// safeNext validates a post-action redirect target. Only same-origin paths
// are honored so the parameter cannot become an open redirect.
func safeNext(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return fallback
	}
	return raw
}

// renderBuilding transforms an API building into its view model.
func (h *Handler) renderBuilding(b api.BuildingResponse) frontend_domain.Building {
	return frontend_domain.Building{
		BuildingResponse: b,
		DescriptionHTML:  h.Markdown.Render(b.Description),
	}
}

func (h *Handler) renderWorkOrder(o api.WorkOrderResponse) frontend_domain.WorkOrder {
	return frontend_domain.WorkOrder{
		WorkOrderResponse: o,
		DescriptionHTML:   h.Markdown.Render(o.Description),
	}
}
