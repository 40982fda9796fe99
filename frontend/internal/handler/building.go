package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	frontend_domain "github.com/Mecho90/BuildingManagement/frontend/internal/domain"
	"github.com/Mecho90/BuildingManagement/shared/api"
	internal_errors "github.com/Mecho90/BuildingManagement/shared/errors"
	"github.com/Mecho90/BuildingManagement/shared/logger"
)

func (h *Handler) BuildingsGetHandler(w http.ResponseWriter, r *http.Request) {
	buildings, err := h.APIClient.GetBuildings(r)
	if err != nil {
		logger.Log.Error("getting buildings from API", "error", err)
		h.renderTemplateWithError(w, r, "buildings.html", frontend_domain.BuildingListPageData{}, "Could not load buildings. Please try again later.")
		return
	}

	data := frontend_domain.BuildingListPageData{Buildings: make([]frontend_domain.Building, len(buildings))}
	for i, b := range buildings {
		data.Buildings[i] = h.renderBuilding(b)
	}
	h.renderTemplate(w, r, "buildings.html", data)
}

func (h *Handler) BuildingGetHandler(w http.ResponseWriter, r *http.Request) {
	buildingId, ok := idParam(r, "buildingId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	building, err := h.APIClient.GetBuilding(r, buildingId)
	if err != nil {
		if e, ok := err.(*internal_errors.ErrorWithStatusCode); ok && e.StatusCode == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		logger.Log.Error("getting building from API", "error", err)
		http.Error(w, "Internal error: backend unavailable", http.StatusInternalServerError)
		return
	}

	units, err := h.APIClient.GetUnits(r, buildingId)
	if err != nil {
		logger.Log.Error("getting units from API", "buildingId", buildingId, "error", err)
		// Units are secondary content; keep the page alive with a notice.
		rendered := h.renderBuilding(*building)
		h.renderTemplateWithError(w, r, "building.html", frontend_domain.BuildingPageData{Building: &rendered}, "Could not load units.")
		return
	}

	rendered := h.renderBuilding(*building)
	h.renderTemplate(w, r, "building.html", frontend_domain.BuildingPageData{
		Building: &rendered,
		Units:    units,
	})
}

func (h *Handler) BuildingNewGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "building_form.html", frontend_domain.BuildingFormPageData{})
}

func (h *Handler) BuildingNewPostHandler(w http.ResponseWriter, r *http.Request) {
	data := api.CreateBuildingRequest{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Address:     strings.TrimSpace(r.FormValue("address")),
		Description: r.FormValue("description"),
		OwnerId:     formInt64(r, "owner_id"),
	}

	if err := h.APIClient.CreateBuilding(r, data); err != nil {
		logger.Log.Error("creating building via API", "error", err)
		h.redirectWithFlash(w, r, "/buildings/new", flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, "/buildings", flashCookieSuccess, "Building created.")
}

func (h *Handler) BuildingEditGetHandler(w http.ResponseWriter, r *http.Request) {
	buildingId, ok := idParam(r, "buildingId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	building, err := h.APIClient.GetBuilding(r, buildingId)
	if err != nil {
		if e, ok := err.(*internal_errors.ErrorWithStatusCode); ok && e.StatusCode == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		logger.Log.Error("getting building from API", "error", err)
		http.Error(w, "Internal error: backend unavailable", http.StatusInternalServerError)
		return
	}

	h.renderTemplate(w, r, "building_form.html", frontend_domain.BuildingFormPageData{Building: building})
}

func (h *Handler) BuildingEditPostHandler(w http.ResponseWriter, r *http.Request) {
	buildingId, ok := idParam(r, "buildingId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	targetURL := fmt.Sprintf("/buildings/%d", buildingId)

	data := api.UpdateBuildingRequest{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Address:     strings.TrimSpace(r.FormValue("address")),
		Description: r.FormValue("description"),
		OwnerId:     formInt64(r, "owner_id"),
	}

	if err := h.APIClient.UpdateBuilding(r, buildingId, data); err != nil {
		logger.Log.Error("updating building via API", "buildingId", buildingId, "error", err)
		h.redirectWithFlash(w, r, targetURL+"/edit", flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, targetURL, flashCookieSuccess, "Building updated.")
}

func (h *Handler) BuildingDeleteHandler(w http.ResponseWriter, r *http.Request) {
	buildingId, ok := idParam(r, "buildingId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.APIClient.DeleteBuilding(r, buildingId); err != nil {
		logger.Log.Error("deleting building via API", "buildingId", buildingId, "error", err)
		h.redirectWithFlash(w, r, fmt.Sprintf("/buildings/%d", buildingId), flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, "/buildings", flashCookieSuccess, "Building deleted.")
}

// === Units ===

func (h *Handler) UnitNewGetHandler(w http.ResponseWriter, r *http.Request) {
	buildingId, ok := idParam(r, "buildingId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	building, err := h.APIClient.GetBuilding(r, buildingId)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	h.renderTemplate(w, r, "unit_form.html", frontend_domain.UnitFormPageData{
		BuildingId:   buildingId,
		BuildingName: building.Name,
	})
}

func (h *Handler) UnitNewPostHandler(w http.ResponseWriter, r *http.Request) {
	buildingId, ok := idParam(r, "buildingId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	targetURL := fmt.Sprintf("/buildings/%d", buildingId)

	data, err := unitRequestFromForm(r)
	if err != nil {
		h.redirectWithFlash(w, r, targetURL+"/units/new", flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	if err := h.APIClient.CreateUnit(r, buildingId, data); err != nil {
		logger.Log.Error("creating unit via API", "buildingId", buildingId, "error", err)
		h.redirectWithFlash(w, r, targetURL+"/units/new", flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, targetURL, flashCookieSuccess, "Unit created.")
}

func (h *Handler) UnitEditGetHandler(w http.ResponseWriter, r *http.Request) {
	buildingId, unit, ok := h.unitFromPath(w, r)
	if !ok {
		return
	}

	building, err := h.APIClient.GetBuilding(r, buildingId)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	h.renderTemplate(w, r, "unit_form.html", frontend_domain.UnitFormPageData{
		BuildingId:   buildingId,
		BuildingName: building.Name,
		Unit:         unit,
	})
}

func (h *Handler) UnitEditPostHandler(w http.ResponseWriter, r *http.Request) {
	buildingId, ok := idParam(r, "buildingId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	unitId, ok := idParam(r, "unitId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	targetURL := fmt.Sprintf("/buildings/%d", buildingId)

	data, err := unitRequestFromForm(r)
	if err != nil {
		h.redirectWithFlash(w, r, fmt.Sprintf("%s/units/%d/edit", targetURL, unitId), flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	if err := h.APIClient.UpdateUnit(r, unitId, api.UpdateUnitRequest(data)); err != nil {
		logger.Log.Error("updating unit via API", "unitId", unitId, "error", err)
		h.redirectWithFlash(w, r, fmt.Sprintf("%s/units/%d/edit", targetURL, unitId), flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, targetURL, flashCookieSuccess, "Unit updated.")
}

func (h *Handler) UnitDeleteHandler(w http.ResponseWriter, r *http.Request) {
	buildingId, ok := idParam(r, "buildingId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	unitId, ok := idParam(r, "unitId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	targetURL := fmt.Sprintf("/buildings/%d", buildingId)

	if err := h.APIClient.DeleteUnit(r, unitId); err != nil {
		logger.Log.Error("deleting unit via API", "unitId", unitId, "error", err)
		h.redirectWithFlash(w, r, targetURL, flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, targetURL, flashCookieSuccess, "Unit deleted.")
}

// === Tenants ===

func (h *Handler) TenantGetHandler(w http.ResponseWriter, r *http.Request) {
	_, unit, ok := h.unitFromPath(w, r)
	if !ok {
		return
	}

	h.renderTemplate(w, r, "tenant_form.html", frontend_domain.TenantFormPageData{Unit: *unit})
}

func (h *Handler) TenantPostHandler(w http.ResponseWriter, r *http.Request) {
	buildingId, ok := idParam(r, "buildingId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	unitId, ok := idParam(r, "unitId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	targetURL := fmt.Sprintf("/buildings/%d", buildingId)

	data := api.SetTenantRequest{
		FullName: strings.TrimSpace(r.FormValue("full_name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
	}

	if err := h.APIClient.SetTenant(r, unitId, data); err != nil {
		logger.Log.Error("assigning tenant via API", "unitId", unitId, "error", err)
		h.redirectWithFlash(w, r, fmt.Sprintf("%s/units/%d/tenant", targetURL, unitId), flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, targetURL, flashCookieSuccess, "Tenant assigned.")
}

func (h *Handler) TenantRemoveHandler(w http.ResponseWriter, r *http.Request) {
	buildingId, ok := idParam(r, "buildingId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	unitId, ok := idParam(r, "unitId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	targetURL := fmt.Sprintf("/buildings/%d", buildingId)

	if err := h.APIClient.RemoveTenant(r, unitId); err != nil {
		logger.Log.Error("removing tenant via API", "unitId", unitId, "error", err)
		h.redirectWithFlash(w, r, targetURL, flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, targetURL, flashCookieSuccess, "Tenant removed.")
}

// unitFromPath loads the unit named by the route, scoped to its building.
// The API has no single-unit read, so it filters the building's unit list.
func (h *Handler) unitFromPath(w http.ResponseWriter, r *http.Request) (int64, *api.UnitResponse, bool) {
	buildingId, ok := idParam(r, "buildingId")
	if !ok {
		http.NotFound(w, r)
		return 0, nil, false
	}
	unitId, ok := idParam(r, "unitId")
	if !ok {
		http.NotFound(w, r)
		return 0, nil, false
	}

	units, err := h.APIClient.GetUnits(r, buildingId)
	if err != nil {
		logger.Log.Error("getting units from API", "buildingId", buildingId, "error", err)
		http.Error(w, "Internal error: backend unavailable", http.StatusInternalServerError)
		return 0, nil, false
	}

	for i := range units {
		if units[i].Id == unitId {
			return buildingId, &units[i], true
		}
	}
	http.NotFound(w, r)
	return 0, nil, false
}

// unitForm is the shared field set of the create and update unit DTOs.
type unitForm = api.CreateUnitRequest

func unitRequestFromForm(r *http.Request) (unitForm, error) {
	number := strings.TrimSpace(r.FormValue("number"))
	if number == "" {
		return unitForm{}, fmt.Errorf("unit number is required")
	}

	floor := 0
	if raw := strings.TrimSpace(r.FormValue("floor")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return unitForm{}, fmt.Errorf("floor must be a number")
		}
		floor = parsed
	}

	return unitForm{
		Number:      number,
		Floor:       floor,
		IsOccupied:  r.FormValue("is_occupied") == "on",
		Description: r.FormValue("description"),
	}, nil
}
