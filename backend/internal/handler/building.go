package handler

import (
	"net/http"
	"strconv"

	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/domain"
	"github.com/Mecho90/BuildingManagement/shared/errors"
	"github.com/Mecho90/BuildingManagement/shared/utils"
)

func (h *Handler) GetBuildings(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	buildings, err := h.buildings.Buildings(r.Context(), access)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := api.BuildingListResponse{Buildings: make([]api.BuildingResponse, len(buildings))}
	for i, b := range buildings {
		resp.Buildings[i] = buildingResponse(b)
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetBuilding(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := idParam(r, "buildingId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	building, err := h.buildings.Building(r.Context(), access, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, buildingResponse(*building))
}

func (h *Handler) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.CreateBuildingRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	id, err := h.buildings.Create(r.Context(), access, domain.Building{
		Name:        body.Name,
		Address:     body.Address,
		Description: body.Description,
		OwnerId:     body.OwnerId,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) UpdateBuilding(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := idParam(r, "buildingId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.UpdateBuildingRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	err = h.buildings.Update(r.Context(), access, domain.Building{
		Id:          id,
		Name:        body.Name,
		Address:     body.Address,
		Description: body.Description,
		OwnerId:     body.OwnerId,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) DeleteBuilding(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := idParam(r, "buildingId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.buildings.Delete(r.Context(), access, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetBuildingChoices returns the slim projection that populates building
// dropdowns in forms.
func (h *Handler) GetBuildingChoices(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	summaries, err := h.buildings.Summaries(r.Context(), access)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if summaries == nil {
		summaries = []api.BuildingSummary{}
	}
	utils.WriteJSON(w, http.StatusOK, api.BuildingChoicesResponse{Buildings: summaries})
}

func (h *Handler) GetUnits(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	buildingId, err := idParam(r, "buildingId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	units, err := h.buildings.Units(r.Context(), access, buildingId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := api.UnitListResponse{Units: make([]api.UnitResponse, len(units))}
	for i, u := range units {
		resp.Units[i] = unitResponse(u)
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	buildingId, err := idParam(r, "buildingId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.CreateUnitRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	id, err := h.buildings.CreateUnit(r.Context(), access, domain.Unit{
		BuildingId:  buildingId,
		Number:      body.Number,
		Floor:       body.Floor,
		IsOccupied:  body.IsOccupied,
		Description: body.Description,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := idParam(r, "unitId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.UpdateUnitRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	err = h.buildings.UpdateUnit(r.Context(), access, domain.Unit{
		Id:          id,
		Number:      body.Number,
		Floor:       body.Floor,
		IsOccupied:  body.IsOccupied,
		Description: body.Description,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := idParam(r, "unitId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.buildings.DeleteUnit(r.Context(), access, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetUnitChoices returns unit summaries, optionally narrowed to one building
// via the ?building query parameter. Work order forms use it to populate the
// unit dropdown after a building is picked.
func (h *Handler) GetUnitChoices(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var buildingId *int64
	if raw := r.URL.Query().Get("building"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			utils.WriteErrorAndStatusCode(w, &errors.ErrorWithStatusCode{
				Message:    "invalid building: must be a positive integer",
				StatusCode: http.StatusBadRequest,
			})
			return
		}
		buildingId = &id
	}

	units, err := h.buildings.UnitSummaries(r.Context(), access, buildingId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if units == nil {
		units = []api.UnitSummary{}
	}
	utils.WriteJSON(w, http.StatusOK, api.UnitChoicesResponse{Units: units})
}

func (h *Handler) SetTenant(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	unitId, err := idParam(r, "unitId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.SetTenantRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	err = h.buildings.SetTenant(r.Context(), access, domain.Tenant{
		UnitId:   unitId,
		FullName: body.FullName,
		Email:    body.Email,
		Phone:    body.Phone,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) RemoveTenant(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	unitId, err := idParam(r, "unitId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.buildings.RemoveTenant(r.Context(), access, unitId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func buildingResponse(b domain.Building) api.BuildingResponse {
	return api.BuildingResponse{
		Id:            b.Id,
		Name:          b.Name,
		Address:       b.Address,
		Description:   b.Description,
		OwnerId:       b.OwnerId,
		OwnerName:     b.OwnerName,
		TotalUnits:    b.TotalUnits,
		OccupiedUnits: b.OccupiedUnits,
		VacantUnits:   b.VacantUnits(),
		CreatedAt:     utils.CreatedDisplay(b.CreatedAt),
	}
}

func unitResponse(u domain.Unit) api.UnitResponse {
	resp := api.UnitResponse{
		Id:          u.Id,
		BuildingId:  u.BuildingId,
		Number:      u.Number,
		Floor:       u.Floor,
		IsOccupied:  u.IsOccupied,
		Description: u.Description,
	}
	if u.Tenant != nil {
		resp.Tenant = &api.TenantResponse{
			Id:       u.Tenant.Id,
			FullName: u.Tenant.FullName,
			Email:    u.Tenant.Email,
			Phone:    u.Tenant.Phone,
		}
	}
	return resp
}
