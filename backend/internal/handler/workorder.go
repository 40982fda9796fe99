package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Mecho90/BuildingManagement/backend/internal/service"
	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/domain"
	"github.com/Mecho90/BuildingManagement/shared/errors"
	"github.com/Mecho90/BuildingManagement/shared/utils"
)

const dateLayout = "2006-01-02"

func (h *Handler) GetWorkOrders(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	query, err := listQueryFromRequest(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	orders, total, err := h.workOrders.List(r.Context(), access, query)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	perPage := query.PerPage
	if perPage <= 0 {
		perPage = h.cfg.Public.WorkOrdersPerPage
	}
	pageCount := (total + perPage - 1) / perPage
	if pageCount == 0 {
		pageCount = 1
	}

	resp := api.WorkOrderListResponse{
		WorkOrders: make([]api.WorkOrderResponse, len(orders)),
		Total:      total,
		Page:       query.Page,
		PageCount:  pageCount,
	}
	for i, o := range orders {
		resp.WorkOrders[i] = workOrderResponse(o)
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetWorkOrder(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := idParam(r, "workOrderId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	order, err := h.workOrders.Get(r.Context(), access, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := workOrderResponse(*order)
	resp.CanManageAttachments = access.CanManageAttachments(order)
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateWorkOrder(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.CreateWorkOrderRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	deadline, err := parseDate(body.Deadline)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	order := domain.WorkOrder{
		BuildingId:  body.BuildingId,
		UnitId:      body.UnitId,
		Title:       body.Title,
		Description: body.Description,
		Priority:    domain.WorkOrderPriority(body.Priority),
		Deadline:    deadline,
	}
	id, err := h.workOrders.Create(r.Context(), access, order)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) UpdateWorkOrder(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := idParam(r, "workOrderId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.UpdateWorkOrderRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	deadline, err := parseDate(body.Deadline)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	order := domain.WorkOrder{
		Id:          id,
		UnitId:      body.UnitId,
		Title:       body.Title,
		Description: body.Description,
		Status:      domain.WorkOrderStatus(body.Status),
		Priority:    domain.WorkOrderPriority(body.Priority),
		Deadline:    deadline,
	}
	if err := h.workOrders.Update(r.Context(), access, order); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) DeleteWorkOrder(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := idParam(r, "workOrderId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.workOrders.Delete(r.Context(), access, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ArchiveWorkOrder(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := idParam(r, "workOrderId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.workOrders.Archive(r.Context(), access, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) MassAssignWorkOrders(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.MassAssignRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	deadline, err := parseDate(body.Deadline)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	created, skipped, err := h.workOrders.MassAssign(r.Context(), access, body.BuildingIds, body.Title, body.Description, deadline)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.MassAssignResponse{Created: created, Skipped: skipped})
}

// GetOwnerChoices returns the distinct building owners of visible work
// orders, for the list page's owner filter.
func (h *Handler) GetOwnerChoices(w http.ResponseWriter, r *http.Request) {
	access, err := h.access(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	owners, err := h.workOrders.OwnerChoices(r.Context(), access)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := api.OwnerChoicesResponse{Owners: make([]api.OwnerChoice, len(owners))}
	for i, owner := range owners {
		resp.Owners[i] = api.OwnerChoice{Id: owner.Id, Name: owner.FullName()}
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// listQueryFromRequest reads the list filters. Unknown values are passed
// through; the service sanitizes them to defaults rather than erroring, so
// a stale filter link never breaks the page.
func listQueryFromRequest(r *http.Request) (service.WorkOrderListQuery, error) {
	q := service.WorkOrderListQuery{
		Search:   r.URL.Query().Get("q"),
		Status:   r.URL.Query().Get("status"),
		Sort:     r.URL.Query().Get("sort"),
		Archived: r.URL.Query().Get("archived") == "1",
		Page:     1,
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return q, &errors.ErrorWithStatusCode{Message: "invalid page: must be an integer", StatusCode: http.StatusBadRequest}
		}
		q.Page = page
	}
	if raw := r.URL.Query().Get("owner"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			q.OwnerId = &id
		}
	}
	if raw := r.URL.Query().Get("building"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			q.BuildingId = &id
		}
	}
	return q, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, &errors.ErrorWithStatusCode{
			Message:    "invalid date: must be YYYY-MM-DD",
			StatusCode: http.StatusBadRequest,
		}
	}
	return &t, nil
}

func workOrderResponse(o domain.WorkOrder) api.WorkOrderResponse {
	resp := api.WorkOrderResponse{
		Id:              o.Id,
		BuildingId:      o.BuildingId,
		BuildingName:    o.BuildingName,
		UnitId:          o.UnitId,
		UnitNumber:      o.UnitNumber,
		Title:           o.Title,
		Description:     o.Description,
		Status:          string(o.Status),
		Priority:        string(o.Priority),
		MassAssigned:    o.MassAssigned,
		Archived:        o.Archived(),
		AttachmentCount: o.AttachmentCount,
		CreatedAt:       utils.CreatedDisplay(o.CreatedAt),
	}
	if o.Deadline != nil {
		resp.Deadline = o.Deadline.Format(dateLayout)
	}
	return resp
}
