package handler

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	frontend_domain "github.com/Mecho90/BuildingManagement/frontend/internal/domain"
	"github.com/Mecho90/BuildingManagement/frontend/internal/widget"
	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/domain"
	internal_errors "github.com/Mecho90/BuildingManagement/shared/errors"
	"github.com/Mecho90/BuildingManagement/shared/logger"
)

func (h *Handler) WorkOrdersGetHandler(w http.ResponseWriter, r *http.Request) {
	filters := workOrderFiltersFromQuery(r)

	list, err := h.APIClient.GetWorkOrders(r, workOrderQuery(filters, r.URL.Query().Get("page")))
	if err != nil {
		logger.Log.Error("getting work orders from API", "error", err)
		h.renderTemplateWithError(w, r, "workorders.html", frontend_domain.WorkOrderListPageData{Page: 1, PageCount: 1}, "Could not load work orders. Please try again later.")
		return
	}

	data := frontend_domain.WorkOrderListPageData{
		WorkOrders: make([]frontend_domain.WorkOrder, len(list.WorkOrders)),
		Total:      list.Total,
		Page:       list.Page,
		PageCount:  list.PageCount,
		Filters:    filters,
		Statuses:   statusChoices(),
	}
	for i, o := range list.WorkOrders {
		data.WorkOrders[i] = h.renderWorkOrder(o)
	}

	// Filter dropdowns are best effort: a failed lookup leaves the select
	// empty without failing the page.
	if owners, err := h.APIClient.GetOwnerChoices(r); err == nil {
		data.Owners = owners
	} else {
		logger.Log.Warn("getting owner choices from API", "error", err)
	}
	if buildings, err := h.APIClient.GetBuildingChoices(r); err == nil {
		data.Buildings = buildings
	} else {
		logger.Log.Warn("getting building choices from API", "error", err)
	}

	h.renderTemplate(w, r, "workorders.html", data)
}

func (h *Handler) WorkOrderGetHandler(w http.ResponseWriter, r *http.Request) {
	workOrderId, ok := idParam(r, "workOrderId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	order, err := h.APIClient.GetWorkOrder(r, workOrderId)
	if err != nil {
		if e, ok := err.(*internal_errors.ErrorWithStatusCode); ok && e.StatusCode == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		logger.Log.Error("getting work order from API", "error", err)
		http.Error(w, "Internal error: backend unavailable", http.StatusInternalServerError)
		return
	}

	attachments, err := h.APIClient.GetAttachments(r, workOrderId)
	if err != nil {
		logger.Log.Error("getting attachments from API", "workOrderId", workOrderId, "error", err)
		rendered := h.renderWorkOrder(*order)
		h.renderTemplateWithError(w, r, "workorder.html", frontend_domain.WorkOrderPageData{WorkOrder: &rendered}, "Could not load attachments.")
		return
	}
	rewriteDeleteUrls(workOrderId, attachments)

	widgetConfig, err := h.attachmentWidgetConfig(order)
	if err != nil {
		logger.Log.Error("building widget config", "workOrderId", workOrderId, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rendered := h.renderWorkOrder(*order)
	h.renderTemplate(w, r, "workorder.html", frontend_domain.WorkOrderPageData{
		WorkOrder:    &rendered,
		Attachments:  attachments,
		CanManage:    order.CanManageAttachments,
		WidgetConfig: widgetConfig,
	})
}

// attachmentWidgetConfig marshals the configuration document the attachment
// components read from the page: labels, the capability flag and the
// same-origin endpoints.
func (h *Handler) attachmentWidgetConfig(order *api.WorkOrderResponse) (template.JS, error) {
	cfg := widget.Config{
		Labels:             widget.DefaultLabels(),
		CanManage:          order.CanManageAttachments,
		UploadURL:          fmt.Sprintf("/work-orders/%d/attachments/", order.Id),
		ListURL:            fmt.Sprintf("/work-orders/%d/attachments/", order.Id),
		PreviewURLTemplate: fmt.Sprintf("/work-orders/%d/attachments/{id}/preview", order.Id),
	}

	// json.Marshal escapes angle brackets, so the document cannot break out
	// of its script element.
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return template.JS(raw), nil
}

func (h *Handler) WorkOrderNewGetHandler(w http.ResponseWriter, r *http.Request) {
	data := frontend_domain.WorkOrderFormPageData{
		Statuses:   statusChoices(),
		Priorities: priorityChoices(),
	}
	h.populateFormChoices(r, &data)

	h.renderTemplate(w, r, "workorder_form.html", data)
}

func (h *Handler) WorkOrderNewPostHandler(w http.ResponseWriter, r *http.Request) {
	data := api.CreateWorkOrderRequest{
		BuildingId:  formInt64(r, "building_id"),
		UnitId:      formInt64(r, "unit_id"),
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: r.FormValue("description"),
		Priority:    r.FormValue("priority"),
		Deadline:    strings.TrimSpace(r.FormValue("deadline")),
	}

	id, err := h.APIClient.CreateWorkOrder(r, data)
	if err != nil {
		logger.Log.Error("creating work order via API", "error", err)
		h.redirectWithFlash(w, r, "/work-orders/new", flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, fmt.Sprintf("/work-orders/%d", id), flashCookieSuccess, "Work order created.")
}

func (h *Handler) WorkOrderEditGetHandler(w http.ResponseWriter, r *http.Request) {
	workOrderId, ok := idParam(r, "workOrderId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	order, err := h.APIClient.GetWorkOrder(r, workOrderId)
	if err != nil {
		if e, ok := err.(*internal_errors.ErrorWithStatusCode); ok && e.StatusCode == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		logger.Log.Error("getting work order from API", "error", err)
		http.Error(w, "Internal error: backend unavailable", http.StatusInternalServerError)
		return
	}

	data := frontend_domain.WorkOrderFormPageData{
		WorkOrder:  order,
		Statuses:   statusChoices(),
		Priorities: priorityChoices(),
	}
	h.populateFormChoices(r, &data)

	h.renderTemplate(w, r, "workorder_form.html", data)
}

func (h *Handler) WorkOrderEditPostHandler(w http.ResponseWriter, r *http.Request) {
	workOrderId, ok := idParam(r, "workOrderId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	targetURL := fmt.Sprintf("/work-orders/%d", workOrderId)

	data := api.UpdateWorkOrderRequest{
		UnitId:      formInt64(r, "unit_id"),
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: r.FormValue("description"),
		Status:      r.FormValue("status"),
		Priority:    r.FormValue("priority"),
		Deadline:    strings.TrimSpace(r.FormValue("deadline")),
	}

	if err := h.APIClient.UpdateWorkOrder(r, workOrderId, data); err != nil {
		logger.Log.Error("updating work order via API", "workOrderId", workOrderId, "error", err)
		h.redirectWithFlash(w, r, targetURL+"/edit", flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, targetURL, flashCookieSuccess, "Work order updated.")
}

func (h *Handler) WorkOrderDeleteHandler(w http.ResponseWriter, r *http.Request) {
	workOrderId, ok := idParam(r, "workOrderId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.APIClient.DeleteWorkOrder(r, workOrderId); err != nil {
		logger.Log.Error("deleting work order via API", "workOrderId", workOrderId, "error", err)
		h.redirectWithFlash(w, r, fmt.Sprintf("/work-orders/%d", workOrderId), flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, "/work-orders", flashCookieSuccess, "Work order deleted.")
}

func (h *Handler) WorkOrderArchiveHandler(w http.ResponseWriter, r *http.Request) {
	workOrderId, ok := idParam(r, "workOrderId")
	if !ok {
		http.NotFound(w, r)
		return
	}
	targetURL := fmt.Sprintf("/work-orders/%d", workOrderId)

	if err := h.APIClient.ArchiveWorkOrder(r, workOrderId); err != nil {
		logger.Log.Error("archiving work order via API", "workOrderId", workOrderId, "error", err)
		h.redirectWithFlash(w, r, targetURL, flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, targetURL, flashCookieSuccess, "Work order archived.")
}

func (h *Handler) MassAssignGetHandler(w http.ResponseWriter, r *http.Request) {
	data := frontend_domain.MassAssignPageData{}
	if buildings, err := h.APIClient.GetBuildingChoices(r); err == nil {
		data.Buildings = buildings
	} else {
		logger.Log.Warn("getting building choices from API", "error", err)
	}

	h.renderTemplate(w, r, "workorder_mass_assign.html", data)
}

func (h *Handler) MassAssignPostHandler(w http.ResponseWriter, r *http.Request) {
	targetURL := "/work-orders/mass-assign"

	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, targetURL, flashCookieError, "Invalid form data.")
		return
	}

	var buildingIds []int64
	for _, raw := range r.PostForm["building_ids"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			buildingIds = append(buildingIds, id)
		}
	}

	data := api.MassAssignRequest{
		BuildingIds: buildingIds,
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: r.FormValue("description"),
		Deadline:    strings.TrimSpace(r.FormValue("deadline")),
	}

	result, err := h.APIClient.MassAssignWorkOrders(r, data)
	if err != nil {
		logger.Log.Error("mass assigning work orders via API", "error", err)
		h.redirectWithFlash(w, r, targetURL, flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	msg := fmt.Sprintf("Created %d work orders.", result.Created)
	if result.Skipped > 0 {
		msg = fmt.Sprintf("Created %d work orders, skipped %d buildings with an existing open copy.", result.Created, result.Skipped)
	}
	h.redirectWithFlash(w, r, "/work-orders", flashCookieSuccess, msg)
}

// populateFormChoices fills the building and unit dropdowns, tolerating
// lookup failures.
func (h *Handler) populateFormChoices(r *http.Request, data *frontend_domain.WorkOrderFormPageData) {
	if buildings, err := h.APIClient.GetBuildingChoices(r); err == nil {
		data.Buildings = buildings
	} else {
		logger.Log.Warn("getting building choices from API", "error", err)
	}
	if units, err := h.APIClient.GetUnitChoices(r, 0); err == nil {
		data.Units = units
	} else {
		logger.Log.Warn("getting unit choices from API", "error", err)
	}
}

func workOrderFiltersFromQuery(r *http.Request) frontend_domain.WorkOrderFilters {
	f := frontend_domain.WorkOrderFilters{
		Search:   strings.TrimSpace(r.URL.Query().Get("q")),
		Status:   r.URL.Query().Get("status"),
		Archived: r.URL.Query().Get("archived") == "1",
	}
	if id, err := strconv.ParseInt(r.URL.Query().Get("owner"), 10, 64); err == nil && id > 0 {
		f.OwnerId = id
	}
	if id, err := strconv.ParseInt(r.URL.Query().Get("building"), 10, 64); err == nil && id > 0 {
		f.BuildingId = id
	}
	return f
}

// workOrderQuery translates the filters back into backend list parameters,
// carrying the page number through untouched.
func workOrderQuery(f frontend_domain.WorkOrderFilters, page string) url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("q", f.Search)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.OwnerId > 0 {
		q.Set("owner", strconv.FormatInt(f.OwnerId, 10))
	}
	if f.BuildingId > 0 {
		q.Set("building", strconv.FormatInt(f.BuildingId, 10))
	}
	if f.Archived {
		q.Set("archived", "1")
	}
	if page != "" {
		q.Set("page", page)
	}
	return q
}

func statusChoices() []string {
	choices := make([]string, len(domain.WorkOrderStatuses))
	for i, s := range domain.WorkOrderStatuses {
		choices[i] = string(s)
	}
	return choices
}

func priorityChoices() []string {
	choices := make([]string, len(domain.WorkOrderPriorities))
	for i, p := range domain.WorkOrderPriorities {
		choices[i] = string(p)
	}
	return choices
}
