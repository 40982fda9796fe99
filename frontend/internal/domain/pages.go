package frontend_domain

import (
	"html/template"

	"github.com/Mecho90/BuildingManagement/shared/api"
)

// Building wraps the API projection with the sanitized description markup.
type Building struct {
	api.BuildingResponse
	DescriptionHTML template.HTML
}

// WorkOrder wraps the API projection with rendered markup and page URLs.
type WorkOrder struct {
	api.WorkOrderResponse
	DescriptionHTML template.HTML
}

type BuildingListPageData struct {
	Buildings []Building
}

type BuildingPageData struct {
	Building *Building
	Units    []api.UnitResponse
}

// BuildingFormPageData is shared by the create and edit forms; Building is
// nil when creating.
type BuildingFormPageData struct {
	Building *api.BuildingResponse
}

type UnitFormPageData struct {
	BuildingId   int64
	BuildingName string
	Unit         *api.UnitResponse // nil when creating
}

type TenantFormPageData struct {
	Unit api.UnitResponse
}

// WorkOrderFilters echoes the list query back into the filter form.
type WorkOrderFilters struct {
	Search     string
	Status     string
	OwnerId    int64
	BuildingId int64
	Archived   bool
}

type WorkOrderListPageData struct {
	WorkOrders []WorkOrder
	Total      int
	Page       int
	PageCount  int
	Filters    WorkOrderFilters
	Owners     []api.OwnerChoice
	Buildings  []api.BuildingSummary
	Statuses   []string
}

// WorkOrderPageData renders the detail page. WidgetConfig is the embedded
// JSON configuration consumed by the attachment components; Attachments is
// the server-rendered initial gallery state.
type WorkOrderPageData struct {
	WorkOrder    *WorkOrder
	Attachments  []api.AttachmentMetadata
	CanManage    bool
	WidgetConfig template.JS
}

type WorkOrderFormPageData struct {
	WorkOrder  *api.WorkOrderResponse // nil when creating
	Buildings  []api.BuildingSummary
	Units      []api.UnitSummary
	Statuses   []string
	Priorities []string
}

type MassAssignPageData struct {
	Buildings []api.BuildingSummary
}

type NotificationsPageData struct {
	Notifications []api.NotificationResponse
}
