package api

// WorkOrderTitleMaxLen is mirrored by the validate tags below.
const WorkOrderTitleMaxLen = 200

type CreateWorkOrderRequest struct {
	BuildingId  *int64 `json:"building_id,omitempty"`
	UnitId      *int64 `json:"unit_id,omitempty"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Deadline    string `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateWorkOrderRequest struct {
	UnitId      *int64 `json:"unit_id,omitempty"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status" validate:"required,oneof=OPEN IN_PROGRESS AWAITING_APPROVAL APPROVED REJECTED DONE"`
	Priority    string `json:"priority" validate:"required,oneof=low medium high"`
	Deadline    string `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// MassAssignRequest creates one identical low-priority work order per selected
// building. Deadline defaults to thirty days out when omitted.
type MassAssignRequest struct {
	BuildingIds []int64 `json:"building_ids" validate:"required,min=1,dive,gt=0"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description,omitempty"`
	Deadline    string  `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type WorkOrderResponse struct {
	Id              int64  `json:"id"`
	BuildingId      *int64 `json:"building_id"`
	BuildingName    string `json:"building_name,omitempty"`
	UnitId          *int64 `json:"unit_id"`
	UnitNumber      string `json:"unit_number,omitempty"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Status          string `json:"status"`
	Priority        string `json:"priority"`
	Deadline        string `json:"deadline,omitempty"`
	MassAssigned    bool   `json:"mass_assigned,omitempty"`
	Archived        bool   `json:"archived"`
	AttachmentCount int    `json:"attachment_count"`
	CreatedAt       string `json:"created_at"`
	// CanManageAttachments tells the detail page whether to render upload
	// and delete controls. Populated on single-order reads only.
	CanManageAttachments bool `json:"can_manage_attachments,omitempty"`
}

// WorkOrderListResponse carries one page of work orders.
type WorkOrderListResponse struct {
	WorkOrders []WorkOrderResponse `json:"work_orders"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageCount  int                 `json:"page_count"`
}

// MassAssignResponse reports how many orders were created and how many
// buildings were skipped because an open mass-assigned order with the same
// title already existed.
type MassAssignResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// OwnerChoice is one entry of the owner filter dropdown.
type OwnerChoice struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

type OwnerChoicesResponse struct {
	Owners []OwnerChoice `json:"owners"`
}
